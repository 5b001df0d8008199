// Package schema owns the key layout and FT index definitions shared by the
// repositories.
package schema

import "strings"

// DefaultPrefix namespaces every key when no prefix is configured.
const DefaultPrefix = "sermondex:"

// Keyspace builds storage keys and index names under one prefix.
type Keyspace struct {
	prefix string
}

// NewKeyspace returns a keyspace rooted at prefix, DefaultPrefix when empty.
func NewKeyspace(prefix string) Keyspace {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keyspace{prefix: prefix}
}

// Prefix returns the root prefix.
func (k Keyspace) Prefix() string { return k.prefix }

// ChunkPrefix is the key prefix indexed by the chunk index.
func (k Keyspace) ChunkPrefix() string { return k.prefix + "chunk:" }

// ChunkKey returns the hash key of a chunk.
func (k Keyspace) ChunkKey(id string) string { return k.ChunkPrefix() + id }

// ChunkID strips the chunk key prefix.
func (k Keyspace) ChunkID(key string) string { return strings.TrimPrefix(key, k.ChunkPrefix()) }

// ChunkIndex returns the FT index name for chunks.
func (k Keyspace) ChunkIndex() string { return k.prefix + "chunks:idx" }

// VersePrefix is the key prefix indexed by the verse index.
func (k Keyspace) VersePrefix() string { return k.prefix + "verse:" }

// VerseKey returns the hash key of a verse by its natural key.
func (k Keyspace) VerseKey(key string) string { return k.VersePrefix() + key }

// VerseID strips the verse key prefix.
func (k Keyspace) VerseID(key string) string { return strings.TrimPrefix(key, k.VersePrefix()) }

// VerseIndex returns the FT index name for verses.
func (k Keyspace) VerseIndex() string { return k.prefix + "verses:idx" }

// TranscriptKey returns the JSON key of a transcript record.
func (k Keyspace) TranscriptKey(videoID string) string { return k.prefix + "transcript:" + videoID }

// EmbeddingCacheKey returns the cache key for a content hash.
func (k Keyspace) EmbeddingCacheKey(hash string) string { return k.prefix + "emb_cache:" + hash }
