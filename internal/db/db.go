// Package db holds the storage vocabulary shared by repositories: key/field
// records, FT index schemas, search queries and their results. db/redis
// implements it on Redis with the search and JSON modules; db/badgerkv
// implements the plain key/value part for the local embedding cache.
package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/sermondex/internal/domain/search/filter"
)

// HashSetItem is one hash written by HSetMulti.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// Records stores chunks and verses as flat hashes.
type Records interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Documents stores transcripts as JSON documents.
type Documents interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// Cache stores opaque values with an optional expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Indexes manages FT index lifecycles.
type Indexes interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SupportsTextSearch(ctx context.Context) bool
}

// Queries runs FT.SEARCH in its three shapes.
type Queries interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchBM25(ctx context.Context, q *TextQuery) (*SearchResult, error)
	SearchList(ctx context.Context, index string, filters filter.Expression, offset, limit int, fields []string) (*SearchResult, error)
}

// Store is everything the server needs from one backend.
type Store interface {
	Records
	Documents
	Cache
	Indexes
	Queries
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}
