// Package chunk persists sermon chunks as hashes indexed for hybrid search.
package chunk

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/sermondex/internal/db"
	"github.com/kailas-cloud/sermondex/internal/domain"
	domchunk "github.com/kailas-cloud/sermondex/internal/domain/chunk"
	"github.com/kailas-cloud/sermondex/internal/domain/search/filter"
	"github.com/kailas-cloud/sermondex/internal/repository/schema"
)

const listPageSize = 100

// store is the consumer interface for chunks (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	SearchList(
		ctx context.Context, index string, filters filter.Expression, offset, limit int, fields []string,
	) (*db.SearchResult, error)
}

// Repo implements usecase/ingest.ChunkRepository.
type Repo struct {
	store store
	keys  schema.Keyspace
}

// New creates a chunk repository.
func New(s store, ks schema.Keyspace) *Repo {
	return &Repo{store: s, keys: ks}
}

// Save upserts chunks in one pipelined round-trip. Every chunk must carry its embedding.
func (r *Repo) Save(ctx context.Context, chunks []domchunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, 0, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
		fields := c.Fields()
		fields[schema.FieldEmbedding] = db.EncodeVector(c.Embedding)
		items = append(items, db.HashSetItem{Key: r.keys.ChunkKey(c.ID), Fields: fields})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset chunks: %w", err)
	}
	return nil
}

// Get returns a stored chunk including its embedding.
func (r *Repo) Get(ctx context.Context, id string) (domchunk.Chunk, error) {
	key := r.keys.ChunkKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domchunk.Chunk{}, fmt.Errorf("chunk %s: %w", id, domain.ErrNotFound)
		}
		return domchunk.Chunk{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	c := domchunk.FromFields(id, m)
	c.Embedding = db.DecodeVector(m[schema.FieldEmbedding])
	return c, nil
}

// DeleteStale removes chunks of videoID whose index is keep or above, left
// over from a previous ingestion that produced more chunks. Returns the count removed.
func (r *Repo) DeleteStale(ctx context.Context, videoID string, keep int) (int, error) {
	cond, err := filter.Tag(domchunk.FieldVideoID, videoID)
	if err != nil {
		return 0, fmt.Errorf("stale chunk filter: %w", err)
	}
	expr, err := filter.All(cond)
	if err != nil {
		return 0, fmt.Errorf("stale chunk filter: %w", err)
	}

	var stale []string
	for offset := 0; ; offset += listPageSize {
		res, err := r.store.SearchList(ctx, r.keys.ChunkIndex(), expr, offset, listPageSize,
			[]string{domchunk.FieldChunkIndex})
		if err != nil {
			return 0, fmt.Errorf("list chunks of %s: %w", videoID, err)
		}
		for _, e := range res.Entries {
			if idx, ok := r.chunkIndexOf(e.Key, videoID); ok && idx >= keep {
				stale = append(stale, e.Key)
			}
		}
		if len(res.Entries) < listPageSize || offset+listPageSize >= res.Total {
			break
		}
	}

	if len(stale) == 0 {
		return 0, nil
	}
	if err := r.store.Del(ctx, stale...); err != nil {
		return 0, fmt.Errorf("delete stale chunks of %s: %w", videoID, err)
	}
	return len(stale), nil
}

// chunkIndexOf parses the index out of a chunk key of videoID. Keys of any
// other video, including ones the tag filter folded onto videoID, report false.
func (r *Repo) chunkIndexOf(key, videoID string) (int, bool) {
	rest, ok := strings.CutPrefix(key, r.keys.ChunkKey(videoID+"_"))
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
