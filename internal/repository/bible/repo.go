// Package bible persists Bible verses as hashes indexed for hybrid search.
package bible

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/sermondex/internal/db"
	"github.com/kailas-cloud/sermondex/internal/domain"
	dombible "github.com/kailas-cloud/sermondex/internal/domain/bible"
	"github.com/kailas-cloud/sermondex/internal/repository/schema"
)

// store is the consumer interface for verses (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo implements usecase/bible.Repository.
type Repo struct {
	store store
	keys  schema.Keyspace
}

// New creates a verse repository.
func New(s store, ks schema.Keyspace) *Repo {
	return &Repo{store: s, keys: ks}
}

// Save upserts verses with their vectors, matched by position.
func (r *Repo) Save(ctx context.Context, verses []dombible.Verse, vectors [][]float32) error {
	if len(verses) != len(vectors) {
		return fmt.Errorf("%w: %d verses but %d vectors", domain.ErrInvalidInput, len(verses), len(vectors))
	}
	if len(verses) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(verses))
	for i, v := range verses {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("%w: verse %s has no embedding", domain.ErrInvalidInput, v.Key())
		}
		fields := v.Fields()
		fields[schema.FieldEmbedding] = db.EncodeVector(vectors[i])
		items[i] = db.HashSetItem{Key: r.keys.VerseKey(v.Key()), Fields: fields}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset verses: %w", err)
	}
	return nil
}

// Get returns a verse by its book-chapter-verse key.
func (r *Repo) Get(ctx context.Context, key string) (dombible.Verse, error) {
	m, err := r.store.HGetAll(ctx, r.keys.VerseKey(key))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dombible.Verse{}, fmt.Errorf("verse %s: %w", key, domain.ErrNotFound)
		}
		return dombible.Verse{}, fmt.Errorf("hgetall verse %s: %w", key, err)
	}
	return dombible.FromFields(m), nil
}
