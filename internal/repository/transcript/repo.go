// Package transcript stores whole transcript records as JSON documents.
package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/sermondex/internal/db"
	"github.com/kailas-cloud/sermondex/internal/domain"
	domtr "github.com/kailas-cloud/sermondex/internal/domain/transcript"
	"github.com/kailas-cloud/sermondex/internal/repository/schema"
)

// store is the consumer interface for transcripts (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo implements usecase/ingest.TranscriptRepository.
type Repo struct {
	store store
	keys  schema.Keyspace
}

// New creates a transcript repository.
func New(s store, ks schema.Keyspace) *Repo {
	return &Repo{store: s, keys: ks}
}

// Save upserts a record. Returns true if it was created.
func (r *Repo) Save(ctx context.Context, rec *domtr.Record) (bool, error) {
	key := r.keys.TranscriptKey(rec.VideoID)
	data, err := json.Marshal(toDTO(rec))
	if err != nil {
		return false, fmt.Errorf("marshal transcript: %w", err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}
	return !exists, nil
}

// Get returns the record of a video.
func (r *Repo) Get(ctx context.Context, videoID string) (domtr.Record, error) {
	key := r.keys.TranscriptKey(videoID)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domtr.Record{}, fmt.Errorf("transcript %s: %w", videoID, domain.ErrNotFound)
		}
		return domtr.Record{}, fmt.Errorf("json.get %s: %w", key, err)
	}

	var dto recordDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return domtr.Record{}, fmt.Errorf("unmarshal transcript %s: %w", videoID, err)
	}
	return dto.toDomain(), nil
}
