package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/db"
	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/repository/schema"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

// mockBatchEmbedder vectors each text as [len(text)] and fails the texts in bad.
type mockBatchEmbedder struct {
	mockEmbedder
	bad        map[string]bool
	batchErr   error
	batchCalls int
	lastBatch  []string
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.lastBatch = texts
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	res := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	var errs []error
	for i, t := range texts {
		if m.bad[t] {
			errs = append(errs, &domain.ItemError{Index: i, Err: errors.New("rejected")})
			continue
		}
		res.Embeddings[i] = []float32{float32(len(t))}
		res.TotalTokens++
	}
	return res, errors.Join(errs...)
}

// memStore is an in-memory KV store recording TTLs.
type memStore struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func newTestCachedEmbedder(t *testing.T, inner domain.Embedder) (*CachedEmbedder, *memStore) {
	t.Helper()
	ms := newMemStore()
	ce := New(inner, ms, Config{Keys: schema.NewKeyspace("sd:"), Model: "m1", TTL: time.Hour}, nil, zap.NewNop())
	return ce, ms
}
