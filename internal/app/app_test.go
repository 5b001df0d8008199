package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/config"
	"github.com/kailas-cloud/sermondex/internal/db"
	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/repository/embcache"
	"github.com/kailas-cloud/sermondex/internal/repository/schema"
)

func testApp(backend string) *App {
	cfg := config.Config{
		HTTP:     config.HTTPConfig{Port: 8080},
		Database: config.DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: config.EmbeddingConfig{
			Providers: []config.ProviderConfig{{Name: "a", APIKey: "k"}, {Name: "b", BaseURL: "http://localhost:1/v1"}},
			Cache:     config.CacheConfig{Backend: backend},
		},
	}
	cfg.ApplyDefaults()
	return &App{Config: cfg, Logger: zap.NewNop(), Keys: schema.NewKeyspace("")}
}

func TestBuildBaseEmbedder_NoCache(t *testing.T) {
	a := testApp(config.CacheNone)
	emb, err := a.buildBaseEmbedder()
	require.NoError(t, err)
	assert.IsType(t, &domain.FallbackEmbedder{}, emb)
	assert.Empty(t, a.closers)
}

func TestBuildBaseEmbedder_BadgerCache(t *testing.T) {
	a := testApp(config.CacheBadger)
	emb, err := a.buildBaseEmbedder()
	require.NoError(t, err)
	assert.IsType(t, &domain.FallbackEmbedder{}, emb)
	require.Len(t, a.closers, 1)
	assert.NoError(t, a.Close())
	assert.Empty(t, a.closers)
}

func TestDecorate_WrapsEveryPurpose(t *testing.T) {
	a := testApp(config.CacheNone)
	base, err := a.buildBaseEmbedder()
	require.NoError(t, err)

	for _, purpose := range []string{PurposeQuery, PurposeChunk, PurposeVerse} {
		emb := a.decorate(base, "query: ", purpose)
		var _ domain.BatchEmbedder = emb
		var _ domain.HealthChecker = emb
		assert.NotNil(t, emb, purpose)
	}
}

func TestBuildLLM(t *testing.T) {
	a := testApp(config.CacheNone)
	a.Config.LLM.Providers = []config.ProviderConfig{{Name: "gpt", APIKey: "k", Model: "gpt-4o-mini"}}
	chain, err := a.buildLLM()
	require.NoError(t, err)
	assert.NotNil(t, chain)
}

func TestEmbeddingProviders_CachePerProviderModel(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(down.Close)

	var gotModel string
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": []float32{0.5, 0.5}}},
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 2, "total_tokens": 2},
		})
	}))
	t.Cleanup(up.Close)

	a := testApp(config.CacheNone)
	a.Config.Embedding.Providers = []config.ProviderConfig{
		{Name: "primary", APIKey: "k", BaseURL: down.URL, Model: "text-embedding-3-small"},
		{Name: "backup", APIKey: "k", BaseURL: up.URL, Model: "bge-m3"},
	}
	cache := &mapCache{entries: map[string][]byte{}}
	emb := domain.NewFallbackEmbedder(a.embeddingProviders(cache)...)

	res, err := emb.Embed(context.Background(), "은혜")
	require.NoError(t, err)
	assert.Len(t, res.Embedding, 2)
	assert.Equal(t, "bge-m3", gotModel)

	assert.Contains(t, cache.entries, embcache.Key(a.Keys, "bge-m3", "은혜"))
	assert.NotContains(t, cache.entries, embcache.Key(a.Keys, "text-embedding-3-small", "은혜"))
}

// --- Mocks ---

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (m *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mapCache) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}
