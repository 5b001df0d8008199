// Package app is the composition root shared by the API server and sermonctl.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/config"
	"github.com/kailas-cloud/sermondex/internal/db"
	"github.com/kailas-cloud/sermondex/internal/db/badgerkv"
	dbRedis "github.com/kailas-cloud/sermondex/internal/db/redis"
	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/domain/chunk"
	"github.com/kailas-cloud/sermondex/internal/metrics"
	biblerepo "github.com/kailas-cloud/sermondex/internal/repository/bible"
	chunkrepo "github.com/kailas-cloud/sermondex/internal/repository/chunk"
	"github.com/kailas-cloud/sermondex/internal/repository/embcache"
	"github.com/kailas-cloud/sermondex/internal/repository/schema"
	searchrepo "github.com/kailas-cloud/sermondex/internal/repository/search"
	transcriptrepo "github.com/kailas-cloud/sermondex/internal/repository/transcript"
	"github.com/kailas-cloud/sermondex/internal/transport/llm"
	openaiEmb "github.com/kailas-cloud/sermondex/internal/transport/openai"
	answeruc "github.com/kailas-cloud/sermondex/internal/usecase/answer"
	bibleuc "github.com/kailas-cloud/sermondex/internal/usecase/bible"
	embeddinguc "github.com/kailas-cloud/sermondex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/sermondex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/sermondex/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/sermondex/internal/usecase/search"
)

// Embedding purposes, used as metric and log labels.
const (
	PurposeQuery = "query"
	PurposeChunk = "chunk"
	PurposeVerse = "verse"
)

// App holds the wired services.
type App struct {
	Config config.Config
	Logger *zap.Logger
	Keys   schema.Keyspace

	Store       *dbRedis.Store
	Chunks      *chunkrepo.Repo
	Transcripts *transcriptrepo.Repo

	Ingest *ingestuc.Service
	Search *searchuc.Service
	Bible  *bibleuc.Service
	Answer *answeruc.Service
	Health *healthuc.Service

	closers []func() error
}

// New connects to Redis and wires every service. Answer is nil when no LLM
// provider is configured.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	metrics.Register()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Keys:    schema.NewKeyspace(cfg.Storage.KeyPrefix),
		Store:   store,
		closers: []func() error{func() error { store.Close(); return nil }},
	}

	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

	if err := a.wire(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire() error {
	cfg := a.Config

	base, err := a.buildBaseEmbedder()
	if err != nil {
		return err
	}
	queryEmb := a.decorate(base, cfg.Embedding.QueryInstruction, PurposeQuery)
	chunkEmb := a.decorate(base, cfg.Embedding.DocumentInstruction, PurposeChunk)
	verseEmb := a.decorate(base, cfg.Embedding.DocumentInstruction, PurposeVerse)

	a.Chunks = chunkrepo.New(a.Store, a.Keys)
	a.Transcripts = transcriptrepo.New(a.Store, a.Keys)
	verses := biblerepo.New(a.Store, a.Keys)
	search := searchrepo.New(a.Store, a.Keys)

	a.Search = searchuc.New(search, queryEmb, a.Logger)
	a.Bible = bibleuc.New(verses, verseEmb, a.Search, a.Logger)
	a.Health = healthuc.New(a.Store, queryEmb, search)

	opts := []ingestuc.Option{
		ingestuc.WithChunkOptions(chunk.Options{
			Size:           cfg.Ingest.ChunkSize,
			OverlapPercent: cfg.Ingest.OverlapPercent,
		}),
		ingestuc.WithLogger(a.Logger),
	}
	if cfg.Ingest.ExtractionWorkers > 0 {
		opts = append(opts, ingestuc.WithExtractionWorkers(cfg.Ingest.ExtractionWorkers))
	}

	if cfg.LLM.Enabled() {
		model, err := a.buildLLM()
		if err != nil {
			return err
		}
		opts = append(opts, ingestuc.WithCorrector(llm.NewCorrector(model, 0), cfg.LLM.CorrectTranscripts))
		if cfg.LLM.Extraction() {
			opts = append(opts, ingestuc.WithExtractor(llm.NewExtractor(model, a.Logger)))
		}
		answerer := llm.NewAnswerer(model, cfg.LLM.Temperature, cfg.LLM.MaxTokens)
		a.Answer = answeruc.New(a.Search, answerer, cfg.Search.RAGContextSize, a.Logger)
	} else {
		a.Logger.Warn("No LLM provider configured, correction, extraction and answers are disabled")
	}

	a.Ingest, err = ingestuc.New(chunkEmb, a.Chunks, a.Transcripts, opts...)
	if err != nil {
		return fmt.Errorf("create ingest service: %w", err)
	}
	a.closers = append(a.closers, func() error { a.Ingest.Close(); return nil })
	return nil
}

// buildBaseEmbedder assembles cached providers -> fallback.
func (a *App) buildBaseEmbedder() (domain.Embedder, error) {
	cfg := a.Config.Embedding
	cache, err := a.embeddingCache()
	if err != nil {
		return nil, err
	}
	emb := domain.NewFallbackEmbedder(a.embeddingProviders(cache)...)

	a.Logger.Info("Embedder created",
		zap.Int("providers", len(cfg.Providers)),
		zap.String("model", cfg.Model),
		zap.Int("dimensions", cfg.Dimensions),
		zap.String("cache", cfg.Cache.Backend),
	)
	return emb, nil
}

// embeddingCache opens the configured cache backend, or returns nil when
// caching is off.
func (a *App) embeddingCache() (db.Cache, error) {
	switch a.Config.Embedding.Cache.Backend {
	case config.CacheRedis:
		return a.Store, nil
	case config.CacheBadger:
		kv, err := badgerkv.Open(a.Config.Embedding.Cache.Dir, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("open embedding cache: %w", err)
		}
		a.closers = append(a.closers, kv.Close)
		return kv, nil
	default:
		return nil, nil
	}
}

// embeddingProviders builds one embedder per configured provider. Each is
// cached under its own model, so a fallback provider never writes vectors
// under the primary model's keys.
func (a *App) embeddingProviders(cache db.Cache) []domain.Embedder {
	cfg := a.Config.Embedding
	providers := make([]domain.Embedder, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		var emb domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     p.APIKey,
			BaseURL:    p.BaseURL,
			Model:      p.Model,
			Dimensions: cfg.Dimensions,
			Provider:   p.Name,
			Logger:     a.Logger,
		})
		if cache != nil {
			emb = embcache.New(emb, cache, embcache.Config{
				Keys:  a.Keys,
				Model: p.Model,
				TTL:   time.Duration(cfg.Cache.TTLHours) * time.Hour,
			}, metrics.EmbeddingCacheTotal, a.Logger)
		}
		providers = append(providers, emb)
	}
	return providers
}

// decorate adds the instruction prefix and per-purpose instrumentation.
// The instruction goes outside the cache so it is part of the cached text.
func (a *App) decorate(base domain.Embedder, instruction, purpose string) *embeddinguc.InstrumentedEmbedder {
	emb := base
	if instruction != "" {
		emb = domain.NewInstructionEmbedder(base, instruction)
	}
	return embeddinguc.NewInstrumentedEmbedder(emb, purpose, a.Config.Embedding.BatchSize, a.Logger)
}

func (a *App) buildLLM() (*llm.Chain, error) {
	providers := make([]llm.Provider, 0, len(a.Config.LLM.Providers))
	for _, p := range a.Config.LLM.Providers {
		prov, err := llm.NewOpenAIProvider(llm.ProviderConfig{
			Name:    p.Name,
			APIKey:  p.APIKey,
			BaseURL: p.BaseURL,
			Model:   p.Model,
		})
		if err != nil {
			return nil, err //nolint:wrapcheck // already names the provider
		}
		providers = append(providers, prov)
	}
	return llm.NewChain(a.Logger, providers...), nil
}

// EnsureIndexes creates the chunk and verse indexes when missing.
func (a *App) EnsureIndexes(ctx context.Context) error {
	hnsw := schema.HNSW{M: a.Config.Index.HNSWM, EFConstruct: a.Config.Index.HNSWEFConstruct}
	if err := schema.EnsureIndexes(ctx, a.Store, a.Keys, a.Config.Embedding.Dimensions, hnsw, a.Logger); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}

// Close releases resources in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
