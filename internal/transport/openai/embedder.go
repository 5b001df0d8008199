// Package openai embeds texts through an OpenAI-compatible embeddings API.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/metrics"
)

// Config holds one provider entry.
type Config struct {
	APIKey     string
	BaseURL    string // empty means api.openai.com
	Model      string
	Dimensions int // 0 keeps the model's native size
	User       string
	Provider   string // metrics and log label
	Logger     *zap.Logger
}

// Embedder calls the embeddings endpoint. Batches go out as a single request;
// splitting oversized batches is the caller's job.
type Embedder struct {
	client *openai.Client
	cfg    Config
	log    *zap.Logger
}

// NewEmbedder builds a provider client from cfg.
func NewEmbedder(cfg *Config) *Embedder {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Embedder{
		client: openai.NewClientWithConfig(cc),
		cfg:    *cfg,
		log:    log.With(zap.String("provider", cfg.Provider), zap.String("model", cfg.Model)),
	}
}

// Embed vectorizes one text.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	out, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    out.Embeddings[0],
		PromptTokens: out.PromptTokens,
		TotalTokens:  out.TotalTokens,
	}, nil
}

// BatchEmbed vectorizes texts in one request. Vectors come back in input
// order whatever order the API lists them in.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = normalizeInput(t)
		if input[i] == "" {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: text %d is blank", domain.ErrInvalidInput, i)
		}
	}

	resp, err := e.request(ctx, input)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) || vectors[d.Index] != nil {
			return domain.BatchEmbeddingResult{}, e.fail("bad_index",
				fmt.Errorf("%w: unexpected vector index %d", domain.ErrEmbeddingProviderError, d.Index))
		}
		vectors[d.Index] = d.Embedding
	}
	if len(resp.Data) != len(texts) {
		return domain.BatchEmbeddingResult{}, e.fail("count_mismatch",
			fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbeddingProviderError, len(resp.Data), len(texts)))
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   vectors,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck lists models, which costs no tokens.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("%s: list models: %w", e.cfg.Provider, err)
	}
	return nil
}

func (e *Embedder) request(ctx context.Context, input []string) (openai.EmbeddingResponse, error) {
	req := openai.EmbeddingRequest{
		Input:          input,
		Model:          openai.EmbeddingModel(e.cfg.Model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.cfg.User,
		Dimensions:     max(e.cfg.Dimensions, 0),
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		kind, wrapped := classify(err)
		e.log.Warn("Embedding request failed",
			zap.String("kind", kind),
			zap.Int("texts", len(input)),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return openai.EmbeddingResponse{}, e.fail(kind, wrapped)
	}
	if len(resp.Data) == 0 {
		return openai.EmbeddingResponse{}, e.fail("empty_response",
			fmt.Errorf("%w: empty embedding response", domain.ErrEmbeddingProviderError))
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.cfg.Provider, e.cfg.Model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.cfg.Provider, e.cfg.Model).Observe(elapsed.Seconds())
	if u := resp.Usage; u.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.cfg.Provider, e.cfg.Model, "prompt").Add(float64(u.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(e.cfg.Provider, e.cfg.Model, "total").Add(float64(u.TotalTokens))
	}
	return resp, nil
}

// fail counts err under kind and returns it.
func (e *Embedder) fail(kind string, err error) error {
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.cfg.Provider, e.cfg.Model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(e.cfg.Provider, e.cfg.Model, kind).Inc()
	return err
}

// normalizeInput folds line breaks and runs of whitespace from subtitle text
// into single spaces.
func normalizeInput(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
