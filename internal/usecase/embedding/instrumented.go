// Package embedding wraps the embedding chain with sub-batching, degraded
// per-item retry and observability.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/metrics"
)

// DefaultMaxAPIBatchSize is the largest batch sent in one provider request.
const DefaultMaxAPIBatchSize = 256

// InstrumentedEmbedder splits batches, retries a failed batch item by item
// and logs every call. Transport metrics (requests, duration, tokens) are
// recorded in transport/openai; this layer counts texts per purpose.
type InstrumentedEmbedder struct {
	inner     domain.Embedder
	purpose   string
	batchSize int
	logger    *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder. purpose labels metrics and logs
// ("query", "chunk", "verse"). batchSize <= 0 uses DefaultMaxAPIBatchSize.
func NewInstrumentedEmbedder(
	inner domain.Embedder, purpose string, batchSize int, logger *zap.Logger,
) *InstrumentedEmbedder {
	if batchSize <= 0 {
		batchSize = DefaultMaxAPIBatchSize
	}
	return &InstrumentedEmbedder{
		inner:     inner,
		purpose:   purpose,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Embed delegates to the inner embedder and records the outcome.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		p.count("error", 1)
		p.logger.Error("Embedding request failed",
			zap.String("purpose", p.purpose),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	p.count("success", 1)

	p.logger.Debug("Embedding request completed",
		zap.String("purpose", p.purpose),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// BatchEmbed embeds texts in sub-batches of at most batchSize. When a whole
// sub-batch call fails it is retried one text at a time. Texts that still
// fail come back as *domain.ItemError with their index in texts, next to
// the vectors that succeeded.
func (p *InstrumentedEmbedder) BatchEmbed(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	var itemErrs []error

	for offset := 0; offset < len(texts); offset += p.batchSize {
		end := min(offset+p.batchSize, len(texts))
		part := texts[offset:end]

		res, err := p.embedPart(ctx, offset, part)
		if err != nil && len(domain.ItemErrors(err)) == 0 {
			return domain.BatchEmbeddingResult{}, err
		}
		for _, ie := range domain.ItemErrors(err) {
			itemErrs = append(itemErrs, &domain.ItemError{Index: offset + ie.Index, Err: ie.Err})
		}
		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}

	p.count("error", len(itemErrs))
	p.count("success", len(texts)-len(itemErrs))
	p.logger.Debug("Batch embedding completed",
		zap.String("purpose", p.purpose),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("failed", len(itemErrs)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, errors.Join(itemErrs...)
}

// embedPart embeds one sub-batch, falling back to per-item calls when the
// batch call fails as a whole or returns a malformed result.
func (p *InstrumentedEmbedder) embedPart(
	ctx context.Context, offset int, texts []string,
) (domain.BatchEmbeddingResult, error) {
	be, ok := p.inner.(domain.BatchEmbedder)
	if ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err == nil && len(res.Embeddings) == len(texts) {
			return res, nil
		}
		if err != nil && len(domain.ItemErrors(err)) > 0 && len(res.Embeddings) == len(texts) {
			return res, err
		}
		if ctx.Err() != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", ctx.Err())
		}
		p.logger.Warn("Batch embedding failed, retrying item by item",
			zap.String("purpose", p.purpose),
			zap.Int("chunk_offset", offset),
			zap.Int("chunk_size", len(texts)),
			zap.Error(err),
		)
	}

	res, err := domain.BatchFallback(ctx, p.inner, texts)
	if err != nil && len(domain.ItemErrors(err)) == 0 {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed fallback: %w", err)
	}
	return res, err //nolint:wrapcheck // item errors are inspected by index
}

func (p *InstrumentedEmbedder) count(status string, n int) {
	if n > 0 {
		metrics.EmbeddingTextsTotal.WithLabelValues(p.purpose, status).Add(float64(n))
	}
}

// HealthCheck delegates to inner when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}
