package domain

import (
	"context"
	"errors"
	"fmt"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single API call.
// Embeddings are returned in input order.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// ItemError reports a single text that could not be embedded.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string { return fmt.Sprintf("embed item %d: %v", e.Index, e.Err) }
func (e *ItemError) Unwrap() error { return e.Err }

// FailedItems returns the indexes of every *ItemError inside err, in order.
func FailedItems(err error) []int {
	items := ItemErrors(err)
	if items == nil {
		return nil
	}
	out := make([]int, len(items))
	for i, ie := range items {
		out[i] = ie.Index
	}
	return out
}

// ItemErrors collects every *ItemError inside err, walking joined and wrapped errors.
func ItemErrors(err error) []*ItemError {
	if err == nil {
		return nil
	}
	var out []*ItemError
	var walk func(error)
	walk = func(e error) {
		switch u := e.(type) { //nolint:errorlint // walks the join tree itself
		case *ItemError:
			out = append(out, u)
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := u.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}

// BatchFallback embeds texts one at a time. Every text is attempted; the vectors
// that succeed are kept at their index and failures come back joined as *ItemError.
func BatchFallback(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	embeddings := make([][]float32, len(texts))
	var totalPrompt, totalTokens int
	var errs []error

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("fallback embed: %w", err)
		}
		res, err := e.Embed(ctx, text)
		if err != nil {
			errs = append(errs, &ItemError{Index: i, Err: err})
			continue
		}
		embeddings[i] = res.Embedding
		totalPrompt += res.PromptTokens
		totalTokens += res.TotalTokens
	}

	return BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, errors.Join(errs...)
}

// InstructionEmbedder is a domain decorator that prepends instruction text before embedding.
type InstructionEmbedder struct {
	inner       Embedder
	instruction string
}

// NewInstructionEmbedder creates a decorator that prepends instruction text.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// Embed prepends instruction and delegates to inner embedder.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, e.instruction+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return result, nil
}

// BatchEmbed prepends instruction to each text and delegates to inner, one by one
// when inner has no batch support.
func (e *InstructionEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = e.instruction + t
	}

	if be, ok := e.inner.(BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, prefixed)
		if err != nil {
			return res, fmt.Errorf("instruction batch embed: %w", err)
		}
		return res, nil
	}

	res, err := BatchFallback(ctx, e.inner, prefixed)
	if err != nil {
		return res, fmt.Errorf("instruction batch embed fallback: %w", err)
	}
	return res, nil
}

// HealthCheck delegates to inner when it supports health checks.
func (e *InstructionEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

// FallbackEmbedder tries providers in order and returns the first success.
// When every provider fails the errors are joined under ErrEmbeddingProviderError.
type FallbackEmbedder struct {
	providers []Embedder
}

// NewFallbackEmbedder creates a fallback chain. Order is priority.
func NewFallbackEmbedder(providers ...Embedder) *FallbackEmbedder {
	return &FallbackEmbedder{providers: providers}
}

// Embed returns the first provider's successful result.
func (f *FallbackEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	if len(f.providers) == 0 {
		return EmbeddingResult{}, fmt.Errorf("%w: no providers configured", ErrEmbeddingProviderError)
	}
	errs := make([]error, 0, len(f.providers))
	for i, p := range f.providers {
		res, err := p.Embed(ctx, text)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return EmbeddingResult{}, fmt.Errorf("fallback embed: %w", ctx.Err())
		}
		errs = append(errs, fmt.Errorf("provider %d: %w", i, err))
	}
	return EmbeddingResult{}, fmt.Errorf("%w: all providers failed: %w", ErrEmbeddingProviderError, errors.Join(errs...))
}

// BatchEmbed asks each provider for the whole batch. A provider that cannot
// embed every text counts as failed and the next one is tried.
func (f *FallbackEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	if len(f.providers) == 0 {
		return BatchEmbeddingResult{}, fmt.Errorf("%w: no providers configured", ErrEmbeddingProviderError)
	}
	errs := make([]error, 0, len(f.providers))
	for i, p := range f.providers {
		var (
			res BatchEmbeddingResult
			err error
		)
		if be, ok := p.(BatchEmbedder); ok {
			res, err = be.BatchEmbed(ctx, texts)
		} else {
			res, err = BatchFallback(ctx, p, texts)
		}
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("fallback batch embed: %w", ctx.Err())
		}
		errs = append(errs, fmt.Errorf("provider %d: %w", i, err))
	}
	return BatchEmbeddingResult{}, fmt.Errorf("%w: all providers failed: %w", ErrEmbeddingProviderError, errors.Join(errs...))
}

// HealthCheck succeeds when at least one provider is healthy.
func (f *FallbackEmbedder) HealthCheck(ctx context.Context) error {
	var errs []error
	for i, p := range f.providers {
		hc, ok := p.(HealthChecker)
		if !ok {
			return nil
		}
		err := hc.HealthCheck(ctx)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("provider %d: %w", i, err))
	}
	if len(errs) == 0 {
		return fmt.Errorf("%w: no providers configured", ErrEmbeddingProviderError)
	}
	return errors.Join(errs...)
}
