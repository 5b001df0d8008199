// Package llm adapts langchaingo chat models to the correction, extraction
// and answering steps of the pipeline.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/metrics"
)

// Provider is one named chat model in a Chain.
type Provider struct {
	Name  string
	Model llms.Model
}

// Chain is an llms.Model that tries its providers in order and returns the
// first successful response. When all fail the errors are joined under
// domain.ErrLLMProviderError.
type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

var _ llms.Model = (*Chain)(nil)

// NewChain creates a fallback chain. Order is priority.
func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{providers: providers, logger: logger}
}

// GenerateContent implements llms.Model.
func (c *Chain) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	if len(c.providers) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", domain.ErrLLMProviderError)
	}
	task := taskFrom(ctx)
	errs := make([]error, 0, len(c.providers))
	for _, p := range c.providers {
		resp, err := p.Model.GenerateContent(ctx, messages, options...)
		if err == nil && (resp == nil || len(resp.Choices) == 0) {
			err = errors.New("no choices returned")
		}
		if err == nil {
			metrics.LLMRequestsTotal.WithLabelValues(task, p.Name, "success").Inc()
			return resp, nil
		}
		metrics.LLMRequestsTotal.WithLabelValues(task, p.Name, "error").Inc()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("llm %s: %w", task, ctx.Err())
		}
		c.logger.Warn("LLM provider failed, trying next",
			zap.String("provider", p.Name), zap.String("task", task), zap.Error(err))
		errs = append(errs, fmt.Errorf("provider %s: %w", p.Name, err))
	}
	return nil, fmt.Errorf("%w: all providers failed: %w", domain.ErrLLMProviderError, errors.Join(errs...))
}

// Call implements llms.Model for single-prompt callers.
func (c *Chain) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, c, prompt, options...) //nolint:wrapcheck // errors already wrapped by GenerateContent
}

type taskKey struct{}

func withTask(ctx context.Context, task string) context.Context {
	return context.WithValue(ctx, taskKey{}, task)
}

func taskFrom(ctx context.Context) string {
	if t, ok := ctx.Value(taskKey{}).(string); ok {
		return t
	}
	return "generic"
}

// generate sends a system + user exchange and returns the first choice text.
func generate(
	ctx context.Context,
	model llms.Model,
	task, system, user string,
	options ...llms.CallOption,
) (string, error) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
	resp, err := model.GenerateContent(withTask(ctx, task), msgs, options...)
	if err != nil {
		if errors.Is(err, domain.ErrLLMProviderError) {
			return "", fmt.Errorf("%s: %w", task, err)
		}
		return "", fmt.Errorf("%s: %w: %w", task, domain.ErrLLMProviderError, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w: no choices returned", task, domain.ErrLLMProviderError)
	}
	return resp.Choices[0].Content, nil
}
