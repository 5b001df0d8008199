package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Answerer answers a question from numbered context passages.
type Answerer struct {
	model       llms.Model
	temperature float64
	maxTokens   int
}

// NewAnswerer creates an answerer with the given sampling temperature.
func NewAnswerer(model llms.Model, temperature float64, maxTokens int) *Answerer {
	return &Answerer{model: model, temperature: temperature, maxTokens: maxTokens}
}

// Answer sends the question with its context and returns the model's reply.
func (a *Answerer) Answer(ctx context.Context, question, contextText string) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(a.temperature)}
	if a.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(a.maxTokens))
	}
	out, err := generate(ctx, a.model, "answer", answerSystemPrompt,
		fmt.Sprintf(answerUserPrompt, contextText, question), opts...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
