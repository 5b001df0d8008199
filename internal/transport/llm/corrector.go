package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Corrector fixes grammar and incomplete sentences in a joined transcript.
type Corrector struct {
	model     llms.Model
	maxTokens int
}

// NewCorrector creates a corrector. maxTokens <= 0 leaves the provider default.
func NewCorrector(model llms.Model, maxTokens int) *Corrector {
	return &Corrector{model: model, maxTokens: maxTokens}
}

// Correct returns the corrected text.
func (c *Corrector) Correct(ctx context.Context, text string) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(0.3)}
	if c.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.maxTokens))
	}
	out, err := generate(ctx, c.model, "correct", correctionSystemPrompt,
		fmt.Sprintf(correctionUserPrompt, text), opts...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
