package llm

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

// ProviderConfig describes one OpenAI-compatible chat endpoint.
type ProviderConfig struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAIProvider builds a chain entry on langchaingo's OpenAI client.
// Any OpenAI-compatible gateway works through BaseURL.
func NewOpenAIProvider(cfg ProviderConfig) (Provider, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return Provider{}, fmt.Errorf("create llm provider %s: %w", cfg.Name, err)
	}
	name := cfg.Name
	if name == "" {
		name = cfg.Model
	}
	return Provider{Name: name, Model: model}, nil
}
