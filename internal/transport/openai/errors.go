package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/sermondex/internal/domain"
)

// classify labels a CreateEmbeddings failure for metrics and wraps it.
// Cancellation passes through unwrapped so callers see the context error;
// every other failure wraps domain.ErrEmbeddingProviderError.
func classify(err error) (string, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled", fmt.Errorf("embedding request: %w", err)
	}

	status, detail := 0, ""
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status, detail = apiErr.HTTPStatusCode, apiErr.Message
	case errors.As(err, &reqErr):
		status, detail = reqErr.HTTPStatusCode, extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
	default:
		return "transport", fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}

	return statusKind(status), fmt.Errorf("%w: status %d: %s", domain.ErrEmbeddingProviderError, status, detail)
}

func statusKind(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "auth"
	case status >= 500:
		return "server"
	default:
		return "rejected"
	}
}

// extractDetail pulls the "detail" message some compatible gateways return
// instead of the OpenAI error envelope.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	return parsed.Detail
}
