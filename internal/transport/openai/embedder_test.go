package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/domain"
)

type embeddingItem struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// embeddingResponse mirrors the OpenAI embeddings response body.
type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingItem `json:"data"`
	Model  string          `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions"`
}

func newServer(t *testing.T, handle func(req embeddingRequest) (int, any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		status, body := handle(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEmbedder(url string, dims int) *Embedder {
	return NewEmbedder(&Config{
		APIKey:     "test-key",
		BaseURL:    url,
		Model:      "text-embedding-3-small",
		Dimensions: dims,
		Provider:   "test",
		Logger:     zap.NewNop(),
	})
}

func TestEmbedder_Embed(t *testing.T) {
	srv := newServer(t, func(req embeddingRequest) (int, any) {
		if len(req.Input) != 1 || req.Input[0] != "하나님의 은혜" {
			t.Errorf("unexpected input %v", req.Input)
		}
		if req.Dimensions != 4 {
			t.Errorf("expected dimensions 4, got %d", req.Dimensions)
		}
		resp := embeddingResponse{Object: "list", Data: []embeddingItem{{Embedding: []float32{0.1, 0.2, 0.3, 0.4}}}}
		resp.Usage.PromptTokens = 42
		resp.Usage.TotalTokens = 42
		return http.StatusOK, resp
	})

	result, err := newTestEmbedder(srv.URL, 4).Embed(context.Background(), "하나님의 은혜")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(result.Embedding) != 4 || result.Embedding[3] != 0.4 {
		t.Errorf("unexpected vector %v", result.Embedding)
	}
	if result.PromptTokens != 42 || result.TotalTokens != 42 {
		t.Errorf("unexpected usage %d/%d", result.PromptTokens, result.TotalTokens)
	}
}

func TestEmbedder_BatchEmbedRestoresOrder(t *testing.T) {
	srv := newServer(t, func(req embeddingRequest) (int, any) {
		if len(req.Input) != 2 {
			t.Errorf("expected one request with 2 texts, got %v", req.Input)
		}
		resp := embeddingResponse{Data: []embeddingItem{
			{Embedding: []float32{0.3}, Index: 1},
			{Embedding: []float32{0.1}, Index: 0},
		}}
		resp.Usage.TotalTokens = 20
		return http.StatusOK, resp
	})

	result, err := newTestEmbedder(srv.URL, 0).BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("BatchEmbed failed: %v", err)
	}
	if result.Embeddings[0][0] != 0.1 || result.Embeddings[1][0] != 0.3 {
		t.Errorf("expected vectors in input order, got %v", result.Embeddings)
	}
	if result.TotalTokens != 20 {
		t.Errorf("expected TotalTokens=20, got %d", result.TotalTokens)
	}
}

func TestEmbedder_BatchEmbed_Empty(t *testing.T) {
	result, err := newTestEmbedder("http://unused", 0).BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Embeddings != nil {
		t.Errorf("expected nil embeddings, got %v", result.Embeddings)
	}
}

func TestEmbedder_BatchEmbed_CountMismatch(t *testing.T) {
	srv := newServer(t, func(embeddingRequest) (int, any) {
		return http.StatusOK, embeddingResponse{Data: []embeddingItem{{Embedding: []float32{0.1}}}}
	})

	_, err := newTestEmbedder(srv.URL, 0).BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestEmbedder_APIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
	}{
		{"rate limit", http.StatusTooManyRequests, map[string]any{
			"error": map[string]any{"message": "rate limit exceeded", "type": "rate_limit_error"},
		}},
		{"detail body", http.StatusBadRequest, map[string]any{"detail": "input too long"}},
		{"empty data", http.StatusOK, embeddingResponse{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, func(embeddingRequest) (int, any) { return tc.status, tc.body })
			_, err := newTestEmbedder(srv.URL, 0).Embed(context.Background(), "hello")
			if !errors.Is(err, domain.ErrEmbeddingProviderError) {
				t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
			}
		})
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"bad model"}`)); got != "bad model" {
		t.Errorf("got %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestEmbedder_NormalizesSubtitleText(t *testing.T) {
	srv := newServer(t, func(req embeddingRequest) (int, any) {
		if req.Input[0] != "여호와는 나의 목자시니 내게 부족함이 없으리로다" {
			t.Errorf("expected folded whitespace, got %q", req.Input[0])
		}
		return http.StatusOK, embeddingResponse{Data: []embeddingItem{{Embedding: []float32{1}}}}
	})

	_, err := newTestEmbedder(srv.URL, 0).Embed(context.Background(), "여호와는 나의 목자시니\n내게  부족함이 없으리로다\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEmbedder_BlankTextRejectedLocally(t *testing.T) {
	_, err := newTestEmbedder("http://unused", 0).BatchEmbed(context.Background(), []string{"a", " \n "})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEmbedder_DuplicateIndex(t *testing.T) {
	srv := newServer(t, func(embeddingRequest) (int, any) {
		return http.StatusOK, embeddingResponse{Data: []embeddingItem{
			{Embedding: []float32{0.1}, Index: 0},
			{Embedding: []float32{0.2}, Index: 0},
		}}
	})

	_, err := newTestEmbedder(srv.URL, 0).BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestStatusKind(t *testing.T) {
	tests := map[int]string{
		http.StatusTooManyRequests:       "rate_limited",
		http.StatusUnauthorized:          "auth",
		http.StatusForbidden:             "auth",
		http.StatusBadGateway:            "server",
		http.StatusBadRequest:            "rejected",
		http.StatusRequestEntityTooLarge: "rejected",
	}
	for status, want := range tests {
		if got := statusKind(status); got != want {
			t.Errorf("statusKind(%d) = %q, want %q", status, got, want)
		}
	}
}

func TestClassify_CancellationNotProviderError(t *testing.T) {
	kind, err := classify(context.Canceled)
	if kind != "canceled" || !errors.Is(err, context.Canceled) {
		t.Fatalf("got %q %v", kind, err)
	}
	if errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Error("cancellation must not count as a provider failure")
	}
}
