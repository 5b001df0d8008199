package search

import (
	"context"

	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/domain/search/filter"
	"github.com/kailas-cloud/sermondex/internal/domain/search/request"
	"github.com/kailas-cloud/sermondex/internal/domain/search/result"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	SearchKNN(
		ctx context.Context, corpus request.Corpus,
		vector []float32, filters filter.Expression, topK int,
	) ([]result.Result, error)

	SearchBM25(
		ctx context.Context, corpus request.Corpus,
		query string, filters filter.Expression, topK int,
	) ([]result.Result, error)

	SupportsTextSearch(ctx context.Context) bool
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
