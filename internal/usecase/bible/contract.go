package bible

import (
	"context"

	"github.com/kailas-cloud/sermondex/internal/domain"
	dombible "github.com/kailas-cloud/sermondex/internal/domain/bible"
	"github.com/kailas-cloud/sermondex/internal/domain/search/request"
	"github.com/kailas-cloud/sermondex/internal/domain/search/result"
)

// Repository persists verses.
type Repository interface {
	Save(ctx context.Context, verses []dombible.Verse, vectors [][]float32) error
	Get(ctx context.Context, key string) (dombible.Verse, error)
}

// Embedder vectorizes verse texts in batches.
type Embedder interface {
	domain.BatchEmbedder
}

// Searcher runs hybrid search; implemented by usecase/search.Service.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}
