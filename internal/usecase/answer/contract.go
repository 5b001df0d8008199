package answer

import (
	"context"

	"github.com/kailas-cloud/sermondex/internal/domain/search/request"
	"github.com/kailas-cloud/sermondex/internal/domain/search/result"
)

// Searcher retrieves context passages.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}

// Answerer turns a question and numbered context into an answer.
type Answerer interface {
	Answer(ctx context.Context, question, contextText string) (string, error)
}
