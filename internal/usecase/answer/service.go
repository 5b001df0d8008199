// Package answer implements retrieval-augmented answers over the sermon corpus.
package answer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/domain/search/mode"
	"github.com/kailas-cloud/sermondex/internal/domain/search/request"
	"github.com/kailas-cloud/sermondex/internal/domain/search/result"
	"github.com/kailas-cloud/sermondex/internal/logger"
)

// NoContextAnswer is returned when retrieval finds nothing.
const NoContextAnswer = "관련된 정보를 찾을 수 없습니다."

// DefaultContextSize is the number of chunks handed to the model.
const DefaultContextSize = 3

// Answer is a generated reply with the chunks it was grounded on.
type Answer struct {
	Question string
	Text     string
	Sources  []result.Result
}

// Service answers questions from retrieved sermon chunks.
type Service struct {
	search      Searcher
	answerer    Answerer
	contextSize int
	logger      *zap.Logger
}

// New creates an answer service. contextSize <= 0 means DefaultContextSize.
func New(search Searcher, answerer Answerer, contextSize int, logger *zap.Logger) *Service {
	if contextSize <= 0 {
		contextSize = DefaultContextSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{search: search, answerer: answerer, contextSize: contextSize, logger: logger}
}

// Ask runs a hybrid sermon search restricted by filters and asks the model
// to answer from the top hits.
func (s *Service) Ask(ctx context.Context, question string, filters request.Filters) (Answer, error) {
	req, err := request.New(request.Sermons, question, mode.Hybrid, filters, s.contextSize)
	if err != nil {
		return Answer{}, err //nolint:wrapcheck // validation sentinel
	}
	hits, err := s.search.Search(ctx, &req)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve context: %w", err)
	}

	log := logger.From(ctx, s.logger)
	if len(hits) == 0 {
		log.Info("No context for question", zap.String("query", question))
		return Answer{Question: question, Text: NoContextAnswer}, nil
	}

	text, err := s.answerer.Answer(ctx, question, BuildContext(hits))
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}
	log.Info("Question answered", zap.Int("sources", len(hits)))
	return Answer{Question: question, Text: text, Sources: hits}, nil
}

// BuildContext numbers hits from 1 as "[i] text" separated by blank lines.
func BuildContext(hits []result.Result) string {
	parts := make([]string, len(hits))
	for i := range hits {
		parts[i] = "[" + strconv.Itoa(i+1) + "] " + hits[i].Text()
	}
	return strings.Join(parts, "\n\n")
}
