package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/domain/search/mode"
	"github.com/kailas-cloud/sermondex/internal/domain/search/request"
	"github.com/kailas-cloud/sermondex/internal/domain/search/result"
	"github.com/kailas-cloud/sermondex/internal/metrics"
)

// Service runs semantic, keyword and hybrid searches over a corpus.
// It holds no per-request state.
type Service struct {
	repo   Repository
	embed  Embedder
	logger *zap.Logger
}

// New creates a search service.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, embed: embed, logger: logger}
}

// Search executes req against req.Corpus(). Results are ordered by fused
// score and never exceed req.TopK(). A failing branch fails the search.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	var (
		results []result.Result
		err     error
	)

	switch req.Mode() {
	case mode.Semantic:
		results, err = s.searchSemantic(ctx, req)
	case mode.Keyword:
		results, err = s.searchKeyword(ctx, req)
	case mode.Hybrid:
		results, err = s.searchHybrid(ctx, req)
	default:
		err = fmt.Errorf("%w: unsupported search mode %q", domain.ErrInvalidInput, req.Mode())
	}

	outcome := "hits"
	switch {
	case err != nil:
		outcome = "error"
	case len(results) == 0:
		outcome = "empty"
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(req.Corpus()), string(req.Mode()), outcome).Inc()

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) searchSemantic(ctx context.Context, req *request.Request) ([]result.Result, error) {
	vec, err := s.vectorize(ctx, req.Query())
	if err != nil {
		return nil, err
	}
	knn, err := s.knn(ctx, req, vec)
	if err != nil {
		return nil, err
	}
	return fuseRRF(knn, nil, req.TopK()), nil
}

func (s *Service) searchKeyword(ctx context.Context, req *request.Request) ([]result.Result, error) {
	if !s.repo.SupportsTextSearch(ctx) {
		return nil, domain.ErrKeywordSearchNotSupported
	}
	bm25, err := s.bm25(ctx, req)
	if err != nil {
		return nil, err
	}
	return fuseRRF(nil, bm25, req.TopK()), nil
}

// searchHybrid embeds the query, then runs KNN and BM25 concurrently over the
// same pre-filter. The first branch error cancels the other.
func (s *Service) searchHybrid(ctx context.Context, req *request.Request) ([]result.Result, error) {
	if !s.repo.SupportsTextSearch(ctx) {
		return nil, domain.ErrKeywordSearchNotSupported
	}

	vec, err := s.vectorize(ctx, req.Query())
	if err != nil {
		return nil, err
	}

	var knn, bm25 []result.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		knn, err = s.knn(gctx, req, vec)
		return err
	})
	g.Go(func() error {
		var err error
		bm25, err = s.bm25(gctx, req)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // branches wrap their own errors
	}

	s.logger.Debug("Hybrid search branches done",
		zap.String("corpus", string(req.Corpus())),
		zap.Int("knn", len(knn)),
		zap.Int("bm25", len(bm25)),
	)
	return fuseRRF(knn, bm25, req.TopK()), nil
}

func (s *Service) vectorize(ctx context.Context, query string) ([]float32, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)
	return emb.Embedding, nil
}

func (s *Service) knn(ctx context.Context, req *request.Request, vec []float32) ([]result.Result, error) {
	start := time.Now()
	res, err := s.repo.SearchKNN(ctx, req.Corpus(), vec, req.Expression(), req.TopK())
	metrics.SearchBranchDuration.WithLabelValues(string(req.Corpus()), "vector").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return res, nil
}

func (s *Service) bm25(ctx context.Context, req *request.Request) ([]result.Result, error) {
	start := time.Now()
	res, err := s.repo.SearchBM25(ctx, req.Corpus(), req.Query(), req.Expression(), req.TopK())
	metrics.SearchBranchDuration.WithLabelValues(string(req.Corpus()), "keyword").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("search bm25: %w", err)
	}
	return res, nil
}
