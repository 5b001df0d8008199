// Package bible loads and searches the Bible verse corpus.
package bible

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/domain/batch"
	dombible "github.com/kailas-cloud/sermondex/internal/domain/bible"
	"github.com/kailas-cloud/sermondex/internal/domain/search/mode"
	"github.com/kailas-cloud/sermondex/internal/domain/search/request"
	"github.com/kailas-cloud/sermondex/internal/domain/search/result"
)

// MaxLoadSize caps the number of verses accepted by one Load call.
const MaxLoadSize = 5000

// Service handles verse loading and verse search.
type Service struct {
	repo   Repository
	embed  Embedder
	search Searcher
	logger *zap.Logger
}

// New creates a verse service.
func New(repo Repository, embed Embedder, search Searcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, embed: embed, search: search, logger: logger}
}

// Load validates, embeds and upserts verses. results[i] belongs to verses[i];
// an invalid or unembeddable verse fails alone. An error is returned only
// when the call itself cannot proceed (too many verses, provider down,
// storage failure).
func (s *Service) Load(ctx context.Context, verses []dombible.Verse) ([]batch.Result, error) {
	if len(verses) > MaxLoadSize {
		return nil, fmt.Errorf("%w: at most %d verses per load, got %d", domain.ErrInvalidInput, MaxLoadSize, len(verses))
	}

	results := make([]batch.Result, len(verses))
	valid := make([]int, 0, len(verses))
	for i, v := range verses {
		if err := v.Validate(); err != nil {
			results[i] = batch.NewError(v.Key(), err)
			continue
		}
		valid = append(valid, i)
	}
	if len(valid) == 0 {
		return results, nil
	}

	texts := make([]string, len(valid))
	for j, i := range valid {
		texts[j] = verses[i].Text
	}
	res, err := s.embed.BatchEmbed(ctx, texts)
	failed := make(map[int]error)
	for _, ie := range domain.ItemErrors(err) {
		failed[ie.Index] = ie
	}
	if err != nil && len(failed) == 0 {
		return nil, fmt.Errorf("embed verses: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d verses",
			domain.ErrEmbeddingProviderError, len(res.Embeddings), len(texts))
	}

	toSave := make([]dombible.Verse, 0, len(valid))
	vectors := make([][]float32, 0, len(valid))
	saved := make([]int, 0, len(valid))
	for j, i := range valid {
		if ferr, bad := failed[j]; bad {
			results[i] = batch.NewError(verses[i].Key(), fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, ferr))
			continue
		}
		toSave = append(toSave, verses[i])
		vectors = append(vectors, res.Embeddings[j])
		saved = append(saved, i)
	}

	if err := s.repo.Save(ctx, toSave, vectors); err != nil {
		return nil, fmt.Errorf("save verses: %w", err)
	}
	for _, i := range saved {
		results[i] = batch.NewOK(verses[i].Key())
	}

	sum := batch.Summarize(results)
	s.logger.Info("Verses loaded",
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
		zap.Int("embedding_tokens", res.TotalTokens),
	)
	return results, nil
}

// Get returns one verse by its book-chapter-verse key.
func (s *Service) Get(ctx context.Context, key string) (dombible.Verse, error) {
	v, err := s.repo.Get(ctx, key)
	if err != nil {
		return dombible.Verse{}, fmt.Errorf("get verse: %w", err)
	}
	return v, nil
}

// Search runs a verse search. An empty m means hybrid; topK 0 means 10.
func (s *Service) Search(
	ctx context.Context, query, testament string, m mode.Mode, topK int,
) ([]result.Result, error) {
	req, err := request.New(request.Verses, query, m, request.Filters{Testament: testament}, topK)
	if err != nil {
		return nil, err //nolint:wrapcheck // validation sentinel
	}
	res, err := s.search.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search verses: %w", err)
	}
	return res, nil
}
