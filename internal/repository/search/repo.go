// Package search runs the vector and keyword branches against the corpus indexes.
package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/sermondex/internal/db"
	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/domain/bible"
	"github.com/kailas-cloud/sermondex/internal/domain/chunk"
	"github.com/kailas-cloud/sermondex/internal/domain/search/filter"
	"github.com/kailas-cloud/sermondex/internal/domain/search/request"
	"github.com/kailas-cloud/sermondex/internal/domain/search/result"
	"github.com/kailas-cloud/sermondex/internal/repository/schema"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SupportsTextSearch(ctx context.Context) bool
}

// corpusLayout tells where a corpus lives and how its hits are read.
type corpusLayout struct {
	index        string
	textField    string
	returnFields []string
	id           func(key string) string
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store   store
	layouts map[request.Corpus]corpusLayout
}

// New creates a search repository.
func New(s store, ks schema.Keyspace) *Repo {
	return &Repo{
		store: s,
		layouts: map[request.Corpus]corpusLayout{
			request.Sermons: {
				index:        ks.ChunkIndex(),
				textField:    chunk.FieldChunkText,
				returnFields: schema.ChunkReturnFields,
				id:           ks.ChunkID,
			},
			request.Verses: {
				index:        ks.VerseIndex(),
				textField:    bible.FieldText,
				returnFields: schema.VerseReturnFields,
				id:           ks.VerseID,
			},
		},
	}
}

// SupportsTextSearch proxies the capability check from the store.
func (r *Repo) SupportsTextSearch(ctx context.Context) bool {
	return r.store.SupportsTextSearch(ctx)
}

// SearchKNN returns the nearest items by cosine similarity, best first.
// Results carry only the vector score.
func (r *Repo) SearchKNN(
	ctx context.Context, corpus request.Corpus,
	vector []float32, filters filter.Expression, topK int,
) ([]result.Result, error) {
	l, err := r.layout(corpus)
	if err != nil {
		return nil, err
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    l.index,
		Filters:      filters,
		Vector:       vector,
		K:            topK,
		ReturnFields: l.returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", corpus, err)
	}

	return toResults(sr, func(e *db.SearchEntry) result.Result {
		return result.New(l.id(e.Key), e.Fields[l.textField], e.Score, 0, 0, e.Fields)
	}), nil
}

// SearchBM25 returns keyword matches by BM25 score, best first.
// Results carry only the keyword score.
func (r *Repo) SearchBM25(
	ctx context.Context, corpus request.Corpus,
	query string, filters filter.Expression, topK int,
) ([]result.Result, error) {
	l, err := r.layout(corpus)
	if err != nil {
		return nil, err
	}

	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    l.index,
		TextField:    l.textField,
		Query:        query,
		Filters:      filters,
		TopK:         topK,
		ReturnFields: l.returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search bm25 %s: %w", corpus, err)
	}

	return toResults(sr, func(e *db.SearchEntry) result.Result {
		return result.New(l.id(e.Key), e.Fields[l.textField], 0, e.Score, 0, e.Fields)
	}), nil
}

func (r *Repo) layout(corpus request.Corpus) (corpusLayout, error) {
	l, ok := r.layouts[corpus]
	if !ok {
		return corpusLayout{}, fmt.Errorf("%w: unknown corpus %q", domain.ErrInvalidInput, corpus)
	}
	return l, nil
}

func toResults(sr *db.SearchResult, build func(*db.SearchEntry) result.Result) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	results := make([]result.Result, 0, len(sr.Entries))
	for i := range sr.Entries {
		results = append(results, build(&sr.Entries[i]))
	}
	return results
}
