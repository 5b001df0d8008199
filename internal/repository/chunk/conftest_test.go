package chunk

import (
	"context"
	"testing"

	"github.com/kailas-cloud/sermondex/internal/db"
	domchunk "github.com/kailas-cloud/sermondex/internal/domain/chunk"
	"github.com/kailas-cloud/sermondex/internal/domain/search/filter"
	"github.com/kailas-cloud/sermondex/internal/repository/schema"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn  func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn    func(ctx context.Context, key string) (map[string]string, error)
	delFn        func(ctx context.Context, keys ...string) error
	searchListFn func(
		ctx context.Context, index string, filters filter.Expression, offset, limit int, fields []string,
	) (*db.SearchResult, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func (m *mockStore) SearchList(
	ctx context.Context, index string, filters filter.Expression, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, index, filters, offset, limit, fields)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, schema.NewKeyspace("sd:")), ms
}

func testChunk(t *testing.T, index int) domchunk.Chunk {
	t.Helper()
	c := domchunk.Chunk{
		ID:        domchunk.ID("vid", index),
		ChunkText: "하나님은 사랑이시라",
		Metadata: domchunk.Metadata{
			VideoID:     "vid",
			VideoTitle:  "2024년 3월 3일 주일예배",
			ServiceType: "주일예배",
			ServiceDate: "2024-03-03",
			Keywords:    []string{"사랑"},
			ChunkIndex:  index,
			EndChar:     10,
		},
	}
	c.Refresh()
	c.Embedding = []float32{0.25, -0.5, 1}
	return c
}
