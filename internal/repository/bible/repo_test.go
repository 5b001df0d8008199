package bible

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/sermondex/internal/db"
	"github.com/kailas-cloud/sermondex/internal/domain"
	dombible "github.com/kailas-cloud/sermondex/internal/domain/bible"
	"github.com/kailas-cloud/sermondex/internal/repository/schema"
)

// --- Mocks ---

type mockStore struct {
	hsetMultiFn func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn   func(ctx context.Context, key string) (map[string]string, error)
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

var john316 = dombible.Verse{
	Book: "요한복음", Chapter: 3, Verse: 16,
	Text:      "하나님이 세상을 이처럼 사랑하사",
	Testament: dombible.NewTestament,
}

func TestSave_Keys(t *testing.T) {
	ms := &mockStore{}
	var got []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}
	repo := New(ms, schema.NewKeyspace("sd:"))

	if err := repo.Save(context.Background(), []dombible.Verse{john316}, [][]float32{{1, 2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Key != "sd:verse:요한복음-3-16" {
		t.Fatalf("unexpected items: %+v", got)
	}
	if got[0].Fields[dombible.FieldTestament] != "신약" || got[0].Fields[schema.FieldEmbedding] == "" {
		t.Errorf("unexpected fields: %v", got[0].Fields)
	}
}

func TestSave_Mismatch(t *testing.T) {
	repo := New(&mockStore{}, schema.NewKeyspace(""))
	err := repo.Save(context.Background(), []dombible.Verse{john316}, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	err = repo.Save(context.Background(), []dombible.Verse{john316}, [][]float32{nil})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty vector, got %v", err)
	}
}

func TestGet(t *testing.T) {
	ms := &mockStore{hgetAllFn: func(_ context.Context, key string) (map[string]string, error) {
		if key != "sd:verse:요한복음-3-16" {
			return nil, db.ErrKeyNotFound
		}
		return john316.Fields(), nil
	}}
	repo := New(ms, schema.NewKeyspace("sd:"))

	got, err := repo.Get(context.Background(), "요한복음-3-16")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != john316 {
		t.Errorf("expected %+v, got %+v", john316, got)
	}

	if _, err := repo.Get(context.Background(), "창세기-1-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
