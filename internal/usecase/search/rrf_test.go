package search

import (
	"math"
	"testing"

	"github.com/kailas-cloud/sermondex/internal/domain/search/result"
)

func ids(rs []result.Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID()
	}
	return out
}

func TestFuseRRF_ScoreFormula(t *testing.T) {
	knn := []result.Result{vecHit("a", 0.9), vecHit("b", 0.8)}
	bm25 := []result.Result{kwHit("b", 5), kwHit("c", 4)}

	got := fuseRRF(knn, bm25, 10)
	want := map[string]float64{
		"a": 1.0 / 61,
		"b": 1.0/62 + 1.0/61,
		"c": 1.0 / 62,
	}
	for _, r := range got {
		if math.Abs(r.RRFScore()-want[r.ID()]) > 1e-12 {
			t.Errorf("%s: rrf = %v, want %v", r.ID(), r.RRFScore(), want[r.ID()])
		}
	}
	if got[0].ID() != "b" {
		t.Errorf("expected b first, got %v", ids(got))
	}
}

func TestFuseRRF_FirstInBothBeatsFirstInOne(t *testing.T) {
	knn := []result.Result{vecHit("a", 0.9), vecHit("b", 0.8)}
	bm25 := []result.Result{kwHit("a", 5), kwHit("c", 4)}

	got := fuseRRF(knn, bm25, 10)
	scores := make(map[string]float64, len(got))
	for _, r := range got {
		scores[r.ID()] = r.RRFScore()
	}
	if scores["a"] <= scores["b"] || scores["a"] <= scores["c"] {
		t.Errorf("expected a above b and c, got %v", scores)
	}
	if got[0].ID() != "a" {
		t.Errorf("expected a first, got %v", ids(got))
	}
}

func TestFuseRRF_TieBreakPrefersVectorRankThenKeywordRankThenID(t *testing.T) {
	// a (vector rank 0) and x (keyword rank 0) tie on score.
	got := fuseRRF([]result.Result{vecHit("a", 0.1)}, []result.Result{kwHit("x", 9)}, 10)
	if want := []string{"a", "x"}; ids(got)[0] != want[0] || ids(got)[1] != want[1] {
		t.Errorf("expected %v, got %v", want, ids(got))
	}

	// Keyword-only ties fall back to keyword rank.
	got = fuseRRF(nil, []result.Result{kwHit("z", 1), kwHit("y", 1)}, 10)
	if ids(got)[0] != "z" {
		t.Errorf("expected keyword rank order, got %v", ids(got))
	}
}

func TestFuseRRF_Deterministic(t *testing.T) {
	knn := []result.Result{vecHit("a", 1), vecHit("b", 1), vecHit("c", 1)}
	bm25 := []result.Result{kwHit("c", 1), kwHit("d", 1), kwHit("e", 1)}
	first := ids(fuseRRF(knn, bm25, 10))
	for range 20 {
		again := ids(fuseRRF(knn, bm25, 10))
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("order changed: %v vs %v", first, again)
			}
		}
	}
}

func TestFuseRRF_BetterRankNeverScoresLower(t *testing.T) {
	knn := []result.Result{vecHit("a", 1), vecHit("b", 1), vecHit("c", 1), vecHit("d", 1)}
	got := fuseRRF(knn, nil, 10)
	for i := 1; i < len(got); i++ {
		if got[i].RRFScore() > got[i-1].RRFScore() {
			t.Errorf("rank %d scores above rank %d", i, i-1)
		}
	}
}

func TestFuseRRF_DuplicateInOneListCountsOnce(t *testing.T) {
	got := fuseRRF([]result.Result{vecHit("a", 0.9), vecHit("a", 0.1)}, nil, 10)
	if len(got) != 1 {
		t.Fatalf("expected one result, got %d", len(got))
	}
	if math.Abs(got[0].RRFScore()-1.0/61) > 1e-12 || got[0].VectorScore() != 0.9 {
		t.Errorf("expected first occurrence only, got %v/%v", got[0].RRFScore(), got[0].VectorScore())
	}
}

func TestFuseRRF_EmptyInputs(t *testing.T) {
	if got := fuseRRF(nil, nil, 5); len(got) != 0 {
		t.Errorf("expected empty, got %v", ids(got))
	}
	got := fuseRRF(nil, []result.Result{kwHit("k", 2)}, 5)
	if len(got) != 1 || got[0].VectorScore() != 0 || got[0].KeywordScore() != 2 {
		t.Errorf("unexpected keyword-only fusion %v", got)
	}
}

func TestFuseRRF_KeepsFieldsAndText(t *testing.T) {
	got := fuseRRF([]result.Result{vecHit("a", 1)}, []result.Result{kwHit("a", 3)}, 1)
	if got[0].Text() != "text-a" || got[0].Fields()["video_id"] != "v" {
		t.Errorf("expected vector-side text and fields, got %q %v", got[0].Text(), got[0].Fields())
	}
}

func TestFuseRRF_TopK(t *testing.T) {
	knn := []result.Result{vecHit("a", 1), vecHit("b", 1), vecHit("c", 1)}
	if got := fuseRRF(knn, nil, 2); len(got) != 2 {
		t.Errorf("expected 2, got %d", len(got))
	}
}
