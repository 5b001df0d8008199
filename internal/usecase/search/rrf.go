package search

import (
	"math"
	"sort"

	"github.com/kailas-cloud/sermondex/internal/domain/search/result"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges KNN and BM25 results via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d) + 1) over the lists where d appears,
// keyed by the natural id. Each list contributes once per id (first rank wins).
// Ties break on best vector rank, then best keyword rank, then id.
func fuseRRF(knn, bm25 []result.Result, topK int) []result.Result {
	type scored struct {
		base         result.Result
		score        float64
		vectorScore  float64
		keywordScore float64
		vectorRank   int
		keywordRank  int
	}

	merged := make(map[string]*scored, len(knn)+len(bm25))
	entry := func(r result.Result) *scored {
		s, ok := merged[r.ID()]
		if !ok {
			s = &scored{base: r, vectorRank: math.MaxInt, keywordRank: math.MaxInt}
			merged[r.ID()] = s
		}
		return s
	}

	for rank, r := range knn {
		s := entry(r)
		if s.vectorRank != math.MaxInt {
			continue
		}
		s.vectorRank = rank
		s.vectorScore = r.VectorScore()
		s.score += 1.0 / float64(rrfK+rank+1)
	}
	for rank, r := range bm25 {
		s := entry(r)
		if s.keywordRank != math.MaxInt {
			continue
		}
		s.keywordRank = rank
		s.keywordScore = r.KeywordScore()
		s.score += 1.0 / float64(rrfK+rank+1)
	}

	all := make([]*scored, 0, len(merged))
	for _, s := range merged {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.vectorRank != b.vectorRank {
			return a.vectorRank < b.vectorRank
		}
		if a.keywordRank != b.keywordRank {
			return a.keywordRank < b.keywordRank
		}
		return a.base.ID() < b.base.ID()
	})

	if topK >= 0 && len(all) > topK {
		all = all[:topK]
	}

	out := make([]result.Result, len(all))
	for i, s := range all {
		out[i] = result.New(s.base.ID(), s.base.Text(), s.vectorScore, s.keywordScore, s.score, s.base.Fields())
	}
	return out
}
