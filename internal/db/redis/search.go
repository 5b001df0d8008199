package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/sermondex/internal/db"
	"github.com/kailas-cloud/sermondex/internal/domain/search/filter"
)

// knnScoreAlias names the cosine distance yielded by the KNN clause.
const knnScoreAlias = "__vector_score"

// ftSearch accumulates FT.SEARCH arguments. Every query is sent with DIALECT 2,
// the dialect that understands the KNN syntax and PARAMS.
type ftSearch struct {
	index string
	query string
	opts  []string
}

func newFTSearch(index, query string) *ftSearch {
	return &ftSearch{index: index, query: query}
}

// project limits the returned hash fields; extra survives alongside them.
// Listing nothing returns every field.
func (q *ftSearch) project(fields []string, extra ...string) *ftSearch {
	if len(fields) == 0 {
		return q
	}
	q.opts = append(q.opts, "RETURN", strconv.Itoa(len(fields)+len(extra)))
	q.opts = append(q.opts, fields...)
	q.opts = append(q.opts, extra...)
	return q
}

func (q *ftSearch) page(offset, n int) *ftSearch {
	q.opts = append(q.opts, "LIMIT", strconv.Itoa(offset), strconv.Itoa(n))
	return q
}

func (q *ftSearch) with(opts ...string) *ftSearch {
	q.opts = append(q.opts, opts...)
	return q
}

func (q *ftSearch) args() []string {
	out := make([]string, 0, len(q.opts)+4)
	out = append(out, q.index, q.query)
	out = append(out, q.opts...)
	return append(out, "DIALECT", "2")
}

// run sends the query. withScores must match a WITHSCORES option so the reply
// is walked with the right stride.
func (s *Store) run(ctx context.Context, q *ftSearch, withScores bool) (*db.SearchResult, error) {
	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(q.args()...).Build()).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%s: %w", q.index, err)}
	}
	return parseReply(raw, withScores)
}

// SearchKNN returns the K nearest neighbours of q.Vector among documents that
// pass q.Filters. Score is cosine similarity, max(0, 1 - distance).
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	switch {
	case q.IndexName == "":
		return nil, errors.New("index name is required")
	case len(q.Vector) == 0:
		return nil, errors.New("vector is required")
	case q.K <= 0:
		return nil, errors.New("k must be positive")
	}

	field := q.VectorField
	if field == "" {
		field = db.DefaultVectorField
	}
	pre := "*"
	if f := buildFilter(q.Filters); f != "" {
		pre = "(" + f + ")"
	}
	query := fmt.Sprintf("%s=>[KNN %d @%s $BLOB AS %s]", pre, q.K, field, knnScoreAlias)

	ft := newFTSearch(q.IndexName, query).
		project(q.ReturnFields, knnScoreAlias).
		with("SORTBY", knnScoreAlias).
		page(0, q.K).
		with("PARAMS", "2", "BLOB", db.EncodeVector(q.Vector))

	res, err := s.run(ctx, ft, false)
	if err != nil {
		return nil, err
	}
	for i := range res.Entries {
		e := &res.Entries[i]
		raw, ok := e.Fields[knnScoreAlias]
		if !ok {
			continue
		}
		delete(e.Fields, knnScoreAlias)
		if dist, err := strconv.ParseFloat(raw, 64); err == nil {
			e.Score = max(0, 1-dist)
		}
	}
	return res, nil
}

// SearchBM25 scores q.TextField against the query tokens with BM25. Tokens are
// escaped and OR-ed, so a document matching any token is a hit.
func (s *Store) SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	switch {
	case q.IndexName == "":
		return nil, errors.New("index name is required")
	case q.TextField == "":
		return nil, errors.New("text field is required")
	case q.TopK <= 0:
		return nil, errors.New("topK must be positive")
	}
	terms := buildTextTerms(q.Query)
	if terms == "" {
		return nil, errors.New("query is required")
	}

	query := fmt.Sprintf("@%s:(%s)", q.TextField, terms)
	if f := buildFilter(q.Filters); f != "" {
		query = f + " " + query
	}

	ft := newFTSearch(q.IndexName, query).
		project(q.ReturnFields).
		with("WITHSCORES", "SCORER", "BM25").
		page(0, q.TopK)
	return s.run(ctx, ft, true)
}

// SearchList pages through documents matching filters in index order.
// An empty expression matches every document.
func (s *Store) SearchList(
	ctx context.Context, index string, filters filter.Expression, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	query := buildFilter(filters)
	if query == "" {
		query = "*"
	}
	return s.run(ctx, newFTSearch(index, query).project(fields).page(offset, limit), false)
}

// parseReply walks a RESP2 FT.SEARCH reply:
//
//	[total, key, fields, key, fields, ...]           without scores
//	[total, key, score, fields, key, score, ...]     WITHSCORES
//
// Malformed entries are skipped.
func parseReply(raw []rueidis.RedisMessage, withScores bool) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	res := &db.SearchResult{Total: int(total)}

	stride := 2
	if withScores {
		stride = 3
	}
	for i := 1; i+stride-1 < len(raw); i += stride {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		entry := db.SearchEntry{Key: key}
		if withScores {
			s, err := raw[i+1].ToString()
			if err != nil {
				continue
			}
			if entry.Score, err = strconv.ParseFloat(s, 64); err != nil {
				continue
			}
		}
		pairs, err := raw[i+stride-1].ToArray()
		if err != nil {
			continue
		}
		entry.Fields = fieldMap(pairs)
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}

func fieldMap(pairs []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(pairs)/2)
	for j := 0; j+1 < len(pairs); j += 2 {
		name, err := pairs[j].ToString()
		if err != nil {
			continue
		}
		if v, err := pairs[j+1].ToString(); err == nil {
			m[name] = v
		}
	}
	return m
}

// buildFilter renders filter conditions as juxtaposed (AND-ed) query atoms:
// @key:{value} for tags and @key:[lo hi] for ranges.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}
	atoms := make([]string, 0, len(expr.Conditions()))
	for _, c := range expr.Conditions() {
		switch {
		case c.IsTag():
			atoms = append(atoms, "@"+c.Key()+":{"+escapeQuery(c.TagValue())+"}")
		case c.IsRange():
			r := c.Range()
			atoms = append(atoms, "@"+c.Key()+":["+bound(r.Lower(), "-inf")+" "+bound(r.Upper(), "+inf")+"]")
		}
	}
	return strings.Join(atoms, " ")
}

func bound(v *float64, open string) string {
	if v == nil {
		return open
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// buildTextTerms escapes every whitespace-separated token and joins them with OR.
func buildTextTerms(query string) string {
	tokens := strings.Fields(query)
	for i, t := range tokens {
		tokens[i] = escapeQuery(t)
	}
	return strings.Join(tokens, " | ")
}

// escapeQuery backslash-escapes every rune that the query parser would read
// as syntax: punctuation, symbols and spaces. Letters of any script, digits
// and underscores pass through.
func escapeQuery(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r != '_' && (unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r)) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
