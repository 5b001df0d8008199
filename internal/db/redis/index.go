package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/sermondex/internal/db"
)

// CreateIndex runs FT.CREATE for def. A concurrent creator winning the race
// surfaces as db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := createArgs(def)
	if err != nil {
		return err
	}
	err = s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, "index already exists"):
		return db.ErrIndexExists
	default:
		return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("%s: %w", def.Name, err)}
	}
}

// DropIndex runs FT.DROPINDEX. The indexed hashes are kept.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	err := s.do(ctx, s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isUnknownIndex(err):
		return db.ErrIndexNotFound
	default:
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
}

// IndexExists asks FT.INFO about name.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error()
	switch {
	case err == nil:
		return true, nil
	case isUnknownIndex(err):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
}

// SupportsTextSearch is always true: the search module that serves FT.SEARCH
// also scores TEXT fields with BM25.
func (s *Store) SupportsTextSearch(context.Context) bool {
	return true
}

func isUnknownIndex(err error) bool {
	return isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index")
}

// createArgs renders everything after FT.CREATE. Indexes are always ON HASH.
func createArgs(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	out := []string{def.Name, "ON", "HASH"}
	if def.Prefix != "" {
		out = append(out, "PREFIX", "1", def.Prefix)
	}
	out = append(out, "SCHEMA")
	for _, f := range def.Fields {
		out = append(out, fieldArgs(f)...)
	}
	return out, nil
}

// fieldArgs renders one SCHEMA entry. The field must already be validated.
func fieldArgs(f db.SchemaField) []string {
	out := []string{f.Attr}
	if f.Alias != "" {
		out = append(out, "AS", f.Alias)
	}
	out = append(out, f.Kind.String())

	switch f.Kind {
	case db.KindTag:
		if f.Separator != "" {
			out = append(out, "SEPARATOR", f.Separator)
		}
		if f.CaseSensitive {
			out = append(out, "CASESENSITIVE")
		}
	case db.KindText:
		if f.NoStem {
			out = append(out, "NOSTEM")
		}
	case db.KindNumeric:
		if f.Sortable {
			out = append(out, "SORTABLE")
		}
	case db.KindVector:
		out = append(out, hnswArgs(f.HNSW)...)
	}
	return out
}

// hnswArgs renders "HNSW <nargs> TYPE FLOAT32 DIM d DISTANCE_METRIC COSINE [M m] [EF_CONSTRUCTION ef]".
func hnswArgs(p db.HNSWParams) []string {
	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(p.Dim),
		"DISTANCE_METRIC", "COSINE",
	}
	if p.M > 0 {
		attrs = append(attrs, "M", strconv.Itoa(p.M))
	}
	if p.EFConstruct > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(p.EFConstruct))
	}
	return append([]string{"HNSW", strconv.Itoa(len(attrs))}, attrs...)
}
