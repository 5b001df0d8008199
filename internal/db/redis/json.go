package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/sermondex/internal/db"
)

// JSONSet writes data at path ("$" replaces the whole document).
func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) error {
	cmd := s.b().JsonSet().Key(key).Path(path).Value(string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// JSONGet reads the document at key, optionally narrowed to paths.
// A missing key is db.ErrKeyNotFound.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	raw, err := s.do(ctx, s.b().JsonGet().Key(key).Path(paths...).Build()).ToString()
	switch {
	case rueidis.IsRedisNil(err) || (err == nil && raw == ""):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	return []byte(raw), nil
}
