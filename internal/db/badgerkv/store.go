// Package badgerkv is an embedded key-value store for the embedding cache,
// used by CLI runs that should not depend on a shared Redis for caching.
package badgerkv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/db"
)

// Store wraps a badger database.
type Store struct {
	db *badger.DB
}

// zapAdapter routes badger's internal logging through zap.
type zapAdapter struct {
	log *zap.SugaredLogger
}

var (
	_ db.Cache      = (*Store)(nil)
	_ badger.Logger = (*zapAdapter)(nil)
)

func (a *zapAdapter) Errorf(msg string, items ...any)   { a.log.Errorf(msg, items...) }
func (a *zapAdapter) Warningf(msg string, items ...any) { a.log.Warnf(msg, items...) }
func (a *zapAdapter) Infof(msg string, items ...any)    { a.log.Debugf(msg, items...) }
func (a *zapAdapter) Debugf(msg string, items ...any)   { a.log.Debugf(msg, items...) }

// Open opens (creating if needed) a badger directory at path.
// An empty path opens an in-memory database.
func Open(path string, logger *zap.Logger) (*Store, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create badger dir: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = &zapAdapter{log: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", path, err)
	}
	return &Store{db: bdb}, nil
}

// Get returns the value stored at key or db.ErrKeyNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return out, nil
}

// SetWithTTL stores value at key. ttl <= 0 stores without expiry.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	return nil
}
