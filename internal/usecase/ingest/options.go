package ingest

import (
	"fmt"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/domain/chunk"
)

// Option configures a Service.
type Option func(*Service) error

// WithChunkOptions sets chunk size and overlap. They are validated on use.
func WithChunkOptions(o chunk.Options) Option {
	return func(s *Service) error {
		s.chunkOpts = o
		return nil
	}
}

// WithExtractionWorkers sets the extraction pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithExtractionWorkers(n int) Option {
	return func(s *Service) error {
		if n < 1 {
			n = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return fmt.Errorf("create extraction pool: %w", err)
		}
		s.pool = pool
		return nil
	}
}

// WithCorrector enables the correction stage. correctAll applies it to every
// input, not only those that ask for it.
func WithCorrector(c Corrector, correctAll bool) Option {
	return func(s *Service) error {
		s.corrector = c
		s.correctAll = correctAll
		return nil
	}
}

// WithExtractor enables per-chunk metadata extraction.
func WithExtractor(e Extractor) Option {
	return func(s *Service) error {
		s.extractor = e
		return nil
	}
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) error {
		s.logger = l
		return nil
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		s.now = now
		return nil
	}
}

func defaultWorkers() int {
	return max(1, runtime.NumCPU()/2)
}
