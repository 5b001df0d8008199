package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// TextSearchProber reports whether the backend supports BM25 keyword search.
type TextSearchProber interface {
	SupportsTextSearch(ctx context.Context) bool
}
