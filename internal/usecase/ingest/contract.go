package ingest

import (
	"context"

	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/domain/chunk"
	"github.com/kailas-cloud/sermondex/internal/domain/transcript"
	"github.com/kailas-cloud/sermondex/internal/domain/video"
)

// Corrector rewrites a joined transcript into cleaner prose.
type Corrector interface {
	Correct(ctx context.Context, text string) (string, error)
}

// Extractor produces semantic metadata for one chunk.
type Extractor interface {
	Extract(ctx context.Context, text string, v video.Metadata) (chunk.Semantic, error)
}

// Embedder vectorizes chunk texts in batches.
type Embedder interface {
	domain.BatchEmbedder
}

// ChunkStore persists chunks.
type ChunkStore interface {
	Save(ctx context.Context, chunks []chunk.Chunk) error
	DeleteStale(ctx context.Context, videoID string, keep int) (int, error)
}

// TranscriptStore persists whole transcripts.
type TranscriptStore interface {
	Save(ctx context.Context, rec *transcript.Record) (bool, error)
}
