// Package ingest turns a timestamped transcript into embedded, persisted chunks.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/domain/batch"
	"github.com/kailas-cloud/sermondex/internal/domain/chunk"
	"github.com/kailas-cloud/sermondex/internal/domain/transcript"
	"github.com/kailas-cloud/sermondex/internal/domain/video"
	"github.com/kailas-cloud/sermondex/internal/logger"
	"github.com/kailas-cloud/sermondex/internal/metrics"
)

// Input is one transcript to ingest.
type Input struct {
	Video    video.Metadata
	Segments []transcript.Segment
	// From and To clip the transcript to [From, To); a zero To means no end.
	From, To time.Duration
	// Correct runs the correction stage for this input.
	Correct bool
}

// Report summarizes one ingestion run.
type Report struct {
	VideoID            string
	Paragraphs         int
	Chunks             int
	Characters         int
	ExtractionFailures int
	EmbeddingTokens    int
	StaleRemoved       int
	Corrected          bool
	Created            bool
	Duration           time.Duration
}

// Service runs the ingestion pipeline.
type Service struct {
	embedder    Embedder
	chunks      ChunkStore
	transcripts TranscriptStore
	corrector   Corrector
	extractor   Extractor
	correctAll  bool
	chunkOpts   chunk.Options
	pool        *ants.Pool
	now         func() time.Time
	logger      *zap.Logger
}

// New creates an ingestion service. Close releases the extraction pool.
func New(emb Embedder, chunks ChunkStore, transcripts TranscriptStore, opts ...Option) (*Service, error) {
	s := &Service{
		embedder:    emb,
		chunks:      chunks,
		transcripts: transcripts,
		chunkOpts:   chunk.DefaultOptions(),
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Close()
			return nil, err
		}
	}
	if s.pool == nil {
		if err := WithExtractionWorkers(defaultWorkers())(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close releases the worker pool.
func (s *Service) Close() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Ingest runs every stage for one transcript. Nothing is persisted unless
// every chunk has been embedded.
func (s *Service) Ingest(ctx context.Context, in Input) (Report, error) {
	start := time.Now()
	log := logger.From(ctx, s.logger).With(zap.String("video_id", in.Video.VideoID))

	segments, err := s.validate(in)
	if err != nil {
		return Report{}, err
	}
	rep := Report{VideoID: in.Video.VideoID}

	if in.Correct || s.correctAll {
		if s.corrector == nil {
			return Report{}, fmt.Errorf("%w: correction requested but no corrector configured", domain.ErrInvalidInput)
		}
		err = s.stage(StageCorrect, func() error {
			segments, err = correctSegments(ctx, s.corrector, segments)
			return err
		})
		if err != nil {
			return Report{}, err
		}
		rep.Corrected = true
	}

	cleanStart := time.Now()
	cleaned := transcript.Clean(segments)
	observeStage(StageClean, cleanStart, nil)

	var paragraphs []transcript.Paragraph
	err = s.stage(StageAssemble, func() error {
		paragraphs = transcript.Assemble(cleaned)
		if len(paragraphs) == 0 {
			return fmt.Errorf("%w: no text left after cleaning", domain.ErrInvalidInput)
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}
	rep.Paragraphs = len(paragraphs)

	meta := video.Resolve(in.Video)

	var chunks []chunk.Chunk
	err = s.stage(StageChunk, func() error {
		var err error
		chunks, err = chunk.Split(paragraphs, meta, s.chunkOpts)
		if err == nil && len(chunks) == 0 {
			err = fmt.Errorf("%w: no chunks to persist", domain.ErrInvalidInput)
		}
		return err
	})
	if err != nil {
		return Report{}, err
	}
	metrics.ChunksProducedTotal.Add(float64(len(chunks)))
	rep.Chunks = len(chunks)

	if s.extractor != nil {
		err = s.stage(StageExtract, func() error {
			var err error
			rep.ExtractionFailures, err = s.extract(ctx, log, chunks, meta)
			return err
		})
		if err != nil {
			return Report{}, err
		}
	}

	err = s.stage(StageEmbed, func() error {
		var err error
		rep.EmbeddingTokens, err = s.embed(ctx, chunks)
		return err
	})
	if err != nil {
		return Report{}, err
	}

	err = s.stage(StageStore, func() error {
		var err error
		rep.Created, rep.StaleRemoved, err = s.persist(ctx, meta, segments, paragraphs, chunks, rep.Corrected)
		return err
	})
	if err != nil {
		return Report{}, err
	}

	for _, c := range chunks {
		rep.Characters += utf8.RuneCountInString(c.ChunkText)
	}
	rep.Duration = time.Since(start)

	log.Info("Transcript ingested",
		zap.Int("paragraphs", rep.Paragraphs),
		zap.Int("chunks", rep.Chunks),
		zap.Int("extraction_failures", rep.ExtractionFailures),
		zap.Int("embedding_tokens", rep.EmbeddingTokens),
		zap.Bool("created", rep.Created),
		zap.Duration("duration", rep.Duration),
	)
	return rep, nil
}

// IngestMany ingests inputs one by one. A failed input never stops the
// others; reports[i] is zero when results[i] failed.
func (s *Service) IngestMany(ctx context.Context, inputs []Input) ([]batch.Result, []Report) {
	results := make([]batch.Result, len(inputs))
	reports := make([]Report, len(inputs))
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			results[i] = batch.NewError(in.Video.VideoID, err)
			continue
		}
		rep, err := s.Ingest(ctx, in)
		if err != nil {
			results[i] = batch.NewError(in.Video.VideoID, err)
			continue
		}
		results[i] = batch.NewOK(in.Video.VideoID)
		reports[i] = rep
	}
	return results, reports
}

func (s *Service) validate(in Input) ([]transcript.Segment, error) {
	if strings.TrimSpace(in.Video.VideoID) == "" {
		return nil, fmt.Errorf("%w: video ID is required", domain.ErrInvalidInput)
	}
	if in.To > 0 && in.To <= in.From {
		return nil, fmt.Errorf("%w: clip end must be after start", domain.ErrInvalidInput)
	}
	segments := in.Segments
	if in.From > 0 || in.To > 0 {
		segments = transcript.Clip(segments, in.From, in.To)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: transcript has no segments", domain.ErrInvalidInput)
	}
	return segments, nil
}

// stage times fn, records the outcome and attributes its error to name.
func (s *Service) stage(name Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	observeStage(name, start, err)
	if err != nil {
		return &StageError{Stage: name, Err: err}
	}
	return nil
}

func observeStage(name Stage, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.IngestStageDuration.WithLabelValues(string(name), status).Observe(time.Since(start).Seconds())
}

// extract runs the extractor for every chunk on the worker pool. Results are
// written by chunk index. A failed chunk keeps empty semantic fields and is
// counted; only cancellation fails the stage.
func (s *Service) extract(ctx context.Context, log *zap.Logger, chunks []chunk.Chunk, meta video.Metadata) (int, error) {
	sems := make([]chunk.Semantic, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for i := range chunks {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		text := chunks[i].ChunkText
		err := s.pool.Submit(func() {
			defer wg.Done()
			sems[i], errs[i] = s.extractor.Extract(ctx, text, meta)
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("extraction cancelled: %w", err)
	}

	failures := 0
	for i := range chunks {
		if errs[i] != nil {
			failures++
			log.Warn("Chunk metadata extraction failed",
				zap.String("chunk_id", chunks[i].ID), zap.Error(errs[i]))
			chunks[i].ApplySemantic(chunk.Semantic{Keywords: []string{}})
			continue
		}
		chunks[i].ApplySemantic(sems[i])
	}
	metrics.ExtractionFailuresTotal.Add(float64(failures))
	return failures, nil
}

// embed fills every chunk's embedding from its FullText. Any failed item
// fails the stage, naming the chunk indexes.
func (s *Service) embed(ctx context.Context, chunks []chunk.Chunk) (int, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.FullText
	}

	res, err := s.embedder.BatchEmbed(ctx, texts)
	if failed := domain.FailedItems(err); len(failed) > 0 {
		return 0, fmt.Errorf("%w: chunks %v could not be embedded: %w", domain.ErrEmbeddingProviderError, failed, err)
	}
	if err != nil {
		return 0, fmt.Errorf("batch embed: %w", err)
	}
	if len(res.Embeddings) != len(chunks) {
		return 0, fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbeddingProviderError, len(res.Embeddings), len(chunks))
	}
	var missing []int
	for i, v := range res.Embeddings {
		if len(v) == 0 {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("%w: chunks %v have no vector", domain.ErrEmbeddingProviderError, missing)
	}
	for i := range chunks {
		chunks[i].Embedding = res.Embeddings[i]
	}
	return res.TotalTokens, nil
}

func (s *Service) persist(
	ctx context.Context,
	meta video.Metadata,
	segments []transcript.Segment,
	paragraphs []transcript.Paragraph,
	chunks []chunk.Chunk,
	corrected bool,
) (created bool, stale int, err error) {
	rec, err := transcript.NewRecord(meta.VideoID, segments, paragraphs, s.now())
	if err != nil {
		return false, 0, err //nolint:wrapcheck // validation sentinel
	}
	rec.VideoTitle = meta.Title
	rec.ServiceType = meta.ServiceType
	rec.ServiceDate = meta.ServiceDate
	rec.Corrected = corrected
	rec.ChunkCount = len(chunks)

	if err := s.chunks.Save(ctx, chunks); err != nil {
		return false, 0, fmt.Errorf("save chunks: %w", err)
	}
	created, err = s.transcripts.Save(ctx, &rec)
	if err != nil {
		return false, 0, fmt.Errorf("save transcript: %w", err)
	}
	stale, err = s.chunks.DeleteStale(ctx, meta.VideoID, len(chunks))
	if err != nil {
		return created, 0, fmt.Errorf("delete stale chunks: %w", err)
	}
	return created, stale, nil
}
