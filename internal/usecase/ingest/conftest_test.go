package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/domain/chunk"
	"github.com/kailas-cloud/sermondex/internal/domain/transcript"
	"github.com/kailas-cloud/sermondex/internal/domain/video"
)

// --- Mocks ---

type fakeEmbedder struct {
	failIdx map[int]bool
	err     error
	texts   []string
}

func (f *fakeEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	f.texts = texts
	if f.err != nil {
		return domain.BatchEmbeddingResult{}, f.err
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	var errs []error
	for i, t := range texts {
		if f.failIdx[i] {
			errs = append(errs, &domain.ItemError{Index: i, Err: errors.New("rejected")})
			continue
		}
		out.Embeddings[i] = []float32{float32(len(t)), 1}
		out.TotalTokens += 3
	}
	return out, errors.Join(errs...)
}

type fakeChunkStore struct {
	saved      []chunk.Chunk
	saveErr    error
	staleVideo string
	staleKeep  int
	staleCount int
}

func (f *fakeChunkStore) Save(_ context.Context, chunks []chunk.Chunk) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, chunks...)
	return nil
}

func (f *fakeChunkStore) DeleteStale(_ context.Context, videoID string, keep int) (int, error) {
	f.staleVideo, f.staleKeep = videoID, keep
	return f.staleCount, nil
}

type fakeTranscriptStore struct {
	saved   []transcript.Record
	created bool
}

func (f *fakeTranscriptStore) Save(_ context.Context, rec *transcript.Record) (bool, error) {
	f.saved = append(f.saved, *rec)
	return f.created, nil
}

type fakeExtractor struct {
	mu    sync.Mutex
	calls int
	fail  func(text string) bool
}

func (f *fakeExtractor) Extract(_ context.Context, text string, v video.Metadata) (chunk.Semantic, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail != nil && f.fail(text) {
		return chunk.Semantic{}, errors.New("unparseable reply")
	}
	return chunk.Semantic{
		Preacher:    "김목사",
		SermonTopic: "사랑",
		BibleVerse:  "요한일서 4:8",
		Keywords:    []string{"사랑", v.ServiceType},
	}, nil
}

type fakeCorrector struct {
	got string
	out string
	err error
}

func (f *fakeCorrector) Correct(_ context.Context, text string) (string, error) {
	f.got = text
	return f.out, f.err
}

// sermonSegments are three sentences far enough apart to form three paragraphs.
func sermonSegments() []transcript.Segment {
	return []transcript.Segment{
		{Text: "[00:01] 하나님은 사랑이십니다.", OffsetMs: 0, DurationMs: 2000},
		{Text: "우리는 서로 사랑해야 합니다.", OffsetMs: 10000, DurationMs: 2500},
		{Text: "(아멘) 믿음과 소망과 사랑 중에 제일은 사랑이라.", OffsetMs: 20000, DurationMs: 3000},
	}
}

func sermonInput() Input {
	return Input{
		Video: video.Metadata{
			VideoID:    "vid1",
			Title:      "2024년 1월 7일 주일예배",
			UploadDate: "2024-01-08T10:00:00Z",
		},
		Segments: sermonSegments(),
	}
}

type harness struct {
	svc         *Service
	emb         *fakeEmbedder
	chunks      *fakeChunkStore
	transcripts *fakeTranscriptStore
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		emb:         &fakeEmbedder{},
		chunks:      &fakeChunkStore{},
		transcripts: &fakeTranscriptStore{created: true},
	}
	base := []Option{
		WithChunkOptions(chunk.Options{Size: 20, OverlapPercent: 20}),
		WithExtractionWorkers(2),
		WithLogger(zap.NewNop()),
		WithClock(func() time.Time { return time.UnixMilli(1_700_000_000_000) }),
	}
	svc, err := New(h.emb, h.chunks, h.transcripts, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	h.svc = svc
	return h
}

func stageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

func hasPrefix(s, p string) bool { return strings.HasPrefix(s, p) }
