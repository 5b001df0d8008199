package chunk

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/domain/transcript"
	"github.com/kailas-cloud/sermondex/internal/domain/video"
)

var testVideo = video.Metadata{
	VideoID:     "vid123",
	Title:       "주일예배",
	ServiceType: "주일예배",
	ServiceDate: "2024-01-07",
}

func TestSplit_TwoShortParagraphsMakeOneChunk(t *testing.T) {
	paras := []transcript.Paragraph{
		{Text: "하나님은 사랑이시다.", StartOffsetMs: 0, EndOffsetMs: 1000},
		{Text: "우리를 사랑하사.", StartOffsetMs: 1500, EndOffsetMs: 2500},
	}
	chunks, err := Split(paras, testVideo, Options{Size: 500, OverlapPercent: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.ID != "vid123_0" {
		t.Errorf("expected ID vid123_0, got %q", c.ID)
	}
	if c.ChunkText != "하나님은 사랑이시다. 우리를 사랑하사." {
		t.Errorf("unexpected chunk text %q", c.ChunkText)
	}
	m := c.Metadata
	if m.ChunkIndex != 0 || m.StartChar != 0 || m.EndChar != 22 {
		t.Errorf("unexpected positions: index=%d start=%d end=%d", m.ChunkIndex, m.StartChar, m.EndChar)
	}
	if m.StartTime != 0 || m.EndTime != 2500 {
		t.Errorf("unexpected times: %d..%d", m.StartTime, m.EndTime)
	}
	if c.FullText != "[날짜: 2024-01-07] [주일예배] [주일예배] "+c.ChunkText {
		t.Errorf("unexpected full text %q", c.FullText)
	}
	if c.Embedding != nil {
		t.Error("expected nil embedding")
	}
}

func TestSplit_ExactOffsets(t *testing.T) {
	paras := []transcript.Paragraph{
		{Text: "abcdef", StartOffsetMs: 0, EndOffsetMs: 100},
		{Text: "ghij", StartOffsetMs: 200, EndOffsetMs: 300},
		{Text: "klmnop", StartOffsetMs: 400, EndOffsetMs: 500},
	}
	chunks, err := Split(paras, video.Metadata{VideoID: "v"}, Options{Size: 10, OverlapPercent: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		text               string
		startChar, endChar int
		startTime, endTime int64
	}{
		{"abcdef", 0, 7, 0, 200},
		{"bcdef ghij", 2, 13, 200, 400},
		{"ghij klmnop", 8, 21, 400, 500},
	}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		c := chunks[i]
		m := c.Metadata
		if c.ChunkText != w.text {
			t.Errorf("chunk %d text = %q, want %q", i, c.ChunkText, w.text)
		}
		if m.StartChar != w.startChar || m.EndChar != w.endChar {
			t.Errorf("chunk %d chars = %d..%d, want %d..%d", i, m.StartChar, m.EndChar, w.startChar, w.endChar)
		}
		if m.StartTime != w.startTime || m.EndTime != w.endTime {
			t.Errorf("chunk %d times = %d..%d, want %d..%d", i, m.StartTime, m.EndTime, w.startTime, w.endTime)
		}
		if c.FullText != " "+w.text {
			t.Errorf("chunk %d full text = %q", i, c.FullText)
		}
	}
}

func TestSplit_Properties(t *testing.T) {
	var paras []transcript.Paragraph
	for i := range 60 {
		text := fmt.Sprintf("문단%02d ", i) + strings.Repeat("은혜와 평강", 1+i%6)
		paras = append(paras, transcript.Paragraph{
			Text:          text,
			StartOffsetMs: int64(i) * 3000,
			EndOffsetMs:   int64(i)*3000 + 2500,
		})
	}
	opts := Options{Size: 200, OverlapPercent: 20}
	overlap := opts.OverlapSize()

	chunks, err := Split(paras, testVideo, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		m := c.Metadata
		if m.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, m.ChunkIndex)
		}
		if c.ID != ID(testVideo.VideoID, i) {
			t.Errorf("chunk %d has id %q", i, c.ID)
		}
		if strings.TrimSpace(c.ChunkText) == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if i < len(chunks)-1 {
			if n := utf8.RuneCountInString(c.ChunkText); n > opts.Size+overlap {
				t.Errorf("chunk %d has %d runes, bound is %d", i, n, opts.Size+overlap)
			}
		}
		if i == 0 {
			continue
		}
		prev := chunks[i-1]
		seed := strings.TrimSpace(lastRunes(prev.ChunkText, overlap))
		if !strings.HasPrefix(c.ChunkText, seed) {
			t.Errorf("chunk %d does not start with tail of chunk %d: %q", i, i-1, seed)
		}
		if m.StartChar < prev.Metadata.StartChar || m.EndChar < prev.Metadata.EndChar {
			t.Errorf("chunk %d positions decrease", i)
		}
		if m.StartChar != prev.Metadata.EndChar-overlap {
			t.Errorf("chunk %d startChar = %d, want %d", i, m.StartChar, prev.Metadata.EndChar-overlap)
		}
		if prev.Metadata.EndTime != m.StartTime {
			t.Errorf("chunk %d starts at %d, previous ended at %d", i, m.StartTime, prev.Metadata.EndTime)
		}
	}
	if last := chunks[len(chunks)-1]; last.Metadata.EndTime != paras[len(paras)-1].EndOffsetMs {
		t.Errorf("last chunk ends at %d, want %d", last.Metadata.EndTime, paras[len(paras)-1].EndOffsetMs)
	}
}

func TestSplit_OversizedParagraphStaysWhole(t *testing.T) {
	chunks, err := Split([]transcript.Paragraph{{Text: "abcdefghij", EndOffsetMs: 10}}, testVideo, Options{Size: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].ChunkText != "abcdefghij" {
		t.Errorf("unexpected chunks: %+v", chunks)
	}
}

func TestSplit_ZeroOverlap(t *testing.T) {
	paras := []transcript.Paragraph{{Text: "aaaa"}, {Text: "bbbb"}, {Text: "cccc"}}
	chunks, err := Split(paras, testVideo, Options{Size: 5, OverlapPercent: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[1].ChunkText != "bbbb" {
		t.Errorf("expected no carried text, got %q", chunks[1].ChunkText)
	}
}

func TestSplit_SkipsBlankParagraphs(t *testing.T) {
	chunks, err := Split([]transcript.Paragraph{{Text: "  "}, {Text: ""}}, testVideo, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestSplit_InvalidOptions(t *testing.T) {
	for _, opts := range []Options{
		{Size: 0, OverlapPercent: 20},
		{Size: -10, OverlapPercent: 20},
		{Size: 500, OverlapPercent: 100},
		{Size: 500, OverlapPercent: -1},
	} {
		chunks, err := Split([]transcript.Paragraph{{Text: "x"}}, testVideo, opts)
		if !errors.Is(err, ErrInvalidOptions) || !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("opts %+v: expected ErrInvalidOptions, got %v", opts, err)
		}
		if chunks != nil {
			t.Errorf("opts %+v: expected no output", opts)
		}
	}
}

func TestOptions_OverlapSize(t *testing.T) {
	if got := DefaultOptions().OverlapSize(); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}
	if got := (Options{Size: 333, OverlapPercent: 10}).OverlapSize(); got != 33 {
		t.Errorf("expected floor 33, got %d", got)
	}
}
