package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/domain/chunk"
	"github.com/kailas-cloud/sermondex/internal/domain/video"
)

const extractAttempts = 3

// Extractor pulls preacher, topic, verse and keywords out of a chunk.
type Extractor struct {
	model  llms.Model
	logger *zap.Logger
}

// NewExtractor creates an extractor over any llms.Model, usually a Chain.
func NewExtractor(model llms.Model, logger *zap.Logger) *Extractor {
	return &Extractor{model: model, logger: logger}
}

// extraction mirrors the JSON the model is asked for. Nullable fields come
// back as null from some models.
type extraction struct {
	Preacher    *string  `json:"preacher"`
	SermonTopic *string  `json:"sermon_topic"`
	BibleVerse  *string  `json:"bible_verse"`
	Keywords    []string `json:"keywords"`
}

// Extract asks the model for chunk metadata in JSON mode. A reply that does
// not parse is retried; a provider error is returned at once.
func (e *Extractor) Extract(ctx context.Context, text string, v video.Metadata) (chunk.Semantic, error) {
	prompt := fmt.Sprintf(extractionUserPrompt, videoContext(v), text)

	var lastErr error
	for attempt := 1; attempt <= extractAttempts; attempt++ {
		raw, err := generate(ctx, e.model, "extract", extractionSystemPrompt, prompt,
			llms.WithTemperature(0), llms.WithJSONMode())
		if err != nil {
			return chunk.Semantic{}, err
		}

		var out extraction
		if err := json.Unmarshal([]byte(cleanJSON(raw)), &out); err != nil {
			lastErr = err
			e.logger.Warn("Unparseable extraction reply",
				zap.Int("attempt", attempt), zap.String("video_id", v.VideoID), zap.Error(err))
			continue
		}
		return out.semantic(), nil
	}
	return chunk.Semantic{}, fmt.Errorf("extract: parse reply after %d attempts: %w", extractAttempts, lastErr)
}

func (x extraction) semantic() chunk.Semantic {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	kw := x.Keywords
	if kw == nil {
		kw = []string{}
	}
	return chunk.Semantic{
		Preacher:    deref(x.Preacher),
		SermonTopic: deref(x.SermonTopic),
		BibleVerse:  deref(x.BibleVerse),
		Keywords:    kw,
	}
}

func videoContext(v video.Metadata) string {
	var b strings.Builder
	if v.Title != "" {
		b.WriteString("\n영상 제목: " + v.Title)
	}
	if v.ServiceDate != "" {
		b.WriteString("\n예배 날짜: " + v.ServiceDate)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}
