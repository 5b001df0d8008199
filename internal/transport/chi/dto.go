package chi

import (
	"github.com/kailas-cloud/sermondex/internal/domain/batch"
	"github.com/kailas-cloud/sermondex/internal/domain/chunk"
	"github.com/kailas-cloud/sermondex/internal/domain/search/request"
	"github.com/kailas-cloud/sermondex/internal/domain/search/result"
	"github.com/kailas-cloud/sermondex/internal/domain/transcript"
	answeruc "github.com/kailas-cloud/sermondex/internal/usecase/answer"
	ingestuc "github.com/kailas-cloud/sermondex/internal/usecase/ingest"
)

// IngestRequest is the body of POST /api/v1/transcripts. Exactly one of
// Segments and SRT must be set.
type IngestRequest struct {
	VideoID     string               `json:"video_id"`
	Title       string               `json:"title,omitempty"`
	ServiceType string               `json:"service_type,omitempty"`
	ServiceDate string               `json:"service_date,omitempty"`
	UploadDate  string               `json:"upload_date,omitempty"`
	Segments    []transcript.Segment `json:"segments,omitempty"`
	SRT         string               `json:"srt,omitempty"`
	From        string               `json:"from,omitempty"`
	To          string               `json:"to,omitempty"`
	Correct     bool                 `json:"correct,omitempty"`
}

// IngestResponse reports one ingestion run.
type IngestResponse struct {
	VideoID            string `json:"video_id"`
	Paragraphs         int    `json:"paragraphs"`
	Chunks             int    `json:"chunks"`
	Characters         int    `json:"characters"`
	ExtractionFailures int    `json:"extraction_failures"`
	EmbeddingTokens    int    `json:"embedding_tokens"`
	StaleRemoved       int    `json:"stale_removed"`
	Corrected          bool   `json:"corrected"`
	Created            bool   `json:"created"`
	DurationMs         int64  `json:"duration_ms"`
}

func reportToResponse(r ingestuc.Report) IngestResponse {
	return IngestResponse{
		VideoID:            r.VideoID,
		Paragraphs:         r.Paragraphs,
		Chunks:             r.Chunks,
		Characters:         r.Characters,
		ExtractionFailures: r.ExtractionFailures,
		EmbeddingTokens:    r.EmbeddingTokens,
		StaleRemoved:       r.StaleRemoved,
		Corrected:          r.Corrected,
		Created:            r.Created,
		DurationMs:         r.Duration.Milliseconds(),
	}
}

// TranscriptResponse is a stored transcript record.
type TranscriptResponse struct {
	VideoID     string                 `json:"video_id"`
	VideoTitle  string                 `json:"video_title"`
	ServiceType string                 `json:"service_type"`
	ServiceDate string                 `json:"service_date"`
	Segments    []transcript.Segment   `json:"segments"`
	Paragraphs  []transcript.Paragraph `json:"paragraphs"`
	Corrected   bool                   `json:"corrected"`
	ChunkCount  int                    `json:"chunk_count"`
	CreatedAt   int64                  `json:"created_at"`
	UpdatedAt   int64                  `json:"updated_at"`
}

func recordToResponse(r *transcript.Record) TranscriptResponse {
	return TranscriptResponse{
		VideoID:     r.VideoID,
		VideoTitle:  r.VideoTitle,
		ServiceType: r.ServiceType,
		ServiceDate: r.ServiceDate,
		Segments:    r.Segments,
		Paragraphs:  r.Paragraphs,
		Corrected:   r.Corrected,
		ChunkCount:  r.ChunkCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ChunkResponse is a stored chunk without its vector.
type ChunkResponse struct {
	ID        string            `json:"id"`
	ChunkText string            `json:"chunk_text"`
	FullText  string            `json:"full_text"`
	Metadata  map[string]string `json:"metadata"`
}

func chunkToResponse(c *chunk.Chunk) ChunkResponse {
	fields := c.Fields()
	delete(fields, chunk.FieldChunkText)
	delete(fields, chunk.FieldFullText)
	return ChunkResponse{ID: c.ID, ChunkText: c.ChunkText, FullText: c.FullText, Metadata: fields}
}

// SearchFilters narrows a sermon search.
type SearchFilters struct {
	ServiceType string `json:"service_type,omitempty"`
	DateFrom    string `json:"date_from,omitempty"`
	DateTo      string `json:"date_to,omitempty"`
	VideoID     string `json:"video_id,omitempty"`
}

func (f SearchFilters) toDomain() request.Filters {
	return request.Filters{
		ServiceType: f.ServiceType,
		DateFrom:    f.DateFrom,
		DateTo:      f.DateTo,
		VideoID:     f.VideoID,
	}
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query   string        `json:"query"`
	Mode    string        `json:"mode,omitempty"`
	TopK    int           `json:"top_k,omitempty"`
	Filters SearchFilters `json:"filters"`
}

// SearchResultItem is one fused hit.
type SearchResultItem struct {
	ID           string            `json:"id"`
	Text         string            `json:"text"`
	Score        float64           `json:"score"`
	VectorScore  float64           `json:"vector_score"`
	KeywordScore float64           `json:"keyword_score"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// SearchResponse wraps search hits.
type SearchResponse struct {
	Query   string             `json:"query"`
	Mode    string             `json:"mode"`
	Results []SearchResultItem `json:"results"`
}

func resultsToItems(rs []result.Result, textField string) []SearchResultItem {
	items := make([]SearchResultItem, len(rs))
	for i := range rs {
		r := &rs[i]
		meta := make(map[string]string, len(r.Fields()))
		for k, v := range r.Fields() {
			if k != textField {
				meta[k] = v
			}
		}
		items[i] = SearchResultItem{
			ID:           r.ID(),
			Text:         r.Text(),
			Score:        r.RRFScore(),
			VectorScore:  r.VectorScore(),
			KeywordScore: r.KeywordScore(),
			Metadata:     meta,
		}
	}
	return items
}

// LoadVersesResponse carries per-verse outcomes in input order.
type LoadVersesResponse struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []BatchResultItem `json:"items"`
}

// BatchResultItem is one verse outcome.
type BatchResultItem struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

func batchToResponse(results []batch.Result) LoadVersesResponse {
	sum := batch.Summarize(results)
	resp := LoadVersesResponse{Succeeded: sum.Succeeded, Failed: sum.Failed, Items: make([]BatchResultItem, len(results))}
	for i, r := range results {
		item := BatchResultItem{ID: r.ID(), Status: string(r.Status())}
		if r.Err() != nil {
			item.Error = &ErrorResponse{Code: errorCode(r.Err()), Message: safeDomainMessage(r.Err())}
		}
		resp.Items[i] = item
	}
	return resp
}

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Question string        `json:"question"`
	Filters  SearchFilters `json:"filters"`
}

// AskResponse is a generated answer with its sources.
type AskResponse struct {
	Question string             `json:"question"`
	Answer   string             `json:"answer"`
	Sources  []SearchResultItem `json:"sources"`
}

func answerToResponse(a *answeruc.Answer) AskResponse {
	return AskResponse{
		Question: a.Question,
		Answer:   a.Text,
		Sources:  resultsToItems(a.Sources, chunk.FieldChunkText),
	}
}

// HealthResponse is the aggregated health report.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
