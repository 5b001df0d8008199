// Package chi serves the sermondex HTTP API on a chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/domain/batch"
	"github.com/kailas-cloud/sermondex/internal/domain/bible"
	"github.com/kailas-cloud/sermondex/internal/domain/chunk"
	"github.com/kailas-cloud/sermondex/internal/domain/search/mode"
	"github.com/kailas-cloud/sermondex/internal/domain/search/request"
	"github.com/kailas-cloud/sermondex/internal/domain/search/result"
	"github.com/kailas-cloud/sermondex/internal/domain/transcript"
	"github.com/kailas-cloud/sermondex/internal/domain/video"
	answeruc "github.com/kailas-cloud/sermondex/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/sermondex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/sermondex/internal/usecase/ingest"
)

// Ingester runs the ingestion pipeline.
type Ingester interface {
	Ingest(ctx context.Context, in ingestuc.Input) (ingestuc.Report, error)
}

// TranscriptReader reads stored transcripts.
type TranscriptReader interface {
	Get(ctx context.Context, videoID string) (transcript.Record, error)
}

// ChunkReader reads stored chunks.
type ChunkReader interface {
	Get(ctx context.Context, id string) (chunk.Chunk, error)
}

// Searcher runs hybrid search over either corpus.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}

// VerseLoader upserts verses.
type VerseLoader interface {
	Load(ctx context.Context, verses []bible.Verse) ([]batch.Result, error)
}

// Asker answers questions from retrieved context.
type Asker interface {
	Ask(ctx context.Context, question string, filters request.Filters) (answeruc.Answer, error)
}

// HealthReporter aggregates component checks.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// Services groups the handlers' dependencies. Answer may be nil.
type Services struct {
	Ingest      Ingester
	Transcripts TranscriptReader
	Chunks      ChunkReader
	Search      Searcher
	Verses      VerseLoader
	Answer      Asker
	Health      HealthReporter
}

// Server implements ServerInterface.
type Server struct {
	svc    Services
	logger *zap.Logger
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, logger: logger}
}

// IngestTranscript handles POST /api/v1/transcripts.
func (s *Server) IngestTranscript(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	in, err := ingestInput(&req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rep, err := s.svc.Ingest.Ingest(r.Context(), in)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set(embeddingTokensHeader, strconv.Itoa(rep.EmbeddingTokens))
	status := http.StatusOK
	if rep.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, reportToResponse(rep))
}

func ingestInput(req *IngestRequest) (ingestuc.Input, error) {
	in := ingestuc.Input{
		Video: video.Metadata{
			VideoID:     req.VideoID,
			Title:       req.Title,
			ServiceType: req.ServiceType,
			ServiceDate: req.ServiceDate,
			UploadDate:  req.UploadDate,
		},
		Segments: req.Segments,
		Correct:  req.Correct,
	}

	switch {
	case req.SRT != "" && len(req.Segments) > 0:
		return in, fmt.Errorf("%w: send segments or srt, not both", domain.ErrInvalidInput)
	case req.SRT != "":
		segs, err := transcript.ParseSRT(req.SRT)
		if err != nil {
			return in, err //nolint:wrapcheck // validation sentinel
		}
		in.Segments = segs
	}

	var err error
	if req.From != "" {
		if in.From, err = transcript.ParseTimecode(req.From); err != nil {
			return in, fmt.Errorf("from: %w", err)
		}
	}
	if req.To != "" {
		if in.To, err = transcript.ParseTimecode(req.To); err != nil {
			return in, fmt.Errorf("to: %w", err)
		}
	}
	return in, nil
}

// GetTranscript handles GET /api/v1/transcripts/{videoID}.
func (s *Server) GetTranscript(w http.ResponseWriter, r *http.Request, videoID string) {
	rec, err := s.svc.Transcripts.Get(r.Context(), videoID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(&rec))
}

// GetChunk handles GET /api/v1/chunks/{chunkID}.
func (s *Server) GetChunk(w http.ResponseWriter, r *http.Request, chunkID string) {
	c, err := s.svc.Chunks.Get(r.Context(), chunkID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chunkToResponse(&c))
}

// SearchSermons handles GET /api/v1/search.
func (s *Server) SearchSermons(w http.ResponseWriter, r *http.Request, params SearchSermonsParams) {
	filters := request.Filters{
		ServiceType: deref(params.ServiceType),
		DateFrom:    deref(params.DateFrom),
		DateTo:      deref(params.DateTo),
		VideoID:     deref(params.VideoID),
	}
	s.search(w, r, request.Sermons, params.Q, deref(params.Mode), filters, derefInt(params.TopK))
}

// SearchSermonsBody handles POST /api/v1/search.
func (s *Server) SearchSermonsBody(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.search(w, r, request.Sermons, req.Query, req.Mode, req.Filters.toDomain(), req.TopK)
}

// SearchVerses handles GET /api/v1/bible/search.
func (s *Server) SearchVerses(w http.ResponseWriter, r *http.Request, params SearchVersesParams) {
	filters := request.Filters{Testament: deref(params.Testament)}
	s.search(w, r, request.Verses, params.Q, deref(params.Mode), filters, derefInt(params.TopK))
}

func (s *Server) search(
	w http.ResponseWriter, r *http.Request,
	corpus request.Corpus, query, m string, filters request.Filters, topK int,
) {
	req, err := request.New(corpus, query, mode.Mode(m), filters, topK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.svc.Search.Search(ctx, &req)
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	textField := chunk.FieldChunkText
	if corpus == request.Verses {
		textField = bible.FieldText
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   req.Query(),
		Mode:    string(req.Mode()),
		Results: resultsToItems(results, textField),
	})
}

// LoadVerses handles POST /api/v1/bible/verses.
func (s *Server) LoadVerses(w http.ResponseWriter, r *http.Request) {
	var verses []bible.Verse
	if err := json.NewDecoder(r.Body).Decode(&verses); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(verses) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "at least one verse is required")
		return
	}

	results, err := s.svc.Verses.Load(r.Context(), verses)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batchToResponse(results))
}

// Ask handles POST /api/v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	if s.svc.Answer == nil {
		writeError(w, http.StatusNotImplemented, CodeLLMNotConfigured, "no language model configured")
		return
	}
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	ans, err := s.svc.Answer.Ask(ctx, req.Question, req.Filters.toDomain())
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerToResponse(&ans))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ParamErrorHandler renders binding failures as a JSON 400.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	msg := "invalid request"
	var pe *InvalidParamFormatError
	if errors.As(err, &pe) {
		msg = "invalid parameter " + pe.ParamName
	}
	writeError(w, http.StatusBadRequest, CodeBadRequest, msg)
}

// embeddingTokensHeader reports the embedding tokens a request consumed.
const embeddingTokensHeader = "X-Embedding-Tokens"

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set(embeddingTokensHeader, strconv.Itoa(usage.Tokens()))
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
