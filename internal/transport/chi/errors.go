package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/db"
	"github.com/kailas-cloud/sermondex/internal/domain"
	logpkg "github.com/kailas-cloud/sermondex/internal/logger"
	ingestuc "github.com/kailas-cloud/sermondex/internal/usecase/ingest"
)

// ErrorCode is the machine-readable error kind in every error body.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest                ErrorCode = "bad_request"
	CodeValidationFailed          ErrorCode = "validation_failed"
	CodeUnauthorized              ErrorCode = "unauthorized"
	CodeNotFound                  ErrorCode = "not_found"
	CodeVectorDimMismatch         ErrorCode = "vector_dim_mismatch"
	CodeEmbeddingProviderError    ErrorCode = "embedding_provider_error"
	CodeLLMProviderError          ErrorCode = "llm_provider_error"
	CodeLLMNotConfigured          ErrorCode = "llm_not_configured"
	CodeKeywordSearchNotSupported ErrorCode = "keyword_search_not_supported"
	CodeInternalError             ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Stage   string    `json:"stage,omitempty"`
}

// domainMapping ties a domain sentinel to its HTTP status and error code.
// Order matters only for errors wrapping several sentinels.
type domainMapping struct {
	sentinel error
	status   int
	code     ErrorCode
}

var domainMappings = []domainMapping{
	{domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrVectorDimMismatch, http.StatusBadRequest, CodeVectorDimMismatch},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError},
	{domain.ErrLLMProviderError, http.StatusBadGateway, CodeLLMProviderError},
	{domain.ErrKeywordSearchNotSupported, http.StatusNotImplemented, CodeKeywordSearchNotSupported},
}

func lookupMapping(err error) (domainMapping, bool) {
	for _, m := range domainMappings {
		if errors.Is(err, m.sentinel) {
			return m, true
		}
	}
	return domainMapping{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage is what the client sees. Validation errors keep their
// detail since it only describes the caller's input; everything else is
// reduced to the sentinel text.
func safeDomainMessage(err error) string {
	m, ok := lookupMapping(err)
	switch {
	case !ok:
		return "internal error"
	case m.sentinel == domain.ErrInvalidInput: //nolint:errorlint // comparing table entries
		return err.Error()
	default:
		return m.sentinel.Error()
	}
}

// errorCode maps err onto a code without writing a response; used for
// per-item batch results.
func errorCode(err error) ErrorCode {
	if m, ok := lookupMapping(err); ok {
		return m.code
	}
	return CodeInternalError
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.From(r.Context(), s.logger)
	resp := ErrorResponse{Message: safeDomainMessage(err)}
	var se *ingestuc.StageError
	if errors.As(err, &se) {
		resp.Stage = string(se.Stage)
	}

	m, ok := lookupMapping(err)
	if !ok {
		fields := []zap.Field{zap.Error(err)}
		if op, ok := db.FailedOp(err); ok {
			fields = append(fields, zap.String("db_op", string(op)))
		}
		log.Error("internal error", fields...)
		resp.Code = CodeInternalError
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	log.Warn("request failed", zap.String("code", string(m.code)), zap.Error(err))
	resp.Code = m.code
	writeJSON(w, m.status, resp)
}
