package chi

import (
	"net/http"
	"time"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/sermondex/internal/logger"
	"github.com/kailas-cloud/sermondex/internal/metrics"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	APIKeys      []string
	MaxBodyBytes int64
}

// NewRouter mounts the API with recovery, request ids, wide-event logging,
// auth and metrics middleware.
func NewRouter(server ServerInterface, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(metrics.Middleware())
	if cfg.MaxBodyBytes > 0 {
		r.Use(chiMiddleware.RequestSize(cfg.MaxBodyBytes))
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	return HandlerWithOptions(server, ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: ParamErrorHandler,
	})
}

// jsonRecoverer turns handler panics into a JSON 500. http.ErrAbortHandler
// is re-raised so net/http can abort the connection quietly.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
					panic(rvr)
				}
				logpkg.From(r.Context(), logger).Error("Handler panicked",
					zap.Any("panic", rvr),
					zap.String("route", routeOf(r)),
					zap.Stack("stacktrace"))
				writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware writes one summary line per request, echoes the
// request id and hands a request-scoped logger to the handlers.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := chiMiddleware.GetReqID(r.Context())
			if reqID != "" {
				w.Header().Set(chiMiddleware.RequestIDHeader, reqID)
			}
			reqLog := logger.With(zap.String("request_id", reqID))

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logpkg.Into(r.Context(), reqLog)))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("route", routeOf(r)),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.Int64("request_bytes", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.String("remote", r.RemoteAddr),
			}
			if tokens := ww.Header().Get(embeddingTokensHeader); tokens != "" {
				fields = append(fields, zap.String("embedding_tokens", tokens))
			}
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				reqLog.Error("http_request", fields...)
			default:
				reqLog.Info("http_request", fields...)
			}
		})
	}
}

// routeOf returns the matched chi pattern, or the raw path for unmatched requests.
func routeOf(r *http.Request) string {
	if rctx := gochi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
