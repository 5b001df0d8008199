package chi

import (
	"fmt"
	"net/http"
	"net/url"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists every API operation.
type ServerInterface interface {
	// (POST /api/v1/transcripts)
	IngestTranscript(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/transcripts/{videoID})
	GetTranscript(w http.ResponseWriter, r *http.Request, videoID string)
	// (GET /api/v1/chunks/{chunkID})
	GetChunk(w http.ResponseWriter, r *http.Request, chunkID string)
	// (GET /api/v1/search)
	SearchSermons(w http.ResponseWriter, r *http.Request, params SearchSermonsParams)
	// (POST /api/v1/search)
	SearchSermonsBody(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/bible/search)
	SearchVerses(w http.ResponseWriter, r *http.Request, params SearchVersesParams)
	// (POST /api/v1/bible/verses)
	LoadVerses(w http.ResponseWriter, r *http.Request)
	// (POST /api/v1/ask)
	Ask(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// SearchSermonsParams are the query parameters of GET /api/v1/search.
type SearchSermonsParams struct {
	Q           string  `form:"q" json:"q"`
	Mode        *string `form:"mode,omitempty" json:"mode,omitempty"`
	TopK        *int    `form:"top_k,omitempty" json:"top_k,omitempty"`
	ServiceType *string `form:"service_type,omitempty" json:"service_type,omitempty"`
	DateFrom    *string `form:"date_from,omitempty" json:"date_from,omitempty"`
	DateTo      *string `form:"date_to,omitempty" json:"date_to,omitempty"`
	VideoID     *string `form:"video_id,omitempty" json:"video_id,omitempty"`
}

// SearchVersesParams are the query parameters of GET /api/v1/bible/search.
type SearchVersesParams struct {
	Q         string  `form:"q" json:"q"`
	Mode      *string `form:"mode,omitempty" json:"mode,omitempty"`
	TopK      *int    `form:"top_k,omitempty" json:"top_k,omitempty"`
	Testament *string `form:"testament,omitempty" json:"testament,omitempty"`
}

// InvalidParamFormatError reports a parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       gochi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts si on the router in options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = gochi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := serverInterfaceWrapper{handler: si, errorHandler: options.ErrorHandlerFunc}

	r.Group(func(r gochi.Router) {
		r.Post(options.BaseURL+"/api/v1/transcripts", wrapper.IngestTranscript)
		r.Get(options.BaseURL+"/api/v1/transcripts/{videoID}", wrapper.GetTranscript)
		r.Get(options.BaseURL+"/api/v1/chunks/{chunkID}", wrapper.GetChunk)
		r.Get(options.BaseURL+"/api/v1/search", wrapper.SearchSermons)
		r.Post(options.BaseURL+"/api/v1/search", wrapper.SearchSermonsBody)
		r.Get(options.BaseURL+"/api/v1/bible/search", wrapper.SearchVerses)
		r.Post(options.BaseURL+"/api/v1/bible/verses", wrapper.LoadVerses)
		r.Post(options.BaseURL+"/api/v1/ask", wrapper.Ask)
		r.Get(options.BaseURL+"/health", wrapper.HealthCheck)
		r.Get(options.BaseURL+"/metrics", wrapper.Metrics)
	})
	return r
}

type serverInterfaceWrapper struct {
	handler      ServerInterface
	errorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) IngestTranscript(w http.ResponseWriter, r *http.Request) {
	siw.handler.IngestTranscript(w, r)
}

func (siw *serverInterfaceWrapper) GetTranscript(w http.ResponseWriter, r *http.Request) {
	var videoID string
	if !siw.bindPath(w, r, "videoID", &videoID) {
		return
	}
	siw.handler.GetTranscript(w, r, videoID)
}

func (siw *serverInterfaceWrapper) GetChunk(w http.ResponseWriter, r *http.Request) {
	var chunkID string
	if !siw.bindPath(w, r, "chunkID", &chunkID) {
		return
	}
	siw.handler.GetChunk(w, r, chunkID)
}

func (siw *serverInterfaceWrapper) SearchSermons(w http.ResponseWriter, r *http.Request) {
	var params SearchSermonsParams
	q := r.URL.Query()
	ok := siw.bindQuery(w, r, q, "q", true, &params.Q) &&
		siw.bindQuery(w, r, q, "mode", false, &params.Mode) &&
		siw.bindQuery(w, r, q, "top_k", false, &params.TopK) &&
		siw.bindQuery(w, r, q, "service_type", false, &params.ServiceType) &&
		siw.bindQuery(w, r, q, "date_from", false, &params.DateFrom) &&
		siw.bindQuery(w, r, q, "date_to", false, &params.DateTo) &&
		siw.bindQuery(w, r, q, "video_id", false, &params.VideoID)
	if !ok {
		return
	}
	siw.handler.SearchSermons(w, r, params)
}

func (siw *serverInterfaceWrapper) SearchSermonsBody(w http.ResponseWriter, r *http.Request) {
	siw.handler.SearchSermonsBody(w, r)
}

func (siw *serverInterfaceWrapper) SearchVerses(w http.ResponseWriter, r *http.Request) {
	var params SearchVersesParams
	q := r.URL.Query()
	ok := siw.bindQuery(w, r, q, "q", true, &params.Q) &&
		siw.bindQuery(w, r, q, "mode", false, &params.Mode) &&
		siw.bindQuery(w, r, q, "top_k", false, &params.TopK) &&
		siw.bindQuery(w, r, q, "testament", false, &params.Testament)
	if !ok {
		return
	}
	siw.handler.SearchVerses(w, r, params)
}

func (siw *serverInterfaceWrapper) LoadVerses(w http.ResponseWriter, r *http.Request) {
	siw.handler.LoadVerses(w, r)
}

func (siw *serverInterfaceWrapper) Ask(w http.ResponseWriter, r *http.Request) {
	siw.handler.Ask(w, r)
}

func (siw *serverInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.handler.HealthCheck(w, r)
}

func (siw *serverInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.handler.Metrics(w, r)
}

func (siw *serverInterfaceWrapper) bindPath(w http.ResponseWriter, r *http.Request, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, gochi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.errorHandler(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (siw *serverInterfaceWrapper) bindQuery(
	w http.ResponseWriter, r *http.Request, q url.Values, name string, required bool, dest any,
) bool {
	if err := runtime.BindQueryParameter("form", true, required, name, q, dest); err != nil {
		siw.errorHandler(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}
