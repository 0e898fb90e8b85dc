// Package router adapts julienschmidt/httprouter to handlers that return a
// payload or an error, and renders both into the service's JSON envelope.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/cybershield/internal/pkg/config"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
	"github.com/shandysiswandi/cybershield/internal/pkg/uid"
	"github.com/shandysiswandi/cybershield/internal/pkg/validator"
)

type errorResponse struct {
	OK      bool              `json:"ok"`
	Reason  string            `json:"reason"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type successResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Handler is the application-style handler used by this router.
//
// It returns a response payload (that will be JSON encoded) or an error.
type Handler func(r *Request) (any, error)

// Config holds dependencies required to build a Router.
type Config struct {
	// Config provides runtime configuration values.
	Config config.Config
	// UUID generates request correlation IDs.
	UUID uid.StringID
	// Instrument provides tracing and metrics helpers.
	Instrument instrument.Instrumentation
	// Name is reported by the root endpoint.
	Name string
}

// Router is an http.Handler that wraps httprouter and a middleware chain.
type Router struct {
	hr  *httprouter.Router
	mws []Middleware
}

// NewRouter builds the default application router with standard middleware.
func NewRouter(cfg Config) *Router {
	if cfg.Instrument == nil {
		cfg.Instrument = instrument.NewNoop()
	}

	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Reason: "NOT_FOUND", Message: "endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Reason: "METHOD_NOT_ALLOWED", Message: "method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	ro := &Router{
		hr: hr,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareIP,
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(cfg.Instrument),
			middlewareMaintenance(cfg.Config),
		},
	}

	welcome := "Welcome to " + cfg.Name
	ro.GET("/", func(*Request) (any, error) { return message(welcome), nil })
	ro.GET("/health", func(*Request) (any, error) { return message("ok"), nil })

	return ro
}

type message string

func (m message) Message() string { return string(m) }

// GET registers a GET endpoint using the application Handler signature.
func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

// POST registers a POST endpoint using the application Handler signature.
func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	r.hr.Handler(method, path, Chain(http.HandlerFunc(func(w http.ResponseWriter, re *http.Request) {
		resp, err := h(&Request{Request: re})
		if err != nil {
			if setter, ok := w.(interface{ SetError(error) }); ok {
				setter.SetError(err)
			}
			writeError(re.Context(), w, err)
			return
		}
		writeOK(w, resp)
	}), append(r.mws, mws...)...))
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "unclassified handler error", "error", err)
		writeJSON(w, errorResponse{Reason: goerror.CodeInternal.String(), Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Reason: gerr.Code().String(), Message: gerr.Msg()}

	var errValidate validator.V10ValidationError
	if errors.As(err, &errValidate) {
		resp.Fields = errValidate.Values()
	} else if len(gerr.Fields()) > 0 {
		resp.Fields = gerr.Fields()
	}

	writeJSON(w, resp, gerr.StatusCode())
}

func writeOK(w http.ResponseWriter, resp any) {
	code := http.StatusOK
	if sc, ok := resp.(interface{ StatusCode() int }); ok {
		code = sc.StatusCode()
	}

	msg := "request has been successfully"
	if m, ok := resp.(interface{ Message() string }); ok {
		msg = m.Message()
		if _, isMsg := resp.(message); isMsg {
			resp = nil
		}
	}

	writeJSON(w, successResponse{OK: true, Message: msg, Data: resp}, code)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("server: failed to encode data to json", "error", err)
	}
}
