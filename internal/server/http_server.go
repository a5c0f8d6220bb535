package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/localrivet/clustersummary/internal/errortypes"
	"github.com/localrivet/clustersummary/internal/tools"
)

// maxRequestBytes bounds request bodies.
const maxRequestBytes = 4 << 20

// HTTPServer serves the tool operations as a JSON API.
type HTTPServer struct {
	deps     Dependencies
	addr     string
	handlers *Handlers
	srv      *http.Server
}

// NewHTTPServer creates an HTTPServer listening on addr once started.
func NewHTTPServer(addr string, deps Dependencies) *HTTPServer {
	return &HTTPServer{addr: addr, deps: deps}
}

// Initialize builds the routes.
func (s *HTTPServer) Initialize() error {
	handlers, err := NewHandlers(s.deps)
	if err != nil {
		return err
	}
	s.handlers = handlers
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Handler returns the API routes. Initialize must have been called.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /summarize", jsonHandler(s.handlers.SummarizeText))
	mux.HandleFunc("POST /summarize/sentences", jsonHandler(s.handlers.SummarizeSentences))
	mux.HandleFunc("POST /score", jsonHandler(s.handlers.ScoreSummary))
	mux.HandleFunc("POST /search", jsonHandler(s.handlers.SearchSummaries))
	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		resp, err := s.handlers.PipelineStats(r.Context(), tools.PipelineStatsRequest{Reset: r.URL.Query().Get("reset") == "true"})
		if err != nil {
			HandleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": tools.StatusSuccess})
	})
	return mux
}

// Start listens until Stop is called.
func (s *HTTPServer) Start() error {
	if s.srv == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}
	s.handlers.logger.Info("Starting HTTP server", "addr", s.addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errortypes.ExternalError(err, "http server failed").WithField("addr", s.addr)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *HTTPServer) Stop() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func jsonHandler[Req, Resp any](fn func(context.Context, Req) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			HandleError(w, decodeError(err))
			return
		}

		resp, err := fn(r.Context(), req)
		if err != nil {
			HandleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// decodeError maps a body decoding failure to its HTTP status.
func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return NewErrorWithStatus(err, http.StatusRequestEntityTooLarge, ErrorCodeRequestTooLarge, "Request body too large")
	}
	return NewErrorWithStatus(errortypes.ValidationError(err, "invalid JSON body"),
		http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid JSON body")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var _ ToolServer = (*HTTPServer)(nil)
