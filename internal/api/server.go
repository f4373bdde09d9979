// Package api serves the issueflow engine over JSON/HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/alexanderramin/issueflow/internal/app"
)

const maxBodyBytes = 1 << 20

// Server is the HTTP API server.
type Server struct {
	svc             *app.Services
	logger          *slog.Logger
	addr            string
	shutdownTimeout time.Duration
	startTime       time.Time
	httpServer      *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithShutdownTimeout bounds graceful shutdown once the context ends.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// NewServer creates a new API server.
func NewServer(svc *app.Services, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		svc:             svc,
		logger:          logger,
		addr:            ":8080",
		shutdownTimeout: 5 * time.Second,
		startTime:       time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /link", s.handleLink)
	mux.HandleFunc("POST /unlink", s.handleUnlink)
	mux.HandleFunc("POST /reparent", s.handleReparent)
	mux.HandleFunc("GET /hierarchy/{issueID}", s.handleHierarchy)
	mux.HandleFunc("POST /subtask", s.handleSubtask)

	mux.HandleFunc("POST /issue", s.handleCreateIssue)
	mux.HandleFunc("GET /issue/{issueID}", s.handleGetIssue)
	mux.HandleFunc("PATCH /issue/{issueID}", s.handleUpdateIssue)
	mux.HandleFunc("DELETE /issue/{issueID}", s.handleDeleteIssue)
	mux.HandleFunc("GET /issue/{issueID}/transitions", s.handleDropTargets)

	mux.HandleFunc("GET /project", s.handleListProjects)
	mux.HandleFunc("POST /project", s.handleCreateProject)
	mux.HandleFunc("GET /project/{projectID}/issues", s.handleListIssues)
	mux.HandleFunc("GET /projectConfig/{projectID}", s.handleGetConfig)
	mux.HandleFunc("PUT /projectConfig/{projectID}", s.handleReplaceConfig)
	mux.HandleFunc("GET /board/{projectID}", s.handleBoard)

	return s.logRequests(mux)
}

// Start begins listening on the configured address. Blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutCtx); err != nil {
			s.logger.Warn("api shutdown", "error", err)
		}
	}()

	s.logger.Info("api server starting", "addr", s.addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(startedAt).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decodeBody reads a JSON body into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
