package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/binary-blog/internal/metrics"
	"github.com/JakeFAU/binary-blog/internal/resolver"
	"github.com/JakeFAU/binary-blog/internal/telemetry"
)

// ReservedRoutes are the top-level names owned by operational endpoints.
// Content may not use them.
var ReservedRoutes = []string{"healthz", "readyz", "metrics"}

// Resolver answers content requests.
type Resolver interface {
	Resolve(req resolver.Request) resolver.Response
	NotFound(req resolver.Request) resolver.Response
}

// Options configures NewServer.
type Options struct {
	MetricsEnabled bool
	// RequestTimeout bounds every handler. Zero disables the limit.
	RequestTimeout time.Duration
	// TracerProvider enables request spans when set.
	TracerProvider trace.TracerProvider
}

// Server wires HTTP handlers to the content resolver.
type Server struct {
	router   chi.Router
	resolver Resolver
	logger   *zap.Logger
	metrics  bool
	ready    atomic.Bool
}

// NewServer constructs a Server with middleware and routes.
func NewServer(res Resolver, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		resolver: res,
		logger:   logger,
		metrics:  opts.MetricsEnabled,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	if opts.TracerProvider != nil {
		r.Use(telemetry.Middleware(opts.TracerProvider))
	}
	if opts.MetricsEnabled {
		metrics.Init()
		r.Use(metrics.Middleware)
	}
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	if opts.RequestTimeout > 0 {
		r.Use(timeoutMiddleware(opts.RequestTimeout))
	}
	r.Use(chimiddleware.GetHead)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	if opts.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Get("/", s.content)
	r.Get("/{a}", s.content)
	r.Get("/{a}/", s.content)
	r.Get("/{a}/*", s.content)
	r.NotFound(s.notFound)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetReady flips the readiness probe.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) content(w http.ResponseWriter, r *http.Request) {
	req := requestFrom(r)
	req.Segment0 = chi.URLParam(r, "a")
	rest := chi.URLParam(r, "*")
	req.Segment1 = strings.TrimSuffix(rest, "/")
	if rest != "" && (req.Segment1 == "" || strings.HasPrefix(req.Segment1, "/") || strings.Contains(req.Segment1, "//")) {
		s.notFound(w, r)
		return
	}
	s.write(w, r, s.resolver.Resolve(req))
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, s.resolver.NotFound(requestFrom(r)))
}

// requestFrom copies the negotiation headers of r.
func requestFrom(r *http.Request) resolver.Request {
	return resolver.Request{
		TrailingSlash:  strings.HasSuffix(r.URL.Path, "/"),
		Accept:         r.Header.Get("Accept"),
		AcceptEncoding: r.Header.Get("Accept-Encoding"),
		IfNoneMatch:    r.Header.Get("If-None-Match"),
	}
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, resp resolver.Response) {
	outcome := string(resp.Outcome)
	if s.metrics {
		metrics.ObserveResponse(outcome)
	}
	telemetry.Annotate(r.Context(), outcome)
	h := w.Header()
	for k, v := range resp.Header {
		h[k] = v
	}
	w.WriteHeader(resp.Status)
	if len(resp.Body) == 0 {
		return
	}
	if _, err := w.Write(resp.Body); err != nil {
		s.logger.Debug("write response failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}
