// Package server serves a directory of static files (including .wasm
// modules) and, optionally, live summaries of one simulation log.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/ja7ad/cachevis/pkg/logparse"
	"github.com/ja7ad/cachevis/pkg/report"
	"github.com/ja7ad/cachevis/pkg/summary"
	"github.com/ja7ad/cachevis/pkg/watch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func init() {
	_ = mime.AddExtensionType(".wasm", "application/wasm")
}

// Server is the static file server.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	metrics  Metrics
	registry *prometheus.Registry
	source   *logSource
	handler  http.Handler
}

// New builds a Server with a private Prometheus registry. A nil logger uses slog.Default().
func New(cfg *Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		cfg:      *cfg,
		logger:   logger,
		registry: reg,
		metrics:  NewPromMetrics(reg, "cachevis", "server", nil),
	}
	if cfg.LogPath != "" {
		s.source = newLogSource(cfg.LogPath, s.metrics)
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /", s.instrument("static", http.FileServer(http.Dir(s.cfg.Root))))
	mux.Handle("GET /health", s.instrument("health", http.HandlerFunc(s.healthHandler)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.Handle("GET /api/groups", s.instrument("groups", s.logHandler(report.FormatJSON, "application/json")))
	mux.Handle("GET /report", s.instrument("report", s.logHandler(report.FormatHTML, "text/html; charset=utf-8")))
	return mux
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("health check", "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// logHandler renders the watched log in format f, filtered by ?write_policy=.
func (s *Server) logHandler(f report.Format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.source == nil {
			http.Error(w, "no log file configured", http.StatusNotFound)
			return
		}
		filter, err := summary.ParseWritePolicy(r.URL.Query().Get("write_policy"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		snap, err := s.source.Load()
		if err != nil {
			s.logger.Error("load log", "path", s.cfg.LogPath, "err", err)
			code := http.StatusInternalServerError
			if errors.Is(err, logparse.ErrMalformedNumericField) {
				code = http.StatusUnprocessableEntity
			}
			http.Error(w, err.Error(), code)
			return
		}

		etag := snap.etag(string(f) + "/" + string(filter))
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		var buf bytes.Buffer
		if err := report.Write(&buf, f, report.Data{Source: s.cfg.LogPath, Groups: snap.groups, Filter: filter}); err != nil {
			s.logger.Error("render log", "format", f, "err", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(buf.Bytes())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument logs each request and counts it under route.
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.Request(route, rec.code)
		s.logger.Debug("request",
			"method", r.Method, "path", r.URL.Path, "code", rec.code,
			"duration", time.Since(start), "remote_addr", r.RemoteAddr)
	})
}

// Run listens on cfg.Addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
// When a log file is configured it is watched and re-parsed on change.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var w *watch.Watcher
	if s.source != nil {
		var err error
		if w, err = watch.New(s.cfg.LogPath, s.cfg.Debounce); err != nil {
			s.logger.Warn("log watcher disabled", "path", s.cfg.LogPath, "err", err)
			w = nil
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	if w != nil {
		g.Go(func() error {
			defer w.Close()
			return s.watchLoop(ctx, w)
		})
	}

	g.Go(func() error {
		s.logger.Info("serving", "address", ln.Addr().String(), "root", s.cfg.Root, "log", s.cfg.LogPath)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) watchLoop(ctx context.Context, w *watch.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Events():
			if !ok {
				return nil
			}
			s.source.Invalidate()
			s.logger.Info("log changed", "path", w.Path())
		case err := <-w.Errors():
			s.logger.Warn("watch error", "err", err)
		}
	}
}
