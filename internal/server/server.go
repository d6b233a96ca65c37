// Package server exposes the mindweave pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mindweave/mindweave/pkg/pipeline"
	"github.com/mindweave/mindweave/pkg/store"
)

// Server serves the mind map API. Maps are generated through the shared
// pipeline runner and persisted in the configured document store.
type Server struct {
	runner    *pipeline.Runner
	store     store.Store
	logger    *log.Logger
	generator pipeline.Generator
	apiKey    string
	baseURL   string
	http      *http.Server
}

// Config configures a Server.
type Config struct {
	Addr   string
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger

	// Generator overrides the content service client (used by tests).
	Generator pipeline.Generator

	// APIKey and BaseURL configure the default content service client
	// when no Generator is injected.
	APIKey  string
	BaseURL string
}

// New creates a server. Runner and Store are required; a nil logger falls
// back to the default logger.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	s := &Server{
		runner:    cfg.Runner,
		store:     cfg.Store,
		logger:    cfg.Logger,
		generator: cfg.Generator,
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/maps", func(r chi.Router) {
		r.Post("/", s.handleCreateMap)
		r.Get("/", s.handleListMaps)
		r.Get("/{id}", s.handleGetMap)
		r.Delete("/{id}", s.handleDeleteMap)
	})

	return r
}

// Run starts the server and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// logRequests logs one line per request after it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
