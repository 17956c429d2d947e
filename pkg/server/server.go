package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/orbitgraph/pkg/buildinfo"
	"github.com/matzehuels/orbitgraph/pkg/network"
	"github.com/matzehuels/orbitgraph/pkg/pipeline"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 60 * time.Second

// maxBodyBytes caps POST bodies.
const maxBodyBytes = 32 << 20

// Config holds server configuration.
type Config struct {
	Addr    string
	Timeout time.Duration
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string
}

// Server serves a single network source.
type Server struct {
	cfg    Config
	src    network.Source
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server. A nil runner gets an uncached one; a nil logger
// discards output.
func New(cfg Config, src network.Source, runner *pipeline.Runner, logger *log.Logger) *Server {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{cfg: cfg, src: src, runner: runner, logger: logger}
	s.router = s.buildRouter()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Timeout))

	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{layoutIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"source":  network.NameOf(s.src),
			"version": buildinfo.Get().Version,
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/entities", s.handleEntities)
		r.Get("/entities/{id}", s.handleEntity)
		r.Get("/relationships", s.handleRelationships)
		r.Get("/stats", s.handleStats)
		r.Get("/time-range", s.handleTimeRange)
		r.Get("/layout", s.handleLayout)
		r.Post("/layout", s.handleLayoutSnapshot)
	})

	return r
}

// ListenAndServe serves on cfg.Addr until ctx ends, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Timeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr, "source", network.NameOf(s.src))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
