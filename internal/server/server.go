// Package server serves the dashboard over HTTP: a JSON API for the
// computed views and a single HTML page rendering them.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/KaramelBytes/casedash/internal/analysis"
	"github.com/KaramelBytes/casedash/internal/dataset"
	"github.com/KaramelBytes/casedash/internal/geo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config holds server settings.
type Config struct {
	Addr         string
	FormAction   string
	NameField    string
	Options      analysis.Options
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server represents the dashboard HTTP server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  Config
}

// NewServer creates a server over already-loaded tables. boundary may be
// nil, in which case /api/geo answers 502.
func NewServer(cfg Config, legacy dataset.LegacyTable, summary dataset.SummaryTable, boundary geo.Source, version string) *Server {
	handler := NewHandler(legacy, summary, boundary, cfg, version)
	router := chi.NewRouter()

	router.Use(RecoverMiddleware)
	router.Use(RequestIDMiddleware)
	router.Use(TracingMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(middleware.RealIP)
	router.Use(middleware.Compress(5))

	router.Get("/health", handler.Health)
	router.Get("/", handler.Page)
	router.Route("/api", func(r chi.Router) {
		r.Get("/options", handler.Options)
		r.Get("/dashboard", handler.Dashboard)
		r.Get("/geo", handler.Geo)
	})

	read, write := cfg.ReadTimeout, cfg.WriteTimeout
	if read <= 0 {
		read = 30 * time.Second
	}
	if write <= 0 {
		// boundary fetches run inside the request
		write = 120 * time.Second
	}

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  read,
			WriteTimeout: write,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Start serves until Shutdown is called. It returns http.ErrServerClosed
// after a shutdown, even one that happened before Start.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
