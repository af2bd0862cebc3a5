// Package server provides the HTTP API for Susume.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/susume/internal/config"
	"github.com/hyperjump/susume/internal/recommend"
	"github.com/hyperjump/susume/internal/storage"
)

// Server is the HTTP server for the Susume API.
type Server struct {
	engine  *recommend.Engine
	storage storage.Storage
	cfg     *config.Config
	logger  *zap.Logger
	// reload rebuilds the engine from the catalog store; wired by main so
	// the server does not own build policy.
	reload func(ctx context.Context) error
	server *http.Server
}

// NewServer creates a server with the given dependencies. reload may be nil,
// in which case the catalog reload endpoint returns 501.
func NewServer(
	engine *recommend.Engine,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
	reload func(ctx context.Context) error,
) *Server {
	return &Server{
		engine:  engine,
		storage: store,
		cfg:     cfg,
		logger:  logger,
		reload:  reload,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/recommend", s.handleRecommend)
	r.Get("/api/v1/items", s.handleListItems)
	r.Get("/api/v1/items/{id}", s.handleGetItem)
	r.Post("/api/v1/catalog/reload", s.handleCatalogReload)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
