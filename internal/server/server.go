// Package server exposes the portfolio assistant over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/analytics"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/config"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/domain"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/metrics"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/service"
)

const maxBodySize = 1 << 20 // 1MB

// Server wires the query service, conversation store and analytics behind
// the HTTP API.
type Server struct {
	cfg      config.ServerConfig
	queries  *service.QueryService
	memory   domain.ConversationStore
	tracker  *analytics.Tracker
	noExpose bool // when set, /metrics is not mounted
	logger   *slog.Logger
	server   *http.Server
}

type Config struct {
	Server         config.ServerConfig
	Queries        *service.QueryService
	Memory         domain.ConversationStore
	Tracker        *analytics.Tracker
	DisableMetrics bool
	Logger         *slog.Logger
}

func New(cfg Config) *Server {
	return &Server{
		cfg:      cfg.Server,
		queries:  cfg.Queries,
		memory:   cfg.Memory,
		tracker:  cfg.Tracker,
		noExpose: cfg.DisableMetrics,
		logger:   cfg.Logger,
	}
}

// Handler builds the full route table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/conversations/{id}", s.handleGetConversation)
	mux.HandleFunc("DELETE /api/conversations/{id}", s.handleDeleteConversation)
	mux.HandleFunc("GET /api/admin/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/admin/conversations", s.handleListConversations)
	mux.HandleFunc("GET /status", s.handleStatus)
	if !s.noExpose {
		mux.Handle("GET /metrics", metrics.Collector.Handler())
	}

	var h http.Handler = mux
	h = s.apiKeyMiddleware(h)
	h = s.corsMiddleware(h)
	return h
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      150 * time.Second, // allow time for LLM response
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	s.logger.Info("portfolio API started", "addr", addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop closes the server immediately.
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
