package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ebarrios-ai/trivium/internal/application/orchestrator"
	"github.com/ebarrios-ai/trivium/internal/application/workers"
	"github.com/ebarrios-ai/trivium/pkg/api/websocket"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP API server
type Server struct {
	router       *gin.Engine
	server       *http.Server
	orchestrator *orchestrator.Manager
	pool         *workers.Pool
	history      ports.HistoryStore
	ws           *websocket.Handler
	logger       *zap.Logger
}

// Config holds HTTP server configuration
type Config struct {
	Port         int
	Orchestrator *orchestrator.Manager
	Pool         *workers.Pool
	History      ports.HistoryStore
	WebSocket    *websocket.Handler
	Logger       *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Logger))
	router.Use(corsMiddleware())

	s := &Server{
		router:       router,
		orchestrator: cfg.Orchestrator,
		pool:         cfg.Pool,
		history:      cfg.History,
		ws:           cfg.WebSocket,
		logger:       cfg.Logger,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// Metrics
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket progress streaming
	if s.ws != nil {
		s.router.GET("/ws/:client_id", s.ws.HandleConnection)
	}

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/agents/execute", s.handleExecute)
		v1.POST("/agents/execute-async", s.handleExecuteAsync)

		v1.GET("/history", s.handleListHistory)
		v1.GET("/history/:id", s.handleGetHistory)
		v1.DELETE("/history/:id", s.handleDeleteHistory)
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}
