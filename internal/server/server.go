// Package server exposes the extraction orchestrator over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"yt-extract-api/internal/export"
	"yt-extract-api/internal/monitor"
	"yt-extract-api/internal/orchestrator"
	"yt-extract-api/pkg/models"
)

// Version is the service version reported by the index and health endpoints
const Version = "1.0.0"

// Server represents the API server
type Server struct {
	config     *models.Config
	orch       *orchestrator.Orchestrator
	storage    models.Storage
	monitor    *monitor.Monitor
	exporter   *export.Exporter
	httpServer *http.Server
	logger     zerolog.Logger
}

// NewServer creates a new API server around an assembled orchestrator
func NewServer(cfg *models.Config, orch *orchestrator.Orchestrator, storage models.Storage, mon *monitor.Monitor, logger zerolog.Logger) *Server {
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Server{
		config:   cfg,
		orch:     orch,
		storage:  storage,
		monitor:  mon,
		exporter: export.NewExporter(),
		logger:   logger,
	}
}

// Start starts the API server
func (s *Server) Start() error {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(s.corsMiddleware())

	s.setupRoutes(router)

	if s.monitor != nil {
		s.monitor.Start()
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeout) * time.Second,
	}

	go func() {
		s.logger.Info().Str("address", s.httpServer.Addr).Msg("Starting API server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal().Err(err).Msg("Error starting server")
		}
	}()

	return nil
}

// Stop stops the API server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.monitor != nil {
		s.monitor.Stop()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down server")
		return err
	}

	s.logger.Info().Msg("API server stopped")
	return nil
}

// Run runs the server until SIGINT or SIGTERM
func (s *Server) Run() error {
	if err := s.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan

	return s.Stop()
}

// setupRoutes sets up the API routes
func (s *Server) setupRoutes(router *gin.Engine) {
	router.GET("/", s.index)
	router.GET("/health", s.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	video := router.Group("/video")
	{
		video.GET("/info", s.videoInfo)
		video.GET("/status", s.videoStatus)
		video.GET("/download", s.videoDownload)
		video.GET("/fallback", s.videoFallback)
	}

	playlist := router.Group("/playlist")
	{
		playlist.GET("/info", s.playlistInfo)
		playlist.GET("/download", s.playlistDownload)
	}

	stats := router.Group("/stats")
	{
		stats.GET("", s.getStats)
		stats.GET("/export", s.exportStats)
	}
}

// callerID identifies the caller for rate limiting: the API key header
// when present, the client IP otherwise.
func callerID(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	return c.ClientIP()
}

// requestLogger logs one line per request
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Str("client", c.ClientIP()).
			Msg("Request handled")
	}
}

// CORS middleware
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
