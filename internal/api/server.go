// Package api implements the HTTP server for the scheduling assistant. It
// exposes the chat endpoint that drives the assistant and the event endpoints
// that clients poll and mutate directly.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/planline/planline/internal/chat"
	"github.com/planline/planline/internal/config"
	"github.com/planline/planline/internal/logging"
	"github.com/planline/planline/internal/store"
)

// Server wraps the Gin engine and the underlying HTTP server.
type Server struct {
	cfg    *config.Config
	store  *store.FileStore
	orc    *chat.Orchestrator
	engine *gin.Engine
	server *http.Server
}

// NewServer builds the HTTP server with its middleware chain and routes.
func NewServer(cfg *config.Config, st *store.FileStore, orc *chat.Orchestrator) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logging.GinLogrusLogger())
	engine.Use(logging.GinLogrusRecovery())
	engine.Use(prometheusMiddleware())
	engine.Use(corsMiddleware(cfg))

	s := &Server{
		cfg:    cfg,
		store:  st,
		orc:    orc,
		engine: engine,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: engine,
	}
	return s
}

// setupRoutes configures the API routes for the server.
func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", metricsHandler())

	api := s.engine.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.GET("/events", s.handleListEvents)
		api.GET("/events/watch", s.handleWatchEvents)
		api.DELETE("/events/:id", s.handleDeleteEvent)
		api.PATCH("/events/:id", s.handleUpdateEventTime)
	}
}

// Handler exposes the underlying engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	log.Infof("listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// corsMiddleware adds CORS headers based on the configured allow list. An
// empty allow list admits any origin.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := strings.TrimSpace(c.GetHeader("Origin"))

		allowedOrigin := ""
		if origin != "" {
			switch {
			case len(cfg.CORS.AllowOrigins) == 0:
				allowedOrigin = "*"
			case originAllowed(cfg.CORS.AllowOrigins, origin):
				allowedOrigin = origin
			}
		}

		if allowedOrigin != "" {
			c.Header("Access-Control-Allow-Origin", allowedOrigin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "*")
			if allowedOrigin != "*" {
				c.Header("Vary", "Origin")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originAllowed(allowOrigins []string, origin string) bool {
	for _, allowed := range allowOrigins {
		allowed = strings.TrimSpace(allowed)
		if allowed == "" {
			continue
		}
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
