// Package server exposes the chat API over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"retail-chatbot/internal/analytics"
	"retail-chatbot/internal/chatbot"
	"retail-chatbot/internal/common/config"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/retrieval"
)

// Server wires the router, the policy store, and the admin surface into one
// gin engine.
type Server struct {
	engine *gin.Engine
	router *chatbot.Service
	store  *retrieval.Store
	stats  *analytics.PostgresRecorder
	search *analytics.ElasticRecorder
	http   *http.Server
	log    logger.Logger
}

// Options carries the optional admin dependencies. Stats and Search may be
// nil when analytics is disabled; the corresponding routes then return 404.
type Options struct {
	Stats  *analytics.PostgresRecorder
	Search *analytics.ElasticRecorder
}

func New(cfg config.ServerConfig, router *chatbot.Service, store *retrieval.Store, opts Options, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestID())

	s := &Server{
		engine: engine,
		router: router,
		store:  store,
		stats:  opts.Stats,
		search: opts.Search,
		log:    log,
	}
	s.registerRoutes()

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.engine.POST("/api/chat", s.handleChat)

	admin := s.engine.Group("/api/admin")
	admin.POST("/documents", s.handleAddDocument)
	admin.DELETE("/documents/:id", s.handleDeleteDocument)
	admin.POST("/documents/clear", s.handleClearConcept)
	admin.POST("/documents/init", s.handleInitDocuments)
	if s.stats != nil {
		admin.GET("/analytics/summary", s.handleAnalyticsSummary)
	}
	if s.search != nil {
		admin.GET("/conversations", s.handleSearchConversations)
	}

	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// requestID tags every request with an id for log correlation, honoring one
// supplied by the caller.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Engine exposes the gin engine for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("HTTP server starting", map[string]interface{}{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
