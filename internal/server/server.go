// Package server is the review UI backend: a JSON API over the session
// store plus a websocket that tells open pages when a segment or the
// glossary changes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/liaozensiang/ebook-translater/internal/session"
)

const shutdownTimeout = 30 * time.Second

// SegmentTranslator produces and stores a fresh translation for a segment.
type SegmentTranslator interface {
	TranslateSegment(ctx context.Context, sessions *session.Store, id string) (string, error)
}

// MachineTranslator is the conventional machine-translation fallback.
type MachineTranslator interface {
	Translate(ctx context.Context, text, tgtLang string) (string, error)
}

type Config struct {
	Port      int
	StaticDir string
	// GlossaryPath receives the glossary whenever the UI saves it.
	GlossaryPath string
}

type Server struct {
	config     Config
	logger     *logrus.Logger
	sessions   *session.Store
	translator SegmentTranslator
	mt         MachineTranslator
	router     *gin.Engine
	wsHub      *Hub
}

// New builds the router. mt may be nil, in which case /api/google answers
// 503.
func New(cfg Config, sessions *session.Store, translator SegmentTranslator, mt MachineTranslator, logger *logrus.Logger) *Server {
	s := &Server{
		config:     cfg,
		logger:     logger,
		sessions:   sessions,
		translator: translator,
		mt:         mt,
		wsHub:      NewHub(logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router = gin.New()

	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.corsMiddleware())
	s.router.Use(gin.Recovery())

	s.router.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(s.config.StaticDir, "index.html"))
	})
	s.router.Static("/static", s.config.StaticDir)

	api := s.router.Group("/api")
	api.GET("/session", s.handleGetSession)
	api.GET("/segment/:id", s.handleGetSegment)
	api.POST("/segment/:id", s.handleUpdateSegment)
	api.POST("/translate/:id", s.handleTranslateSegment)
	api.GET("/glossary", s.handleGetGlossary)
	api.POST("/glossary", s.handleSaveGlossary)
	api.POST("/google", s.handleGoogle)

	s.router.GET("/ws", s.HandleWebSocket)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "websocket_clients": s.wsHub.GetClientCount()})
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.wsHub.Run(hubCtx)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Review server running on http://localhost:%d", s.config.Port)
		s.logger.Infof("Session directory: %s", s.sessions.Dir())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("Server exited gracefully")
	return nil
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		s.logger.WithFields(logrus.Fields{
			"status":  param.StatusCode,
			"method":  param.Method,
			"path":    param.Path,
			"ip":      param.ClientIP,
			"latency": param.Latency,
		}).Info("HTTP Request")
		return ""
	})
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
