package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	readTimeout     = 10 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Pipeline is a synchronization pass that can be triggered over HTTP.
type Pipeline interface {
	Run(ctx context.Context) error
}

// Server exposes trigger endpoints for the synchronization pipelines.
type Server struct {
	http   *http.Server
	logger *slog.Logger
}

// NewServer builds the gin router and wraps it in an http.Server.
// Pipeline runs share the request context, so a dropped client
// connection cancels the pass.
func NewServer(port string, articles, videos, kajian Pipeline, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"hello": "world"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.GET("/articles", triggerHandler(articles, logger))
	router.GET("/videos", triggerHandler(videos, logger))
	router.GET("/kajian-info", triggerHandler(kajian, logger))

	return &Server{
		http: &http.Server{
			Addr:        ":" + port,
			Handler:     router,
			ReadTimeout: readTimeout,
			IdleTimeout: idleTimeout,
		},
		logger: logger,
	}
}

func triggerHandler(pipeline Pipeline, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := pipeline.Run(c.Request.Context()); err != nil {
			logger.Error("pipeline run failed", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	}
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info("http server listening", "addr", s.http.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
