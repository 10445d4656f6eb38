// Package server exposes the skill over plain HTTP for local development.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mycity/internal/alexa"
	"mycity/internal/handlers"
)

// NewEngine routes POST /alexa to skill and GET /health to a liveness probe.
func NewEngine(skill handlers.EnvelopeServer, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, handlers.HealthResponse{OK: true, Service: handlers.ServiceName})
	})

	r.POST("/alexa", func(c *gin.Context) {
		var env alexa.RequestEnvelope
		if err := c.ShouldBindJSON(&env); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json", "detail": err.Error()})
			return
		}
		out, err := skill.ServeEnvelope(c.Request.Context(), env)
		if err != nil {
			log.Error("skill request failed", zap.String("request_id", env.Request.RequestID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "skill_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, out)
	})

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
