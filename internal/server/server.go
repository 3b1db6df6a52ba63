// Package server exposes the registry, engine and run history over a
// small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Benjamin-Hogan/restload/internal/common"
	"github.com/Benjamin-Hogan/restload/internal/config"
	"github.com/Benjamin-Hogan/restload/internal/store"
	"github.com/gin-gonic/gin"
)

// Options wires the server's collaborators. Store is optional; without
// it run persistence and history are disabled.
type Options struct {
	Registry *config.Registry
	Store    store.Store
	Version  string
	Debug    bool
}

// Server serves the JSON API.
type Server struct {
	opts   Options
	logger *common.Logger
}

// New returns a server over the given collaborators.
func New(opts Options) *Server {
	return &Server{
		opts:   opts,
		logger: common.GetLogger().WithComponent("server"),
	}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	if !s.opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	api := r.Group("/api")
	api.GET("/health", s.health)

	api.GET("/configs", s.listConfigs)
	api.POST("/configs", s.addConfig)
	api.DELETE("/configs/:name", s.removeConfig)
	api.POST("/configs/:name/activate", s.activateConfig)
	api.GET("/configs/:name/endpoints", s.listEndpoints)

	api.POST("/request", s.sendRequest)
	api.POST("/run", s.runBatch)

	api.GET("/history", s.listHistory)
	api.GET("/history/:id", s.getHistory)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// accessLog records one line per request.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start).Round(time.Microsecond),
		}
		if status >= 500 {
			s.logger.Warn("request", attrs...)
		} else {
			s.logger.Debug("request", attrs...)
		}
	}
}
