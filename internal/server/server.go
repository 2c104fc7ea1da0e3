// Package server exposes the environment over local IPC. A second
// invocation of the editor relays its command-line locations here
// instead of spawning another window, and the renderer subscribes to
// update events over the websocket stream.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nightjar-editor/nightjar/internal/environment"
	"github.com/nightjar-editor/nightjar/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options configures the IPC server.
type Options struct {
	Version  string
	Logger   *logging.Logger
	Registry *prometheus.Registry
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router *gin.Engine
	http   *http.Server
	env    *environment.Environment
	logger *logging.Logger
}

// NewServer wires the router around one environment instance.
func NewServer(env *environment.Environment, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())

	s := &Server{
		router: router,
		env:    env,
		logger: opts.Logger.Named("server"),
	}

	handlers := newHandlers(env, opts.Version)
	wsHandler := newWSHandler(env, s.logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Location relay
	router.POST("/open-locations", handlers.OpenLocations)
	router.POST("/project/folder", handlers.AddProjectFolder)

	// State lifecycle
	router.POST("/state/save", handlers.SaveState)
	router.GET("/state", handlers.LoadState)
	router.POST("/activity", handlers.NoteActivity)

	if opts.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			opts.Registry, promhttp.HandlerOpts{})))
	}

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	return s
}

// Run starts serving on addr and blocks until Shutdown or failure.
func (s *Server) Run(addr string) error {
	s.logger.Info("starting IPC server", zap.String("addr", addr))
	s.http = &http.Server{Addr: addr, Handler: s.router}

	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
