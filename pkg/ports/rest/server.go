package rest

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oldmonad/cloudinv/internal/app"
	cerrors "github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"github.com/oldmonad/cloudinv/pkg/ports/rest/handlers"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

type standardHTTPServer struct {
	*http.Server
}

func (s *standardHTTPServer) ListenAndServe() error {
	return s.Server.ListenAndServe()
}

func (s *standardHTTPServer) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}

var NewHTTPServer = func(addr string, handler http.Handler) HTTPServer {
	return &standardHTTPServer{
		Server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter registers the inventory routes on a fresh gin engine.
func NewRouter(appInstance app.AppRunner) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggingMiddleware())

	h := handlers.NewInventoryHandler(appInstance)
	engine.GET("/healthz", h.Health)
	engine.POST("/inventory/refresh", h.Refresh)

	return engine
}

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Log.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("remote_addr", c.ClientIP()),
			zap.Duration("duration", time.Since(start)))
	}
}

// StartServer serves the API on port until SIGINT or SIGTERM, then shuts
// down gracefully.
func StartServer(appInstance app.AppRunner, port string) error {
	if logger.Log.Core().Enabled(zap.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := ":" + port
	server := NewHTTPServer(addr, NewRouter(appInstance))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Info("Starting HTTP server", zap.String("addr", addr))

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- cerrors.NewErrServerListen(addr, err)
		}
	}()

	select {
	case err := <-errChan:
		logger.Log.Error("Server failed", zap.Error(err))
		return err
	case <-ctx.Done():
		logger.Log.Info("Received shutdown signal, stopping server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Server shutdown failed", zap.Error(err))
			return cerrors.NewErrServerShutdown(err)
		}

		logger.Log.Info("Server stopped successfully")
		return nil
	}
}
