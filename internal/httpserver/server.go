// Package httpserver holds the process plumbing shared by the Daily Whisker binaries:
// logger construction, the Gin engine with the common middleware stack, and a server
// loop with graceful shutdown.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/middleware"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// NewLogger returns a production logger in release mode and a development logger otherwise.
func NewLogger(ginMode string) (*zap.Logger, error) {
	if strings.EqualFold(ginMode, gin.ReleaseMode) {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// NewEngine sets the Gin mode and returns an engine with request logging, panic recovery
// and Prometheus metrics labelled with service. cors is applied after recovery when non-nil.
// Forwarded client-IP headers are honoured only from trustedProxies (IPs or CIDRs); with
// none, ClientIP is always the connection's remote address.
func NewEngine(ginMode, service string, logger *zap.Logger, cors gin.HandlerFunc, trustedProxies []string) (*gin.Engine, error) {
	if strings.EqualFold(ginMode, gin.ReleaseMode) {
		gin.SetMode(gin.ReleaseMode)
	} else if !strings.EqualFold(ginMode, gin.TestMode) {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies %v: %w", trustedProxies, err)
	}
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if cors != nil {
		router.Use(cors)
	}
	router.Use(middleware.Metrics(service))
	return router, nil
}

// Run serves handler on addr until ctx is cancelled, then shuts down gracefully.
// It returns nil after a clean shutdown.
func Run(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(ctx, ln, handler, logger)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *zap.Logger) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("address", ln.Addr().String()), zap.String("ginMode", gin.Mode()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server exited gracefully")
	return nil
}
