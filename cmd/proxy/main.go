package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/api"
	"github.com/example/dailywhisker/internal/config"
	"github.com/example/dailywhisker/internal/httpserver"
	"github.com/example/dailywhisker/internal/middleware"
	"github.com/example/dailywhisker/internal/proxy"
)

func main() {
	cfg, err := config.LoadProxyConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load proxy configuration: %v", err)
	}

	logger, err := httpserver.NewLogger(cfg.GinMode)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, middleware.KeyByUserOrIP())
	logger.Info("Proxy rate limit", zap.Float64("rps", cfg.RateLimitRPS), zap.Int("burst", cfg.RateLimitBurst))

	router, err := httpserver.NewEngine(cfg.GinMode, "proxy", logger, middleware.PublicCORSMiddleware(), config.SplitList(cfg.TrustedProxies))
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to build HTTP engine", zap.Error(err))
	}
	proxy.NewHandler(cfg.Timeout, logger).RegisterRoutes(router, limiter.Handler())
	api.RegisterOpsRoutes(router, "proxy")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := httpserver.Run(ctx, ":"+cfg.Port, router, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
