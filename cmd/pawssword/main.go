package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/api"
	"github.com/example/dailywhisker/internal/authtoken"
	"github.com/example/dailywhisker/internal/config"
	"github.com/example/dailywhisker/internal/httpserver"
	"github.com/example/dailywhisker/internal/middleware"
	"github.com/example/dailywhisker/internal/oauthbridge"
)

func main() {
	cfg, err := config.LoadBridgeConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load bridge configuration: %v", err)
	}

	logger, err := httpserver.NewLogger(cfg.GinMode)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync()

	var providers []*oauthbridge.Provider
	if cfg.GoogleClientID != "" {
		providers = append(providers, oauthbridge.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.PublicURL+"/auth/google/callback"))
	}
	if cfg.GitHubClientID != "" {
		providers = append(providers, oauthbridge.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.PublicURL+"/auth/github/callback"))
	}
	for _, p := range providers {
		logger.Info("OAuth provider enabled", zap.String("provider", p.Name), zap.String("redirectURL", p.OAuth.RedirectURL))
	}

	var stateKey []byte
	if cfg.StateHashKey != "" {
		stateKey = []byte(cfg.StateHashKey)
	} else {
		logger.Warn("BRIDGE_STATE_HASH_KEY not set, logins in progress will fail after a restart")
	}

	handler := oauthbridge.NewHandler(
		providers,
		authtoken.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		stateKey,
		cfg.FrontendURL,
		strings.HasPrefix(cfg.PublicURL, "https://"),
		logger,
	)

	router, err := httpserver.NewEngine(cfg.GinMode, "pawssword", logger, middleware.CORSMiddleware(cfg.FrontendURL), config.SplitList(cfg.TrustedProxies))
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to build HTTP engine", zap.Error(err))
	}
	handler.RegisterRoutes(router)
	api.RegisterOpsRoutes(router, "pawssword")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := httpserver.Run(ctx, ":"+cfg.Port, router, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
