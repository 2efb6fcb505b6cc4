package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/api"
	"github.com/example/dailywhisker/internal/authtoken"
	"github.com/example/dailywhisker/internal/cache"
	"github.com/example/dailywhisker/internal/config"
	"github.com/example/dailywhisker/internal/core"
	"github.com/example/dailywhisker/internal/db"
	"github.com/example/dailywhisker/internal/httpserver"
	"github.com/example/dailywhisker/internal/identity"
	"github.com/example/dailywhisker/internal/mailer"
	"github.com/example/dailywhisker/internal/middleware"
	"github.com/example/dailywhisker/internal/session"
	"github.com/example/dailywhisker/internal/storage"
)

func main() {
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	logger, err := httpserver.NewLogger(appConfig.GinMode)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initCtx, cancelInit := context.WithTimeout(ctx, 15*time.Second)
	defer cancelInit()
	clients, err := db.InitFirebase(ctx, appConfig.FirebaseConfig, logger)
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()

	// --- Repositories ---
	userRepo := db.NewFirestoreUserRepository(clients.Firestore)
	bookmarkRepo := db.NewFirestoreBookmarkRepository(clients.Firestore)
	settingsRepo := db.NewFirestoreSettingsRepository(clients.Firestore)
	surveyRepo := db.NewFirestoreSurveyRepository(clients.Firestore)
	var catRepo db.CatRepository = db.NewFirestoreCatRepository(clients.Firestore)

	if appConfig.RedisAddress != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.RedisConfig{
			Address:  appConfig.RedisAddress,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		}, logger)
		if err != nil {
			logger.Warn("Redis unavailable, serving cats straight from Firestore", zap.Error(err))
		} else {
			defer redisCache.Close()
			catRepo = cache.NewCatRepository(catRepo, redisCache, appConfig.CatCacheTTL, logger)
			logger.Info("Cat cache enabled", zap.Duration("ttl", appConfig.CatCacheTTL))
		}
	}

	// --- Adapters ---
	var mail core.Mailer
	if appConfig.SMTPHost != "" {
		smtpMailer, err := mailer.New(mailer.Config{
			Host:     appConfig.SMTPHost,
			Port:     appConfig.SMTPPort,
			Username: appConfig.SMTPUser,
			Password: appConfig.SMTPPassword,
			From:     appConfig.MailFrom,
		}, logger)
		if err != nil {
			logger.Fatal("CRITICAL_ERROR: Invalid SMTP configuration", zap.Error(err))
		}
		mail = smtpMailer
	} else {
		logger.Warn("SMTP_HOST not set, password reset emails are disabled")
	}

	var identityProvider core.IdentityProvider
	firebaseIdentity, err := identity.NewFirebase(ctx, clients.Auth, appConfig.WebAPIKey, resetContinueURL(appConfig.ClientURL))
	if err != nil {
		logger.Warn("Email/password endpoints disabled", zap.Error(err))
	} else {
		identityProvider = firebaseIdentity
	}

	var shareService core.ShareService
	uploader, err := storage.NewFirebaseUploader(ctx, clients.App, appConfig.StorageBucket, logger)
	if err != nil {
		logger.Warn("Card sharing disabled", zap.Error(err))
	} else {
		shareService = core.NewShareService(uploader, appConfig.ShareMaxBytes, logger)
	}

	// --- Services ---
	userService := core.NewUserService(userRepo)
	surveyService := core.NewSurveyService(surveyRepo)
	services := api.Services{
		Users:     userService,
		Cats:      core.NewCatService(userRepo, catRepo, appConfig.RotationWindow, logger),
		Bookmarks: core.NewBookmarkService(bookmarkRepo, catRepo, appConfig.Location(), logger),
		Settings:  core.NewSettingsService(settingsRepo),
		Survey:    surveyService,
		Auth:      core.NewAuthService(identityProvider, userService, surveyService, mail, logger),
		Share:     shareService,
	}

	var bridgeVerifier session.BridgeVerifier
	if appConfig.BridgeJWTSecret != "" {
		bridgeVerifier = authtoken.NewIssuer(appConfig.BridgeJWTSecret, authtoken.DefaultTTL)
	} else {
		logger.Warn("BRIDGE_JWT_SECRET not set, OAuth bridge sessions are rejected")
	}
	resolver := session.NewResolver(clients.Auth, bridgeVerifier, logger)

	// --- HTTP ---
	var cors = middleware.PublicCORSMiddleware()
	if appConfig.ClientURL != "" {
		cors = middleware.CORSMiddleware(appConfig.ClientURL)
		logger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		logger.Warn("CLIENT_URL is not configured, only simple cross-origin GETs are allowed")
	}
	router, err := httpserver.NewEngine(appConfig.GinMode, "api", logger, cors, config.SplitList(appConfig.TrustedProxies))
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to build HTTP engine", zap.Error(err))
	}
	api.SetupRoutes(router, logger, resolver, services)

	if err := httpserver.Run(ctx, ":"+appConfig.Port, router, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

// resetContinueURL is where the password reset page returns the user.
func resetContinueURL(clientURLs string) string {
	first := strings.TrimSpace(strings.Split(clientURLs, ",")[0])
	if first == "" {
		return ""
	}
	return strings.TrimRight(first, "/") + "/login"
}
