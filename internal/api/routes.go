package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/core"
	"github.com/example/dailywhisker/internal/middleware"
	"github.com/example/dailywhisker/internal/session"
)

// Services bundles the core services the API routes depend on. Share may be nil when no
// storage bucket is configured.
type Services struct {
	Users     core.UserService
	Cats      core.CatService
	Bookmarks core.BookmarkService
	Settings  core.SettingsService
	Survey    core.SurveyService
	Auth      core.AuthService
	Share     core.ShareService
}

// SetupRoutes configures all API routes. Global middleware (logging, recovery, CORS, metrics)
// is expected to be applied to router before this is called.
func SetupRoutes(router *gin.Engine, logger *zap.Logger, resolver *session.Resolver, svc Services) {
	authMW := middleware.RequireUser(resolver)

	authHandler := NewAuthHandler(svc.Auth, logger)
	userHandler := NewUserHandler(svc.Users, svc.Survey, logger)
	catHandler := NewCatHandler(svc.Cats, logger)
	bookmarkHandler := NewBookmarkHandler(svc.Bookmarks, logger)
	settingsHandler := NewSettingsHandler(svc.Settings, logger)
	surveyHandler := NewSurveyHandler(svc.Survey, logger)
	shareHandler := NewShareHandler(svc.Share, logger)

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/password-reset", authHandler.PasswordReset)
			authGroup.POST("/logout", authMW, authHandler.Logout)
		}

		usersGroup := apiV1.Group("/users", authMW)
		{
			usersGroup.POST("/initialize", userHandler.InitializeUserProfile)
			usersGroup.GET("/me", userHandler.GetCurrentUserProfile)
		}

		catsGroup := apiV1.Group("/cats", authMW)
		{
			catsGroup.GET("/daily", catHandler.GetDailyCat)
			catsGroup.GET("/:catId", catHandler.GetCat)
		}

		bookmarksGroup := apiV1.Group("/bookmarks", authMW)
		{
			bookmarksGroup.POST("", bookmarkHandler.AddBookmark)
			bookmarksGroup.GET("", bookmarkHandler.ListBookmarks)
		}

		settingsGroup := apiV1.Group("/settings", authMW)
		{
			settingsGroup.GET("", settingsHandler.GetSettings)
			settingsGroup.PUT("", settingsHandler.SaveSettings)
			settingsGroup.GET("/export", settingsHandler.ExportSettings)
			settingsGroup.POST("/import", settingsHandler.ImportSettings)
		}

		surveyGroup := apiV1.Group("/survey", authMW)
		{
			surveyGroup.GET("", surveyHandler.GetStatus)
			surveyGroup.POST("/skip", surveyHandler.Skip)
			surveyGroup.POST("/complete", surveyHandler.Complete)
			surveyGroup.POST("/retake", surveyHandler.Retake)
		}

		apiV1.POST("/share", authMW, shareHandler.ShareCard)
	}

	RegisterOpsRoutes(router, "api")

	logger.Info("API routes configured under /api/v1, /health and /metrics")
}

// RegisterOpsRoutes adds the health probe and the Prometheus scrape endpoint.
func RegisterOpsRoutes(router gin.IRoutes, service string) {
	router.GET("/health", HealthHandler(service))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
