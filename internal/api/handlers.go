package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/middleware"
)

// userFromContext reads the identity RequireUser stored in the Gin context.
func userFromContext(c *gin.Context) (userID, email string, ok bool) {
	rawUserID, exists := c.Get(middleware.CtxUserID)
	if !exists {
		return "", "", false
	}
	userID, ok = rawUserID.(string)
	if !ok || userID == "" {
		return "", "", false
	}
	email = c.GetString(middleware.CtxUserEmail)
	return userID, email, true
}

// requireUserID writes a 401 and returns false when no user is attached to the request.
func requireUserID(c *gin.Context, logger *zap.Logger) (string, string, bool) {
	userID, email, ok := userFromContext(c)
	if !ok {
		logger.Error("userID missing from context, auth middleware not applied", zap.String("path", c.FullPath()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return "", "", false
	}
	return userID, email, true
}

// HealthHandler answers liveness probes for any of the services.
func HealthHandler(service string) gin.HandlerFunc {
	started := time.Now()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "UP",
			"service": service,
			"uptime":  time.Since(started).Round(time.Second).String(),
		})
	}
}
