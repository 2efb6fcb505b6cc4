package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/dailywhisker/internal/session"
)

// Context keys set by RequireUser.
const (
	CtxUserID          = "userID"
	CtxUserEmail       = "userEmail"
	CtxUserDisplayName = "userDisplayName"
	CtxAuthSource      = "authSource"
)

// ErrorResponse mirrors api.ErrorResponse to avoid an import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RequireUser aborts with 401 unless the session resolver finds a user for the request.
func RequireUser(resolver *session.Resolver) gin.HandlerFunc {
	if resolver == nil {
		panic("RequireUser requires a non-nil session.Resolver")
	}
	return func(c *gin.Context) {
		id, ok := resolver.Resolve(c.Request.Context(), c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
			return
		}

		c.Set(CtxUserID, id.UserID)
		c.Set(CtxAuthSource, string(id.Source))
		if id.Email != "" {
			c.Set(CtxUserEmail, id.Email)
		}
		if id.Name != "" {
			c.Set(CtxUserDisplayName, id.Name)
		}
		c.Next()
	}
}
