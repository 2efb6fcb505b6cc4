package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/core"
	"github.com/example/dailywhisker/internal/middleware"
	"github.com/example/dailywhisker/internal/models"
	"github.com/example/dailywhisker/internal/session"
)

// AuthHandler handles email/password authentication endpoints.
type AuthHandler struct {
	authService core.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as core.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: as, logger: logger}
}

func (h *AuthHandler) mapAuthErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: core.ErrInvalidCredentials.Error()}
	case errors.Is(err, core.ErrEmailAlreadyExists):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrEmailAlreadyExists.Error()}
	case errors.Is(err, core.ErrWeakPassword):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrWeakPassword.Error(), Details: err.Error()}
	case errors.Is(err, core.ErrIdentityUnavailable), errors.Is(err, core.ErrMailerUnavailable):
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: err.Error()}
	default:
		h.logger.Error("auth operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "Authentication service error"}
	}
	c.JSON(statusCode, errResponse)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.mapAuthErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	session, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.mapAuthErrorToStatus(c, err)
		return
	}
	h.logger.Info("Account registered", zap.String("userID", session.UserID))
	c.JSON(http.StatusCreated, session)
}

// Logout handles POST /api/v1/auth/logout. Bridge sessions have nothing to revoke server side.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}
	if c.GetString(middleware.CtxAuthSource) == string(session.SourceBridge) {
		c.JSON(http.StatusOK, SuccessResponse{Message: "Signed out"})
		return
	}
	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		h.mapAuthErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Signed out"})
}

// PasswordReset handles POST /api/v1/auth/password-reset. The response does not reveal
// whether an account exists for the address.
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var req models.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.authService.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.mapAuthErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusAccepted, SuccessResponse{Message: "If an account exists for this email, a reset link has been sent"})
}
