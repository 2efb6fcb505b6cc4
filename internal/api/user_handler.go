package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/core"
)

// UserHandler handles user-profile related API endpoints.
type UserHandler struct {
	userService   core.UserService
	surveyService core.SurveyService
	logger        *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, ss core.SurveyService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, surveyService: ss, logger: logger}
}

// InitializeUserProfile handles POST /api/v1/users/initialize.
// Called by the client after any sign-in so the user and survey documents exist.
func (h *UserHandler) InitializeUserProfile(c *gin.Context) {
	userID, email, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}

	user, created, err := h.userService.GetOrCreate(c.Request.Context(), userID, email)
	if err != nil {
		h.logger.Error("GetOrCreate failed", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to initialize user profile"})
		return
	}
	survey, err := h.surveyService.GetStatus(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("survey initialization failed", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to initialize user profile"})
		return
	}

	resp := InitializeResponse{User: user, Survey: survey, Created: created}
	if created {
		h.logger.Info("User profile created", zap.String("userID", userID))
		c.JSON(http.StatusCreated, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCurrentUserProfile handles GET /api/v1/users/me.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	userID, _, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			h.logger.Warn("User profile not found", zap.String("userID", userID))
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
			return
		}
		h.logger.Error("GetByID failed", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve user profile"})
		return
	}
	c.JSON(http.StatusOK, user)
}
