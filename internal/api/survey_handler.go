package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/core"
	"github.com/example/dailywhisker/internal/models"
)

// SurveyHandler handles the onboarding survey endpoints.
type SurveyHandler struct {
	surveyService core.SurveyService
	logger        *zap.Logger
}

// NewSurveyHandler creates a new SurveyHandler.
func NewSurveyHandler(ss core.SurveyService, logger *zap.Logger) *SurveyHandler {
	return &SurveyHandler{surveyService: ss, logger: logger}
}

func (h *SurveyHandler) respond(c *gin.Context, status *models.SurveyStatus, err error) {
	if err != nil {
		if errors.Is(err, core.ErrInvalidSurvey) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrInvalidSurvey.Error(), Details: err.Error()})
			return
		}
		h.logger.Error("survey operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process survey"})
		return
	}
	c.JSON(http.StatusOK, newSurveyResponse(status))
}

// GetStatus handles GET /api/v1/survey.
func (h *SurveyHandler) GetStatus(c *gin.Context) {
	userID, _, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}
	status, err := h.surveyService.GetStatus(c.Request.Context(), userID)
	h.respond(c, status, err)
}

// Skip handles POST /api/v1/survey/skip.
func (h *SurveyHandler) Skip(c *gin.Context) {
	userID, _, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}
	status, err := h.surveyService.Skip(c.Request.Context(), userID)
	h.respond(c, status, err)
}

// Complete handles POST /api/v1/survey/complete.
func (h *SurveyHandler) Complete(c *gin.Context) {
	userID, _, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}
	var req models.CompleteSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	status, err := h.surveyService.Complete(c.Request.Context(), userID, req.Answers)
	h.respond(c, status, err)
}

// Retake handles POST /api/v1/survey/retake.
func (h *SurveyHandler) Retake(c *gin.Context) {
	userID, _, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}
	status, err := h.surveyService.Retake(c.Request.Context(), userID)
	h.respond(c, status, err)
}
