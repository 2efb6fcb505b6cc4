package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/core"
)

// CatHandler serves the daily cat and individual cat records.
type CatHandler struct {
	catService core.CatService
	logger     *zap.Logger
}

// NewCatHandler creates a new CatHandler.
func NewCatHandler(cs core.CatService, logger *zap.Logger) *CatHandler {
	return &CatHandler{catService: cs, logger: logger}
}

func (h *CatHandler) mapCatErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrCatNotFound):
		h.logger.Warn("cat not found", zap.Error(err))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrCatNotFound.Error()})
	case errors.Is(err, core.ErrNoCatsAvailable):
		h.logger.Warn("cat collection is empty")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: core.ErrNoCatsAvailable.Error()})
	default:
		h.logger.Error("cat lookup failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load cat"})
	}
}

// GetDailyCat handles GET /api/v1/cats/daily.
func (h *CatHandler) GetDailyCat(c *gin.Context) {
	userID, email, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}
	daily, err := h.catService.GetDailyCat(c.Request.Context(), userID, email)
	if err != nil {
		h.mapCatErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, daily)
}

// GetCat handles GET /api/v1/cats/:catId.
func (h *CatHandler) GetCat(c *gin.Context) {
	cat, err := h.catService.GetCat(c.Request.Context(), c.Param("catId"))
	if err != nil {
		h.mapCatErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}
