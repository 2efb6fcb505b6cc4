package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/core"
)

// ShareHandler publishes rendered cat cards.
type ShareHandler struct {
	shareService core.ShareService
	logger       *zap.Logger
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(ss core.ShareService, logger *zap.Logger) *ShareHandler {
	return &ShareHandler{shareService: ss, logger: logger}
}

// ShareCard handles POST /api/v1/share with the multipart field "image".
func (h *ShareHandler) ShareCard(c *gin.Context) {
	userID, _, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}
	if h.shareService == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Card sharing is not configured"})
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: "multipart field 'image' is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded card", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload"})
		return
	}
	defer f.Close()

	card, err := h.shareService.ShareCard(c.Request.Context(), userID, f, fh.Header.Get("Content-Type"), fh.Size)
	if err != nil {
		if errors.Is(err, core.ErrInvalidShareImage) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrInvalidShareImage.Error(), Details: err.Error()})
			return
		}
		h.logger.Error("share upload failed", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to share card"})
		return
	}
	c.JSON(http.StatusCreated, ShareResponse{Card: card})
}
