package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/core"
	"github.com/example/dailywhisker/internal/models"
)

// BookmarkHandler handles the bookmark ledger endpoints.
type BookmarkHandler struct {
	bookmarkService core.BookmarkService
	logger          *zap.Logger
}

// NewBookmarkHandler creates a new BookmarkHandler.
func NewBookmarkHandler(bs core.BookmarkService, logger *zap.Logger) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bs, logger: logger}
}

func (h *BookmarkHandler) mapBookmarkErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidBookmark), errors.Is(err, core.ErrInvalidWindow):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: err.Error()})
	case errors.Is(err, core.ErrCatNotFound):
		h.logger.Warn("bookmark references a missing cat", zap.Error(err))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrCatNotFound.Error()})
	default:
		h.logger.Error("bookmark operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process bookmarks"})
	}
}

// AddBookmark handles POST /api/v1/bookmarks. A repeat bookmark answers 200 with created=false.
func (h *BookmarkHandler) AddBookmark(c *gin.Context) {
	userID, _, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}
	var req models.AddBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	bookmark, created, err := h.bookmarkService.AddBookmark(c.Request.Context(), userID, req.CatID, req.Note)
	if err != nil {
		h.mapBookmarkErrorToStatus(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, BookmarkResponse{Bookmark: bookmark, Created: created})
}

// ListBookmarks handles GET /api/v1/bookmarks?window=day|week|month|all.
func (h *BookmarkHandler) ListBookmarks(c *gin.Context) {
	userID, _, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}
	window, valid := models.ParseTimeWindow(c.Query("window"))
	if !valid {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: "window must be one of day, week, month, all"})
		return
	}

	bookmarks, err := h.bookmarkService.ListBookmarks(c.Request.Context(), userID, window)
	if err != nil {
		h.mapBookmarkErrorToStatus(c, err)
		return
	}
	if bookmarks == nil {
		bookmarks = []models.BookmarkWithCat{}
	}
	c.JSON(http.StatusOK, BookmarkListResponse{Window: window, Bookmarks: bookmarks})
}
