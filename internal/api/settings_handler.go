package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/core"
	"github.com/example/dailywhisker/internal/models"
)

const maxSettingsFileBytes = 64 << 10

// SettingsHandler handles visual preference endpoints and their file interchange.
type SettingsHandler struct {
	settingsService core.SettingsService
	logger          *zap.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(ss core.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settingsService: ss, logger: logger}
}

func (h *SettingsHandler) mapSettingsErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidSetting):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrInvalidSetting.Error(), Details: err.Error()})
	case errors.Is(err, core.ErrMalformedSettingsFile):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrMalformedSettingsFile.Error(), Details: err.Error()})
	case errors.Is(err, core.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrUnsupportedFormat.Error(), Details: err.Error()})
	default:
		h.logger.Error("settings operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process settings"})
	}
}

// GetSettings handles GET /api/v1/settings.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, _, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}
	settings, found, err := h.settingsService.LoadSettings(c.Request.Context(), userID)
	if err != nil {
		h.mapSettingsErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SettingsResponse{Settings: settings, Stored: found})
}

// SaveSettings handles PUT /api/v1/settings with any subset of the three fields.
func (h *SettingsHandler) SaveSettings(c *gin.Context) {
	userID, _, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}
	var patch models.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	saved, err := h.settingsService.SaveSettings(c.Request.Context(), userID, patch)
	if err != nil {
		h.mapSettingsErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// ExportSettings handles GET /api/v1/settings/export?format=json|xml as a file download.
func (h *SettingsHandler) ExportSettings(c *gin.Context) {
	userID, _, ok := requireUserID(c, h.logger)
	if !ok {
		return
	}
	format, err := core.ParseSettingsFormat(c.DefaultQuery("format", string(core.FormatJSON)))
	if err != nil {
		h.mapSettingsErrorToStatus(c, err)
		return
	}
	data, err := h.settingsService.ExportSettings(c.Request.Context(), userID, format)
	if err != nil {
		h.mapSettingsErrorToStatus(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="cat-settings.%s"`, format))
	c.Data(http.StatusOK, format.ContentType(), data)
}

// ImportSettings handles POST /api/v1/settings/import. The file is sent either as the raw body
// or as the multipart field "file". Without ?format the format is detected from the content.
// The parsed settings are returned, not saved.
func (h *SettingsHandler) ImportSettings(c *gin.Context) {
	if _, _, ok := requireUserID(c, h.logger); !ok {
		return
	}

	var format core.SettingsFormat
	if raw := c.Query("format"); raw != "" {
		parsed, err := core.ParseSettingsFormat(raw)
		if err != nil {
			h.mapSettingsErrorToStatus(c, err)
			return
		}
		format = parsed
	}

	data, err := readSettingsFile(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrMalformedSettingsFile.Error(), Details: err.Error()})
		return
	}

	settings, err := h.settingsService.ImportSettings(data, format)
	if err != nil {
		h.mapSettingsErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func readSettingsFile(c *gin.Context) ([]byte, error) {
	var src io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing 'file' field: %w", err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src = f
	}
	data, err := io.ReadAll(io.LimitReader(src, maxSettingsFileBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxSettingsFileBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", maxSettingsFileBytes)
	}
	return data, nil
}
