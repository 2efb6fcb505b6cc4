// Package proxy relays external images to the browser with permissive CORS headers.
package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultContentType = "application/octet-stream"
	missingURLMessage  = "Missing 'url' query parameter."
	invalidURLMessage  = "Invalid 'url' query parameter."
	serverErrorMessage = "Server Error"
)

// Handler streams upstream resources back to the caller.
type Handler struct {
	client *http.Client
	logger *zap.Logger
}

// NewHandler returns a proxy using an HTTP client with the given timeout.
func NewHandler(timeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// RegisterRoutes mounts GET /proxy behind the given middleware.
func (h *Handler) RegisterRoutes(r gin.IRoutes, mw ...gin.HandlerFunc) {
	handlers := make([]gin.HandlerFunc, 0, len(mw)+1)
	handlers = append(handlers, mw...)
	r.GET("/proxy", append(handlers, h.Proxy)...)
}

// Proxy handles GET /proxy?url=<absolute http(s) url>.
func (h *Handler) Proxy(c *gin.Context) {
	raw := c.Query("url")
	if raw == "" {
		c.String(http.StatusBadRequest, missingURLMessage)
		return
	}
	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		c.String(http.StatusBadRequest, invalidURLMessage)
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		h.logger.Error("failed to build upstream request", zap.Error(err))
		c.String(http.StatusInternalServerError, serverErrorMessage)
		return
	}
	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Error("upstream fetch failed", zap.String("host", target.Host), zap.Error(err))
		c.String(http.StatusInternalServerError, serverErrorMessage)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		h.logger.Warn("upstream returned non-success status", zap.String("host", target.Host), zap.Int("status", resp.StatusCode))
		c.String(resp.StatusCode, fmt.Sprintf("Failed to fetch resource: %s", statusText(resp)))
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, map[string]string{
		"Access-Control-Allow-Origin": "*",
	})
}

// statusText returns the upstream reason phrase, e.g. "Not Found" from "404 Not Found".
func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
