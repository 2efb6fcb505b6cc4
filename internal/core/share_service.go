package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var ErrInvalidShareImage = errors.New("invalid share image")

// sniffLen is how much of the upload http.DetectContentType looks at.
const sniffLen = 512

var shareExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
}

type shareService struct {
	uploader ObjectUploader
	maxBytes int64
	now      func() time.Time
	logger   *zap.Logger
}

// NewShareService creates a ShareService that stores cards through uploader.
func NewShareService(uploader ObjectUploader, maxBytes int64, logger *zap.Logger) ShareService {
	return &shareService{uploader: uploader, maxBytes: maxBytes, now: time.Now, logger: logger}
}

// ShareCard uploads the rendered card to shared-cards/cat-<ms>.<ext> and returns its download URL.
// The stored type comes from the image bytes; a declared type that disagrees is rejected.
func (s *shareService) ShareCard(ctx context.Context, userID string, image io.Reader, contentType string, size int64) (*SharedCard, error) {
	if _, ok := shareExtensions[contentType]; !ok {
		return nil, fmt.Errorf("%w: content type '%s' is not supported", ErrInvalidShareImage, contentType)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidShareImage)
	}
	if size > s.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidShareImage, s.maxBytes)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(image, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read shared card: %w", err)
	}
	head = head[:n]
	detected := http.DetectContentType(head)
	ext, ok := shareExtensions[detected]
	if !ok || detected != contentType {
		return nil, fmt.Errorf("%w: content looks like '%s', declared '%s'", ErrInvalidShareImage, detected, contentType)
	}

	now := s.now()
	path := fmt.Sprintf("shared-cards/cat-%d.%s", now.UnixMilli(), ext)
	body := io.MultiReader(bytes.NewReader(head), image)
	url, err := s.uploader.Upload(ctx, path, detected, io.LimitReader(body, s.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to upload shared card: %w", err)
	}
	s.logger.Info("Shared cat card", zap.String("userID", userID), zap.String("path", path))
	return &SharedCard{URL: url, Path: path, CreatedAt: now.UTC()}, nil
}
