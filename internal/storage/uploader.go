// Package storage publishes objects to the Firebase Storage bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/core"
)

const downloadTokenKey = "firebaseStorageDownloadTokens"

// Bucket opens object writers. *gcs.BucketHandle is adapted through gcsBucket.
type Bucket interface {
	Name() string
	NewWriter(ctx context.Context, objectPath, contentType string, metadata map[string]string) io.WriteCloser
}

type gcsBucket struct {
	name   string
	handle *gcs.BucketHandle
}

func (b gcsBucket) Name() string { return b.name }

func (b gcsBucket) NewWriter(ctx context.Context, objectPath, contentType string, metadata map[string]string) io.WriteCloser {
	w := b.handle.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = metadata
	return w
}

// Uploader implements core.ObjectUploader with Firebase-style download URLs.
type Uploader struct {
	bucket   Bucket
	newToken func() string
	logger   *zap.Logger
}

var _ core.ObjectUploader = (*Uploader)(nil)

// NewFirebaseUploader opens the named bucket, or the app's default bucket when name is empty.
func NewFirebaseUploader(ctx context.Context, app *firebase.App, name string, logger *zap.Logger) (*Uploader, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Storage: %w", err)
	}
	var handle *gcs.BucketHandle
	if name == "" {
		handle, err = client.DefaultBucket()
	} else {
		handle, err = client.Bucket(name)
	}
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	attrs, err := handle.Attrs(ctx)
	if err != nil {
		logger.Warn("Could not read bucket attributes, uploads may fail", zap.Error(err))
	} else {
		name = attrs.Name
	}
	return NewUploader(gcsBucket{name: name, handle: handle}, logger), nil
}

// NewUploader wraps an arbitrary Bucket.
func NewUploader(bucket Bucket, logger *zap.Logger) *Uploader {
	return &Uploader{
		bucket:   bucket,
		newToken: uuid.NewString,
		logger:   logger,
	}
}

// Upload streams r into objectPath and returns its tokenized download URL.
func (u *Uploader) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	token := u.newToken()
	w := u.bucket.NewWriter(ctx, objectPath, contentType, map[string]string{downloadTokenKey: token})
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", objectPath, err)
	}
	u.logger.Info("Object uploaded", zap.String("bucket", u.bucket.Name()), zap.String("path", objectPath))
	return DownloadURL(u.bucket.Name(), objectPath, token), nil
}

// DownloadURL formats the public Firebase Storage URL of an object.
func DownloadURL(bucket, objectPath, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(objectPath), url.QueryEscape(token))
}
