package db

import (
	"context"
	"errors"

	"github.com/example/dailywhisker/internal/models"
)

// ErrNotFound is returned by every repository when a document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrAlreadyExists is returned by Create operations when the document ID is taken.
var ErrAlreadyExists = errors.New("document already exists")

// UserRepository stores the per-user rotation document.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// UpdateRotation records the cat generated for the user and when.
	UpdateRotation(ctx context.Context, userID, catID string, generatedAtMs int64) error
}

// CatRepository reads the cats collection. Write methods exist for seeding only.
type CatRepository interface {
	ListIDs(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, catID string) (*models.Cat, error)
	Create(ctx context.Context, cat *models.Cat) (string, error)
	DeleteAll(ctx context.Context) (int, error)
}

// BookmarkRepository stores users/{id}/bookmarks.
type BookmarkRepository interface {
	// List returns all bookmarks ordered by timestamp ascending.
	List(ctx context.Context, userID string) ([]models.Bookmark, error)
	FindByCatID(ctx context.Context, userID, catID string) (*models.Bookmark, error)
	Create(ctx context.Context, userID string, bookmark *models.Bookmark) (string, error)
}

// SettingsRepository stores users/{id}/settings/preferences.
type SettingsRepository interface {
	Get(ctx context.Context, userID string) (*models.Settings, error)
	// Merge writes only the given fields, creating the document if needed.
	Merge(ctx context.Context, userID string, fields map[string]interface{}) error
}

// SurveyRepository stores users/{id}/survey/status.
type SurveyRepository interface {
	Get(ctx context.Context, userID string) (*models.SurveyStatus, error)
	Create(ctx context.Context, userID string, status *models.SurveyStatus) error
	Merge(ctx context.Context, userID string, fields map[string]interface{}) error
}
