package core

import (
	"context"
	"io"
	"time"

	"github.com/example/dailywhisker/internal/models"
)

// UserService defines the interface for user-related operations.
type UserService interface {
	// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates one with empty rotation fields.
	GetOrCreate(ctx context.Context, userID, email string) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// CatService selects and serves the daily cat.
type CatService interface {
	GetDailyCat(ctx context.Context, userID, email string) (*models.DailyCat, error)
	GetCat(ctx context.Context, catID string) (*models.Cat, error)
}

// BookmarkService manages a user's bookmarked cats.
type BookmarkService interface {
	// AddBookmark stores a bookmark unless one already exists for the cat. The bool reports creation.
	AddBookmark(ctx context.Context, userID, catID, note string) (*models.Bookmark, bool, error)
	ListBookmarks(ctx context.Context, userID string, window models.TimeWindow) ([]models.BookmarkWithCat, error)
}

// SettingsService manages visual preferences and their file interchange.
type SettingsService interface {
	SaveSettings(ctx context.Context, userID string, patch models.SettingsPatch) (*models.Settings, error)
	// LoadSettings returns the stored settings with defaults filled in. found is false when nothing was stored.
	LoadSettings(ctx context.Context, userID string) (settings models.Settings, found bool, err error)
	ExportSettings(ctx context.Context, userID string, format SettingsFormat) ([]byte, error)
	ImportSettings(data []byte, format SettingsFormat) (models.Settings, error)
}

// SurveyService manages the onboarding survey state.
type SurveyService interface {
	GetStatus(ctx context.Context, userID string) (*models.SurveyStatus, error)
	UpdateStatus(ctx context.Context, userID string, patch models.SurveyStatusPatch) (*models.SurveyStatus, error)
	Skip(ctx context.Context, userID string) (*models.SurveyStatus, error)
	Complete(ctx context.Context, userID string, answers models.SurveyAnswers) (*models.SurveyStatus, error)
	Retake(ctx context.Context, userID string) (*models.SurveyStatus, error)
}

// AuthService performs email/password account operations against the identity provider.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthSession, error)
	Register(ctx context.Context, email, password string) (*AuthSession, error)
	Logout(ctx context.Context, userID string) error
	SendPasswordReset(ctx context.Context, email string) error
}

// ShareService publishes rendered cat cards.
type ShareService interface {
	ShareCard(ctx context.Context, userID string, image io.Reader, contentType string, size int64) (*SharedCard, error)
}

// AuthSession is the result of a successful sign-in or sign-up.
type AuthSession struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds
}

// SharedCard is a published card image.
type SharedCard struct {
	URL       string    `json:"url"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
}

// IdentityProvider is the email/password identity backend.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	SignUp(ctx context.Context, email, password string) (userID string, err error)
	SignOut(ctx context.Context, userID string) error
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ObjectUploader stores a blob and returns a public download URL.
type ObjectUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}
