// Package identity adapts Firebase Authentication to core.IdentityProvider.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/example/dailywhisker/internal/core"
)

const minPasswordLength = 6

// AdminClient is the subset of *auth.Client the adapter needs.
type AdminClient interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	PasswordResetLinkWithSettings(ctx context.Context, email string, settings *auth.ActionCodeSettings) (string, error)
}

// Firebase implements core.IdentityProvider. Password sign-in goes through the Identity Toolkit
// REST API with the project's web API key because the Admin SDK cannot verify passwords.
type Firebase struct {
	admin       AdminClient
	toolkit     *identitytoolkit.Service
	continueURL string
}

var _ core.IdentityProvider = (*Firebase)(nil)

// NewFirebase builds the adapter. continueURL is where the password reset page sends the user
// afterwards and may be empty. Extra options are passed to the Identity Toolkit client.
func NewFirebase(ctx context.Context, admin AdminClient, webAPIKey, continueURL string, opts ...option.ClientOption) (*Firebase, error) {
	if admin == nil {
		return nil, errors.New("identity: admin client is required")
	}
	if webAPIKey == "" && len(opts) == 0 {
		return nil, errors.New("identity: FIREBASE_WEB_API_KEY is required for password sign-in")
	}
	if webAPIKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(webAPIKey)}, opts...)
	}
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("identitytoolkit.NewService: %w", err)
	}
	return &Firebase{admin: admin, toolkit: svc, continueURL: continueURL}, nil
}

// SignIn verifies an email/password pair and returns fresh tokens.
func (f *Firebase) SignIn(ctx context.Context, email, password string) (*core.AuthSession, error) {
	resp, err := f.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		if isCredentialError(err) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verifyPassword: %w", err)
	}
	return &core.AuthSession{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

// SignUp creates an email/password account and returns its UID.
func (f *Firebase) SignUp(ctx context.Context, email, password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("%w: at least %d characters", core.ErrWeakPassword, minPasswordLength)
	}
	user, err := f.admin.CreateUser(ctx, (&auth.UserToCreate{}).Email(email).Password(password))
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", core.ErrEmailAlreadyExists
		}
		return "", fmt.Errorf("CreateUser: %w", err)
	}
	return user.UID, nil
}

// SignOut revokes every refresh token of the user, ending all sessions.
func (f *Firebase) SignOut(ctx context.Context, userID string) error {
	if err := f.admin.RevokeRefreshTokens(ctx, userID); err != nil {
		if auth.IsUserNotFound(err) {
			return nil
		}
		return fmt.Errorf("RevokeRefreshTokens: %w", err)
	}
	return nil
}

// PasswordResetLink generates an out-of-band reset link for email.
func (f *Firebase) PasswordResetLink(ctx context.Context, email string) (string, error) {
	var settings *auth.ActionCodeSettings
	if f.continueURL != "" {
		settings = &auth.ActionCodeSettings{URL: f.continueURL}
	}
	link, err := f.admin.PasswordResetLinkWithSettings(ctx, email, settings)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return "", core.ErrAccountNotFound
		}
		return "", fmt.Errorf("PasswordResetLink: %w", err)
	}
	return link, nil
}

var credentialErrors = []string{
	"EMAIL_NOT_FOUND",
	"INVALID_PASSWORD",
	"INVALID_LOGIN_CREDENTIALS",
	"USER_DISABLED",
	"INVALID_EMAIL",
	"MISSING_PASSWORD",
}

func isCredentialError(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusBadRequest {
		return false
	}
	for _, code := range credentialErrors {
		if strings.Contains(gerr.Message, code) {
			return true
		}
	}
	return false
}
