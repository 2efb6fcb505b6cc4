package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailAlreadyExists  = errors.New("email already registered")
	ErrWeakPassword        = errors.New("password does not meet requirements")
	ErrAccountNotFound     = errors.New("no account for this email")
	ErrMailerUnavailable   = errors.New("email delivery is not configured")
	ErrIdentityUnavailable = errors.New("identity provider is not configured")
)

type authService struct {
	identity IdentityProvider
	users    UserService
	surveys  SurveyService
	mailer   Mailer
	logger   *zap.Logger
}

// NewAuthService creates an AuthService. mailer may be nil, which disables password reset emails.
func NewAuthService(identity IdentityProvider, users UserService, surveys SurveyService, mailer Mailer, logger *zap.Logger) AuthService {
	return &authService{
		identity: identity,
		users:    users,
		surveys:  surveys,
		mailer:   mailer,
		logger:   logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login signs in and makes sure the user document exists.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthSession, error) {
	if s.identity == nil {
		return nil, ErrIdentityUnavailable
	}
	session, err := s.identity.SignIn(ctx, normalizeEmail(email), password)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.users.GetOrCreate(ctx, session.UserID, session.Email); err != nil {
		return nil, fmt.Errorf("failed to initialize user after login: %w", err)
	}
	return session, nil
}

// Register creates the account, signs it in and initializes the user and survey documents.
func (s *authService) Register(ctx context.Context, email, password string) (*AuthSession, error) {
	if s.identity == nil {
		return nil, ErrIdentityUnavailable
	}
	email = normalizeEmail(email)
	userID, err := s.identity.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.users.GetOrCreate(ctx, userID, email); err != nil {
		return nil, fmt.Errorf("failed to initialize user after sign-up: %w", err)
	}
	if _, err := s.surveys.GetStatus(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to initialize survey after sign-up: %w", err)
	}
	session, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("account created but sign-in failed: %w", err)
	}
	return session, nil
}

// Logout revokes the user's refresh tokens.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if s.identity == nil {
		return ErrIdentityUnavailable
	}
	return s.identity.SignOut(ctx, userID)
}

// SendPasswordReset mails a reset link. Unknown addresses succeed silently.
func (s *authService) SendPasswordReset(ctx context.Context, email string) error {
	if s.identity == nil {
		return ErrIdentityUnavailable
	}
	if s.mailer == nil {
		return ErrMailerUnavailable
	}
	email = normalizeEmail(email)
	link, err := s.identity.PasswordResetLink(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.logger.Info("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	body := fmt.Sprintf("<html><body><p>Someone asked to reset the password for your Daily Whisker account.</p>"+
		"<p><a href=\"%s\">Choose a new password</a></p>"+
		"<p>If this wasn't you, you can ignore this email.</p></body></html>", link)
	if err := s.mailer.Send(ctx, email, "Reset your Daily Whisker password", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}
