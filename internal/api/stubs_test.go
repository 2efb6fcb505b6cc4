package api

import (
	"context"
	"io"
	"time"

	"firebase.google.com/go/v4/auth"

	"github.com/example/dailywhisker/internal/core"
	"github.com/example/dailywhisker/internal/models"
)

type stubFirebase struct{}

func (stubFirebase) VerifyIDToken(_ context.Context, raw string) (*auth.Token, error) {
	if raw != "fb-token" {
		return nil, core.ErrInvalidCredentials
	}
	return &auth.Token{UID: "fb-user", Claims: map[string]interface{}{"email": "fb@example.com"}}, nil
}

type stubUsers struct {
	created bool
	err     error
	getErr  error
}

func (s *stubUsers) GetOrCreate(_ context.Context, userID, email string) (*models.User, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	return &models.User{ID: userID, Email: email}, s.created, nil
}

func (s *stubUsers) GetByID(_ context.Context, userID string) (*models.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &models.User{ID: userID, Email: "kit@example.com"}, nil
}

type stubCats struct {
	daily  *models.DailyCat
	err    error
	lastBy string
}

func (s *stubCats) GetDailyCat(_ context.Context, userID, _ string) (*models.DailyCat, error) {
	s.lastBy = userID
	return s.daily, s.err
}

func (s *stubCats) GetCat(_ context.Context, catID string) (*models.Cat, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Cat{ID: catID, Name: "Mochi"}, nil
}

type stubBookmarks struct {
	created    bool
	err        error
	listWindow models.TimeWindow
	list       []models.BookmarkWithCat
}

func (s *stubBookmarks) AddBookmark(_ context.Context, _, catID, note string) (*models.Bookmark, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	return &models.Bookmark{ID: "b1", CatID: catID, Note: note, Timestamp: 1}, s.created, nil
}

func (s *stubBookmarks) ListBookmarks(_ context.Context, _ string, window models.TimeWindow) ([]models.BookmarkWithCat, error) {
	s.listWindow = window
	return s.list, s.err
}

type stubSettings struct {
	stored    models.Settings
	found     bool
	lastPatch models.SettingsPatch
	err       error
}

func (s *stubSettings) SaveSettings(_ context.Context, _ string, patch models.SettingsPatch) (*models.Settings, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastPatch = patch
	out := s.stored
	if patch.AppTheme != nil {
		out.AppTheme = *patch.AppTheme
	}
	return &out, nil
}

func (s *stubSettings) LoadSettings(context.Context, string) (models.Settings, bool, error) {
	return s.stored, s.found, s.err
}

func (s *stubSettings) ExportSettings(_ context.Context, _ string, format core.SettingsFormat) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return core.EncodeSettings(s.stored, format)
}

func (s *stubSettings) ImportSettings(data []byte, format core.SettingsFormat) (models.Settings, error) {
	if format == "" {
		detected, err := core.DetectSettingsFormat(data)
		if err != nil {
			return models.Settings{}, err
		}
		format = detected
	}
	return core.DecodeSettings(data, format)
}

type stubSurvey struct {
	status  models.SurveyStatus
	err     error
	answers models.SurveyAnswers
}

func (s *stubSurvey) GetStatus(context.Context, string) (*models.SurveyStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	st := s.status
	return &st, nil
}

func (s *stubSurvey) UpdateStatus(ctx context.Context, userID string, _ models.SurveyStatusPatch) (*models.SurveyStatus, error) {
	return s.GetStatus(ctx, userID)
}

func (s *stubSurvey) Skip(ctx context.Context, userID string) (*models.SurveyStatus, error) {
	s.status.Skipped = true
	return s.GetStatus(ctx, userID)
}

func (s *stubSurvey) Complete(ctx context.Context, userID string, answers models.SurveyAnswers) (*models.SurveyStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.answers = answers
	s.status.Completed = true
	s.status.Answers = &answers
	return s.GetStatus(ctx, userID)
}

func (s *stubSurvey) Retake(ctx context.Context, userID string) (*models.SurveyStatus, error) {
	s.status.Retaking = true
	return s.GetStatus(ctx, userID)
}

type stubAuth struct {
	err        error
	loggedOut  []string
	resetEmail string
}

func (s *stubAuth) Login(_ context.Context, email, _ string) (*core.AuthSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &core.AuthSession{UserID: "u1", Email: email, IDToken: "id-tok", ExpiresIn: 3600}, nil
}

func (s *stubAuth) Register(ctx context.Context, email, password string) (*core.AuthSession, error) {
	return s.Login(ctx, email, password)
}

func (s *stubAuth) Logout(_ context.Context, userID string) error {
	s.loggedOut = append(s.loggedOut, userID)
	return s.err
}

func (s *stubAuth) SendPasswordReset(_ context.Context, email string) error {
	s.resetEmail = email
	return s.err
}

type stubShare struct {
	contentType string
	body        []byte
	err         error
}

func (s *stubShare) ShareCard(_ context.Context, _ string, image io.Reader, contentType string, _ int64) (*core.SharedCard, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.contentType = contentType
	s.body, _ = io.ReadAll(image)
	return &core.SharedCard{URL: "https://cdn.example.test/card.png", Path: "shared-cards/cat-1.png", CreatedAt: time.UnixMilli(1)}, nil
}
