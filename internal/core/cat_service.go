package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/db"
	"github.com/example/dailywhisker/internal/models"
)

var (
	ErrNoCatsAvailable = errors.New("no cats available")
	ErrCatNotFound     = errors.New("cat not found")
)

// CatServiceOption customizes a cat service.
type CatServiceOption func(*catService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CatServiceOption {
	return func(s *catService) { s.now = now }
}

// WithPicker replaces the uniform random index picker. pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) CatServiceOption {
	return func(s *catService) { s.pick = pick }
}

type catService struct {
	userRepo db.UserRepository
	catRepo  db.CatRepository
	window   time.Duration
	now      func() time.Time
	pick     func(n int) int
	logger   *zap.Logger
}

// NewCatService creates a CatService that keeps each user's cat for window before drawing a new one.
func NewCatService(userRepo db.UserRepository, catRepo db.CatRepository, window time.Duration, logger *zap.Logger, opts ...CatServiceOption) CatService {
	s := &catService{
		userRepo: userRepo,
		catRepo:  catRepo,
		window:   window,
		now:      time.Now,
		pick:     rand.IntN,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDailyCat returns the user's current cat, drawing a new one when the stored one is older than the window.
// Two concurrent draws for the same user both write; the last write wins.
func (s *catService) GetDailyCat(ctx context.Context, userID, email string) (*models.DailyCat, error) {
	user, _, err := getOrCreateUser(ctx, s.userRepo, userID, email)
	if err != nil {
		return nil, err
	}

	now := s.now()
	catID, generatedAt, reused := "", now.UnixMilli(), false

	if user.HasRotation() && now.Sub(time.UnixMilli(*user.LastGeneratedTimestamp)) < s.window {
		catID = *user.LastGeneratedCatID
		generatedAt = *user.LastGeneratedTimestamp
		reused = true
	} else {
		catID, err = s.drawCat(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdateRotation(ctx, userID, catID, generatedAt); err != nil {
			return nil, fmt.Errorf("failed to record daily cat for user '%s': %w", userID, err)
		}
		s.logger.Debug("Generated new daily cat", zap.String("userID", userID), zap.String("catID", catID))
	}

	cat, err := s.GetCat(ctx, catID)
	if err != nil {
		return nil, err
	}
	return &models.DailyCat{CatID: catID, Cat: cat, GeneratedAt: generatedAt, Reused: reused}, nil
}

func (s *catService) drawCat(ctx context.Context) (string, error) {
	ids, err := s.catRepo.ListIDs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list cats: %w", err)
	}
	if len(ids) == 0 {
		return "", ErrNoCatsAvailable
	}
	return ids[s.pick(len(ids))], nil
}

func (s *catService) GetCat(ctx context.Context, catID string) (*models.Cat, error) {
	cat, err := s.catRepo.GetByID(ctx, catID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.logger.Warn("Referenced cat does not exist", zap.String("catID", catID))
			return nil, fmt.Errorf("%w: '%s'", ErrCatNotFound, catID)
		}
		return nil, fmt.Errorf("failed to get cat '%s': %w", catID, err)
	}
	return cat, nil
}
