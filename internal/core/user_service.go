package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/dailywhisker/internal/db"
	"github.com/example/dailywhisker/internal/models"
)

// ErrUserNotFound is returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// userService implements the UserService interface.
type userService struct {
	userRepo db.UserRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetOrCreate retrieves a user by ID, creating the document with null rotation fields if missing.
// Returns the user, a boolean indicating if the user was created, and an error if any.
func (s *userService) GetOrCreate(ctx context.Context, userID, email string) (*models.User, bool, error) {
	return getOrCreateUser(ctx, s.userRepo, userID, email)
}

func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	return user, nil
}

// getOrCreateUser is shared by the user and cat services. A concurrent create for the same ID
// is resolved by reading back the winner's document.
func getOrCreateUser(ctx context.Context, repo db.UserRepository, userID, email string) (*models.User, bool, error) {
	user, err := repo.GetByID(ctx, userID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}

	newUser := &models.User{ID: userID, Email: email}
	if err := repo.Create(ctx, newUser); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			existing, getErr := repo.GetByID(ctx, userID)
			if getErr != nil {
				return nil, false, fmt.Errorf("failed to read user '%s' after concurrent create: %w", userID, getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", userID, err)
	}
	return newUser, true, nil
}
