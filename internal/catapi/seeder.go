package catapi

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/db"
	"github.com/example/dailywhisker/internal/models"
)

const (
	noImagePlaceholder    = "https://via.placeholder.com/600x400?text=No+Image+Found"
	errorImagePlaceholder = "https://via.placeholder.com/600x400?text=Error+Loading+Image"

	// Every specialEvery-th seeded cat is marked special.
	specialEvery = 10
)

// ImageSource looks up an image URL for a breed.
type ImageSource interface {
	BreedImage(ctx context.Context, breedID string) (string, error)
}

// SeedResult summarizes a seeding run.
type SeedResult struct {
	Deleted int
	Created []string
}

// Seeder rebuilds the cats collection.
type Seeder struct {
	cats   db.CatRepository
	images ImageSource
	roster *Roster
	pick   func(n int) int
	logger *zap.Logger
}

// NewSeeder builds a Seeder with a uniform random breed picker.
func NewSeeder(cats db.CatRepository, images ImageSource, roster *Roster, logger *zap.Logger) *Seeder {
	return &Seeder{
		cats:   cats,
		images: images,
		roster: roster,
		pick:   rand.IntN,
		logger: logger,
	}
}

// Seed deletes every cat and creates count new ones. Roster names are reused with a numeric
// suffix once count exceeds the roster size. Image lookups that fail fall back to a placeholder.
func (s *Seeder) Seed(ctx context.Context, count int) (*SeedResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	deleted, err := s.cats.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to clear cats collection: %w", err)
	}
	s.logger.Info("Deleted existing cats", zap.Int("count", deleted))

	result := &SeedResult{Deleted: deleted, Created: make([]string, 0, count)}
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		cat := s.buildCat(ctx, i)
		id, err := s.cats.Create(ctx, cat)
		if err != nil {
			return result, fmt.Errorf("failed to create cat #%d (%s): %w", i+1, cat.Name, err)
		}
		result.Created = append(result.Created, id)
		s.logger.Debug("Created cat", zap.Int("n", i+1), zap.String("id", id), zap.String("name", cat.Name), zap.String("breed", cat.BreedID))
	}
	return result, nil
}

func (s *Seeder) buildCat(ctx context.Context, i int) *models.Cat {
	entry := s.roster.Cats[i%len(s.roster.Cats)]
	name := entry.Name
	if round := i / len(s.roster.Cats); round > 0 {
		name = fmt.Sprintf("%s %d", entry.Name, round+1)
	}
	breed := s.roster.Breeds[s.pick(len(s.roster.Breeds))]

	imageURL, err := s.images.BreedImage(ctx, breed.ID)
	switch {
	case err != nil:
		s.logger.Warn("Breed image lookup failed, using placeholder", zap.String("breed", breed.ID), zap.Error(err))
		imageURL = errorImagePlaceholder
	case imageURL == "":
		imageURL = noImagePlaceholder
	}

	return &models.Cat{
		Name:        name,
		Description: entry.Description,
		ImageURL:    imageURL,
		Special:     (i+1)%specialEvery == 0,
		BreedID:     breed.ID,
	}
}
