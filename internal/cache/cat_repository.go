package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/db"
	"github.com/example/dailywhisker/internal/models"
)

const (
	catKeyPrefix = "dailywhisker:cat:"
	catIDsKey    = "dailywhisker:cat-ids"
)

// CatRepository is a read-through cache in front of a db.CatRepository.
// Cache failures are logged and fall back to the underlying store.
type CatRepository struct {
	next   db.CatRepository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatRepository wraps next with cache.
func NewCatRepository(next db.CatRepository, c Cache, ttl time.Duration, logger *zap.Logger) *CatRepository {
	return &CatRepository{next: next, cache: c, ttl: ttl, logger: logger}
}

var _ db.CatRepository = (*CatRepository)(nil)

func (r *CatRepository) ListIDs(ctx context.Context) ([]string, error) {
	if raw, err := r.cache.Get(ctx, catIDsKey); err == nil {
		var ids []string
		if jsonErr := json.Unmarshal([]byte(raw), &ids); jsonErr == nil {
			return ids, nil
		}
	} else if !errors.Is(err, ErrMiss) {
		r.logger.Debug("cat id cache unavailable", zap.Error(err))
	}

	ids, err := r.next.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	// An empty roster is not cached so a seeded collection shows up immediately.
	if len(ids) > 0 {
		r.store(ctx, catIDsKey, ids)
	}
	return ids, nil
}

func (r *CatRepository) GetByID(ctx context.Context, catID string) (*models.Cat, error) {
	key := catKeyPrefix + catID
	if raw, err := r.cache.Get(ctx, key); err == nil {
		var cat models.Cat
		if jsonErr := json.Unmarshal([]byte(raw), &cat); jsonErr == nil {
			cat.ID = catID
			return &cat, nil
		}
	} else if !errors.Is(err, ErrMiss) {
		r.logger.Debug("cat cache unavailable", zap.String("catID", catID), zap.Error(err))
	}

	cat, err := r.next.GetByID(ctx, catID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, cat)
	return cat, nil
}

func (r *CatRepository) Create(ctx context.Context, cat *models.Cat) (string, error) {
	id, err := r.next.Create(ctx, cat)
	if err != nil {
		return "", err
	}
	r.invalidate(ctx, catIDsKey)
	return id, nil
}

// DeleteAll clears the store, the cached id list and every cached cat record.
func (r *CatRepository) DeleteAll(ctx context.Context) (int, error) {
	ids, err := r.next.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, catIDsKey)
	for _, id := range ids {
		keys = append(keys, catKeyPrefix+id)
	}

	n, err := r.next.DeleteAll(ctx)
	// Partial deletes still leave stale entries, so invalidate either way.
	r.invalidate(ctx, keys...)
	return n, err
}

func (r *CatRepository) store(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn("failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, key, string(raw), r.ttl); err != nil {
		r.logger.Debug("cache write skipped", zap.String("key", key), zap.Error(err))
	}
}

func (r *CatRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
