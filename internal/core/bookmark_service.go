package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/db"
	"github.com/example/dailywhisker/internal/models"
)

const maxBookmarkNoteLength = 500

var (
	ErrInvalidBookmark = errors.New("invalid bookmark")
	ErrInvalidWindow   = errors.New("invalid time window")
)

type bookmarkService struct {
	bookmarkRepo db.BookmarkRepository
	catRepo      db.CatRepository
	loc          *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

// NewBookmarkService creates a BookmarkService. loc is the calendar used by the day and month filters.
func NewBookmarkService(bookmarkRepo db.BookmarkRepository, catRepo db.CatRepository, loc *time.Location, logger *zap.Logger) BookmarkService {
	if loc == nil {
		loc = time.UTC
	}
	return &bookmarkService{
		bookmarkRepo: bookmarkRepo,
		catRepo:      catRepo,
		loc:          loc,
		now:          time.Now,
		logger:       logger,
	}
}

// AddBookmark is read-then-write: two simultaneous adds for the same cat can both pass the
// existence check and store two documents. A repeated add returns the stored bookmark unchanged.
func (s *bookmarkService) AddBookmark(ctx context.Context, userID, catID, note string) (*models.Bookmark, bool, error) {
	catID = strings.TrimSpace(catID)
	if catID == "" {
		return nil, false, fmt.Errorf("%w: catId is required", ErrInvalidBookmark)
	}
	if utf8.RuneCountInString(note) > maxBookmarkNoteLength {
		return nil, false, fmt.Errorf("%w: note exceeds %d characters", ErrInvalidBookmark, maxBookmarkNoteLength)
	}

	if _, err := s.catRepo.GetByID(ctx, catID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: '%s'", ErrCatNotFound, catID)
		}
		return nil, false, fmt.Errorf("failed to verify cat '%s': %w", catID, err)
	}

	existing, err := s.bookmarkRepo.FindByCatID(ctx, userID, catID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to check existing bookmark: %w", err)
	}

	bookmark := &models.Bookmark{
		CatID:     catID,
		Note:      note,
		Timestamp: s.now().UnixMilli(),
	}
	if _, err := s.bookmarkRepo.Create(ctx, userID, bookmark); err != nil {
		return nil, false, err
	}
	return bookmark, true, nil
}

func (s *bookmarkService) ListBookmarks(ctx context.Context, userID string, window models.TimeWindow) ([]models.BookmarkWithCat, error) {
	if _, ok := models.ParseTimeWindow(string(window)); !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidWindow, window)
	}

	all, err := s.bookmarkRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	filtered := FilterBookmarks(all, window, s.now().In(s.loc))

	result := make([]models.BookmarkWithCat, 0, len(filtered))
	for _, b := range filtered {
		entry := models.BookmarkWithCat{Bookmark: b}
		cat, err := s.catRepo.GetByID(ctx, b.CatID)
		switch {
		case err == nil:
			entry.Cat = cat
		case errors.Is(err, db.ErrNotFound):
			s.logger.Debug("Bookmarked cat no longer exists", zap.String("catID", b.CatID))
		default:
			return nil, fmt.Errorf("failed to load bookmarked cat '%s': %w", b.CatID, err)
		}
		result = append(result, entry)
	}
	return result, nil
}

// FilterBookmarks keeps the bookmarks that fall inside window relative to now. Calendar comparisons
// use now's location. Month matches the month number only, so January of any year matches January.
func FilterBookmarks(bookmarks []models.Bookmark, window models.TimeWindow, now time.Time) []models.Bookmark {
	if window == "" || window == models.WindowAll {
		return bookmarks
	}
	loc := now.Location()
	out := make([]models.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		t := b.Time(loc)
		var keep bool
		switch window {
		case models.WindowDay:
			y1, m1, d1 := t.Date()
			y2, m2, d2 := now.Date()
			keep = y1 == y2 && m1 == m2 && d1 == d2
		case models.WindowWeek:
			keep = now.Sub(t) <= 7*24*time.Hour
		case models.WindowMonth:
			keep = t.Month() == now.Month()
		}
		if keep {
			out = append(out, b)
		}
	}
	return out
}
