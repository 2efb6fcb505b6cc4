package models

import "time"

// Bookmark is stored under users/{id}/bookmarks/{auto-id}.
type Bookmark struct {
	ID        string `json:"id" firestore:"-"`
	CatID     string `json:"catId" firestore:"catId"`
	Note      string `json:"note" firestore:"note"`
	Timestamp int64  `json:"timestamp" firestore:"timestamp"` // ms since epoch
}

// Time returns the bookmark timestamp as a time.Time in loc.
func (b Bookmark) Time(loc *time.Location) time.Time {
	return time.UnixMilli(b.Timestamp).In(loc)
}

// BookmarkWithCat is a bookmark enriched with its cat record, if it still exists.
type BookmarkWithCat struct {
	Bookmark
	Cat *Cat `json:"cat,omitempty"`
}

// TimeWindow restricts a bookmark listing.
type TimeWindow string

const (
	WindowAll   TimeWindow = "all"
	WindowDay   TimeWindow = "day"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
)

// ParseTimeWindow maps a query value to a TimeWindow. Empty means all.
func ParseTimeWindow(s string) (TimeWindow, bool) {
	switch TimeWindow(s) {
	case "", WindowAll:
		return WindowAll, true
	case WindowDay, WindowWeek, WindowMonth:
		return TimeWindow(s), true
	}
	return "", false
}
