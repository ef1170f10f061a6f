package core

import (
	"math"
	"strings"
	"time"

	"github.com/jo-hoe/gotransform/internal/backend/database"
)

// PhotoFilter narrows the gallery. All set criteria must match.
type PhotoFilter struct {
	// Type is a photo type; empty or "all" matches any.
	Type string
	// PeriodDays keeps photos at most this many whole days old; 0 disables it.
	PeriodDays int
	// Search is a case-insensitive substring of the notes.
	Search string
}

func (f PhotoFilter) Matches(photo *database.Photo, now time.Time) bool {
	if f.Type != "" && f.Type != "all" && string(photo.Type) != f.Type {
		return false
	}
	if f.PeriodDays > 0 {
		age := int(math.Floor(now.Sub(photo.Date).Hours() / 24))
		if age > f.PeriodDays {
			return false
		}
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		if photo.Notes == nil || !strings.Contains(strings.ToLower(*photo.Notes), strings.ToLower(search)) {
			return false
		}
	}
	return true
}

// Apply returns the matching photos in their original order.
func (f PhotoFilter) Apply(photos []*database.Photo, now time.Time) []*database.Photo {
	matched := make([]*database.Photo, 0, len(photos))
	for _, photo := range photos {
		if f.Matches(photo, now) {
			matched = append(matched, photo)
		}
	}
	return matched
}
