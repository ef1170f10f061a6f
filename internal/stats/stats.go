// Package stats derives progress figures from photo records.
// Every function is pure; a figure that cannot be computed is reported
// as absent (nil or ok=false) rather than as zero.
package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/jo-hoe/gotransform/internal/backend/database"
)

const day = 24 * time.Hour

// DaysBetween returns the absolute distance between a and b in days, rounded up.
// It is 0 only for identical instants.
func DaysBetween(a, b time.Time) int {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(float64(diff) / float64(day)))
}

// WeightDelta returns after.Weight - before.Weight; negative means weight was lost.
func WeightDelta(before, after *database.Photo) (float64, bool) {
	if before == nil || after == nil || before.Weight == nil || after.Weight == nil {
		return 0, false
	}
	return roundWeight(*after.Weight - *before.Weight), true
}

// WeeklyRate returns the weight delta normalised to seven days.
func WeeklyRate(before, after *database.Photo) (float64, bool) {
	delta, ok := WeightDelta(before, after)
	if !ok {
		return 0, false
	}
	return perWeek(delta, DaysBetween(after.Date, before.Date))
}

type Comparison struct {
	Days         int
	WeightChange *float64
	WeeklyRate   *float64
}

func Compare(before, after *database.Photo) Comparison {
	result := Comparison{Days: DaysBetween(after.Date, before.Date)}
	if delta, ok := WeightDelta(before, after); ok {
		result.WeightChange = &delta
	}
	if rate, ok := WeeklyRate(before, after); ok {
		result.WeeklyRate = &rate
	}
	return result
}

// Journey summarises the whole photo history.
// WeightChange follows the pairwise convention: latest minus earliest, negative is a loss.
type Journey struct {
	TotalPhotos   int
	WeightChange  *float64
	DaysSince     int
	AverageWeekly *float64
}

func Summarize(photos []*database.Photo, now time.Time) Journey {
	journey := Journey{TotalPhotos: len(photos)}
	if len(photos) == 0 {
		return journey
	}

	chronological := sortedCopy(photos, database.SortByDateAsc)
	earliest := chronological[0]
	latest := chronological[len(chronological)-1]

	journey.DaysSince = DaysBetween(now, earliest.Date)
	if delta, ok := WeightDelta(earliest, latest); ok {
		journey.WeightChange = &delta
		if rate, ok := perWeek(delta, journey.DaysSince); ok {
			journey.AverageWeekly = &rate
		}
	}
	return journey
}

type TimelineEntry struct {
	Photo *database.Photo
	// Change is this photo's weight minus the next older photo's weight.
	Change *float64
	// Baseline marks the oldest photo.
	Baseline bool
}

// Timeline returns the photos newest first, each paired with the change since its older neighbour.
func Timeline(photos []*database.Photo) []TimelineEntry {
	sorted := sortedCopy(photos, database.SortByDateDesc)
	entries := make([]TimelineEntry, len(sorted))
	for i, photo := range sorted {
		entries[i] = TimelineEntry{Photo: photo, Baseline: i == len(sorted)-1}
		if i+1 < len(sorted) {
			if delta, ok := WeightDelta(sorted[i+1], photo); ok {
				entries[i].Change = &delta
			}
		}
	}
	return entries
}

// InitialWeight returns the weight of the earliest photo, if recorded.
func InitialWeight(photos []*database.Photo) *float64 {
	if len(photos) == 0 {
		return nil
	}
	chronological := sortedCopy(photos, database.SortByDateAsc)
	return chronological[0].Weight
}

// DescribeChange renders current relative to the initial weight for gallery captions.
// Changes that round to 0.0kg read as no change.
func DescribeChange(current, initial float64) string {
	diff := math.Round((current-initial)*10) / 10
	switch {
	case diff == 0:
		return "no change"
	case diff > 0:
		return fmt.Sprintf("+%.1fkg since start", diff)
	default:
		return fmt.Sprintf("%.1fkg since start", diff)
	}
}

func perWeek(delta float64, days int) (float64, bool) {
	if days == 0 {
		return 0, false
	}
	return delta * 7 / float64(days), true
}

// roundWeight trims float noise; weights carry at most two decimals.
func roundWeight(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortedCopy(photos []*database.Photo, sortFn func([]*database.Photo)) []*database.Photo {
	out := make([]*database.Photo, len(photos))
	copy(out, photos)
	sortFn(out)
	return out
}
