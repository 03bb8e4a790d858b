// Package domain contains the core entities shared by the contribution chart pipeline.
package domain

import (
	"fmt"
	"time"
)

// DateLayout is the ISO day-precision layout used for every ActivityRecord date.
const DateLayout = "2006-01-02"

// MaxLevel is the highest intensity bucket an activity count can map to.
const MaxLevel = 4

// Level thresholds. A count at or above a threshold lands in that bucket.
const (
	level1Threshold = 1
	level2Threshold = 5
	level3Threshold = 10
	level4Threshold = 20
)

// ActivityRecord is one day's activity count and its derived intensity level.
// Records are immutable once handed to the rendering pipeline.
type ActivityRecord struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// ContributionData is the normalized output of the data acquisition layer.
type ContributionData struct {
	Total int              `json:"total"`
	Days  []ActivityRecord `json:"days"`
}

// NewActivityRecord builds a record for the given day, deriving the level from count.
func NewActivityRecord(day time.Time, count int) ActivityRecord {
	return ActivityRecord{
		Date:  FormatDate(day),
		Count: count,
		Level: LevelForCount(count),
	}
}

// EmptyRecord returns a zero-activity record for the given day.
func EmptyRecord(day time.Time) ActivityRecord {
	return ActivityRecord{Date: FormatDate(day)}
}

// LevelForCount buckets an activity count into a level in [0, MaxLevel].
// The thresholds are fixed: 0, 1-4, 5-9, 10-19, 20+.
func LevelForCount(count int) int {
	switch {
	case count < level1Threshold:
		return 0
	case count < level2Threshold:
		return 1
	case count < level3Threshold:
		return 2
	case count < level4Threshold:
		return 3
	default:
		return MaxLevel
	}
}

// ClampLevel forces an externally supplied level into [0, MaxLevel].
func ClampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// FormatDate renders a time as a calendar date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DateLayout string into UTC midnight of that day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// StartOfDay truncates t to midnight UTC of its own calendar day.
// The calendar day is taken in t's location so "today" matches the caller's clock.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SumCounts adds up the counts of the given records.
func SumCounts(days []ActivityRecord) int {
	total := 0
	for _, d := range days {
		total += d.Count
	}
	return total
}
