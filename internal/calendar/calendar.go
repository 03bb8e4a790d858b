// Package calendar turns sparse daily activity records into a dense,
// week-aligned calendar covering a trailing one-year window.
package calendar

import (
	"time"

	"github.com/contribgraph/contribgraph-server/internal/domain"
)

// DaysPerWeek is the number of rows in every calendar column.
const DaysPerWeek = 7

// Dense is a gap-free run of days starting on a Sunday and ending on a Saturday.
// len(Days) is always a multiple of DaysPerWeek.
type Dense struct {
	Start time.Time
	End   time.Time
	Days  []domain.ActivityRecord
}

// WeekCount returns the number of whole weeks (grid columns) in the calendar.
func (d Dense) WeekCount() int {
	return len(d.Days) / DaysPerWeek
}

// Week returns the seven days of week i, Sunday first.
func (d Dense) Week(i int) []domain.ActivityRecord {
	return d.Days[i*DaysPerWeek : (i+1)*DaysPerWeek]
}

// Weeks partitions the calendar into contiguous seven-day columns.
func (d Dense) Weeks() [][]domain.ActivityRecord {
	weeks := make([][]domain.ActivityRecord, 0, d.WeekCount())
	for i := range d.WeekCount() {
		weeks = append(weeks, d.Week(i))
	}
	return weeks
}

// Total sums the activity counts inside the window.
func (d Dense) Total() int {
	return domain.SumCounts(d.Days)
}

// Window returns the inclusive display range for a reference date: from the
// Sunday on or before reference minus one year through the Saturday on or
// after reference. Both bounds are UTC midnight.
func Window(reference time.Time) (start, end time.Time) {
	ref := domain.StartOfDay(reference)

	yearAgo := ref.AddDate(-1, 0, 0)
	start = yearAgo.AddDate(0, 0, -int(yearAgo.Weekday()))
	end = ref.AddDate(0, 0, int(time.Saturday-ref.Weekday()))

	return start, end
}

// Normalize expands records into the dense window anchored at reference.
//
// Days without a record are synthesized with count 0 and level 0. When two
// records share a date the one appearing later in records wins. Levels are
// clamped into [0, domain.MaxLevel] so every day maps onto a palette entry.
func Normalize(records []domain.ActivityRecord, reference time.Time) Dense {
	byDate := make(map[string]domain.ActivityRecord, len(records))
	for _, rec := range records {
		byDate[rec.Date] = rec
	}

	start, end := Window(reference)
	total := int(end.Sub(start).Hours()/24) + 1

	days := make([]domain.ActivityRecord, 0, total)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := domain.FormatDate(day)
		rec, ok := byDate[key]
		if !ok {
			days = append(days, domain.EmptyRecord(day))
			continue
		}
		rec.Level = domain.ClampLevel(rec.Level)
		days = append(days, rec)
	}

	return Dense{
		Start: start,
		End:   end,
		Days:  days,
	}
}
