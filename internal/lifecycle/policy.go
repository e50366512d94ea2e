// Package lifecycle owns the item state transitions: collection, automatic
// archiving of stale reports and the bulk cleanup operations staff can run.
package lifecycle

import (
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// MonthBefore subtracts one calendar month from t, keeping the time of day.
// If the day does not exist in the previous month it is clamped to that
// month's last day, so March 31 maps to the end of February.
func MonthBefore(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	if last := daysIn(y, m-1, t.Location()); d > last {
		d = last
	}
	return time.Date(y, m-1, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month. Month values outside
// 1..12 are normalized the way time.Date does.
func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// ArchiveCutoff is the latest upload time that is old enough to archive at now.
func ArchiveCutoff(now time.Time) time.Time {
	return MonthBefore(now)
}

// ArchiveEligible reports whether AutoArchive at now would archive the item.
// An item exactly one month old is eligible.
func ArchiveEligible(item *model.Item, now time.Time) bool {
	if item.IsCollected || item.IsArchived {
		return false
	}
	return !item.UploadDate.After(ArchiveCutoff(now))
}
