// Package schedule computes the next dates of monthly recurring events.
package schedule

import "time"

// NextMonthlyOccurrence returns preferredDay of the month after current,
// clamped to that month's length. A preferredDay of zero or less keeps
// current's day of month. The result is a date at midnight UTC.
func NextMonthlyOccurrence(current time.Time, preferredDay int) time.Time {
	if preferredDay <= 0 {
		preferredDay = current.Day()
	}

	next := time.Date(current.Year(), current.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(next.Year(), next.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()

	return time.Date(next.Year(), next.Month(), min(preferredDay, last), 0, 0, 0, 0, time.UTC)
}

// NextFutureOccurrence advances month by month from current until the
// occurrence is strictly after now, skipping every missed period at once.
// A preferredDay of zero or less is resolved from current once, so a clamped
// month in between does not pull later occurrences earlier.
func NextFutureOccurrence(current time.Time, preferredDay int, now time.Time) time.Time {
	if preferredDay <= 0 {
		preferredDay = current.Day()
	}

	next := NextMonthlyOccurrence(current, preferredDay)
	for !next.After(now) {
		next = NextMonthlyOccurrence(next, preferredDay)
	}

	return next
}
