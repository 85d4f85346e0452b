// Package clock reads wall time in the platform's fixed local offset.
//
// All date-only comparisons use a fixed UTC offset (UTC-3 by default) with
// no daylight-saving adjustment. Brazil has observed no DST since 2019; if
// that changes, the offset here is the single place to revisit.
package clock

import (
	"fmt"
	"time"
)

// DefaultOffset is UTC-3.
const DefaultOffset = -3 * time.Hour

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System reads time.Now and converts it to a fixed offset.
type System struct {
	zone *time.Location
}

// NewSystem returns a clock for the given offset from UTC.
func NewSystem(offset time.Duration) System {
	return System{zone: Zone(offset)}
}

func (s System) Now() time.Time {
	zone := s.zone
	if zone == nil {
		zone = Zone(DefaultOffset)
	}

	return time.Now().In(zone)
}

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// Zone builds a fixed location for offset, named like "UTC-3".
func Zone(offset time.Duration) *time.Location {
	hours := int(offset / time.Hour)

	name := "UTC"
	if hours != 0 {
		name = fmt.Sprintf("UTC%+d", hours)
	}

	return time.FixedZone(name, int(offset/time.Second))
}

// Local converts t to the default fixed offset.
func Local(t time.Time) time.Time {
	return t.In(Zone(DefaultOffset))
}

// DateOf returns the calendar date of t, as seen in t's own location, at
// midnight UTC. Dates are compared with Equal.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the local calendar date of c.Now().
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}

// Date is a shorthand for a midnight UTC date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
