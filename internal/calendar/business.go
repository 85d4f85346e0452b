package calendar

import "time"

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsBusinessDay reports whether date is a weekday that is not a holiday.
func IsBusinessDay(date time.Time) bool {
	return !IsWeekend(date) && !IsHoliday(date)
}

// NextBusinessDay returns date itself when it is a business day, otherwise
// the first business day after it. The result is a midnight UTC date.
func NextBusinessDay(date time.Time) time.Time {
	d := dateOnly(date)
	for !IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}

	return d
}
