package worker

import "time"

// Trigger decides from the local time whether a job is due this tick.
type Trigger func(now time.Time) bool

// Always fires on every tick.
func Always() Trigger {
	return func(time.Time) bool { return true }
}

// Daily fires on every tick of the day; pair it with a gate key to run once.
func Daily() Trigger {
	return DailyAt(0)
}

// DailyAt fires on ticks at or after hour, local time.
func DailyAt(hour int) Trigger {
	return func(now time.Time) bool { return now.Hour() >= hour }
}

// WeeklyAt fires on weekday at or after hour, local time.
func WeeklyAt(weekday time.Weekday, hour int) Trigger {
	return func(now time.Time) bool {
		return now.Weekday() == weekday && now.Hour() >= hour
	}
}

// NextWeekly returns the next instant at weekday and hour strictly after
// now, in now's location. Loops use it as NextWake.
func NextWeekly(weekday time.Weekday, hour int) func(now time.Time) time.Time {
	return func(now time.Time) time.Time {
		days := (int(weekday) - int(now.Weekday()) + 7) % 7
		next := time.Date(now.Year(), now.Month(), now.Day()+days, hour, 0, 0, 0, now.Location())

		if !next.After(now) {
			next = next.AddDate(0, 0, 7)
		}

		return next
	}
}
