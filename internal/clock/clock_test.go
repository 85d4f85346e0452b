package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
)

func TestLocal_ShiftsThreeHours(t *testing.T) {
	utc := time.Date(2025, 3, 1, 2, 30, 0, 0, time.UTC)

	local := clock.Local(utc)

	assert.Equal(t, 28, local.Day())
	assert.Equal(t, time.February, local.Month())
	assert.Equal(t, 23, local.Hour())
	assert.True(t, local.Equal(utc))
}

func TestDateOf_UsesLocalCalendarDay(t *testing.T) {
	utc := time.Date(2025, 1, 2, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, clock.Date(2025, 1, 1), clock.DateOf(clock.Local(utc)))
	assert.Equal(t, clock.Date(2025, 1, 2), clock.DateOf(utc))
}

func TestToday(t *testing.T) {
	c := clock.Func(func() time.Time {
		return clock.Local(time.Date(2025, 6, 10, 2, 59, 0, 0, time.UTC))
	})

	assert.Equal(t, clock.Date(2025, 6, 9), clock.Today(c))
}

func TestZone(t *testing.T) {
	_, off := time.Date(2025, 1, 1, 0, 0, 0, 0, clock.Zone(-3*time.Hour)).Zone()
	assert.Equal(t, -3*3600, off)
	assert.Equal(t, "UTC-3", clock.Zone(-3*time.Hour).String())
	assert.Equal(t, "UTC", clock.Zone(0).String())
}

func TestSystem_ReportsFixedOffset(t *testing.T) {
	now := clock.NewSystem(-3 * time.Hour).Now()

	_, off := now.Zone()
	assert.Equal(t, -3*3600, off)
}
