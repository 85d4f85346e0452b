package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
	"github.com/MrJamesThe3rd/cardcycle/internal/gate"
	"github.com/MrJamesThe3rd/cardcycle/internal/worker"
)

var local = clock.Zone(clock.DefaultOffset)

func fixedClock(t time.Time) clock.Clock {
	return clock.Func(func() time.Time { return t })
}

// stopAfter is a job that cancels the loop once it has seen n ticks.
func stopAfter(n int32, cancel context.CancelFunc, ticks *atomic.Int32) worker.Job {
	return worker.Job{
		Name:    "stop",
		Trigger: worker.Always(),
		Handler: func(context.Context) error {
			if ticks.Add(1) >= n {
				cancel()
			}

			return nil
		},
	}
}

func newLoop(g *gate.Gate, c clock.Clock) *worker.Loop {
	l := worker.NewLoop("test", g, c, zerolog.Nop())
	l.Interval = time.Millisecond
	l.ErrorBackoff = time.Millisecond

	return l
}

func TestLoop_GatedJobRunsOncePerDay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Date(2025, 3, 10, 9, 30, 0, 0, local)
	c := fixedClock(now)
	g := gate.New(gate.NewMemoryStore(), c)

	var runs, ticks atomic.Int32

	l := newLoop(g, c)
	l.Jobs = []worker.Job{
		{
			Name:    "reminders",
			Trigger: worker.DailyAt(9),
			GateKey: "ObligationReminders",
			Handler: func(context.Context) error {
				runs.Add(1)
				return nil
			},
		},
		stopAfter(5, cancel, &ticks),
	}

	require.NoError(t, l.Run(ctx))
	assert.Equal(t, int32(5), ticks.Load())
	assert.Equal(t, int32(1), runs.Load())

	ran, err := g.HasRunToday(context.Background(), "ObligationReminders")
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestLoop_TriggerNotDue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := fixedClock(time.Date(2025, 3, 10, 8, 59, 0, 0, local))

	var runs, ticks atomic.Int32

	l := newLoop(gate.New(gate.NewMemoryStore(), c), c)
	l.Jobs = []worker.Job{
		{
			Name:    "reminders",
			Trigger: worker.DailyAt(9),
			GateKey: "ObligationReminders",
			Handler: func(context.Context) error {
				runs.Add(1)
				return nil
			},
		},
		stopAfter(3, cancel, &ticks),
	}

	require.NoError(t, l.Run(ctx))
	assert.Zero(t, runs.Load())
}

func TestLoop_FailedGatedJobIsRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := fixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, local))
	g := gate.New(gate.NewMemoryStore(), c)

	var runs, ticks atomic.Int32

	l := newLoop(g, c)
	l.Jobs = []worker.Job{
		{
			Name:    "closing",
			Trigger: worker.Daily(),
			GateKey: "InvoiceClosing",
			Handler: func(context.Context) error {
				if runs.Add(1) == 1 {
					return errors.New("database unavailable")
				}

				return nil
			},
		},
		stopAfter(4, cancel, &ticks),
	}

	require.NoError(t, l.Run(ctx))
	assert.Equal(t, int32(2), runs.Load(), "one failure, one success, then gated")
}

func TestLoop_SurvivesPanics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := clock.NewSystem(clock.DefaultOffset)

	var calls, ticks atomic.Int32

	l := newLoop(nil, c)
	l.Jobs = []worker.Job{
		{
			Name:    "flaky",
			Trigger: worker.Always(),
			Handler: func(context.Context) error {
				if calls.Add(1) == 1 {
					panic("nil map write")
				}

				return nil
			},
		},
		stopAfter(3, cancel, &ticks),
	}

	require.NoError(t, l.Run(ctx))
	assert.Equal(t, int32(3), calls.Load())
}

func TestLoop_ExitsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	l := worker.NewLoop("idle", nil, clock.NewSystem(clock.DefaultOffset), zerolog.Nop())
	l.Interval = time.Hour

	done := make(chan error, 1)

	go func() { done <- l.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
}

func TestLoop_NextWake(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ticks atomic.Int32

	l := worker.NewLoop("digest", nil, clock.NewSystem(clock.DefaultOffset), zerolog.Nop())
	l.Interval = time.Hour
	l.NextWake = func(now time.Time) time.Time { return now.Add(time.Millisecond) }
	l.Jobs = []worker.Job{stopAfter(3, cancel, &ticks)}

	done := make(chan struct{})

	go func() {
		_ = l.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
		assert.Equal(t, int32(3), ticks.Load())
	case <-time.After(time.Second):
		t.Fatal("loop ignored NextWake")
	}
}

func TestTriggers(t *testing.T) {
	monday := time.Date(2025, 3, 10, 8, 0, 0, 0, local)

	assert.True(t, worker.Always()(monday))
	assert.True(t, worker.Daily()(monday))
	assert.False(t, worker.DailyAt(9)(monday))
	assert.True(t, worker.DailyAt(8)(monday))
	assert.True(t, worker.WeeklyAt(time.Monday, 8)(monday))
	assert.False(t, worker.WeeklyAt(time.Monday, 9)(monday))
	assert.False(t, worker.WeeklyAt(time.Tuesday, 0)(monday))
}

func TestNextWeekly(t *testing.T) {
	next := worker.NextWeekly(time.Monday, 8)

	sunday := time.Date(2025, 3, 9, 23, 0, 0, 0, local)
	assert.Equal(t, time.Date(2025, 3, 10, 8, 0, 0, 0, local), next(sunday))

	mondayAtEight := time.Date(2025, 3, 10, 8, 0, 0, 0, local)
	assert.Equal(t, time.Date(2025, 3, 17, 8, 0, 0, 0, local), next(mondayAtEight))

	mondayEarly := time.Date(2025, 3, 10, 7, 0, 0, 0, local)
	assert.Equal(t, mondayAtEight, next(mondayEarly))
}

func TestSleep(t *testing.T) {
	assert.True(t, worker.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, worker.Sleep(ctx, time.Hour))
}

func TestRunAfter(t *testing.T) {
	t.Run("RunsOnce", func(t *testing.T) {
		var calls atomic.Int32

		err := worker.RunAfter(context.Background(), time.Millisecond, func(context.Context) error {
			calls.Add(1)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("CancelledBeforeDelay", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		err := worker.RunAfter(ctx, time.Hour, func(context.Context) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("PanicBecomesError", func(t *testing.T) {
		err := worker.RunAfter(context.Background(), 0, func(context.Context) error {
			panic("boom")
		})
		assert.ErrorContains(t, err, "panicked")
	})
}
