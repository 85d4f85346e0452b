// Package worker runs table-driven polling loops for background jobs.
//
// Every tick reads the clock, walks the job table in order and runs each job
// whose trigger fires and whose gate key has not been claimed for the local
// day. Jobs run sequentially on the loop goroutine.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
	"github.com/MrJamesThe3rd/cardcycle/internal/gate"
)

const (
	defaultInterval     = time.Minute
	defaultErrorBackoff = 30 * time.Second
)

type Job struct {
	Name    string
	Trigger Trigger
	// GateKey limits the job to one successful run per local day. Empty
	// means the job runs whenever its trigger fires.
	GateKey string
	Handler func(ctx context.Context) error
}

type Loop struct {
	Name         string
	Jobs         []Job
	Interval     time.Duration
	ErrorBackoff time.Duration
	// NextWake, when set, replaces Interval after a clean tick: the loop
	// sleeps until the returned instant.
	NextWake func(now time.Time) time.Time

	gate  *gate.Gate
	clock clock.Clock
	log   zerolog.Logger
}

func NewLoop(name string, g *gate.Gate, c clock.Clock, log zerolog.Logger) *Loop {
	return &Loop{
		Name:         name,
		Interval:     defaultInterval,
		ErrorBackoff: defaultErrorBackoff,
		gate:         g,
		clock:        c,
		log:          log.With().Str("loop", name).Logger(),
	}
}

// Run ticks until ctx is cancelled and then returns nil.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info().Int("jobs", len(l.Jobs)).Dur("interval", l.Interval).Msg("loop started")

	for {
		if ctx.Err() != nil {
			break
		}

		now := l.clock.Now()
		failed := l.tick(ctx, now)

		if ctx.Err() != nil {
			break
		}

		if !Sleep(ctx, l.wait(now, failed)) {
			break
		}
	}

	l.log.Info().Msg("loop stopped")

	return nil
}

func (l *Loop) wait(now time.Time, failed bool) time.Duration {
	if failed {
		return l.ErrorBackoff
	}

	if l.NextWake != nil {
		if d := l.NextWake(now).Sub(l.clock.Now()); d > 0 {
			return d
		}
	}

	return l.Interval
}

// tick runs the due jobs once and reports whether any of them failed.
func (l *Loop) tick(ctx context.Context, now time.Time) bool {
	failed := false

	for _, job := range l.Jobs {
		if ctx.Err() != nil {
			return failed
		}

		if job.Trigger != nil && !job.Trigger(now) {
			continue
		}

		gated := job.GateKey != "" && l.gate != nil

		if gated {
			ok, err := l.gate.ShouldRun(ctx, job.GateKey, now)
			if err != nil {
				l.log.Error().Err(err).Str("job", job.Name).Msg("checking gate")

				failed = true

				continue
			}

			if !ok {
				continue
			}
		}

		started := time.Now()

		if err := safeCall(ctx, job.Name, job.Handler); err != nil {
			if ctx.Err() != nil {
				return failed
			}

			failed = true

			l.log.Error().Err(err).Str("job", job.Name).Msg("job failed")

			if gated {
				if err := l.gate.Reset(ctx, job.GateKey); err != nil {
					l.log.Error().Err(err).Str("job", job.Name).Msg("resetting gate")
				}
			}

			continue
		}

		l.log.Debug().Str("job", job.Name).Dur("took", time.Since(started)).Msg("job finished")
	}

	return failed
}

func safeCall(ctx context.Context, name string, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", name, r)
		}
	}()

	return fn(ctx)
}

// Sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// RunAfter waits for delay and then calls fn once, recovering a panic into
// an error. It returns nil without calling fn when ctx ends first.
func RunAfter(ctx context.Context, delay time.Duration, fn func(ctx context.Context) error) error {
	if !Sleep(ctx, delay) {
		return nil
	}

	return safeCall(ctx, "run-after", fn)
}
