package obligation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
	"github.com/MrJamesThe3rd/cardcycle/internal/schedule"
)

type Service struct {
	repo     Repository
	notifier Notifier
	log      zerolog.Logger
}

func NewService(repo Repository, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

// SendDueReminders notifies every active obligation due on or before the
// local date of now. Recurring obligations move to their next due date after
// now, skipping any missed months, so a long backlog yields one reminder.
// One-off obligations are deactivated. A failed notification leaves the
// obligation untouched for the next run.
func (s *Service) SendDueReminders(ctx context.Context, now time.Time) (int, error) {
	obligations, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing obligations: %w", err)
	}

	today := clock.DateOf(now)
	sent := 0

	var errs []error

	for _, o := range obligations {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		if !o.Active || o.DueDate.After(today) {
			continue
		}

		if o.LastSentAt != nil && clock.DateOf(o.LastSentAt.In(now.Location())).Equal(today) {
			continue
		}

		if err := s.notifier.Notify(ctx, o); err != nil {
			errs = append(errs, fmt.Errorf("notifying %s: %w", o.ID, err))
			continue
		}

		sentAt := now
		o.LastSentAt = &sentAt

		if o.Recurring {
			if o.PreferredDay <= 0 {
				o.PreferredDay = o.DueDate.Day()
			}

			o.DueDate = schedule.NextFutureOccurrence(o.DueDate, o.PreferredDay, today)
		} else {
			o.Active = false
		}

		if err := s.repo.Update(ctx, o); err != nil {
			errs = append(errs, fmt.Errorf("updating %s: %w", o.ID, err))
			continue
		}

		sent++

		s.log.Debug().
			Str("obligation_id", o.ID.String()).
			Bool("active", o.Active).
			Str("next_due", o.DueDate.Format(time.DateOnly)).
			Msg("reminder sent")
	}

	return sent, errors.Join(errs...)
}
