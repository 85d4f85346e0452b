// Package obligation sends reminders for bills that recur monthly, such as
// rent or subscriptions, and rolls each one forward to its next due date.
package obligation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("obligation not found")

type Obligation struct {
	ID          uuid.UUID
	Description string
	Amount      decimal.Decimal
	DueDate     time.Time
	Recurring   bool
	// PreferredDay is the day of month the obligation falls on. Zero keeps
	// the day of the current due date.
	PreferredDay int
	LastSentAt   *time.Time
	Active       bool
}

//go:generate mockgen -source=obligation.go -destination=obligation_mock.go -package=obligation
type Repository interface {
	ListActive(ctx context.Context) ([]*Obligation, error)
	Update(ctx context.Context, o *Obligation) error
}

type Notifier interface {
	Notify(ctx context.Context, o *Obligation) error
}

// LogNotifier writes reminders to the log. Delivery channels live outside
// this module.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, o *Obligation) error {
	n.Log.Info().
		Str("obligation_id", o.ID.String()).
		Str("description", o.Description).
		Str("amount", o.Amount.StringFixed(2)).
		Str("due_date", o.DueDate.Format(time.DateOnly)).
		Msg("obligation due")

	return nil
}
