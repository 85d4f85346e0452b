// Package reconcile repairs installments bound to the wrong invoice and
// keeps invoice totals in line with their installments.
//
// A pass runs in two phases. Phase A moves every credit installment whose
// invoice month differs from the month the billing cycle expects, creating
// the target invoice on demand, then recomputes the totals of every invoice
// it touched. Phase B audits all unpaid invoices: it corrects totals that
// drifted from the sum of their installments and deletes empty invoices.
//
// The phases do not share a transaction. A crash between them leaves some
// totals stale until the next pass, which finds and fixes them. Running a
// pass twice with no new data changes nothing the second time.
package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
)

// tolerance is the largest total difference left uncorrected.
var tolerance = decimal.RequireFromString("0.001")

//go:generate mockgen -source=reconciler.go -destination=gateway_mock.go -package=reconcile
type Gateway interface {
	// FetchInstallmentsWithInvoiceAndPurchase returns only installments bound
	// to both an invoice and a purchase, with both loaded.
	FetchInstallmentsWithInvoiceAndPurchase(ctx context.Context) ([]*billing.Installment, error)
	// FetchOpenInvoices returns unpaid invoices with installments loaded.
	FetchOpenInvoices(ctx context.Context) ([]*billing.Invoice, error)
	// FetchInvoice returns one invoice with installments loaded.
	FetchInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error)
	GetOrCreateInvoice(ctx context.Context, cardID uuid.UUID, month time.Time) (*billing.Invoice, error)
	LookupCard(ctx context.Context, id uuid.UUID) (*billing.Card, error)
	SaveChanges(ctx context.Context, changes billing.Changes) error
}

// Result counts what a pass changed.
type Result struct {
	Reassigned int
	Corrected  int
	Removed    int
	Skipped    int
}

func (r Result) Changed() bool {
	return r.Reassigned > 0 || r.Corrected > 0 || r.Removed > 0
}

type Reconciler struct {
	gw  Gateway
	log zerolog.Logger
}

func New(gw Gateway, log zerolog.Logger) *Reconciler {
	return &Reconciler{gw: gw, log: log}
}

// ReconcileOnce runs phase A then phase B. A phase A failure does not stop
// phase B, which only reads current state; both errors are returned joined.
func (r *Reconciler) ReconcileOnce(ctx context.Context) (Result, error) {
	started := time.Now()

	res, errA := r.ReassignInstallments(ctx)
	if errA != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		r.log.Error().Err(errA).Msg("reassignment phase aborted")
	}

	corrected, removed, errB := r.AuditOpenInvoices(ctx)
	if errB != nil {
		r.log.Error().Err(errB).Msg("invoice audit phase aborted")
	}

	res.Corrected = corrected
	res.Removed = removed

	r.log.Info().
		Int("reassigned", res.Reassigned).
		Int("corrected", res.Corrected).
		Int("removed", res.Removed).
		Int("skipped", res.Skipped).
		Dur("took", time.Since(started)).
		Msg("reconciliation finished")

	return res, errors.Join(errA, errB)
}

// ReassignInstallments is phase A. The returned Result carries Reassigned
// and Skipped only.
func (r *Reconciler) ReassignInstallments(ctx context.Context) (Result, error) {
	var res Result

	installments, err := r.gw.FetchInstallmentsWithInvoiceAndPurchase(ctx)
	if err != nil {
		return res, fmt.Errorf("fetching installments: %w", err)
	}

	var (
		moved   []*billing.Installment
		dirty   = make(map[uuid.UUID]struct{})
		known   = make(map[uuid.UUID]struct{})
		missing = make(map[uuid.UUID]struct{})
	)

	for _, inst := range installments {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		p := inst.Purchase
		if p == nil || inst.Invoice == nil || p.PaymentMethod != billing.PaymentCredit {
			continue
		}

		expected := billing.ExpectedInstallmentMonth(p.Date, inst.Number, inst.Total)
		if billing.SameMonth(inst.Invoice.ReferenceMonth, expected) {
			continue
		}

		if _, gone := missing[p.CardID]; gone {
			res.Skipped++
			continue
		}

		if _, ok := known[p.CardID]; !ok {
			_, err := r.gw.LookupCard(ctx, p.CardID)
			if errors.Is(err, billing.ErrCardNotFound) {
				missing[p.CardID] = struct{}{}
				res.Skipped++

				r.log.Warn().
					Str("card_id", p.CardID.String()).
					Str("installment_id", inst.ID.String()).
					Msg("card not found, installment left in place")

				continue
			}

			if err != nil {
				return res, fmt.Errorf("looking up card %s: %w", p.CardID, err)
			}

			known[p.CardID] = struct{}{}
		}

		target, err := r.gw.GetOrCreateInvoice(ctx, p.CardID, expected)
		if err != nil {
			return res, fmt.Errorf("getting invoice %s for card %s: %w", expected.Format("2006-01"), p.CardID, err)
		}

		r.log.Debug().
			Str("installment_id", inst.ID.String()).
			Str("from", inst.Invoice.ReferenceMonth.Format("2006-01")).
			Str("to", target.ReferenceMonth.Format("2006-01")).
			Msg("reassigning installment")

		dirty[inst.Invoice.ID] = struct{}{}
		dirty[target.ID] = struct{}{}

		inst.InvoiceID = &target.ID
		inst.Invoice = target
		inst.DueDate = target.DueDate
		moved = append(moved, inst)
	}

	if len(moved) == 0 {
		return res, nil
	}

	if err := r.gw.SaveChanges(ctx, billing.Changes{Installments: moved}); err != nil {
		return res, fmt.Errorf("saving reassignments: %w", err)
	}

	res.Reassigned = len(moved)

	if err := r.recomputeTotals(ctx, dirty); err != nil {
		return res, err
	}

	return res, nil
}

func (r *Reconciler) recomputeTotals(ctx context.Context, dirty map[uuid.UUID]struct{}) error {
	ids := make([]uuid.UUID, 0, len(dirty))
	for id := range dirty {
		ids = append(ids, id)
	}

	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })

	var updated []*billing.Invoice

	for _, id := range ids {
		inv, err := r.gw.FetchInvoice(ctx, id)
		if errors.Is(err, billing.ErrInvoiceNotFound) {
			continue
		}

		if err != nil {
			return fmt.Errorf("fetching invoice %s: %w", id, err)
		}

		inv.Total = inv.InstallmentTotal()
		updated = append(updated, inv)
	}

	if len(updated) == 0 {
		return nil
	}

	if err := r.gw.SaveChanges(ctx, billing.Changes{Invoices: updated}); err != nil {
		return fmt.Errorf("saving recomputed totals: %w", err)
	}

	return nil
}

// AuditOpenInvoices is phase B. It returns how many totals were corrected
// and how many empty invoices were removed.
func (r *Reconciler) AuditOpenInvoices(ctx context.Context) (corrected, removed int, err error) {
	invoices, err := r.gw.FetchOpenInvoices(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("fetching open invoices: %w", err)
	}

	var changes billing.Changes

	for _, inv := range invoices {
		total := inv.InstallmentTotal()

		if len(inv.Installments) == 0 && total.IsZero() {
			changes.Removed = append(changes.Removed, inv.ID)

			r.log.Info().
				Str("invoice_id", inv.ID.String()).
				Str("month", inv.ReferenceMonth.Format("2006-01")).
				Msg("removing empty invoice")

			continue
		}

		if inv.Total.Sub(total).Abs().GreaterThan(tolerance) {
			r.log.Info().
				Str("invoice_id", inv.ID.String()).
				Str("old_total", inv.Total.StringFixed(2)).
				Str("new_total", total.StringFixed(2)).
				Msg("correcting invoice total")

			inv.Total = total
			changes.Invoices = append(changes.Invoices, inv)
		}
	}

	if changes.Empty() {
		return 0, 0, nil
	}

	if err := r.gw.SaveChanges(ctx, changes); err != nil {
		return 0, 0, fmt.Errorf("saving audit changes: %w", err)
	}

	return len(changes.Invoices), len(changes.Removed), nil
}
