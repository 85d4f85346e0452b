package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
)

// Store is the Postgres implementation of billing.Repository and
// reconcile.Gateway.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	i.id, i.card_id, i.reference_month, i.closing_date, i.due_date, i.total, i.status
`

// Expected column order: selectInvoiceColumns
func invoiceDest(inv *billing.Invoice, status *string) []any {
	return []any{&inv.ID, &inv.CardID, &inv.ReferenceMonth, &inv.ClosingDate, &inv.DueDate, &inv.Total, status}
}

func scanInvoice(s scanner) (*billing.Invoice, error) {
	var (
		inv    billing.Invoice
		status string
	)

	if err := s.Scan(invoiceDest(&inv, &status)...); err != nil {
		return nil, err
	}

	inv.Status = billing.InvoiceStatus(status)

	return &inv, nil
}

func (s *Store) CreateCard(ctx context.Context, c *billing.Card) error {
	query := `
		INSERT INTO cards (name, closing_day, due_day)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if err := s.db.QueryRowContext(ctx, query, c.Name, c.ClosingDay, c.DueDay).Scan(&c.ID); err != nil {
		return fmt.Errorf("creating card: %w", err)
	}

	return nil
}

func (s *Store) ListCards(ctx context.Context) ([]*billing.Card, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, closing_day, due_day FROM cards ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	defer rows.Close()

	var cards []*billing.Card

	for rows.Next() {
		var c billing.Card
		if err := rows.Scan(&c.ID, &c.Name, &c.ClosingDay, &c.DueDay); err != nil {
			return nil, fmt.Errorf("scanning card: %w", err)
		}

		cards = append(cards, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating card rows: %w", err)
	}

	return cards, nil
}

func (s *Store) LookupCard(ctx context.Context, id uuid.UUID) (*billing.Card, error) {
	var c billing.Card

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, closing_day, due_day FROM cards WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.ClosingDay, &c.DueDay)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, billing.ErrCardNotFound
		}

		return nil, fmt.Errorf("getting card: %w", err)
	}

	return &c, nil
}

// GetOrCreateInvoice relies on the (card_id, reference_month) unique key:
// the no-op update makes RETURNING yield the existing row on conflict.
func (s *Store) GetOrCreateInvoice(ctx context.Context, cardID uuid.UUID, month time.Time) (*billing.Invoice, error) {
	card, err := s.LookupCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	inv := billing.NewInvoice(card, month)

	query := `
		INSERT INTO invoices AS i (card_id, reference_month, closing_date, due_date, total, status)
		VALUES ($1, $2, $3, $4, 0, $5)
		ON CONFLICT (card_id, reference_month) DO UPDATE SET card_id = EXCLUDED.card_id
		RETURNING ` + selectInvoiceColumns

	got, err := scanInvoice(s.db.QueryRowContext(ctx, query,
		inv.CardID,
		inv.ReferenceMonth,
		inv.ClosingDate,
		inv.DueDate,
		inv.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("upserting invoice: %w", err)
	}

	return got, nil
}

// CreatePurchase inserts the purchase, its installments and the invoice
// total increments in one transaction.
func (s *Store) CreatePurchase(ctx context.Context, p *billing.Purchase, installments []*billing.Installment) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	var cardID *uuid.UUID
	if p.CardID != uuid.Nil {
		cardID = &p.CardID
	}

	purchaseQuery := `
		INSERT INTO purchases (id, card_id, description, amount, date, payment_method, installments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	err = dbTx.QueryRowContext(ctx, purchaseQuery,
		p.ID,
		cardID,
		p.Description,
		p.Amount,
		p.Date,
		p.PaymentMethod,
		p.Installments,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating purchase: %w", err)
	}

	installmentQuery := `
		INSERT INTO installments (id, purchase_id, number, total, amount, due_date, invoice_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	totalQuery := `UPDATE invoices SET total = total + $1, updated_at = NOW() WHERE id = $2`

	for _, inst := range installments {
		if _, err := dbTx.ExecContext(ctx, installmentQuery,
			inst.ID,
			p.ID,
			inst.Number,
			inst.Total,
			inst.Amount,
			inst.DueDate,
			inst.InvoiceID,
		); err != nil {
			return fmt.Errorf("creating installment %d: %w", inst.Number, err)
		}

		if inst.InvoiceID == nil {
			continue
		}

		res, err := dbTx.ExecContext(ctx, totalQuery, inst.Amount, *inst.InvoiceID)
		if err != nil {
			return fmt.Errorf("updating invoice total: %w", err)
		}

		if n, _ := res.RowsAffected(); n == 0 {
			return billing.ErrInvoiceNotFound
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// invoicesWithInstallments runs a query selecting selectInvoiceColumns
// followed by the installment columns of a LEFT JOIN, ordered by invoice,
// and folds the rows into invoices.
func (s *Store) invoicesWithInstallments(ctx context.Context, query string, args ...any) ([]*billing.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		invoices []*billing.Invoice
		current  *billing.Invoice
	)

	for rows.Next() {
		var (
			inv        billing.Invoice
			status     string
			instID     *uuid.UUID
			purchaseID *uuid.UUID
			number     sql.NullInt64
			total      sql.NullInt64
			amount     decimal.NullDecimal
			dueDate    sql.NullTime
		)

		dest := append(invoiceDest(&inv, &status), &instID, &purchaseID, &number, &total, &amount, &dueDate)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		if current == nil || current.ID != inv.ID {
			inv.Status = billing.InvoiceStatus(status)
			current = &inv
			invoices = append(invoices, current)
		}

		if instID == nil {
			continue
		}

		invoiceID := current.ID
		current.Installments = append(current.Installments, &billing.Installment{
			ID:         *instID,
			PurchaseID: *purchaseID,
			Number:     int(number.Int64),
			Total:      int(total.Int64),
			Amount:     amount.Decimal,
			DueDate:    dueDate.Time,
			InvoiceID:  &invoiceID,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invoices, nil
}

const invoiceWithInstallmentsQuery = `SELECT ` + selectInvoiceColumns + `,
		s.id, s.purchase_id, s.number, s.total, s.amount, s.due_date
	FROM invoices i
	LEFT JOIN installments s ON s.invoice_id = i.id`

func (s *Store) FetchOpenInvoices(ctx context.Context) ([]*billing.Invoice, error) {
	query := invoiceWithInstallmentsQuery + `
		WHERE i.status <> 'paid'
		ORDER BY i.reference_month ASC, i.id ASC, s.number ASC`

	invoices, err := s.invoicesWithInstallments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetching open invoices: %w", err)
	}

	return invoices, nil
}

func (s *Store) FetchInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	query := invoiceWithInstallmentsQuery + `
		WHERE i.id = $1
		ORDER BY s.number ASC`

	invoices, err := s.invoicesWithInstallments(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("fetching invoice: %w", err)
	}

	if len(invoices) == 0 {
		return nil, billing.ErrInvoiceNotFound
	}

	return invoices[0], nil
}

func (s *Store) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status billing.InvoiceStatus) error {
	query := `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating invoice status: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return billing.ErrInvoiceNotFound
	}

	return nil
}

func (s *Store) FetchInstallmentsWithInvoiceAndPurchase(ctx context.Context) ([]*billing.Installment, error) {
	query := `
		SELECT s.id, s.purchase_id, s.number, s.total, s.amount, s.due_date, s.invoice_id,
			p.id, p.card_id, p.description, p.amount, p.date, p.payment_method, p.installments, p.created_at,
		` + selectInvoiceColumns + `
		FROM installments s
		JOIN purchases p ON p.id = s.purchase_id
		JOIN invoices i ON i.id = s.invoice_id
		ORDER BY p.date ASC, p.id ASC, s.number ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetching installments: %w", err)
	}
	defer rows.Close()

	var out []*billing.Installment

	for rows.Next() {
		var (
			inst      billing.Installment
			p         billing.Purchase
			inv       billing.Invoice
			cardID    *uuid.UUID
			method    string
			invStatus string
			dest      []any
		)

		dest = append(dest,
			&inst.ID, &inst.PurchaseID, &inst.Number, &inst.Total, &inst.Amount, &inst.DueDate, &inst.InvoiceID,
			&p.ID, &cardID, &p.Description, &p.Amount, &p.Date, &method, &p.Installments, &p.CreatedAt,
		)
		dest = append(dest, invoiceDest(&inv, &invStatus)...)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning installment: %w", err)
		}

		if cardID != nil {
			p.CardID = *cardID
		}

		p.PaymentMethod = billing.PaymentMethod(method)
		inv.Status = billing.InvoiceStatus(invStatus)
		inst.Purchase = &p
		inst.Invoice = &inv

		out = append(out, &inst)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating installment rows: %w", err)
	}

	return out, nil
}

// SaveChanges applies the batch in one transaction. Invoices that still own
// installments are not deleted.
func (s *Store) SaveChanges(ctx context.Context, changes billing.Changes) error {
	if changes.Empty() {
		return nil
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, inst := range changes.Installments {
		if _, err := dbTx.ExecContext(ctx,
			`UPDATE installments SET invoice_id = $1, due_date = $2 WHERE id = $3`,
			inst.InvoiceID, inst.DueDate, inst.ID,
		); err != nil {
			return fmt.Errorf("moving installment %s: %w", inst.ID, err)
		}
	}

	for _, inv := range changes.Invoices {
		if _, err := dbTx.ExecContext(ctx,
			`UPDATE invoices SET total = $1, updated_at = NOW() WHERE id = $2`,
			inv.Total, inv.ID,
		); err != nil {
			return fmt.Errorf("updating invoice total %s: %w", inv.ID, err)
		}
	}

	for _, id := range changes.Removed {
		if _, err := dbTx.ExecContext(ctx, `
			DELETE FROM invoices
			WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM installments WHERE invoice_id = $1)`,
			id,
		); err != nil {
			return fmt.Errorf("removing invoice %s: %w", id, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
