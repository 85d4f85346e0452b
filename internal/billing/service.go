package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=billing
type Repository interface {
	CreateCard(ctx context.Context, c *Card) error
	ListCards(ctx context.Context) ([]*Card, error)
	LookupCard(ctx context.Context, id uuid.UUID) (*Card, error)
	GetOrCreateInvoice(ctx context.Context, cardID uuid.UUID, month time.Time) (*Invoice, error)
	FetchOpenInvoices(ctx context.Context) ([]*Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status InvoiceStatus) error

	// CreatePurchase stores the purchase with its installments and adds
	// each bound installment's amount to its invoice total.
	CreatePurchase(ctx context.Context, p *Purchase, installments []*Installment) error
}

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// AddCard validates and stores a new card.
func (s *Service) AddCard(ctx context.Context, name string, closingDay, dueDay int) (*Card, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCard)
	}

	if closingDay < 1 || closingDay > 31 || dueDay < 1 || dueDay > 31 {
		return nil, fmt.Errorf("%w: billing days must be between 1 and 31", ErrInvalidCard)
	}

	c := &Card{Name: name, ClosingDay: closingDay, DueDay: dueDay}
	if err := s.repo.CreateCard(ctx, c); err != nil {
		return nil, fmt.Errorf("creating card: %w", err)
	}

	return c, nil
}

func (s *Service) Cards(ctx context.Context) ([]*Card, error) {
	return s.repo.ListCards(ctx)
}

type RecordParams struct {
	CardID        uuid.UUID
	Description   string
	Amount        decimal.Decimal
	Date          time.Time
	PaymentMethod PaymentMethod
	Installments  int
}

// RecordPurchase stores a purchase and its installments. Credit
// installments are bound to the invoice of their expected month, created on
// demand; other payment methods produce a single unbound installment due on
// the purchase date.
func (s *Service) RecordPurchase(ctx context.Context, params RecordParams) (*Purchase, []*Installment, error) {
	p := &Purchase{
		ID:            uuid.New(),
		CardID:        params.CardID,
		Description:   params.Description,
		Amount:        params.Amount,
		Date:          time.Date(params.Date.Year(), params.Date.Month(), params.Date.Day(), 0, 0, 0, 0, time.UTC),
		PaymentMethod: params.PaymentMethod,
		Installments:  params.Installments,
	}

	if p.Installments == 0 {
		p.Installments = 1
	}

	installments, err := PlanInstallments(p)
	if err != nil {
		return nil, nil, err
	}

	if p.PaymentMethod == PaymentCredit {
		if _, err := s.repo.LookupCard(ctx, p.CardID); err != nil {
			return nil, nil, fmt.Errorf("looking up card %s: %w", p.CardID, err)
		}

		for _, inst := range installments {
			month := ExpectedInstallmentMonth(p.Date, inst.Number, inst.Total)

			inv, err := s.repo.GetOrCreateInvoice(ctx, p.CardID, month)
			if err != nil {
				return nil, nil, fmt.Errorf("getting invoice for %s: %w", month.Format("2006-01"), err)
			}

			inst.InvoiceID = &inv.ID
			inst.Invoice = inv
			inst.DueDate = inv.DueDate
		}
	}

	if err := s.repo.CreatePurchase(ctx, p, installments); err != nil {
		return nil, nil, fmt.Errorf("creating purchase: %w", err)
	}

	s.log.Debug().
		Str("purchase_id", p.ID.String()).
		Str("method", string(p.PaymentMethod)).
		Int("installments", len(installments)).
		Msg("purchase recorded")

	return p, installments, nil
}

// OpenInvoices lists every invoice that has not been paid yet.
func (s *Service) OpenInvoices(ctx context.Context) ([]*Invoice, error) {
	return s.repo.FetchOpenInvoices(ctx)
}

// CloseDueInvoices moves open invoices whose closing date is before today to
// closed. It returns how many were closed.
func (s *Service) CloseDueInvoices(ctx context.Context, today time.Time) (int, error) {
	invoices, err := s.repo.FetchOpenInvoices(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching open invoices: %w", err)
	}

	closed := 0

	for _, inv := range invoices {
		if inv.Status != InvoiceOpen || !inv.ClosingDate.Before(today) {
			continue
		}

		if err := s.repo.UpdateInvoiceStatus(ctx, inv.ID, InvoiceClosed); err != nil {
			if errors.Is(err, ErrInvoiceNotFound) {
				continue
			}

			return closed, fmt.Errorf("closing invoice %s: %w", inv.ID, err)
		}

		closed++
	}

	if closed > 0 {
		s.log.Info().Int("closed", closed).Msg("invoices closed")
	}

	return closed, nil
}

// Digest summarises the unpaid invoices.
type Digest struct {
	Open    int
	Total   decimal.Decimal
	NextDue *Invoice
}

// Digest computes the open-invoice summary as of today. NextDue is the
// unpaid invoice with the earliest effective due date not before today.
func (s *Service) Digest(ctx context.Context, today time.Time) (Digest, error) {
	invoices, err := s.repo.FetchOpenInvoices(ctx)
	if err != nil {
		return Digest{}, fmt.Errorf("fetching open invoices: %w", err)
	}

	d := Digest{Total: decimal.Zero}

	for _, inv := range invoices {
		d.Open++
		d.Total = d.Total.Add(inv.Total)

		due := EffectiveDueDate(inv)
		if due.Before(today) {
			continue
		}

		if d.NextDue == nil || due.Before(EffectiveDueDate(d.NextDue)) {
			d.NextDue = inv
		}
	}

	return d, nil
}
