// Package memory is an in-process billing store used by tests and local
// runs. It satisfies both billing.Repository and reconcile.Gateway and hands
// out copies, so callers only change stored state through the write methods.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
)

type Store struct {
	mu           sync.RWMutex
	cards        map[uuid.UUID]billing.Card
	purchases    map[uuid.UUID]billing.Purchase
	installments map[uuid.UUID]billing.Installment
	invoices     map[uuid.UUID]billing.Invoice
	saves        int
}

func New() *Store {
	return &Store{
		cards:        make(map[uuid.UUID]billing.Card),
		purchases:    make(map[uuid.UUID]billing.Purchase),
		installments: make(map[uuid.UUID]billing.Installment),
		invoices:     make(map[uuid.UUID]billing.Invoice),
	}
}

// AddCard stores a card, assigning an ID when missing.
func (s *Store) AddCard(c billing.Card) billing.Card {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	s.cards[c.ID] = c

	return c
}

// AddInvoice stores an invoice as given, without get-or-create checks.
func (s *Store) AddInvoice(inv billing.Invoice) billing.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}

	inv.Installments = nil
	s.invoices[inv.ID] = inv

	return inv
}

// AddPurchase stores a purchase and installments exactly as given. Invoice
// totals are left untouched, which lets tests seed drifted data.
func (s *Store) AddPurchase(p billing.Purchase, installments ...billing.Installment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purchases[p.ID] = p

	for _, inst := range installments {
		inst.PurchaseID = p.ID
		inst.Purchase = nil
		inst.Invoice = nil
		s.installments[inst.ID] = inst
	}
}

// Installment returns a copy of a stored installment.
func (s *Store) Installment(id uuid.UUID) (billing.Installment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.installments[id]

	return inst, ok
}

// Invoice returns a copy of a stored invoice, installments not loaded.
func (s *Store) Invoice(id uuid.UUID) (billing.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]

	return inv, ok
}

// Invoices returns every stored invoice ordered by card and month.
func (s *Store) Invoices() []billing.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]billing.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, inv)
	}

	slices.SortFunc(out, func(a, b billing.Invoice) int {
		return cmp.Or(
			cmp.Compare(a.CardID.String(), b.CardID.String()),
			a.ReferenceMonth.Compare(b.ReferenceMonth),
		)
	})

	return out
}

// Saves reports how many SaveChanges calls carried writes.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.saves
}

func (s *Store) CreateCard(_ context.Context, c *billing.Card) error {
	stored := s.AddCard(*c)
	c.ID = stored.ID

	return nil
}

func (s *Store) ListCards(_ context.Context) ([]*billing.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*billing.Card, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, &c)
	}

	slices.SortFunc(out, func(a, b *billing.Card) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID.String(), b.ID.String()))
	})

	return out, nil
}

func (s *Store) LookupCard(_ context.Context, id uuid.UUID) (*billing.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cards[id]
	if !ok {
		return nil, billing.ErrCardNotFound
	}

	return &c, nil
}

func (s *Store) GetOrCreateInvoice(_ context.Context, cardID uuid.UUID, month time.Time) (*billing.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[cardID]
	if !ok {
		return nil, billing.ErrCardNotFound
	}

	for _, inv := range s.invoices {
		if inv.CardID == cardID && billing.SameMonth(inv.ReferenceMonth, month) {
			return &inv, nil
		}
	}

	inv := billing.NewInvoice(&card, month)
	inv.ID = uuid.New()
	inv.Total = decimal.Zero
	s.invoices[inv.ID] = *inv

	return inv, nil
}

func (s *Store) CreatePurchase(_ context.Context, p *billing.Purchase, installments []*billing.Installment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inst := range installments {
		if inst.InvoiceID == nil {
			continue
		}

		if _, ok := s.invoices[*inst.InvoiceID]; !ok {
			return billing.ErrInvoiceNotFound
		}
	}

	p.CreatedAt = time.Now()
	s.purchases[p.ID] = *p

	for _, inst := range installments {
		stored := *inst
		stored.Purchase = nil
		stored.Invoice = nil
		s.installments[inst.ID] = stored

		if inst.InvoiceID != nil {
			inv := s.invoices[*inst.InvoiceID]
			inv.Total = inv.Total.Add(inst.Amount)
			s.invoices[inv.ID] = inv
		}
	}

	return nil
}

func (s *Store) FetchOpenInvoices(_ context.Context) ([]*billing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*billing.Invoice

	for _, inv := range s.invoices {
		if inv.Status == billing.InvoicePaid {
			continue
		}

		out = append(out, s.loadInvoice(inv))
	}

	slices.SortFunc(out, func(a, b *billing.Invoice) int { return a.ReferenceMonth.Compare(b.ReferenceMonth) })

	return out, nil
}

func (s *Store) FetchInvoice(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok {
		return nil, billing.ErrInvoiceNotFound
	}

	return s.loadInvoice(inv), nil
}

func (s *Store) UpdateInvoiceStatus(_ context.Context, id uuid.UUID, status billing.InvoiceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return billing.ErrInvoiceNotFound
	}

	inv.Status = status
	s.invoices[id] = inv

	return nil
}

func (s *Store) FetchInstallmentsWithInvoiceAndPurchase(_ context.Context) ([]*billing.Installment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*billing.Installment

	for _, inst := range s.installments {
		if inst.InvoiceID == nil {
			continue
		}

		p, ok := s.purchases[inst.PurchaseID]
		if !ok {
			continue
		}

		inv, ok := s.invoices[*inst.InvoiceID]
		if !ok {
			continue
		}

		inst.Purchase = &p
		inst.Invoice = &inv
		out = append(out, &inst)
	}

	slices.SortFunc(out, func(a, b *billing.Installment) int {
		return cmp.Or(
			a.Purchase.Date.Compare(b.Purchase.Date),
			cmp.Compare(a.PurchaseID.String(), b.PurchaseID.String()),
			cmp.Compare(a.Number, b.Number),
		)
	})

	return out, nil
}

func (s *Store) SaveChanges(_ context.Context, changes billing.Changes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if changes.Empty() {
		return nil
	}

	for _, inst := range changes.Installments {
		stored, ok := s.installments[inst.ID]
		if !ok {
			continue
		}

		stored.InvoiceID = inst.InvoiceID
		stored.DueDate = inst.DueDate
		s.installments[inst.ID] = stored
	}

	for _, inv := range changes.Invoices {
		stored, ok := s.invoices[inv.ID]
		if !ok {
			continue
		}

		stored.Total = inv.Total
		s.invoices[inv.ID] = stored
	}

	for _, id := range changes.Removed {
		if s.hasInstallments(id) {
			continue
		}

		delete(s.invoices, id)
	}

	s.saves++

	return nil
}

// loadInvoice copies inv and attaches its installments. Callers hold mu.
func (s *Store) loadInvoice(inv billing.Invoice) *billing.Invoice {
	inv.Installments = nil

	for _, inst := range s.installments {
		if inst.InvoiceID != nil && *inst.InvoiceID == inv.ID {
			inv.Installments = append(inv.Installments, &inst)
		}
	}

	return &inv
}

func (s *Store) hasInstallments(invoiceID uuid.UUID) bool {
	for _, inst := range s.installments {
		if inst.InvoiceID != nil && *inst.InvoiceID == invoiceID {
			return true
		}
	}

	return false
}
