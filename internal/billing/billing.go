package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a purchase was paid. Only credit purchases are routed
// into card invoices.
type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "credit"
	PaymentDebit  PaymentMethod = "debit"
	PaymentCash   PaymentMethod = "cash"
	PaymentPix    PaymentMethod = "pix"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCredit, PaymentDebit, PaymentCash, PaymentPix:
		return true
	}

	return false
}

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceOpen   InvoiceStatus = "open"
	InvoiceClosed InvoiceStatus = "closed"
	InvoicePaid   InvoiceStatus = "paid"
)

// Card is a credit card with its billing days.
type Card struct {
	ID         uuid.UUID
	Name       string
	ClosingDay int
	DueDay     int
}

// Purchase is a recorded expense, possibly split into installments.
type Purchase struct {
	ID            uuid.UUID
	CardID        uuid.UUID
	Description   string
	Amount        decimal.Decimal
	Date          time.Time
	PaymentMethod PaymentMethod
	Installments  int
	CreatedAt     time.Time
}

// Installment is one repayment unit (Number of Total) of a purchase.
type Installment struct {
	ID         uuid.UUID
	PurchaseID uuid.UUID
	Purchase   *Purchase // Loaded via JOIN
	Number     int
	Total      int
	Amount     decimal.Decimal
	DueDate    time.Time
	InvoiceID  *uuid.UUID
	Invoice    *Invoice // Loaded via JOIN
}

// Invoice is a card statement for one reference month.
type Invoice struct {
	ID             uuid.UUID
	CardID         uuid.UUID
	ReferenceMonth time.Time // Always the first day of a month
	ClosingDate    time.Time
	DueDate        time.Time
	Total          decimal.Decimal
	Status         InvoiceStatus
	Installments   []*Installment // Loaded only by audit queries
}

// InstallmentTotal sums the amounts of the loaded installments.
func (inv *Invoice) InstallmentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range inv.Installments {
		total = total.Add(inst.Amount)
	}

	return total
}

// Changes is a batch of writes applied by one SaveChanges call.
type Changes struct {
	// Installments persist their InvoiceID and DueDate.
	Installments []*Installment
	// Invoices persist their Total.
	Invoices []*Invoice
	// Removed lists invoices to delete. Invoices that still own installments
	// are kept.
	Removed []uuid.UUID
}

func (c Changes) Empty() bool {
	return len(c.Installments) == 0 && len(c.Invoices) == 0 && len(c.Removed) == 0
}
