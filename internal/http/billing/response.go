package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
)

const monthLayout = "2006-01"

type cardResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ClosingDay int       `json:"closing_day"`
	DueDay     int       `json:"due_day"`
}

func toCardResponse(c *billing.Card) cardResponse {
	return cardResponse{ID: c.ID, Name: c.Name, ClosingDay: c.ClosingDay, DueDay: c.DueDay}
}

type invoiceResponse struct {
	ID               uuid.UUID             `json:"id"`
	CardID           uuid.UUID             `json:"card_id"`
	ReferenceMonth   string                `json:"reference_month"`
	ClosingDate      string                `json:"closing_date"`
	DueDate          string                `json:"due_date"`
	EffectiveDueDate string                `json:"effective_due_date"`
	Total            string                `json:"total"`
	Status           billing.InvoiceStatus `json:"status"`
	Installments     int                   `json:"installments"`
}

func toInvoiceResponse(inv *billing.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:               inv.ID,
		CardID:           inv.CardID,
		ReferenceMonth:   inv.ReferenceMonth.Format(monthLayout),
		ClosingDate:      inv.ClosingDate.Format(time.DateOnly),
		DueDate:          inv.DueDate.Format(time.DateOnly),
		EffectiveDueDate: billing.EffectiveDueDate(inv).Format(time.DateOnly),
		Total:            inv.Total.StringFixed(2),
		Status:           inv.Status,
		Installments:     len(inv.Installments),
	}
}

type installmentResponse struct {
	ID        uuid.UUID  `json:"id"`
	Number    int        `json:"number"`
	Total     int        `json:"total"`
	Amount    string     `json:"amount"`
	DueDate   string     `json:"due_date"`
	InvoiceID *uuid.UUID `json:"invoice_id,omitempty"`
}

type purchaseResponse struct {
	ID            uuid.UUID             `json:"id"`
	CardID        *uuid.UUID            `json:"card_id,omitempty"`
	Description   string                `json:"description"`
	Amount        string                `json:"amount"`
	Date          string                `json:"date"`
	PaymentMethod billing.PaymentMethod `json:"payment_method"`
	Installments  []installmentResponse `json:"installments"`
}

func toPurchaseResponse(p *billing.Purchase, insts []*billing.Installment) purchaseResponse {
	resp := purchaseResponse{
		ID:            p.ID,
		Description:   p.Description,
		Amount:        p.Amount.StringFixed(2),
		Date:          p.Date.Format(time.DateOnly),
		PaymentMethod: p.PaymentMethod,
		Installments:  make([]installmentResponse, len(insts)),
	}

	if p.CardID != uuid.Nil {
		resp.CardID = &p.CardID
	}

	for i, inst := range insts {
		resp.Installments[i] = installmentResponse{
			ID:        inst.ID,
			Number:    inst.Number,
			Total:     inst.Total,
			Amount:    inst.Amount.StringFixed(2),
			DueDate:   inst.DueDate.Format(time.DateOnly),
			InvoiceID: inst.InvoiceID,
		}
	}

	return resp
}
