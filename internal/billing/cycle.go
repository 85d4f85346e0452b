package billing

import (
	"time"

	"github.com/MrJamesThe3rd/cardcycle/internal/calendar"
)

// MonthStart returns the first day of t's month at midnight UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths moves month-wise from the start of t's month, so January 31
// plus one month is February.
func AddMonths(t time.Time, n int) time.Time {
	return MonthStart(t).AddDate(0, n, 0)
}

// DaysIn returns the number of days in t's month.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// clampDay keeps day within 1..DaysIn(month).
func clampDay(day int, month time.Time) int {
	return min(max(day, 1), DaysIn(month))
}

// DayIn returns the date for day in month, clamped to the month length.
func DayIn(month time.Time, day int) time.Time {
	return time.Date(month.Year(), month.Month(), clampDay(day, month), 0, 0, 0, 0, time.UTC)
}

// ExpectedInvoiceMonth returns the reference month of the invoice a purchase
// made on purchaseDate lands in. Purchases up to and including the closing
// day belong to the purchase month, later ones to the following month.
func ExpectedInvoiceMonth(purchaseDate time.Time, closingDay int) time.Time {
	closing := clampDay(closingDay, purchaseDate)
	if purchaseDate.Day() <= closing {
		return MonthStart(purchaseDate)
	}

	return AddMonths(purchaseDate, 1)
}

// ExpectedInstallmentMonth returns the invoice month of installment index
// (1-based) out of total. A parcelled purchase posts installment i i months
// after the purchase; a single-shot purchase posts one month after.
func ExpectedInstallmentMonth(purchaseDate time.Time, index, total int) time.Time {
	if total <= 1 {
		return AddMonths(purchaseDate, 1)
	}

	return AddMonths(purchaseDate, max(index, 1))
}

// NewInvoice builds an open, empty invoice for card in month. The closing
// date is the first business day of the month and the due date is the
// card's due day clamped to the month length.
func NewInvoice(card *Card, month time.Time) *Invoice {
	start := MonthStart(month)

	return &Invoice{
		CardID:         card.ID,
		ReferenceMonth: start,
		ClosingDate:    calendar.NextBusinessDay(start),
		DueDate:        DayIn(start, card.DueDay),
		Status:         InvoiceOpen,
	}
}

// EffectiveDueDate is the day payment is actually expected: the due date
// moved forward to a business day.
func EffectiveDueDate(inv *Invoice) time.Time {
	return calendar.NextBusinessDay(inv.DueDate)
}
