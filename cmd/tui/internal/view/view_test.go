package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
	"github.com/MrJamesThe3rd/cardcycle/internal/reconcile"
)

func TestPurchaseForm_Params(t *testing.T) {
	cardID := uuid.New()

	valid := func() *purchaseForm {
		return &purchaseForm{
			CardID:       cardID.String(),
			Description:  "  Notebook ",
			Amount:       "1234,56",
			Date:         "2025-01-10",
			Method:       "credit",
			Installments: "3",
		}
	}

	t.Run("Valid", func(t *testing.T) {
		params, err := valid().params()
		require.NoError(t, err)

		assert.Equal(t, cardID, params.CardID)
		assert.Equal(t, "Notebook", params.Description)
		assert.True(t, decimal.RequireFromString("1234.56").Equal(params.Amount))
		assert.Equal(t, clock.Date(2025, 1, 10), params.Date)
		assert.Equal(t, billing.PaymentCredit, params.PaymentMethod)
		assert.Equal(t, 3, params.Installments)
	})

	tests := []struct {
		name   string
		mutate func(f *purchaseForm)
	}{
		{"BadCard", func(f *purchaseForm) { f.CardID = "nope" }},
		{"BadAmount", func(f *purchaseForm) { f.Amount = "abc" }},
		{"ZeroAmount", func(f *purchaseForm) { f.Amount = "0" }},
		{"BadDate", func(f *purchaseForm) { f.Date = "10/01/2025" }},
		{"ZeroInstallments", func(f *purchaseForm) { f.Installments = "0" }},
		{"TooManyInstallments", func(f *purchaseForm) { f.Installments = "49" }},
		{"BadMethod", func(f *purchaseForm) { f.Method = "boleto" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.mutate(f)

			_, err := f.params()
			assert.Error(t, err)
		})
	}
}

func TestReconcileStatus(t *testing.T) {
	assert.Equal(t, "Nothing to reconcile", reconcileStatus(reconcile.Result{}, nil))
	assert.Equal(t,
		"Reconciled: 3 moved, 1 corrected, 2 removed, 0 skipped",
		reconcileStatus(reconcile.Result{Reassigned: 3, Corrected: 1, Removed: 2}, nil),
	)
}

func TestHolidaysModel_YearNavigation(t *testing.T) {
	c := clock.Func(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })

	m := NewHolidaysModel(c)
	assert.Equal(t, 2025, m.year)
	assert.Len(t, m.table.Rows(), 12)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(HolidaysModel)
	assert.Equal(t, 2026, m.year)
	assert.Equal(t, "2026-01-01", m.table.Rows()[0][0])

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	m = next.(HolidaysModel)
	assert.Equal(t, 2025, m.year)
}
