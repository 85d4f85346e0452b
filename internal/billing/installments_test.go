package billing_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
)

func TestPlanInstallments_SplitsWithRemainderOnFirst(t *testing.T) {
	p := &billing.Purchase{
		ID:            uuid.New(),
		CardID:        uuid.New(),
		Amount:        decimal.RequireFromString("100.00"),
		Date:          date(2025, 1, 10),
		PaymentMethod: billing.PaymentCredit,
		Installments:  3,
	}

	got, err := billing.PlanInstallments(p)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "33.34", got[0].Amount.StringFixed(2))
	assert.Equal(t, "33.33", got[1].Amount.StringFixed(2))
	assert.Equal(t, "33.33", got[2].Amount.StringFixed(2))

	sum := decimal.Zero
	for i, inst := range got {
		assert.Equal(t, i+1, inst.Number)
		assert.Equal(t, 3, inst.Total)
		assert.Equal(t, p.ID, inst.PurchaseID)
		assert.Nil(t, inst.InvoiceID)
		sum = sum.Add(inst.Amount)
	}

	assert.True(t, sum.Equal(p.Amount))
}

func TestPlanInstallments_Invalid(t *testing.T) {
	valid := func() *billing.Purchase {
		return &billing.Purchase{
			CardID:        uuid.New(),
			Amount:        decimal.NewFromInt(10),
			Date:          date(2025, 1, 10),
			PaymentMethod: billing.PaymentCredit,
			Installments:  2,
		}
	}

	tests := []struct {
		name   string
		mutate func(p *billing.Purchase)
	}{
		{name: "UnknownMethod", mutate: func(p *billing.Purchase) { p.PaymentMethod = "boleto" }},
		{name: "ZeroAmount", mutate: func(p *billing.Purchase) { p.Amount = decimal.Zero }},
		{name: "NoInstallments", mutate: func(p *billing.Purchase) { p.Installments = 0 }},
		{name: "SplitDebit", mutate: func(p *billing.Purchase) { p.PaymentMethod = billing.PaymentDebit }},
		{name: "CreditWithoutCard", mutate: func(p *billing.Purchase) { p.CardID = uuid.Nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)

			_, err := billing.PlanInstallments(p)
			assert.ErrorIs(t, err, billing.ErrInvalidPurchase)
		})
	}
}
