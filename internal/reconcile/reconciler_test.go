package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
	"github.com/MrJamesThe3rd/cardcycle/internal/billing/memory"
	"github.com/MrJamesThe3rd/cardcycle/internal/reconcile"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedMisassigned stores a three-installment credit purchase made on
// 2025-01-10 whose installments all point at the January invoice.
func seedMisassigned(t *testing.T, store *memory.Store) (billing.Card, billing.Purchase, billing.Invoice) {
	t.Helper()

	card := store.AddCard(billing.Card{Name: "Gold", ClosingDay: 15, DueDay: 10})
	wrong := store.AddInvoice(*billing.NewInvoice(&card, date(2025, 1, 1)))

	p := billing.Purchase{
		ID:            uuid.New(),
		CardID:        card.ID,
		Amount:        money("300"),
		Date:          date(2025, 1, 10),
		PaymentMethod: billing.PaymentCredit,
		Installments:  3,
	}

	var insts []billing.Installment
	for i := 1; i <= 3; i++ {
		insts = append(insts, billing.Installment{
			ID:        uuid.New(),
			Number:    i,
			Total:     3,
			Amount:    money("100"),
			DueDate:   wrong.DueDate,
			InvoiceID: &wrong.ID,
		})
	}

	store.AddPurchase(p, insts...)

	return card, p, wrong
}

func TestReconcileOnce_RepairsAndIsIdempotent(t *testing.T) {
	store := memory.New()
	card, _, wrong := seedMisassigned(t, store)

	r := reconcile.New(store, zerolog.Nop())

	res, err := r.ReconcileOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{Reassigned: 3, Corrected: 0, Removed: 1}, res)

	_, stillThere := store.Invoice(wrong.ID)
	assert.False(t, stillThere, "emptied invoice is removed by the audit")

	invoices := store.Invoices()
	require.Len(t, invoices, 3)

	for i, inv := range invoices {
		assert.Equal(t, card.ID, inv.CardID)
		assert.Equal(t, date(2025, time.Month(2+i), 1), inv.ReferenceMonth)
		assert.Equal(t, "100.00", inv.Total.StringFixed(2))
		assert.Equal(t, date(2025, time.Month(2+i), 10), inv.DueDate)
	}

	saves := store.Saves()

	second, err := r.ReconcileOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{}, second)
	assert.False(t, second.Changed())
	assert.Equal(t, saves, store.Saves(), "second pass writes nothing")
}

func TestReconcileOnce_RetroactiveDateEdit(t *testing.T) {
	store := memory.New()
	svc := billing.NewService(store, zerolog.Nop())
	card := store.AddCard(billing.Card{ClosingDay: 20, DueDay: 5})

	p, insts, err := svc.RecordPurchase(context.Background(), billing.RecordParams{
		CardID:        card.ID,
		Amount:        money("90"),
		Date:          date(2025, 1, 10),
		PaymentMethod: billing.PaymentCredit,
		Installments:  2,
	})
	require.NoError(t, err)

	r := reconcile.New(store, zerolog.Nop())

	res, err := r.ReconcileOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Changed(), "freshly recorded purchases are already consistent")

	// Someone edits the purchase date three months forward.
	edited := *p
	edited.Date = date(2025, 4, 2)

	stored := make([]billing.Installment, len(insts))
	for i, inst := range insts {
		got, ok := store.Installment(inst.ID)
		require.True(t, ok)
		stored[i] = got
	}

	store.AddPurchase(edited, stored...)

	res, err = r.ReconcileOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Reassigned)
	assert.Equal(t, 2, res.Removed)

	for _, inst := range insts {
		got, _ := store.Installment(inst.ID)
		require.NotNil(t, got.InvoiceID)

		inv, ok := store.Invoice(*got.InvoiceID)
		require.True(t, ok)
		assert.Equal(t, billing.ExpectedInstallmentMonth(edited.Date, got.Number, got.Total), inv.ReferenceMonth)
		assert.Equal(t, inv.DueDate, got.DueDate)
		assert.Equal(t, "45.00", inv.Total.StringFixed(2))
	}
}

func TestReassignInstallments_SkipsNonCredit(t *testing.T) {
	store := memory.New()
	card := store.AddCard(billing.Card{ClosingDay: 10, DueDay: 20})
	inv := store.AddInvoice(billing.Invoice{
		CardID:         card.ID,
		ReferenceMonth: date(2024, 6, 1),
		Total:          money("25"),
		Status:         billing.InvoiceOpen,
	})

	p := billing.Purchase{ID: uuid.New(), CardID: card.ID, Date: date(2025, 1, 10), PaymentMethod: billing.PaymentPix, Installments: 1}
	store.AddPurchase(p, billing.Installment{ID: uuid.New(), Number: 1, Total: 1, Amount: money("25"), InvoiceID: &inv.ID})

	res, err := reconcile.New(store, zerolog.Nop()).ReassignInstallments(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Reassigned)
	assert.Len(t, store.Invoices(), 1)
}

func TestReassignInstallments_MissingCardIsSkipped(t *testing.T) {
	store := memory.New()
	inv := store.AddInvoice(billing.Invoice{ReferenceMonth: date(2024, 1, 1), Total: money("20"), Status: billing.InvoiceOpen})

	p := billing.Purchase{ID: uuid.New(), CardID: uuid.New(), Date: date(2025, 1, 10), PaymentMethod: billing.PaymentCredit, Installments: 2}
	store.AddPurchase(p,
		billing.Installment{ID: uuid.New(), Number: 1, Total: 2, Amount: money("10"), InvoiceID: &inv.ID},
		billing.Installment{ID: uuid.New(), Number: 2, Total: 2, Amount: money("10"), InvoiceID: &inv.ID},
	)

	res, err := reconcile.New(store, zerolog.Nop()).ReassignInstallments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Reassigned)
	assert.Equal(t, 2, res.Skipped)
	assert.Zero(t, store.Saves())
}

func TestAuditOpenInvoices(t *testing.T) {
	store := memory.New()
	card := store.AddCard(billing.Card{ClosingDay: 10, DueDay: 20})

	drifted := store.AddInvoice(billing.Invoice{CardID: card.ID, ReferenceMonth: date(2025, 2, 1), Total: money("99.99"), Status: billing.InvoiceOpen})
	withinTolerance := store.AddInvoice(billing.Invoice{CardID: card.ID, ReferenceMonth: date(2025, 3, 1), Total: money("50.0005"), Status: billing.InvoiceClosed})
	ghost := store.AddInvoice(billing.Invoice{CardID: card.ID, ReferenceMonth: date(2025, 4, 1), Total: decimal.Zero, Status: billing.InvoiceOpen})
	paidGhost := store.AddInvoice(billing.Invoice{CardID: card.ID, ReferenceMonth: date(2024, 12, 1), Total: decimal.Zero, Status: billing.InvoicePaid})

	p := billing.Purchase{ID: uuid.New(), CardID: card.ID, Date: date(2025, 1, 5), PaymentMethod: billing.PaymentCredit, Installments: 2}
	store.AddPurchase(p,
		billing.Installment{ID: uuid.New(), Number: 1, Total: 2, Amount: money("100"), InvoiceID: &drifted.ID},
		billing.Installment{ID: uuid.New(), Number: 2, Total: 2, Amount: money("50"), InvoiceID: &withinTolerance.ID},
	)

	corrected, removed, err := reconcile.New(store, zerolog.Nop()).AuditOpenInvoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, corrected)
	assert.Equal(t, 1, removed)

	got, _ := store.Invoice(drifted.ID)
	assert.Equal(t, "100.00", got.Total.StringFixed(2))

	got, _ = store.Invoice(withinTolerance.ID)
	assert.Equal(t, "50.0005", got.Total.String())

	_, ok := store.Invoice(ghost.ID)
	assert.False(t, ok)

	_, ok = store.Invoice(paidGhost.ID)
	assert.True(t, ok, "paid invoices are never audited")
}

func TestReconcileOnce_GatewayFailures(t *testing.T) {
	boom := errors.New("connection refused")

	type testCase struct {
		name      string
		setupMock func(m *reconcile.MockGateway)
		want      reconcile.Result
	}

	card := &billing.Card{ID: uuid.New(), DueDay: 10}
	wrong := &billing.Invoice{ID: uuid.New(), CardID: card.ID, ReferenceMonth: date(2025, 1, 1)}
	misplaced := func() []*billing.Installment {
		return []*billing.Installment{{
			ID:        uuid.New(),
			Number:    1,
			Total:     1,
			Amount:    money("10"),
			InvoiceID: &wrong.ID,
			Invoice:   wrong,
			Purchase:  &billing.Purchase{CardID: card.ID, Date: date(2025, 1, 10), PaymentMethod: billing.PaymentCredit},
		}}
	}

	tests := []testCase{
		{
			name: "FetchFailsAuditStillRuns",
			setupMock: func(m *reconcile.MockGateway) {
				m.EXPECT().FetchInstallmentsWithInvoiceAndPurchase(gomock.Any()).Return(nil, boom)
				m.EXPECT().FetchOpenInvoices(gomock.Any()).Return(nil, nil)
			},
		},
		{
			name: "SaveFailsAbortsPhase",
			setupMock: func(m *reconcile.MockGateway) {
				target := billing.NewInvoice(card, date(2025, 2, 1))
				target.ID = uuid.New()

				m.EXPECT().FetchInstallmentsWithInvoiceAndPurchase(gomock.Any()).Return(misplaced(), nil)
				m.EXPECT().LookupCard(gomock.Any(), card.ID).Return(card, nil)
				m.EXPECT().GetOrCreateInvoice(gomock.Any(), card.ID, date(2025, 2, 1)).Return(target, nil)
				m.EXPECT().SaveChanges(gomock.Any(), gomock.Any()).Return(boom)
				m.EXPECT().FetchOpenInvoices(gomock.Any()).Return(nil, boom)
			},
		},
		{
			name: "CardLookupFailsAbortsPhase",
			setupMock: func(m *reconcile.MockGateway) {
				m.EXPECT().FetchInstallmentsWithInvoiceAndPurchase(gomock.Any()).Return(misplaced(), nil)
				m.EXPECT().LookupCard(gomock.Any(), card.ID).Return(nil, boom)
				m.EXPECT().FetchOpenInvoices(gomock.Any()).Return(nil, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			gw := reconcile.NewMockGateway(ctrl)
			tt.setupMock(gw)

			res, err := reconcile.New(gw, zerolog.Nop()).ReconcileOnce(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestReconcileOnce_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := reconcile.NewMockGateway(ctrl)
	gw.EXPECT().FetchInstallmentsWithInvoiceAndPurchase(gomock.Any()).Return([]*billing.Installment{{}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reconcile.New(gw, zerolog.Nop()).ReconcileOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
