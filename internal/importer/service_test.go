package importer_test

import (
	"context"
	"errors"
	"strings"
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
	"github.com/MrJamesThe3rd/cardcycle/internal/importer"
	"github.com/MrJamesThe3rd/cardcycle/internal/matching"
)

const nubankStatement = `date,title,amount
2025-01-10,Notebook - Parcela 1/3,100.00
2024-12-10,Fone - Parcela 2/2,50.00
2025-01-12,Padaria,23.90
2025-01-20,Pagamento recebido,-500.00
`

func TestService_Import(t *testing.T) {
	store := memory.New()
	card := store.AddCard(billing.Card{Name: "Roxinho", ClosingDay: 3, DueDay: 10})

	aliases := matching.NewService(matching.NewMemoryStore())
	require.NoError(t, aliases.Learn(context.Background(), "notebook", "Notebook Dell"))

	svc := importer.NewService(billing.NewService(store, zerolog.Nop()), aliases, zerolog.Nop())

	res, err := svc.Import(context.Background(), card.ID, strings.NewReader(nubankStatement))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Continuations)
	assert.Equal(t, 1, res.Credits)
	require.Len(t, res.Purchases, 2)

	notebook := res.Purchases[0]
	assert.Equal(t, "Notebook Dell", notebook.Description)
	assert.Equal(t, "Padaria", res.Purchases[1].Description)
	assert.Equal(t, 3, notebook.Installments)
	assert.True(t, decimal.NewFromInt(300).Equal(notebook.Amount))
	assert.Equal(t, billing.PaymentCredit, notebook.PaymentMethod)

	totals := map[string]string{}
	for _, inv := range store.Invoices() {
		totals[inv.ReferenceMonth.Format("2006-01")] = inv.Total.StringFixed(2)
	}

	assert.Equal(t, map[string]string{
		"2025-02": "123.90",
		"2025-03": "100.00",
		"2025-04": "100.00",
	}, totals)
}

func TestService_Import_Errors(t *testing.T) {
	t.Run("UnknownFormat", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		recorder := importer.NewMockRecorder(ctrl)

		svc := importer.NewService(recorder, nil, zerolog.Nop())

		_, err := svc.Import(context.Background(), uuid.New(), strings.NewReader("a;b\n1;2\n"))
		assert.Error(t, err)
	})

	t.Run("RecordFailureKeepsEarlierPurchases", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		recorder := importer.NewMockRecorder(ctrl)

		first := &billing.Purchase{Description: "Notebook"}

		gomock.InOrder(
			recorder.EXPECT().
				RecordPurchase(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, p billing.RecordParams) (*billing.Purchase, []*billing.Installment, error) {
					assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), p.Date)
					assert.Equal(t, 3, p.Installments)
					return first, nil, nil
				}),
			recorder.EXPECT().
				RecordPurchase(gomock.Any(), gomock.Any()).
				Return(nil, nil, billing.ErrCardNotFound),
		)

		svc := importer.NewService(recorder, nil, zerolog.Nop())

		res, err := svc.Import(context.Background(), uuid.New(), strings.NewReader(nubankStatement))
		require.Error(t, err)
		assert.True(t, errors.Is(err, billing.ErrCardNotFound))
		assert.Contains(t, err.Error(), "row 4")
		assert.Equal(t, 1, res.Imported)
		assert.Equal(t, []*billing.Purchase{first}, res.Purchases)
	})
}

func TestService_Import_SuggesterFailureKeepsRawDescription(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := importer.NewMockRecorder(ctrl)
	suggester := importer.NewMockSuggester(ctrl)

	suggester.EXPECT().Suggest(gomock.Any(), "PADARIA").Return("", errors.New("db down"))
	recorder.EXPECT().
		RecordPurchase(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p billing.RecordParams) (*billing.Purchase, []*billing.Installment, error) {
			assert.Equal(t, "PADARIA", p.Description)
			assert.Equal(t, 1, p.Installments)
			return &billing.Purchase{Description: p.Description}, nil, nil
		})

	svc := importer.NewService(recorder, suggester, zerolog.Nop())

	res, err := svc.Import(context.Background(), uuid.New(), strings.NewReader("Data;Lançamento;Valor\n05/01/2025;PADARIA;12,00\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
}
