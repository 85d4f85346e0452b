package reconcile_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
	"github.com/MrJamesThe3rd/cardcycle/internal/billing/memory"
	reconcileHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/reconcile"
	"github.com/MrJamesThe3rd/cardcycle/internal/reconcile"
)

func serve(gw reconcile.Gateway) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	reconcileHandler.NewHandler(reconcile.New(gw, zerolog.Nop())).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	return rec
}

type result struct {
	Reassigned int    `json:"reassigned"`
	Corrected  int    `json:"corrected"`
	Removed    int    `json:"removed"`
	Error      string `json:"error"`
}

func TestHandler_Run(t *testing.T) {
	store := memory.New()
	card := store.AddCard(billing.Card{ClosingDay: 10, DueDay: 20})
	store.AddInvoice(billing.Invoice{CardID: card.ID, ReferenceMonth: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Total: decimal.Zero, Status: billing.InvoiceOpen})

	rec := serve(store)
	require.Equal(t, http.StatusOK, rec.Code)

	var body result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 1, body.Removed)
	assert.Empty(t, body.Error)
}

func TestHandler_Run_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := reconcile.NewMockGateway(ctrl)
	gw.EXPECT().FetchInstallmentsWithInvoiceAndPurchase(gomock.Any()).Return(nil, errors.New("connection refused"))
	gw.EXPECT().FetchOpenInvoices(gomock.Any()).Return([]*billing.Invoice{{ID: uuid.New(), Total: decimal.Zero}}, nil)
	gw.EXPECT().SaveChanges(gomock.Any(), gomock.Any()).Return(nil)

	rec := serve(gw)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 1, body.Removed)
	assert.Contains(t, body.Error, "connection refused")
}
