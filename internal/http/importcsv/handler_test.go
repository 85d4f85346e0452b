package importcsv_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
	"github.com/MrJamesThe3rd/cardcycle/internal/billing/memory"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/importcsv"
	"github.com/MrJamesThe3rd/cardcycle/internal/importer"
)

const statement = "Data;Lançamento;Valor\n05/01/2025;LOJAS XYZ 01/02;150,00\n06/01/2025;LOJAS XYZ 02/02;150,00\n07/01/2025;PAGAMENTO;-300,00\n"

func upload(t *testing.T, store *memory.Store, fields map[string]string, file string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if file != "" {
		fw, err := mw.CreateFormFile("file", "fatura.csv")
		require.NoError(t, err)

		_, err = fw.Write([]byte(file))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	r := chi.NewRouter()
	svc := importer.NewService(billing.NewService(store, zerolog.Nop()), nil, zerolog.Nop())
	importcsv.NewHandler(svc).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Import(t *testing.T) {
	store := memory.New()
	card := store.AddCard(billing.Card{Name: "Gold", ClosingDay: 15, DueDay: 10})

	rec := upload(t, store, map[string]string{"card_id": card.ID.String()}, statement)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Imported      int `json:"imported"`
		Continuations int `json:"continuations"`
		Credits       int `json:"credits"`
		Purchases     []struct {
			Description  string `json:"description"`
			Amount       string `json:"amount"`
			Installments int    `json:"installments"`
		} `json:"purchases"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 1, resp.Continuations)
	assert.Equal(t, 1, resp.Credits)
	require.Len(t, resp.Purchases, 1)
	assert.Equal(t, "LOJAS XYZ", resp.Purchases[0].Description)
	assert.Equal(t, "300", resp.Purchases[0].Amount)
	assert.Equal(t, 2, resp.Purchases[0].Installments)
	assert.Len(t, store.Invoices(), 2)
}

func TestHandler_Import_BadRequests(t *testing.T) {
	store := memory.New()
	card := store.AddCard(billing.Card{Name: "Gold", ClosingDay: 15, DueDay: 10})

	tests := []struct {
		name   string
		fields map[string]string
		file   string
		want   int
	}{
		{"MissingCard", nil, statement, http.StatusBadRequest},
		{"MissingFile", map[string]string{"card_id": card.ID.String()}, "", http.StatusBadRequest},
		{"UnknownFormat", map[string]string{"card_id": card.ID.String()}, "a;b\n", http.StatusBadRequest},
		{"UnknownCard", map[string]string{"card_id": uuid.NewString()}, statement, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(t, store, tt.fields, tt.file)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
