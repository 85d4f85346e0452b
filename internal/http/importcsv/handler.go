package importcsv

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
	"github.com/MrJamesThe3rd/cardcycle/internal/importer"
)

const maxUpload = 10 << 20

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type purchaseResponse struct {
	ID           uuid.UUID       `json:"id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date"`
	Installments int             `json:"installments"`
}

type importResponse struct {
	Imported      int                `json:"imported"`
	Continuations int                `json:"continuations"`
	Credits       int                `json:"credits"`
	Purchases     []purchaseResponse `json:"purchases"`
	Error         string             `json:"error,omitempty"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	cardID, err := uuid.Parse(r.FormValue("card_id"))
	if err != nil {
		http.Error(w, "card_id field is required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := h.importSvc.Import(r.Context(), cardID, file)

	resp := toResponse(res)

	switch {
	case err == nil:
		writeJSON(w, r, http.StatusCreated, resp)
	case res.Imported == 0 && errors.Is(err, billing.ErrCardNotFound):
		http.Error(w, "card not found", http.StatusNotFound)
	case res.Imported == 0 && !errors.Is(err, billing.ErrInvalidPurchase):
		// Nothing was written, the file itself is unusable.
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		hlog.FromRequest(r).Warn().Err(err).Int("imported", res.Imported).Msg("statement import stopped early")

		resp.Error = err.Error()
		writeJSON(w, r, http.StatusUnprocessableEntity, resp)
	}
}

func toResponse(res importer.Result) importResponse {
	resp := importResponse{
		Imported:      res.Imported,
		Continuations: res.Continuations,
		Credits:       res.Credits,
		Purchases:     make([]purchaseResponse, 0, len(res.Purchases)),
	}

	for _, p := range res.Purchases {
		resp.Purchases = append(resp.Purchases, purchaseResponse{
			ID:           p.ID,
			Description:  p.Description,
			Amount:       p.Amount,
			Date:         p.Date.Format("2006-01-02"),
			Installments: p.Installments,
		})
	}

	return resp
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to encode response")
	}
}
