package billing

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
)

type Handler struct {
	svc      *billing.Service
	validate *validator.Validate
}

func NewHandler(svc *billing.Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/invoice-month", h.invoiceMonth)
	r.Get("/installment-months", h.installmentMonths)
	r.Get("/invoices/open", h.openInvoices)
	r.Get("/cards", h.listCards)
	r.Post("/cards", h.createCard)
	r.Post("/purchases", h.recordPurchase)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to encode response")
	}
}

func parseDate(r *http.Request) (time.Time, bool) {
	date, err := time.Parse(time.DateOnly, r.URL.Query().Get("date"))
	return date, err == nil
}

type invoiceMonthResponse struct {
	Date           string `json:"date"`
	ClosingDay     int    `json:"closing_day"`
	ReferenceMonth string `json:"reference_month"`
}

func (h *Handler) invoiceMonth(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDate(r)
	if !ok {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	closingDay, err := strconv.Atoi(r.URL.Query().Get("closing_day"))
	if err != nil {
		http.Error(w, "invalid closing_day", http.StatusBadRequest)
		return
	}

	writeJSON(w, r, http.StatusOK, invoiceMonthResponse{
		Date:           date.Format(time.DateOnly),
		ClosingDay:     closingDay,
		ReferenceMonth: billing.ExpectedInvoiceMonth(date, closingDay).Format(monthLayout),
	})
}

type installmentMonthsResponse struct {
	Date   string   `json:"date"`
	Months []string `json:"months"`
}

func (h *Handler) installmentMonths(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDate(r)
	if !ok {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	total := 1
	if s := r.URL.Query().Get("installments"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 120 {
			http.Error(w, "invalid installments", http.StatusBadRequest)
			return
		}

		total = n
	}

	resp := installmentMonthsResponse{Date: date.Format(time.DateOnly), Months: make([]string, total)}
	for i := range total {
		resp.Months[i] = billing.ExpectedInstallmentMonth(date, i+1, total).Format(monthLayout)
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) openInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.OpenInvoices(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("listing open invoices")
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := make([]invoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i] = toInvoiceResponse(inv)
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) listCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.Cards(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("listing cards")
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := make([]cardResponse, len(cards))
	for i, c := range cards {
		resp[i] = toCardResponse(c)
	}

	writeJSON(w, r, http.StatusOK, resp)
}

type createCardRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	ClosingDay int    `json:"closing_day" validate:"min=1,max=31"`
	DueDay     int    `json:"due_day" validate:"min=1,max=31"`
}

func (h *Handler) createCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	card, err := h.svc.AddCard(r.Context(), req.Name, req.ClosingDay, req.DueDay)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidCard) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		hlog.FromRequest(r).Error().Err(err).Msg("creating card")
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, r, http.StatusCreated, toCardResponse(card))
}

type recordPurchaseRequest struct {
	CardID        uuid.UUID       `json:"card_id" validate:"required_if=PaymentMethod credit"`
	Description   string          `json:"description" validate:"max=200"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date" validate:"required,datetime=2006-01-02"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=credit debit cash pix"`
	Installments  int             `json:"installments" validate:"omitempty,min=1,max=48"`
}

func (h *Handler) recordPurchase(w http.ResponseWriter, r *http.Request) {
	var req recordPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	date, _ := time.Parse(time.DateOnly, req.Date)

	p, insts, err := h.svc.RecordPurchase(r.Context(), billing.RecordParams{
		CardID:        req.CardID,
		Description:   req.Description,
		Amount:        req.Amount,
		Date:          date,
		PaymentMethod: billing.PaymentMethod(req.PaymentMethod),
		Installments:  req.Installments,
	})
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidPurchase):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, billing.ErrCardNotFound):
			http.Error(w, "card not found", http.StatusNotFound)
		default:
			hlog.FromRequest(r).Error().Err(err).Msg("recording purchase")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	writeJSON(w, r, http.StatusCreated, toPurchaseResponse(p, insts))
}
