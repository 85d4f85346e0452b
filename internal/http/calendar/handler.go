package calendar

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/MrJamesThe3rd/cardcycle/internal/calendar"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/holidays/{year}", h.holidays)
	r.Get("/next-business-day", h.nextBusinessDay)
}

type holidayResponse struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (h *Handler) holidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1583 || year > 9999 {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}

	list := calendar.HolidaysFor(year)

	resp := make([]holidayResponse, len(list))
	for i, hol := range list {
		resp[i] = holidayResponse{Date: hol.Date.Format(time.DateOnly), Name: hol.Name}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to encode response")
	}
}

type nextBusinessDayResponse struct {
	Date            string `json:"date"`
	NextBusinessDay string `json:"next_business_day"`
	IsBusinessDay   bool   `json:"is_business_day"`
}

func (h *Handler) nextBusinessDay(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(time.DateOnly, r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	resp := nextBusinessDayResponse{
		Date:            date.Format(time.DateOnly),
		NextBusinessDay: calendar.NextBusinessDay(date).Format(time.DateOnly),
		IsBusinessDay:   calendar.IsBusinessDay(date),
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to encode response")
	}
}
