package reconcile

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/MrJamesThe3rd/cardcycle/internal/reconcile"
)

type Handler struct {
	reconciler *reconcile.Reconciler
}

func NewHandler(r *reconcile.Reconciler) *Handler {
	return &Handler{reconciler: r}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.run)
}

type resultResponse struct {
	Reassigned int    `json:"reassigned"`
	Corrected  int    `json:"corrected"`
	Removed    int    `json:"removed"`
	Skipped    int    `json:"skipped"`
	Error      string `json:"error,omitempty"`
}

// run executes one pass synchronously. A failed phase still reports what the
// other phase changed.
func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	res, err := h.reconciler.ReconcileOnce(r.Context())

	resp := resultResponse{
		Reassigned: res.Reassigned,
		Corrected:  res.Corrected,
		Removed:    res.Removed,
		Skipped:    res.Skipped,
	}

	status := http.StatusOK
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("reconciliation failed")

		resp.Error = err.Error()
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to encode response")
	}
}
