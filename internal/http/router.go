package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/MrJamesThe3rd/cardcycle/internal/http/billing"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/calendar"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/importcsv"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/matching"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/reconcile"
)

func New(
	log zerolog.Logger,
	allowedOrigins []string,
	calendarV1 *calendar.Handler,
	billingV1 *billing.Handler,
	reconcileV1 *reconcile.Handler,
	importV1 *importcsv.Handler,
	aliasesV1 *matching.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(hlog.NewHandler(log))
	router.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/calendar", calendarV1.Routes)

		r.Route("/billing", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			billingV1.Routes(r)
		})

		r.Route("/reconcile", reconcileV1.Routes)

		r.Route("/import", func(r chi.Router) {
			r.Use(middleware.AllowContentType("multipart/form-data"))
			importV1.Routes(r)
		})

		r.Route("/aliases", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			aliasesV1.Routes(r)
		})
	})

	return router
}
