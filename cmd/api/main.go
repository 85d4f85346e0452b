package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
	billingStore "github.com/MrJamesThe3rd/cardcycle/internal/billing/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/config"
	"github.com/MrJamesThe3rd/cardcycle/internal/database"
	cardcycleHttp "github.com/MrJamesThe3rd/cardcycle/internal/http"
	billingHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/billing"
	calendarHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/calendar"
	importHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/matching"
	reconcileHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/reconcile"
	"github.com/MrJamesThe3rd/cardcycle/internal/importer"
	"github.com/MrJamesThe3rd/cardcycle/internal/logger"
	"github.com/MrJamesThe3rd/cardcycle/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/cardcycle/internal/matching/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/reconcile"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	var (
		store          = billingStore.New(db)
		billingService = billing.NewService(store, logger.WithComponent(log, "billing"))
		reconciler     = reconcile.New(store, logger.WithComponent(log, "reconcile"))
		aliases        = matching.NewService(matchingStore.New(db))
		importService  = importer.NewService(billingService, aliases, logger.WithComponent(log, "importer"))
	)

	var (
		calendarH  = calendarHandler.NewHandler()
		billingH   = billingHandler.NewHandler(billingService)
		reconcileH = reconcileHandler.NewHandler(reconciler)
		importH    = importHandler.NewHandler(importService)
		aliasesH   = matchingHandler.NewHandler(aliases)
	)

	router := cardcycleHttp.New(log, cfg.Server.AllowedOrigins, calendarH, billingH, reconcileH, importH, aliasesH)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("shutting down")

	return srv.Shutdown(shutdownCtx)
}
