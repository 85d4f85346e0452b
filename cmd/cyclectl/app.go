package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
	billingStore "github.com/MrJamesThe3rd/cardcycle/internal/billing/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
	"github.com/MrJamesThe3rd/cardcycle/internal/config"
	"github.com/MrJamesThe3rd/cardcycle/internal/database"
	"github.com/MrJamesThe3rd/cardcycle/internal/logger"
	"github.com/MrJamesThe3rd/cardcycle/internal/reconcile"
)

// app holds what every subcommand shares. The database is opened only by
// the commands that need it.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	clock clock.Clock
	db    *sql.DB
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	a.cfg = cfg
	a.log = log
	a.clock = clock.NewSystem(cfg.Offset())

	return nil
}

func (a *app) open(ctx context.Context) (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}

	db, err := database.New(a.cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	a.db = db

	return db, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func (a *app) billing(db *sql.DB) (*billing.Service, *reconcile.Reconciler) {
	store := billingStore.New(db)

	return billing.NewService(store, logger.WithComponent(a.log, "billing")),
		reconcile.New(store, logger.WithComponent(a.log, "reconcile"))
}
