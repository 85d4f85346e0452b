package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
	"github.com/MrJamesThe3rd/cardcycle/internal/config"
	"github.com/MrJamesThe3rd/cardcycle/internal/gate"
	gateStore "github.com/MrJamesThe3rd/cardcycle/internal/gate/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/logger"
	"github.com/MrJamesThe3rd/cardcycle/internal/money"
	"github.com/MrJamesThe3rd/cardcycle/internal/obligation"
	obligationStore "github.com/MrJamesThe3rd/cardcycle/internal/obligation/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/reconcile"
	"github.com/MrJamesThe3rd/cardcycle/internal/worker"
)

// Gate keys. They are persisted, so renaming one reruns its job once.
const (
	keyObligationReminders = "ObligationReminders"
	keyInvoiceClosing      = "InvoiceClosing"
	keyWeeklyDigest        = "WeeklyDigest"
)

type services struct {
	billing     *billing.Service
	reconciler  *reconcile.Reconciler
	obligations *obligation.Service
	gate        *gate.Gate
	clock       clock.Clock
	log         zerolog.Logger
}

func workerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the background loops until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			billingSvc, reconciler := a.billing(db)

			svc := services{
				billing:    billingSvc,
				reconciler: reconciler,
				obligations: obligation.NewService(
					obligationStore.New(db),
					obligation.LogNotifier{Log: logger.WithComponent(a.log, "reminder")},
					logger.WithComponent(a.log, "obligation"),
				),
				gate:  gate.New(gateStore.New(db), a.clock),
				clock: a.clock,
				log:   logger.WithComponent(a.log, "worker"),
			}

			return runWorker(ctx, a.cfg, svc)
		},
	}
}

// runWorker starts the one-shot startup reconciliation and the polling
// loops, and waits for all of them to stop. Reconciliation is not a loop
// job: it runs once per process after the warm-up delay.
func runWorker(ctx context.Context, cfg *config.Config, svc services) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := worker.RunAfter(ctx, cfg.Worker.ReconcileWarmup, func(ctx context.Context) error {
			_, err := svc.reconciler.ReconcileOnce(ctx)
			return err
		})
		if err != nil {
			svc.log.Error().Err(err).Msg("startup reconciliation failed")
		}

		return nil
	})

	for _, loop := range loops(cfg, svc) {
		g.Go(func() error { return loop.Run(ctx) })
	}

	return g.Wait()
}

func loops(cfg *config.Config, svc services) []*worker.Loop {
	billingLoop := worker.NewLoop("billing", svc.gate, svc.clock, svc.log)
	billingLoop.Interval = cfg.Worker.Interval
	billingLoop.ErrorBackoff = cfg.Worker.ErrorBackoff
	billingLoop.Jobs = []worker.Job{
		{
			Name:    "obligation-reminders",
			Trigger: worker.DailyAt(cfg.Reminder.Hour),
			GateKey: keyObligationReminders,
			Handler: func(ctx context.Context) error {
				sent, err := svc.obligations.SendDueReminders(ctx, svc.clock.Now())
				if sent > 0 {
					svc.log.Info().Int("sent", sent).Msg("obligation reminders sent")
				}

				return err
			},
		},
		{
			Name:    "invoice-closing",
			Trigger: worker.DailyAt(cfg.Closing.Hour),
			GateKey: keyInvoiceClosing,
			Handler: func(ctx context.Context) error {
				_, err := svc.billing.CloseDueInvoices(ctx, clock.Today(svc.clock))
				return err
			},
		},
	}

	digestLoop := worker.NewLoop("digest", svc.gate, svc.clock, svc.log)
	digestLoop.Interval = cfg.Worker.Interval
	digestLoop.ErrorBackoff = cfg.Worker.ErrorBackoff
	digestLoop.NextWake = worker.NextWeekly(cfg.Digest.Weekday, cfg.Digest.Hour)
	digestLoop.Jobs = []worker.Job{
		{
			Name:    "weekly-digest",
			Trigger: worker.WeeklyAt(cfg.Digest.Weekday, cfg.Digest.Hour),
			GateKey: keyWeeklyDigest,
			Handler: func(ctx context.Context) error {
				d, err := svc.billing.Digest(ctx, clock.Today(svc.clock))
				if err != nil {
					return err
				}

				event := svc.log.Info().
					Int("open_invoices", d.Open).
					Str("total", money.Format(d.Total))

				if d.NextDue != nil {
					event = event.
						Str("next_due", billing.EffectiveDueDate(d.NextDue).Format("2006-01-02")).
						Str("next_due_total", money.Format(d.NextDue.Total))
				}

				event.Msg("weekly invoice digest")

				return nil
			},
		},
	}

	return []*worker.Loop{billingLoop, digestLoop}
}
