package main

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
	"github.com/MrJamesThe3rd/cardcycle/internal/billing/memory"
	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
	"github.com/MrJamesThe3rd/cardcycle/internal/config"
	"github.com/MrJamesThe3rd/cardcycle/internal/gate"
	"github.com/MrJamesThe3rd/cardcycle/internal/obligation"
	"github.com/MrJamesThe3rd/cardcycle/internal/reconcile"
)

func TestLoops_JobTable(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	got := loops(cfg, services{log: zerolog.Nop(), clock: clock.NewSystem(cfg.Offset())})
	require.Len(t, got, 2)

	keys := map[string]string{}
	for _, l := range got {
		for _, j := range l.Jobs {
			keys[j.Name] = j.GateKey
		}
	}

	assert.Equal(t, map[string]string{
		"obligation-reminders": keyObligationReminders,
		"invoice-closing":      keyInvoiceClosing,
		"weekly-digest":        keyWeeklyDigest,
	}, keys)

	assert.NotNil(t, got[1].NextWake, "digest loop sleeps until the next weekly slot")
	assert.Equal(t, cfg.Worker.Interval, got[0].Interval)
}

func TestDigestJob(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	store := memory.New()
	card := store.AddCard(billing.Card{ClosingDay: 10, DueDay: 10})
	store.AddInvoice(billing.Invoice{
		CardID:         card.ID,
		ReferenceMonth: clock.Date(2025, 3, 1),
		DueDate:        clock.Date(2025, 3, 10),
		Total:          decimal.RequireFromString("1234.5"),
		Status:         billing.InvoiceOpen,
	})

	var buf bytes.Buffer

	now := time.Date(2025, 3, 3, 8, 0, 0, 0, clock.Zone(cfg.Offset()))
	c := clock.Func(func() time.Time { return now })
	log := zerolog.New(&buf)

	svc := services{
		billing:    billing.NewService(store, log),
		reconciler: reconcile.New(store, log),
		gate:       gate.New(gate.NewMemoryStore(), c),
		clock:      c,
		log:        log,
	}

	digest := loops(cfg, svc)[1].Jobs[0]
	require.True(t, digest.Trigger(now))
	require.NoError(t, digest.Handler(context.Background()))

	out := buf.String()
	assert.True(t, strings.Contains(out, `"open_invoices":1`), out)
	assert.Contains(t, out, "R$ 1.234,50")
	assert.Contains(t, out, `"next_due":"2025-03-10"`)
}

// countingGateway counts reconciliation passes by their first read.
type countingGateway struct {
	*memory.Store
	passes atomic.Int32
}

func (g *countingGateway) FetchInstallmentsWithInvoiceAndPurchase(ctx context.Context) ([]*billing.Installment, error) {
	g.passes.Add(1)
	return g.Store.FetchInstallmentsWithInvoiceAndPurchase(ctx)
}

func TestRunWorker_ReconcilesOncePerProcess(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Worker.Interval = time.Millisecond
	cfg.Worker.ErrorBackoff = time.Millisecond
	cfg.Worker.ReconcileWarmup = time.Millisecond

	ctrl := gomock.NewController(t)
	repo := obligation.NewMockRepository(ctrl)
	repo.EXPECT().ListActive(gomock.Any()).Return(nil, nil).AnyTimes()

	// Every clock read moves six hours, so the loops see several local days.
	var reads atomic.Int64

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, clock.Zone(cfg.Offset()))
	c := clock.Func(func() time.Time {
		return start.Add(time.Duration(reads.Add(1)) * 6 * time.Hour)
	})

	store := memory.New()
	gw := &countingGateway{Store: store}

	svc := services{
		billing:     billing.NewService(store, zerolog.Nop()),
		reconciler:  reconcile.New(gw, zerolog.Nop()),
		obligations: obligation.NewService(repo, obligation.NewMockNotifier(ctrl), zerolog.Nop()),
		gate:        gate.New(gate.NewMemoryStore(), c),
		clock:       c,
		log:         zerolog.Nop(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, runWorker(ctx, cfg, svc))

	assert.Greater(t, reads.Load(), int64(12), "loops should have ticked across several days")
	assert.Equal(t, int32(1), gw.passes.Load())
}
