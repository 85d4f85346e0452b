package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/cardcycle/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
	billingStore "github.com/MrJamesThe3rd/cardcycle/internal/billing/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
	"github.com/MrJamesThe3rd/cardcycle/internal/config"
	"github.com/MrJamesThe3rd/cardcycle/internal/database"
	"github.com/MrJamesThe3rd/cardcycle/internal/logger"
	"github.com/MrJamesThe3rd/cardcycle/internal/reconcile"
)

const logFile = "cardcycle-tui.log"

type model struct {
	billingService *billing.Service
	reconciler     *reconcile.Reconciler
	clock          clock.Clock

	currentView View

	invoicesView view.InvoicesModel
	purchaseView view.PurchaseModel
	holidaysView view.HolidaysModel
}

type View int

const (
	ViewMenu     View = 0
	ViewInvoices View = 1
	ViewPurchase View = 2
	ViewHolidays View = 3
)

func initialModel(log zerolog.Logger) (model, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return model{}, nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return model{}, nil, fmt.Errorf("connecting to database: %w", err)
	}

	ctx, cancel := view.DbCtx()
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return model{}, nil, err
	}

	store := billingStore.New(db)
	c := clock.NewSystem(cfg.Offset())
	billingSvc := billing.NewService(store, logger.WithComponent(log, "billing"))
	rec := reconcile.New(store, logger.WithComponent(log, "reconcile"))

	return model{
		billingService: billingSvc,
		reconciler:     rec,
		clock:          c,
		currentView:    ViewMenu,
		invoicesView:   view.NewInvoicesModel(billingSvc, rec, c),
		purchaseView:   view.NewPurchaseModel(billingSvc, c),
		holidaysView:   view.NewHolidaysModel(c),
	}, func() { db.Close() }, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewInvoices
				m.invoicesView = view.NewInvoicesModel(m.billingService, m.reconciler, m.clock)

				return m, m.invoicesView.Init()
			case "2":
				m.currentView = ViewPurchase
				m.purchaseView = view.NewPurchaseModel(m.billingService, m.clock)

				return m, m.purchaseView.Init()
			case "3":
				m.currentView = ViewHolidays
				m.holidaysView = view.NewHolidaysModel(m.clock)

				return m, m.holidaysView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewInvoices:
		var newModel tea.Model
		newModel, cmd = m.invoicesView.Update(msg)
		m.invoicesView = newModel.(view.InvoicesModel)
	case ViewPurchase:
		var newModel tea.Model
		newModel, cmd = m.purchaseView.Update(msg)
		m.purchaseView = newModel.(view.PurchaseModel)
	case ViewHolidays:
		var newModel tea.Model
		newModel, cmd = m.holidaysView.Update(msg)
		m.holidaysView = newModel.(view.HolidaysModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"CardCycle TUI\n\n" +
				"1. Open Invoices\n" +
				"2. Record Purchase\n" +
				"3. Holidays\n\n" +
				"q. Quit",
		)
	case ViewInvoices:
		current = m.invoicesView
	case ViewPurchase:
		current = m.purchaseView
	case ViewHolidays:
		current = m.holidaysView
	default:
		return "Unknown View"
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(current.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, current.View(), help)
}

func main() {
	_ = godotenv.Load()

	// Logs go to a file so they do not tear the terminal UI.
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	log, err := logger.NewWithWriter(f, logger.Config{Level: os.Getenv("LOG_LEVEL"), Format: "json"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}

	m, cleanup, err := initialModel(log)
	if err != nil {
		log.Error().Err(err).Msg("failed to start TUI")
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()

	cleanup()

	if err != nil {
		log.Error().Err(err).Msg("failed to run TUI")
		os.Exit(1)
	}
}
