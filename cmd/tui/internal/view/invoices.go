package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
	"github.com/MrJamesThe3rd/cardcycle/internal/reconcile"
)

// InvoicesModel lists unpaid invoices and runs maintenance actions on them.
type InvoicesModel struct {
	CommonModel
	billingService *billing.Service
	reconciler     *reconcile.Reconciler

	table    table.Model
	invoices []*billing.Invoice
	cards    map[uuid.UUID]string

	loading bool
	busy    bool
	err     error
	status  string
}

func NewInvoicesModel(svc *billing.Service, rec *reconcile.Reconciler, c clock.Clock) InvoicesModel {
	columns := []table.Column{
		{Title: "Card", Width: 16},
		{Title: "Month", Width: 8},
		{Title: "Closing", Width: 12},
		{Title: "Due", Width: 12},
		{Title: "Status", Width: 8},
		{Title: "Total", Width: 16},
	}

	return InvoicesModel{
		CommonModel:    CommonModel{clock: c},
		billingService: svc,
		reconciler:     rec,
		table:          newTable(columns, 15),
		loading:        true,
	}
}

func (m InvoicesModel) Title() string { return "Open Invoices" }
func (m InvoicesModel) ShortHelp() string {
	return "Esc: back | r: refresh | x: reconcile | c: close due"
}

func (m InvoicesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoicesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.invoices = msg.invoices
		m.cards = msg.cards
		m.refreshTable()

		return m, nil

	case reconcileDoneMsg:
		m.busy = false
		m.status = reconcileStatus(msg.res, msg.err)

		return m, m.loadCmd()

	case closeDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error closing invoices: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("%d invoice(s) closed", msg.closed)
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "x":
			if m.busy {
				return m, nil
			}

			m.busy = true
			m.status = "Reconciling..."

			return m, m.reconcileCmd()
		case "c":
			if m.busy {
				return m, nil
			}

			m.busy = true
			m.status = "Closing due invoices..."

			return m, m.closeCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoicesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(Esc to back)", m.err))
	}

	if len(m.invoices) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("No open invoices.\n\n(Esc to back, x to reconcile)")
	}

	total := decimal.Zero
	for _, inv := range m.invoices {
		total = total.Add(inv.Total)
	}

	header := fmt.Sprintf("%d unpaid invoice(s) | Total: %s", len(m.invoices), activeStyle(FormatAmount(total)))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		framed(m.table),
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *InvoicesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.invoices))
	for _, inv := range m.invoices {
		name := m.cards[inv.CardID]
		if name == "" {
			name = inv.CardID.String()[:8]
		}

		rows = append(rows, table.Row{
			name,
			FormatMonth(inv.ReferenceMonth),
			FormatDate(inv.ClosingDate),
			FormatDate(billing.EffectiveDueDate(inv)),
			string(inv.Status),
			FormatAmount(inv.Total),
		})
	}

	m.table.SetRows(rows)
}

func reconcileStatus(res reconcile.Result, err error) string {
	summary := fmt.Sprintf("Reconciled: %d moved, %d corrected, %d removed, %d skipped",
		res.Reassigned, res.Corrected, res.Removed, res.Skipped)

	if err != nil {
		return fmt.Sprintf("%s (errors: %v)", summary, err)
	}

	if !res.Changed() {
		return "Nothing to reconcile"
	}

	return summary
}

// Messages

type loadInvoicesMsg struct {
	invoices []*billing.Invoice
	cards    map[uuid.UUID]string
	err      error
}

type reconcileDoneMsg struct {
	res reconcile.Result
	err error
}

type closeDoneMsg struct {
	closed int
	err    error
}

func (m InvoicesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cards, err := m.billingService.Cards(ctx)
		if err != nil {
			return loadInvoicesMsg{err: err}
		}

		names := make(map[uuid.UUID]string, len(cards))
		for _, c := range cards {
			names[c.ID] = c.Name
		}

		invoices, err := m.billingService.OpenInvoices(ctx)

		return loadInvoicesMsg{invoices: invoices, cards: names, err: err}
	}
}

func (m InvoicesModel) reconcileCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.reconciler.ReconcileOnce(ctx)

		return reconcileDoneMsg{res: res, err: err}
	}
}

func (m InvoicesModel) closeCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		closed, err := m.billingService.CloseDueInvoices(ctx, m.today())

		return closeDoneMsg{closed: closed, err: err}
	}
}
