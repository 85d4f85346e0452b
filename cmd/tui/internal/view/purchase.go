package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
)

type purchaseState int

const (
	purchaseStateLoading purchaseState = iota
	purchaseStateForm
	purchaseStateSaving
	purchaseStateDone
)

// purchaseForm holds the raw form bindings.
type purchaseForm struct {
	CardID       string
	Description  string
	Amount       string
	Date         string
	Method       string
	Installments string
}

// PurchaseModel records a purchase and shows where its installments landed.
type PurchaseModel struct {
	CommonModel
	billingService *billing.Service

	state  purchaseState
	form   *huh.Form
	fields *purchaseForm
	cards  []*billing.Card

	result []*billing.Installment
	err    error
}

func NewPurchaseModel(svc *billing.Service, c clock.Clock) PurchaseModel {
	return PurchaseModel{
		CommonModel:    CommonModel{clock: c},
		billingService: svc,
		state:          purchaseStateLoading,
	}
}

func (m PurchaseModel) Title() string { return "Record Purchase" }
func (m PurchaseModel) ShortHelp() string {
	if m.state == purchaseStateDone {
		return "Enter: record another | Esc: back"
	}

	return "Tab: next field | Esc: back"
}

func (m PurchaseModel) Init() tea.Cmd {
	return m.loadCardsCmd()
}

func (m PurchaseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCardsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = purchaseStateDone

			return m, nil
		}

		m.cards = msg.cards

		return m.startForm()

	case purchaseSavedMsg:
		m.state = purchaseStateDone
		m.err = msg.err
		m.result = msg.installments

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == purchaseStateDone && msg.Type == tea.KeyEnter && len(m.cards) > 0 {
			return m.startForm()
		}
	}

	if m.state != purchaseStateForm || m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	params, err := m.fields.params()
	if err != nil {
		m.state = purchaseStateDone
		m.err = err

		return m, nil
	}

	m.state = purchaseStateSaving

	return m, m.saveCmd(params)
}

func (m PurchaseModel) startForm() (tea.Model, tea.Cmd) {
	m.err = nil
	m.result = nil

	if len(m.cards) == 0 {
		m.state = purchaseStateDone
		m.err = errors.New("no cards registered, add one with 'cyclectl card add'")

		return m, nil
	}

	m.fields = &purchaseForm{
		CardID:       m.cards[0].ID.String(),
		Date:         FormatDate(m.today()),
		Method:       string(billing.PaymentCredit),
		Installments: "1",
	}

	cardOptions := make([]huh.Option[string], 0, len(m.cards))
	for _, c := range m.cards {
		label := fmt.Sprintf("%s (closes %d, due %d)", c.Name, c.ClosingDay, c.DueDay)
		cardOptions = append(cardOptions, huh.NewOption(label, c.ID.String()))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("card").
				Title("Card").
				Options(cardOptions...).
				Value(&m.fields.CardID),

			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.fields.Description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("123.45").
				Value(&m.fields.Amount).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),

			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fields.Date).
				Validate(func(s string) error {
					_, err := time.Parse("2006-01-02", strings.TrimSpace(s))
					return err
				}),

			huh.NewSelect[string]().
				Key("method").
				Title("Payment Method").
				Options(
					huh.NewOption("Credit", string(billing.PaymentCredit)),
					huh.NewOption("Debit", string(billing.PaymentDebit)),
					huh.NewOption("Cash", string(billing.PaymentCash)),
					huh.NewOption("Pix", string(billing.PaymentPix)),
				).
				Value(&m.fields.Method),

			huh.NewInput().
				Key("installments").
				Title("Installments").
				Value(&m.fields.Installments).
				Validate(func(s string) error {
					_, err := parseInstallments(s)
					return err
				}),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = purchaseStateForm

	return m, m.form.Init()
}

func (m PurchaseModel) View() string {
	style := lipgloss.NewStyle().Padding(1, 2)

	switch m.state {
	case purchaseStateLoading:
		return style.Render("Loading cards...")
	case purchaseStateSaving:
		return style.Render("Saving purchase...")
	case purchaseStateForm:
		return style.Render("Record Purchase\n\n" + m.form.View())
	}

	if m.err != nil {
		return style.Render(fmt.Sprintf("Error: %v\n\n(Enter to retry, Esc to back)", m.err))
	}

	var b strings.Builder

	b.WriteString("Purchase recorded.\n\n")

	for _, inst := range m.result {
		month := "-"
		if inst.Invoice != nil {
			month = FormatMonth(inst.Invoice.ReferenceMonth)
		}

		fmt.Fprintf(&b, "  %d/%d  %s  due %s  invoice %s\n",
			inst.Number, inst.Total, FormatAmount(inst.Amount), FormatDate(inst.DueDate), activeStyle(month))
	}

	b.WriteString("\n(Enter to record another, Esc to back)")

	return style.Render(b.String())
}

// params converts the form bindings into service input.
func (f *purchaseForm) params() (billing.RecordParams, error) {
	cardID, err := uuid.Parse(f.CardID)
	if err != nil {
		return billing.RecordParams{}, fmt.Errorf("invalid card: %w", err)
	}

	amount, err := parseAmount(f.Amount)
	if err != nil {
		return billing.RecordParams{}, err
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(f.Date))
	if err != nil {
		return billing.RecordParams{}, fmt.Errorf("invalid date: %w", err)
	}

	n, err := parseInstallments(f.Installments)
	if err != nil {
		return billing.RecordParams{}, err
	}

	method := billing.PaymentMethod(f.Method)
	if !method.Valid() {
		return billing.RecordParams{}, fmt.Errorf("invalid payment method %q", f.Method)
	}

	return billing.RecordParams{
		CardID:        cardID,
		Description:   strings.TrimSpace(f.Description),
		Amount:        amount,
		Date:          date,
		PaymentMethod: method,
		Installments:  n,
	}, nil
}

// parseAmount accepts both "1234.56" and "1234,56".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}

	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}

	return d, nil
}

func parseInstallments(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 48 {
		return 0, fmt.Errorf("installments must be between 1 and 48")
	}

	return n, nil
}

// Messages

type loadCardsMsg struct {
	cards []*billing.Card
	err   error
}

type purchaseSavedMsg struct {
	installments []*billing.Installment
	err          error
}

func (m PurchaseModel) loadCardsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cards, err := m.billingService.Cards(ctx)

		return loadCardsMsg{cards: cards, err: err}
	}
}

func (m PurchaseModel) saveCmd(params billing.RecordParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, installments, err := m.billingService.RecordPurchase(ctx, params)

		return purchaseSavedMsg{installments: installments, err: err}
	}
}
