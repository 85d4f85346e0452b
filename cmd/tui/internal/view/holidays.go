package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cardcycle/internal/calendar"
	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
)

// HolidaysModel browses the national holidays one year at a time.
type HolidaysModel struct {
	CommonModel

	year  int
	table table.Model
}

func NewHolidaysModel(c clock.Clock) HolidaysModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Weekday", Width: 10},
		{Title: "Holiday", Width: 32},
	}

	m := HolidaysModel{
		CommonModel: CommonModel{clock: c},
		year:        clock.Today(c).Year(),
		table:       newTable(columns, 13),
	}
	m.refreshTable()

	return m
}

func (m HolidaysModel) Title() string     { return "Holidays" }
func (m HolidaysModel) ShortHelp() string { return "Esc: back | ←/h: previous year | →/l: next year | t: this year" }

func (m HolidaysModel) Init() tea.Cmd {
	return nil
}

func (m HolidaysModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "left", "h":
			m.year--
			m.refreshTable()

			return m, nil
		case "right", "l":
			m.year++
			m.refreshTable()

			return m, nil
		case "t":
			m.year = m.today().Year()
			m.refreshTable()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m HolidaysModel) View() string {
	header := fmt.Sprintf("National holidays of %s", activeStyle(fmt.Sprint(m.year)))

	next := calendar.NextBusinessDay(m.today())
	footer := lipgloss.NewStyle().Faint(true).Render("Next business day: " + FormatDate(next))

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			framed(m.table),
			footer,
		),
	)
}

func (m *HolidaysModel) refreshTable() {
	holidays := calendar.HolidaysFor(m.year)

	rows := make([]table.Row, 0, len(holidays))
	for _, h := range holidays {
		rows = append(rows, table.Row{FormatDate(h.Date), h.Date.Weekday().String(), h.Name})
	}

	m.table.SetRows(rows)
	m.table.GotoTop()
}
