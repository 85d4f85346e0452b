package view

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/cardcycle/internal/clock"
)

// View is what the menu needs from a screen besides tea.Model.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel carries the fixed-offset clock every screen dates against.
type CommonModel struct {
	clock clock.Clock
}

func (c CommonModel) today() time.Time {
	return clock.Today(c.clock)
}

// BackMsg returns the program to the menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
