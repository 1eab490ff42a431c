package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#5FA052"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	selectedCardStyle = cardStyle.BorderForeground(lipgloss.Color("#5FA052"))
	cardRangeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardTitleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	actionStyle       = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.NormalBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	activeActionStyle = actionStyle.
				Foreground(lipgloss.Color("#F0F0F0")).
				Bold(true).
				BorderForeground(lipgloss.Color("#5FA052"))
	userNameStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	assistantNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FA052")).Bold(true)
	chartBarStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4FA3C7"))
	chartLineStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A030"))
)

type keyMap struct {
	Quit       key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	Apply      key.Binding
	Up         key.Binding
	Down       key.Binding
	Ask        key.Binding
	Refresh    key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Submit     key.Binding
	Back       key.Binding
	ForceQuit  key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func newKeyMap(l labels) keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		NextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Apply:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev card")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next card")),
		Ask:        key.NewBinding(key.WithKeys("enter", "a"), key.WithHelp("enter", l.Ask)),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		PageUp:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", l.Back)),
		ScrollUp:   key.NewBinding(key.WithKeys("up", "pgup"), key.WithHelp("↑/pgup", "scroll")),
		ScrollDown: key.NewBinding(key.WithKeys("down", "pgdown"), key.WithHelp("↓/pgdn", "scroll")),
	}
}

func (k keyMap) mainDateHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Apply, k.ForceQuit}
}

func (k keyMap) mainCardsHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PageDown, k.Ask, k.NextField, k.Refresh, k.Quit}
}

func (k keyMap) chatHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Back, k.ScrollUp, k.ScrollDown, k.ForceQuit}
}
