package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/txn2/logfwd/pkg/fwdtui/styles"
)

type shortcut struct{ key, desc string }

type shortcutGroup struct {
	title string
	keys  []shortcut
}

var shortcutGroups = []shortcutGroup{
	{"Events", []shortcut{
		{"j / ↓", "Scroll down"},
		{"k / ↑", "Scroll up (pauses follow)"},
		{"g / Home", "Oldest event"},
		{"G / End", "Newest event, resume follow"},
		{"PgDn / PgUp", "Half page down/up"},
	}},
	{"Channels", []shortcut{
		{"Tab", "Next channel"},
		{"Shift+Tab", "Previous channel"},
		{"c", "Clear the selected channel"},
	}},
	{"Filter", []shortcut{
		{"1-6", "Toggle TRACE DEBUG INFO WARN ERROR FATAL"},
		{"/", "Add a search term"},
		{"", "  text or +text  include"},
		{"", "  -text          exclude"},
		{"", "  /regex/        regex, combine with + or -"},
		{"Backspace", "Remove the last term"},
		{"x", "Clear all terms"},
		{"Esc", "Cancel the term being typed"},
	}},
	{"", []shortcut{
		{"?", "Toggle help"},
		{"q", "Quit"},
		{"Mouse", "Wheel scrolls, Shift+drag selects text"},
	}},
}

// HelpModel is the keyboard shortcut overlay
type HelpModel struct {
	visible       bool
	width, height int
}

// NewHelpModel returns a hidden help overlay
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Update tracks the terminal size and closes the overlay on ?, q or esc
func (m *HelpModel) Update(msg tea.Msg) (HelpModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if m.visible && (msg.String() == "?" || msg.String() == "q" || msg.String() == "esc") {
			m.visible = false
		}
	}
	return *m, nil
}

func (m *HelpModel) Toggle()         { m.visible = !m.visible }
func (m *HelpModel) Show()           { m.visible = true }
func (m *HelpModel) Hide()           { m.visible = false }
func (m *HelpModel) IsVisible() bool { return m.visible }

// View renders the overlay centred in the terminal, or "" when hidden
func (m *HelpModel) View() string {
	if !m.visible {
		return ""
	}

	var b strings.Builder
	for i, g := range shortcutGroups {
		if i > 0 {
			b.WriteString("\n")
		}
		if g.title != "" {
			b.WriteString(styles.HelpTitleStyle.Render(g.title))
			b.WriteString("\n")
		}
		for _, s := range g.keys {
			b.WriteString(styles.HelpKeyStyle.Render(s.key))
			b.WriteString(styles.HelpDescStyle.Render(s.desc))
			b.WriteString("\n")
		}
	}

	modal := styles.HelpModalStyle.Render(strings.TrimSuffix(b.String(), "\n"))
	if m.width <= 0 || m.height <= 0 {
		return modal
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}
