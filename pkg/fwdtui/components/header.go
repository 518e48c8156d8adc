package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/txn2/logfwd/pkg/fwdtui/styles"
)

const headerHint = "[/: search  1-6: levels  tab: channel]"

// HeaderModel is the top line: name, version and the bound listeners
type HeaderModel struct {
	version   string
	width     int
	listeners []string
}

func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{version: version}
}

func (m *HeaderModel) Update(msg tea.Msg) (HeaderModel, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
	}
	return *m, nil
}

func (m *HeaderModel) SetWidth(width int)          { m.width = width }
func (m *HeaderModel) SetListeners(addrs []string) { m.listeners = addrs }
func (m *HeaderModel) Listeners() []string         { return m.listeners }

// View places the key hint flush right when the terminal is wide enough
func (m *HeaderModel) View() string {
	listening := styles.StatusBarErrorStyle.Render("not listening")
	if len(m.listeners) > 0 {
		listening = styles.HeaderListenStyle.Render(strings.Join(m.listeners, ", "))
	}

	left := lipgloss.JoinHorizontal(lipgloss.Top,
		" ",
		styles.HeaderTitleStyle.Render("logfwd"),
		styles.HeaderVersionStyle.Render(" v"+m.version),
		" | ",
		listening,
	)
	right := styles.HeaderHintStyle.Render(headerHint)

	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right)-1)
	return left + strings.Repeat(" ", gap) + right
}
