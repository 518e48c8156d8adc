package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdmetrics"
	"github.com/txn2/logfwd/pkg/fwdtui/styles"
)

const sparklineWidth = 20

// StatusBarModel displays counts for the selected channel, hidden levels,
// receive metrics and the latest logfwd message
type StatusBarModel struct {
	stats        fwdmetrics.Snapshot
	history      []fwdmetrics.RateSample
	shown        int
	count        int
	hidden       []fwdevent.Level
	follow       bool
	message      string
	messageLevel logrus.Level
	width        int
}

// NewStatusBarModel creates a new status bar model
func NewStatusBarModel() StatusBarModel {
	return StatusBarModel{follow: true}
}

// Init initializes the status bar model
func (m *StatusBarModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the status bar
func (m *StatusBarModel) Update(msg tea.Msg) (StatusBarModel, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
	}
	return *m, nil
}

// UpdateStats updates the receive metrics and their history
func (m *StatusBarModel) UpdateStats(stats fwdmetrics.Snapshot, history []fwdmetrics.RateSample) {
	m.stats = stats
	m.history = history
}

// UpdateView updates the counts of the selected channel
func (m *StatusBarModel) UpdateView(shown, count int, hidden []fwdevent.Level, follow bool) {
	m.shown = shown
	m.count = count
	m.hidden = hidden
	m.follow = follow
}

// SetMessage shows the latest logfwd log line
func (m *StatusBarModel) SetMessage(level logrus.Level, message string) {
	m.messageLevel = level
	m.message = strings.TrimRight(message, "\r\n")
}

// View renders the status bar
func (m *StatusBarModel) View() string {
	parts := []string{fmt.Sprintf("Shown: %d/%d", m.shown, m.count)}

	if len(m.hidden) > 0 {
		names := make([]string, 0, len(m.hidden))
		for _, l := range m.hidden {
			names = append(names, l.String())
		}
		parts = append(parts, "Hidden: "+strings.Join(names, ","))
	}
	if !m.follow {
		parts = append(parts, styles.LevelWarnStyle.Render("Paused"))
	}

	rate := fmt.Sprintf("%.1f dgram/s ", m.stats.DatagramsPerSec) +
		styles.SparklineStyle.Render(RenderSparkline(DatagramRates(m.history), sparklineWidth))
	parts = append(parts, rate)

	if failures := m.stats.ParseFailures + m.stats.ReceiveErrors; failures > 0 {
		parts = append(parts, styles.StatusBarErrorStyle.Render(fmt.Sprintf("Rejected: %d", failures)))
	} else {
		parts = append(parts, styles.StatusBarOKStyle.Render("Rejected: 0"))
	}

	if m.message != "" {
		msgStyle := styles.StatusBarHelpStyle
		if m.messageLevel <= logrus.WarnLevel {
			msgStyle = styles.StatusBarErrorStyle
		}
		parts = append(parts, msgStyle.Render(m.message))
	}

	help := styles.StatusBarHelpStyle.Render("Press ? for help")
	left := " " + strings.Join(parts, " | ")

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(help) - 2
	if padding < 1 {
		padding = 1
	}
	spacer := lipgloss.NewStyle().Width(padding).Render("")

	return styles.StatusBarStyle.Render(left + spacer + help + " ")
}

// SetWidth updates the status bar width
func (m *StatusBarModel) SetWidth(width int) {
	m.width = width
}
