package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdfilter"
	"github.com/txn2/logfwd/pkg/fwdtui/styles"
)

// EventRow is one visible event, already resolved for display
type EventRow struct {
	ID       string
	Time     string
	Level    fwdevent.Level
	Logger   string
	Segments []fwdfilter.Segment
}

// BuildRows resolves and highlights the visible events of a channel.
// ids holds the position of each event in the unfiltered channel.
func BuildRows(events []*fwdevent.LogEvent, ids []int, resolver fwdevent.Resolver, terms []fwdfilter.SearchTerm) []EventRow {
	rows := make([]EventRow, 0, len(events))
	for i, ev := range events {
		rows = append(rows, EventRow{
			ID:       resolver.ID(ids[i]),
			Time:     resolver.FormatTimestamp(ev),
			Level:    ev.Level,
			Logger:   resolver.FormatLogger(ev),
			Segments: fwdfilter.Highlight(resolver.FormatMessage(ev), terms),
		})
	}
	return rows
}

// EventsModel displays the events of the selected channel in a scrollable
// viewport. While following, new rows keep the view at the bottom.
type EventsModel struct {
	viewport viewport.Model
	rows     []EventRow
	width    int
	height   int
	follow   bool
	ready    bool
}

// NewEventsModel creates a new events model that follows new rows
func NewEventsModel() EventsModel {
	return EventsModel{follow: true}
}

// Init initializes the events model
func (m EventsModel) Init() tea.Cmd {
	return nil
}

// Update handles scrolling keys and the mouse wheel
func (m EventsModel) Update(msg tea.Msg) (EventsModel, tea.Cmd) {
	if !m.ready {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "j", "down":
			m.viewport.LineDown(1)
		case "k", "up":
			m.viewport.LineUp(1)
			m.follow = false
		case "g", "home":
			m.viewport.GotoTop()
			m.follow = false
		case "G", "end":
			m.viewport.GotoBottom()
			m.follow = true
		case "pgdown":
			m.viewport.HalfViewDown()
		case "pgup":
			m.viewport.HalfViewUp()
			m.follow = false
		}
		if m.viewport.AtBottom() {
			m.follow = true
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	if _, ok := msg.(tea.MouseMsg); ok {
		m.follow = m.viewport.AtBottom()
	}
	return m, cmd
}

// SetRows replaces the displayed rows
func (m *EventsModel) SetRows(rows []EventRow) {
	m.rows = rows
	m.updateContent()
}

// Rows returns the displayed rows
func (m *EventsModel) Rows() []EventRow {
	return m.rows
}

// updateContent rebuilds the viewport content from rows
func (m *EventsModel) updateContent() {
	if !m.ready {
		return
	}

	var sb strings.Builder
	for i, row := range m.rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(FormatRow(row, m.width))
	}
	m.viewport.SetContent(sb.String())

	if m.follow {
		m.viewport.GotoBottom()
	}
}

// FormatRow renders one event row: id, time, level, logger and the
// message with matched segments highlighted
func FormatRow(row EventRow, width int) string {
	id := styles.EventIDStyle.Render(fmt.Sprintf("%5s", row.ID))
	ts := styles.EventTimeStyle.Render(row.Time)
	level := styles.LevelStyle(row.Level).Render(fmt.Sprintf("%-5s", row.Level.String()))
	logger := styles.EventLoggerStyle.Render(row.Logger)

	prefix := fmt.Sprintf("%s %s %s %s ", id, ts, level, logger)
	indent := lipgloss.Width(prefix)

	var msg strings.Builder
	for _, seg := range row.Segments {
		text := seg.Text
		if strings.Contains(text, "\n") {
			text = strings.ReplaceAll(text, "\n", "\n"+strings.Repeat(" ", min(indent, width/2)))
		}
		if seg.Highlighted {
			msg.WriteString(styles.EventMatchStyle.Render(text))
		} else {
			msg.WriteString(styles.EventMessageStyle.Render(text))
		}
	}
	return prefix + msg.String()
}

// View renders the events viewport
func (m EventsModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	if len(m.rows) == 0 {
		return styles.SearchHintStyle.Render(" No events to show")
	}
	return m.viewport.View()
}

// Following reports whether the view sticks to the newest event
func (m *EventsModel) Following() bool {
	return m.follow
}

// SetSize updates the viewport dimensions
func (m *EventsModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	if !m.ready {
		m.viewport = viewport.New(width, height)
		m.viewport.Style = lipgloss.NewStyle()
		m.viewport.MouseWheelEnabled = true
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = height
	}
	m.updateContent()
}
