package components

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/txn2/logfwd/pkg/fwdtui/styles"
	"github.com/txn2/logfwd/pkg/fwdview"
)

// Column keys
const (
	colKeyKey    = "_key" // Hidden key column for row identification
	colKeyApp    = "app"
	colKeySender = "sender"
	colKeyCount  = "count"
	colKeyTotal  = "total"
	colKeyFill   = "fill"
)

// ChannelsModel displays one row per channel and tracks the selected one.
// The selection is kept by key so it survives new channels arriving.
type ChannelsModel struct {
	table    table.Model
	keys     []string
	selected string
	width    int
	height   int
	pageSize int
}

// NewChannelsModel creates a new channels model
func NewChannelsModel() ChannelsModel {
	m := ChannelsModel{}
	m.table = table.New(buildColumns()).
		WithBaseStyle(lipgloss.NewStyle().Padding(0, 1)).
		BorderRounded().
		HeaderStyle(styles.TableHeaderStyle).
		HighlightStyle(styles.TableSelectedStyle).
		Focused(true).
		WithPageSize(5).
		WithFooterVisibility(false)
	return m
}

func buildColumns() []table.Column {
	return []table.Column{
		table.NewFlexColumn(colKeyApp, "Application", 2),
		table.NewFlexColumn(colKeySender, "Sender", 3),
		table.NewColumn(colKeyCount, "Events", 9),
		table.NewColumn(colKeyTotal, "Received", 10),
		table.NewColumn(colKeyFill, "Cache", 7),
	}
}

// Init initializes the channels model
func (m *ChannelsModel) Init() tea.Cmd {
	return nil
}

// SetChannels replaces the rows. The first channel becomes selected when
// nothing was selected before.
func (m *ChannelsModel) SetChannels(infos []fwdview.ChannelInfo) {
	rows := make([]table.Row, 0, len(infos))
	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		keys = append(keys, info.Key)
		rows = append(rows, table.NewRow(table.RowData{
			colKeyKey:    info.Key,
			colKeyApp:    info.App,
			colKeySender: info.Sender,
			colKeyCount:  fmt.Sprintf("%d", info.Count),
			colKeyTotal:  fmt.Sprintf("%d", info.Total),
			colKeyFill:   table.NewStyledCell(fillRatio(info), fillStyle(info)),
		}))
	}
	m.keys = keys
	m.table = m.table.WithRows(rows)

	if m.indexOf(m.selected) < 0 {
		m.selected = ""
		if len(keys) > 0 {
			m.selected = keys[0]
		}
	}
	m.syncHighlight()
}

// fillRatio renders how full the replay cache is
func fillRatio(info fwdview.ChannelInfo) string {
	if info.MaxCount <= 0 {
		return "-"
	}
	pct := info.Count * 100 / info.MaxCount
	if pct > 100 {
		pct = 100
	}
	return fmt.Sprintf("%d%%", pct)
}

func fillStyle(info fwdview.ChannelInfo) lipgloss.Style {
	if info.MaxCount > 0 && info.Count >= info.MaxCount {
		return styles.LevelWarnStyle
	}
	return styles.StatusBarOKStyle
}

func (m *ChannelsModel) indexOf(key string) int {
	for i, k := range m.keys {
		if k == key {
			return i
		}
	}
	return -1
}

func (m *ChannelsModel) syncHighlight() {
	if i := m.indexOf(m.selected); i >= 0 {
		m.table = m.table.WithHighlightedRow(i)
	}
}

// Next selects the following channel, wrapping around
func (m *ChannelsModel) Next() {
	m.move(1)
}

// Prev selects the previous channel, wrapping around
func (m *ChannelsModel) Prev() {
	m.move(-1)
}

func (m *ChannelsModel) move(delta int) {
	n := len(m.keys)
	if n == 0 {
		return
	}
	i := m.indexOf(m.selected)
	if i < 0 {
		i = 0
	} else {
		i = (i + delta + n) % n
	}
	m.selected = m.keys[i]
	m.syncHighlight()
}

// Select selects the channel with key and reports whether it exists
func (m *ChannelsModel) Select(key string) bool {
	if m.indexOf(key) < 0 {
		return false
	}
	m.selected = key
	m.syncHighlight()
	return true
}

// SelectedKey returns the key of the selected channel, or "" when there is none
func (m *ChannelsModel) SelectedKey() string {
	return m.selected
}

// Len returns the number of channels shown
func (m *ChannelsModel) Len() int {
	return len(m.keys)
}

// View renders the channel table
func (m *ChannelsModel) View() string {
	if len(m.keys) == 0 {
		return styles.SearchHintStyle.Render(" Waiting for log4j events...")
	}
	return m.table.View()
}

// SetSize updates the table dimensions
func (m *ChannelsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table = m.table.WithTargetWidth(width - 2)
	// BorderRounded(): top border, header, separator and bottom border take 4 lines
	pageSize := height - 4
	if pageSize < 1 {
		pageSize = 1
	}
	m.pageSize = pageSize
	m.table = m.table.WithPageSize(pageSize)
}
