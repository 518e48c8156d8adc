package components

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdfilter"
	"github.com/txn2/logfwd/pkg/fwdmetrics"
	"github.com/txn2/logfwd/pkg/fwdview"
)

// =============================================================================
// Test Utilities
// =============================================================================

func testInfos() []fwdview.ChannelInfo {
	return []fwdview.ChannelInfo{
		{Key: "billing;10.0.0.1:51000", App: "billing", Sender: "10.0.0.1", Count: 3, Total: 3, MaxCount: 1000},
		{Key: "orders;10.0.0.2:51000", App: "orders", Sender: "10.0.0.2", Count: 1000, Total: 1500, MaxCount: 1000},
	}
}

func testRows(n int) []EventRow {
	rows := make([]EventRow, n)
	for i := range rows {
		rows[i] = EventRow{
			ID:       fmt.Sprintf("%d", i+1),
			Time:     "2024-01-02 10:00:00.000",
			Level:    fwdevent.LevelInfo,
			Logger:   "com.acme.Orders",
			Segments: []fwdfilter.Segment{{Text: fmt.Sprintf("order %d placed", i)}},
		}
	}
	return rows
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// =============================================================================
// Sparkline Tests
// =============================================================================

func TestRenderSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		want   int
	}{
		{"normal", []float64{10, 20, 30, 40, 50}, 5, 5},
		{"empty", nil, 10, 10},
		{"zero max", []float64{0, 0, 0}, 4, 4},
		{"narrower than values", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 5, 5},
		{"wider than values", []float64{1, 2, 3}, 15, 15},
		{"zero width", []float64{1, 2}, 0, 0},
		{"negative width", []float64{1, 2}, -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderSparkline(tt.values, tt.width)
			if got := len([]rune(result)); got != tt.want {
				t.Errorf("width = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRenderSparkline_FlatIsLowest(t *testing.T) {
	for _, r := range RenderSparkline([]float64{0, 0, 0, 0}, 4) {
		if r != SparklineChars[0] {
			t.Errorf("Expected lowest char for zero values, got %c", r)
		}
	}
	if got := []rune(RenderSparkline([]float64{1, 8}, 2)); got[1] != SparklineChars[7] {
		t.Errorf("Expected the maximum to use the highest char, got %c", got[1])
	}
}

func TestDatagramRates(t *testing.T) {
	start := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	history := []fwdmetrics.RateSample{
		{Timestamp: start, Datagrams: 0},
		{Timestamp: start.Add(time.Second), Datagrams: 10},
		{Timestamp: start.Add(3 * time.Second), Datagrams: 30},
		{Timestamp: start.Add(4 * time.Second), Datagrams: 5}, // counter reset
	}

	rates := DatagramRates(history)
	want := []float64{10, 10, 0}
	if len(rates) != len(want) {
		t.Fatalf("Expected %d rates, got %v", len(want), rates)
	}
	for i := range want {
		if rates[i] != want[i] {
			t.Errorf("rates[%d] = %v, want %v", i, rates[i], want[i])
		}
	}

	if DatagramRates(history[:1]) != nil {
		t.Error("Expected no rates from a single sample")
	}
}

// =============================================================================
// Help Tests
// =============================================================================

func TestHelpModel_Toggle(t *testing.T) {
	m := NewHelpModel()
	if m.IsVisible() {
		t.Error("Expected help to be hidden initially")
	}

	m.Toggle()
	if !m.IsVisible() {
		t.Error("Expected help to be visible after toggle")
	}

	m.Toggle()
	if m.IsVisible() {
		t.Error("Expected help to be hidden after second toggle")
	}
}

func TestHelpModel_CloseKeys(t *testing.T) {
	keys := []tea.KeyMsg{
		{Type: tea.KeyEscape},
		keyRunes("q"),
		keyRunes("?"),
	}

	for _, k := range keys {
		t.Run(k.String(), func(t *testing.T) {
			m := NewHelpModel()
			m.Show()
			m, _ = m.Update(k)
			if m.IsVisible() {
				t.Errorf("Expected help to close with %s", k.String())
			}
		})
	}
}

func TestHelpModel_ViewContainsShortcuts(t *testing.T) {
	m := NewHelpModel()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})

	if m.View() != "" {
		t.Error("Expected empty view while hidden")
	}

	m.Show()
	view := m.View()
	for _, want := range []string{"Toggle TRACE DEBUG INFO WARN ERROR FATAL", "/regex/", "Clear all terms", "Next channel"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected help to contain %q", want)
		}
	}
}

// =============================================================================
// Header Tests
// =============================================================================

func TestHeaderModel_View(t *testing.T) {
	m := NewHeaderModel("1.2.3")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	if !strings.Contains(view, "logfwd") || !strings.Contains(view, "v1.2.3") {
		t.Errorf("Expected title and version, got %q", view)
	}
	if !strings.Contains(view, "not listening") {
		t.Errorf("Expected not listening marker, got %q", view)
	}

	m.SetListeners([]string{"udp://0.0.0.0:7071", "udp://[::]:7071"})
	view = m.View()
	if !strings.Contains(view, "udp://0.0.0.0:7071, udp://[::]:7071") {
		t.Errorf("Expected listeners in header, got %q", view)
	}
	if len(m.Listeners()) != 2 {
		t.Errorf("Listeners() = %v", m.Listeners())
	}
}

// =============================================================================
// Channels Tests
// =============================================================================

func TestChannelsModel_SelectsFirstChannel(t *testing.T) {
	m := NewChannelsModel()
	m.SetSize(100, 8)

	if m.SelectedKey() != "" {
		t.Errorf("Expected no selection, got %q", m.SelectedKey())
	}
	if !strings.Contains(m.View(), "Waiting for log4j events") {
		t.Error("Expected waiting hint without channels")
	}

	m.SetChannels(testInfos())
	if m.SelectedKey() != "billing;10.0.0.1:51000" {
		t.Errorf("SelectedKey() = %q, want billing;10.0.0.1:51000", m.SelectedKey())
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}

	view := m.View()
	for _, want := range []string{"billing", "orders", "1500", "100%"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected table to contain %q", want)
		}
	}
}

func TestChannelsModel_NextPrevWraps(t *testing.T) {
	m := NewChannelsModel()
	m.SetChannels(testInfos())

	m.Next()
	if m.SelectedKey() != "orders;10.0.0.2:51000" {
		t.Errorf("after Next: %q", m.SelectedKey())
	}
	m.Next()
	if m.SelectedKey() != "billing;10.0.0.1:51000" {
		t.Errorf("Next should wrap, got %q", m.SelectedKey())
	}
	m.Prev()
	if m.SelectedKey() != "orders;10.0.0.2:51000" {
		t.Errorf("Prev should wrap, got %q", m.SelectedKey())
	}
}

func TestChannelsModel_SelectionSurvivesNewChannels(t *testing.T) {
	m := NewChannelsModel()
	m.SetChannels(testInfos())
	if !m.Select("orders;10.0.0.2:51000") {
		t.Fatal("Select should find orders")
	}
	if m.Select("nope") {
		t.Error("Select should reject unknown keys")
	}

	infos := append([]fwdview.ChannelInfo{{Key: "auth@10.0.0.3", App: "auth", Sender: "10.0.0.3"}}, testInfos()...)
	m.SetChannels(infos)
	if m.SelectedKey() != "orders;10.0.0.2:51000" {
		t.Errorf("selection moved to %q", m.SelectedKey())
	}
}

func TestFillRatio(t *testing.T) {
	tests := []struct {
		info fwdview.ChannelInfo
		want string
	}{
		{fwdview.ChannelInfo{Count: 5}, "-"},
		{fwdview.ChannelInfo{Count: 250, MaxCount: 1000}, "25%"},
		{fwdview.ChannelInfo{Count: 1090, MaxCount: 1000}, "100%"},
	}
	for _, tt := range tests {
		if got := fillRatio(tt.info); got != tt.want {
			t.Errorf("fillRatio(%+v) = %q, want %q", tt.info, got, tt.want)
		}
	}
}

// =============================================================================
// Events Tests
// =============================================================================

func TestBuildRows(t *testing.T) {
	ts := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	events := []*fwdevent.LogEvent{
		{Timestamp: ts, Level: fwdevent.LevelError, LoggerName: "com.acme.Billing", Message: "charge failed for A-1001"},
	}
	term, err := fwdfilter.ParseTerm("a-1001")
	if err != nil {
		t.Fatalf("ParseTerm: %v", err)
	}

	resolver := fwdevent.Resolver{Timestamp: fwdevent.TimestampUTC, Logger: fwdevent.LoggerShort}
	rows := BuildRows(events, []int{41}, resolver, []fwdfilter.SearchTerm{term})
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.ID != "42" || row.Logger != "Billing" || row.Time != "2024-01-02 10:00:00.000" {
		t.Errorf("Unexpected row: %+v", row)
	}
	if len(row.Segments) != 2 || !row.Segments[1].Highlighted || row.Segments[1].Text != "A-1001" {
		t.Errorf("Unexpected segments: %+v", row.Segments)
	}
}

func TestFormatRow(t *testing.T) {
	row := EventRow{
		ID:     "7",
		Time:   "10:00:00.000",
		Level:  fwdevent.LevelWarn,
		Logger: "db.Pool",
		Segments: []fwdfilter.Segment{
			{Text: "pool "},
			{Text: "exhausted", Highlighted: true},
			{Text: "\njava.lang.IllegalStateException"},
		},
	}

	out := FormatRow(row, 120)
	for _, want := range []string{"7", "10:00:00.000", "WARN", "db.Pool", "pool", "exhausted", "IllegalStateException"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in %q", want, out)
		}
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("Expected the exception on its own line, got %q", out)
	}
}

func TestEventsModel_FollowAndScroll(t *testing.T) {
	m := NewEventsModel()
	if m.View() != "Loading..." {
		t.Errorf("Expected loading view before sizing, got %q", m.View())
	}

	m.SetSize(100, 5)
	if !strings.Contains(m.View(), "No events to show") {
		t.Errorf("Expected empty hint, got %q", m.View())
	}

	m.SetRows(testRows(20))
	if !m.Following() {
		t.Fatal("Expected follow by default")
	}
	if !strings.Contains(m.View(), "order 19 placed") {
		t.Errorf("Expected newest row in view, got %q", m.View())
	}

	m, _ = m.Update(keyRunes("k"))
	if m.Following() {
		t.Error("Scrolling up should pause follow")
	}

	m.SetRows(testRows(30))
	if strings.Contains(m.View(), "order 29 placed") {
		t.Error("Paused view should not jump to new rows")
	}

	m, _ = m.Update(keyRunes("G"))
	if !m.Following() {
		t.Error("G should resume follow")
	}
	if !strings.Contains(m.View(), "order 29 placed") {
		t.Errorf("Expected newest row after G, got %q", m.View())
	}

	m, _ = m.Update(keyRunes("g"))
	if !strings.Contains(m.View(), "order 0 placed") {
		t.Errorf("Expected oldest row after g, got %q", m.View())
	}
	if len(m.Rows()) != 30 {
		t.Errorf("Rows() = %d, want 30", len(m.Rows()))
	}
}

// =============================================================================
// Search Tests
// =============================================================================

func TestSearchModel_Editing(t *testing.T) {
	m := NewSearchModel()
	m.SetWidth(80)

	if m.IsActive() {
		t.Fatal("Expected search inactive initially")
	}
	m, _ = m.Update(keyRunes("x"))
	if m.Value() != "" {
		t.Error("Inactive search should ignore input")
	}

	m.Activate()
	for _, r := range "-heartbeat" {
		m, _ = m.Update(keyRunes(string(r)))
	}
	if m.Value() != "-heartbeat" {
		t.Errorf("Value() = %q, want -heartbeat", m.Value())
	}
	if !strings.Contains(m.View(), "search:") {
		t.Errorf("Expected prompt in view, got %q", m.View())
	}

	m.Deactivate()
	if m.IsActive() || m.Value() != "" {
		t.Error("Deactivate should stop editing and drop the text")
	}
}

func TestSearchModel_ViewTerms(t *testing.T) {
	m := NewSearchModel()
	if !strings.Contains(m.View(), "none") {
		t.Errorf("Expected empty terms hint, got %q", m.View())
	}

	var list fwdfilter.TermList
	for _, in := range []string{"order", "-heartbeat", "/A-\\d+/"} {
		if _, err := list.AddString(in); err != nil {
			t.Fatalf("AddString(%q): %v", in, err)
		}
	}
	m.SetTerms(list.Terms())
	m.SetError("invalid pattern")

	view := m.View()
	for _, want := range []string{"+order", "-heartbeat", "+/A-\\d+/", "invalid pattern"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in %q", want, view)
		}
	}

	m.Activate()
	if m.Error() != "" {
		t.Error("Activate should clear the error")
	}
}

// =============================================================================
// Status Bar Tests
// =============================================================================

func TestStatusBarModel_View(t *testing.T) {
	m := NewStatusBarModel()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 200, Height: 40})

	m.UpdateView(12, 40, []fwdevent.Level{fwdevent.LevelTrace, fwdevent.LevelDebug}, false)
	m.UpdateStats(fwdmetrics.Snapshot{DatagramsPerSec: 3.5, ParseFailures: 2}, nil)
	m.SetMessage(logrus.WarnLevel, "Bind failed for udp://0.0.0.0:7072\n")

	view := m.View()
	for _, want := range []string{"Shown: 12/40", "Hidden: TRACE,DEBUG", "Paused", "3.5 dgram/s", "Rejected: 2", "Bind failed for udp://0.0.0.0:7072", "Press ? for help"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in %q", want, view)
		}
	}
}

func TestStatusBarModel_Defaults(t *testing.T) {
	m := NewStatusBarModel()
	m.SetWidth(150)

	view := m.View()
	if strings.Contains(view, "Hidden:") || strings.Contains(view, "Paused") {
		t.Errorf("Unexpected markers in default view: %q", view)
	}
	if !strings.Contains(view, "Rejected: 0") {
		t.Errorf("Expected zero rejected, got %q", view)
	}
}
