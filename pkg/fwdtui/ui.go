package fwdtui

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdfilter"
	"github.com/txn2/logfwd/pkg/fwdmetrics"
	"github.com/txn2/logfwd/pkg/fwdtui/components"
	"github.com/txn2/logfwd/pkg/fwdtui/styles"
	"github.com/txn2/logfwd/pkg/fwdview"
)

const (
	defaultDebounce = 150 * time.Millisecond
	metricsInterval = time.Second
	historyPoints   = 40
)

// Options configures the live viewer
type Options struct {
	Version   string
	Loop      *fwdview.Loop
	Metrics   *fwdmetrics.Registry
	Resolver  fwdevent.Resolver
	Listeners func() []string

	// Hide lists level names hidden at start, e.g. "trace,debug"
	Hide string

	// Debounce is how long typing must pause before the pending term filters
	Debounce time.Duration
}

// Manager manages the TUI lifecycle
type Manager struct {
	program         *tea.Program
	model           *RootModel
	unsubscribe     fwdview.UnsubscribeFunc
	logCh           chan LogEntryMsg
	stopChan        chan struct{}
	stopOnce        sync.Once
	doneChan        chan struct{}
	originalOut     io.Writer
	triggerShutdown func()
}

// RootModel is the main bubbletea model
type RootModel struct {
	// Components
	header    components.HeaderModel
	channels  components.ChannelsModel
	events    components.EventsModel
	search    components.SearchModel
	statusBar components.StatusBarModel
	help      components.HelpModel

	// Sources
	loop      *fwdview.Loop
	metrics   *fwdmetrics.Registry
	resolver  fwdevent.Resolver
	listeners func() []string

	// Filter
	levels  fwdfilter.LevelSet
	terms   fwdfilter.TermList
	preview *fwdfilter.SearchTerm

	snapshot  SnapshotMsg
	debounced func(func())
	send      func(tea.Msg)
	quitting  bool

	// Dimensions
	width          int
	height         int
	channelsHeight int
	eventsHeight   int

	// Channels for async updates
	changeCh <-chan struct{}
	logCh    <-chan LogEntryMsg
	stopCh   <-chan struct{}
}

// New creates the TUI for the given display loop. It observes the loop
// and, from now until Stop, captures logfwd's own log output.
func New(opts Options, shutdownChan <-chan struct{}, triggerShutdown func()) *Manager {
	changeCh := make(chan struct{}, 1)
	logCh := make(chan LogEntryMsg, 100)

	m := &Manager{
		logCh:           logCh,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
		triggerShutdown: triggerShutdown,
	}

	m.model = newRootModel(opts, changeCh, logCh, shutdownChan)

	if opts.Loop != nil {
		m.unsubscribe = opts.Loop.Subscribe(changeNotifier(changeCh))
	}

	// Suppress terminal output and capture logs
	m.originalOut = log.StandardLogger().Out
	log.SetOutput(io.Discard)
	log.AddHook(&tuiLogHook{logCh: logCh, stopCh: m.stopChan})

	return m
}

// changeNotifier returns an observer that signals ch whenever the state
// version moves. Reads through Loop.Do do not bump the version, so the
// viewer's own snapshots never wake it up again.
func changeNotifier(ch chan<- struct{}) fwdview.Observer {
	var last uint64
	return func(ev fwdview.ChangeEvent) {
		if ev.Version == last {
			return
		}
		last = ev.Version
		select {
		case ch <- struct{}{}:
		default:
			// a wake-up is already pending
		}
	}
}

func newRootModel(opts Options, changeCh <-chan struct{}, logCh <-chan LogEntryMsg, stopCh <-chan struct{}) *RootModel {
	delay := opts.Debounce
	if delay <= 0 {
		delay = defaultDebounce
	}

	m := &RootModel{
		header:    components.NewHeaderModel(opts.Version),
		channels:  components.NewChannelsModel(),
		events:    components.NewEventsModel(),
		search:    components.NewSearchModel(),
		statusBar: components.NewStatusBarModel(),
		help:      components.NewHelpModel(),
		loop:      opts.Loop,
		metrics:   opts.Metrics,
		resolver:  opts.Resolver,
		listeners: opts.Listeners,
		debounced: debounce.New(delay),
		changeCh:  changeCh,
		logCh:     logCh,
		stopCh:    stopCh,
	}
	m.levels.HideNames(opts.Hide)
	return m
}

// Run starts the TUI and blocks until it quits
func (m *Manager) Run() error {
	// Ensure TERM is set
	if os.Getenv("TERM") == "" {
		_ = os.Setenv("TERM", "xterm-256color")
	}

	// Hold Shift to select text (standard terminal behavior with mouse capture)
	m.program = tea.NewProgram(
		m.model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	m.model.send = m.program.Send

	_, err := m.program.Run()

	m.release()

	if m.triggerShutdown != nil {
		m.triggerShutdown()
	}

	close(m.doneChan)

	return err
}

// Stop quits the TUI if it is running. Safe to call more than once.
func (m *Manager) Stop() {
	m.release()
	if m.program != nil {
		m.program.Quit()
	}
}

func (m *Manager) release() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		log.SetOutput(m.originalOut)
	})
}

// Done returns a channel that closes when TUI is stopped
func (m *Manager) Done() <-chan struct{} {
	return m.doneChan
}

// RootModel methods

// Init initializes the model
func (m *RootModel) Init() tea.Cmd {
	m.refreshStats()
	return tea.Batch(
		ListenChanges(m.changeCh),
		ListenLogs(m.logCh),
		ListenShutdown(m.stopCh),
		TickMetrics(metricsInterval),
		m.refresh(),
		SendLog(log.InfoLevel, "logfwd TUI started. Press ? for help, q to quit."),
	)
}

// Update handles messages
func (m *RootModel) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	// Panic recovery to prevent TUI crash from leaving terminal in broken state
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("TUI Update panic recovered: %v", r)
			model = m
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSizeMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	case ChangedMsg:
		return m, tea.Batch(ListenChanges(m.changeCh), m.refresh())
	case SnapshotMsg:
		return m, m.handleSnapshot(msg)
	case MetricsTickMsg:
		m.refreshStats()
		return m, TickMetrics(metricsInterval)
	case PreviewMsg:
		if m.search.IsActive() && msg.Text == m.search.Value() {
			m.applyPreview(msg.Text)
		}
	case LogEntryMsg:
		m.statusBar.SetMessage(msg.Level, msg.Message)
		return m, ListenLogs(m.logCh)
	case ShutdownMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// refresh snapshots the selected channel
func (m *RootModel) refresh() tea.Cmd {
	return TakeSnapshot(m.loop, m.channels.SelectedKey())
}

func (m *RootModel) handleSnapshot(msg SnapshotMsg) tea.Cmd {
	before := m.channels.Len()
	m.channels.SetChannels(msg.Channels)
	if m.channels.Len() != before {
		m.updateSizes()
	}

	// The selection moved while the snapshot was taken
	if !fwdevent.KeyEqual(m.channels.SelectedKey(), msg.Key) {
		return m.refresh()
	}

	m.snapshot = msg
	m.rebuildRows()
	return nil
}

// highlightTerms is the committed term list plus the term being typed.
// The typed term only highlights; it never hides rows.
func (m *RootModel) highlightTerms() []fwdfilter.SearchTerm {
	terms := m.terms.Terms()
	if m.preview != nil {
		terms = append(terms, *m.preview)
	}
	return terms
}

// rebuildRows filters the snapshot and redraws the events pane
func (m *RootModel) rebuildRows() {
	filter := fwdfilter.Filter{Levels: &m.levels, Terms: m.terms.Terms(), Resolver: m.resolver}

	var visible []*fwdevent.LogEvent
	var ids []int
	for i, ev := range m.snapshot.Events {
		if filter.Visible(ev) {
			visible = append(visible, ev)
			ids = append(ids, i)
		}
	}

	m.events.SetRows(components.BuildRows(visible, ids, m.resolver, m.highlightTerms()))
	m.search.SetTerms(m.terms.Terms())
	m.updateStatus()
}

func (m *RootModel) updateStatus() {
	m.statusBar.UpdateView(len(m.events.Rows()), len(m.snapshot.Events), m.levels.Hidden(), m.events.Following())
}

func (m *RootModel) refreshStats() {
	if m.metrics != nil {
		m.statusBar.UpdateStats(m.metrics.Snapshot(), m.metrics.History(historyPoints))
	}
	if m.listeners != nil {
		m.header.SetListeners(m.listeners())
	}
}

// schedulePreview highlights the pending text once typing pauses. Without
// a running program the preview applies at once.
func (m *RootModel) schedulePreview(text string) {
	if m.send == nil || m.debounced == nil {
		m.applyPreview(text)
		return
	}
	send := m.send
	m.debounced(func() {
		send(PreviewMsg{Text: text})
	})
}

func (m *RootModel) applyPreview(text string) {
	m.preview = nil
	if t, err := fwdfilter.ParseTerm(text); err == nil {
		m.preview = &t
	}
	m.rebuildRows()
}

// View renders the model
func (m *RootModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	if m.help.IsVisible() {
		return m.help.View()
	}

	header := m.header.View()

	channelsTitle := " " + styles.SectionTitleStyle.Render("Channels")
	channelsContent := lipgloss.NewStyle().
		Height(m.channelsHeight).
		Render(m.channels.View())

	accent := styles.FocusAccentStyle.Render("▌")
	if m.search.IsActive() {
		accent = " "
	}
	eventsLabel := "Events"
	if key := m.channels.SelectedKey(); key != "" {
		eventsLabel += " of " + key
	}
	eventsTitle := accent + styles.SectionTitleStyle.Render(eventsLabel)
	eventsContent := lipgloss.NewStyle().
		Height(m.eventsHeight).
		Render(m.events.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"", // blank line before Channels
		channelsTitle,
		channelsContent,
		eventsTitle,
		m.search.View(),
		eventsContent,
		m.statusBar.View(),
	)
}

// updateSizes splits the screen between the channel table and the events
func (m *RootModel) updateSizes() {
	headerHeight := lipgloss.Height(m.header.View())
	statusHeight := 1
	if headerHeight < 1 {
		headerHeight = 1
	}

	// Fixed lines: section titles (2) + blank line before Channels (1) + search line (1)
	fixedLines := 4

	contentWidth := m.width
	if contentWidth < 20 {
		contentWidth = 20
	}

	availableHeight := m.height - headerHeight - statusHeight - fixedLines
	if availableHeight < 10 {
		availableHeight = 10
	}

	// Table chrome is 4 lines; give it one line per channel up to a third
	channelsHeight := m.channels.Len() + 4
	if channelsHeight < 5 {
		channelsHeight = 5
	}
	if limit := availableHeight / 3; channelsHeight > limit {
		channelsHeight = limit
	}
	eventsHeight := availableHeight - channelsHeight
	if eventsHeight < 3 {
		eventsHeight = 3
	}

	m.channelsHeight = channelsHeight
	m.eventsHeight = eventsHeight

	m.channels.SetSize(contentWidth, channelsHeight)
	m.events.SetSize(contentWidth, eventsHeight)
	m.search.SetWidth(contentWidth)
	m.header.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
}

func (m *RootModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.updateSizes()
	m.header, _ = m.header.Update(msg)
	m.statusBar, _ = m.statusBar.Update(msg)
	m.help, _ = m.help.Update(msg)
}

// handleKeyMsg handles keyboard input
func (m *RootModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help modal captures all input when visible
	if m.help.IsVisible() {
		m.help, _ = m.help.Update(msg)
		return m, nil
	}

	if m.search.IsActive() {
		return m.handleSearchKey(msg)
	}

	if result, cmd, handled := m.handleGlobalKeys(msg); handled {
		return result, cmd
	}

	var cmd tea.Cmd
	m.events, cmd = m.events.Update(msg)
	m.updateStatus()
	return m, cmd
}

// handleSearchKey edits the pending term
func (m *RootModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		text := strings.TrimSpace(m.search.Value())
		m.search.Deactivate()
		m.preview = nil
		if text != "" {
			if _, err := m.terms.AddString(text); err != nil {
				m.search.SetError(err.Error())
			}
		}
		m.rebuildRows()
		return m, nil
	case "esc":
		m.search.Deactivate()
		m.preview = nil
		m.rebuildRows()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != before {
		m.schedulePreview(value)
	}
	return m, cmd
}

// handleGlobalKeys handles keyboard shortcuts outside the search line
func (m *RootModel) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit, true
	case "?":
		m.help.Toggle()
		return m, nil, true
	case "tab":
		m.channels.Next()
		return m, m.refresh(), true
	case "shift+tab":
		m.channels.Prev()
		return m, m.refresh(), true
	case "/":
		return m, m.search.Activate(), true
	case "1", "2", "3", "4", "5", "6":
		m.levels.Toggle(fwdevent.Levels[key[0]-'1'])
		m.rebuildRows()
		return m, nil, true
	case "x":
		m.terms.Clear()
		m.search.SetError("")
		m.rebuildRows()
		return m, nil, true
	case "backspace":
		if terms := m.terms.Terms(); len(terms) > 0 {
			m.terms.Remove(terms[len(terms)-1].Pattern)
			m.rebuildRows()
		}
		return m, nil, true
	case "c":
		m.clearSelected()
		return m, nil, true
	}
	return nil, nil, false
}

// clearSelected empties the selected channel. The loop's change
// notification brings the new state back.
func (m *RootModel) clearSelected() {
	key := m.channels.SelectedKey()
	if key == "" || m.loop == nil {
		return
	}
	m.loop.Post(func(s *fwdview.State) {
		if ch := s.Channel(key); ch != nil {
			ch.Clear()
			s.Touch()
		}
	})
}

// handleMouseMsg scrolls the events pane with the wheel
func (m *RootModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonWheelUp && msg.Button != tea.MouseButtonWheelDown {
		return m, nil
	}
	var cmd tea.Cmd
	m.events, cmd = m.events.Update(msg)
	return m, cmd
}

type tuiLogHook struct {
	logCh  chan<- LogEntryMsg
	stopCh <-chan struct{}
}

func (h *tuiLogHook) Levels() []log.Level {
	return []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel, log.InfoLevel}
}

func (h *tuiLogHook) Fire(entry *log.Entry) error {
	select {
	case <-h.stopCh:
		return nil
	default:
	}

	select {
	case h.logCh <- LogEntryMsg{
		Level:   entry.Level,
		Message: entry.Message,
		Time:    entry.Time,
	}:
	default:
		// Buffer full, drop the line
	}
	return nil
}
