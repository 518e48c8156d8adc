package fwdtui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdview"
)

// ListenChanges creates a command that waits for the next state change
func ListenChanges(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ChangedMsg{}
	}
}

// ListenLogs creates a command that listens for log entries
func ListenLogs(logCh <-chan LogEntryMsg) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-logCh
		if !ok {
			return nil
		}
		return entry
	}
}

// ListenShutdown creates a command that listens for shutdown signal
func ListenShutdown(stopCh <-chan struct{}) tea.Cmd {
	if stopCh == nil {
		return nil
	}
	return func() tea.Msg {
		<-stopCh
		return ShutdownMsg{}
	}
}

// TickMetrics schedules the next metrics refresh
func TickMetrics(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return MetricsTickMsg{Time: t}
	})
}

// TakeSnapshot creates a command that copies the state for channel key
func TakeSnapshot(loop *fwdview.Loop, key string) tea.Cmd {
	return func() tea.Msg {
		return Snapshot(loop, key)
	}
}

// Snapshot copies the channel list and the events of channel key on the
// loop goroutine. A stopped loop yields an empty snapshot.
func Snapshot(loop *fwdview.Loop, key string) SnapshotMsg {
	msg := SnapshotMsg{Key: key}
	if loop == nil {
		return msg
	}
	loop.Do(func(s *fwdview.State) {
		msg.Channels = s.Infos()
		if ch := s.Channel(key); ch != nil {
			msg.Events = append([]*fwdevent.LogEvent(nil), ch.Events()...)
		}
	})
	return msg
}

// SendLog creates a log entry message
func SendLog(level logrus.Level, message string) tea.Cmd {
	return func() tea.Msg {
		return LogEntryMsg{
			Level:   level,
			Message: message,
			Time:    time.Now(),
		}
	}
}
