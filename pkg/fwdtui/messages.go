package fwdtui

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdview"
)

// ChangedMsg signals that the display state has a new version
type ChangedMsg struct{}

// SnapshotMsg carries a copy of the display state taken on the loop.
// Events belong to the channel named by Key and may be shared read-only.
type SnapshotMsg struct {
	Key      string
	Channels []fwdview.ChannelInfo
	Events   []*fwdevent.LogEvent
}

// MetricsTickMsg triggers a refresh of the receive metrics
type MetricsTickMsg struct {
	Time time.Time
}

// PreviewMsg carries the search text once typing paused
type PreviewMsg struct {
	Text string
}

// LogEntryMsg represents a logfwd log line to display
type LogEntryMsg struct {
	Level   logrus.Level
	Message string
	Time    time.Time
}

// ShutdownMsg signals the TUI to shut down
type ShutdownMsg struct{}
