package types

import (
	"context"
	"time"

	"github.com/txn2/logfwd/pkg/fwdcache"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdlisten"
	"github.com/txn2/logfwd/pkg/fwdmetrics"
	"github.com/txn2/logfwd/pkg/fwdview"
)

// ChannelReader provides read-only access to the display state
type ChannelReader interface {
	// Channels returns every channel in creation order
	Channels() []fwdview.ChannelInfo

	// Events returns the channel header and a copy of its displayed events
	Events(key string) (fwdview.ChannelInfo, []*fwdevent.LogEvent, bool)
}

// ReplaySource gives access to the per-channel replay caches
type ReplaySource interface {
	Get(name string) *fwdcache.ReplayCache[*fwdevent.LogEvent]
}

// MetricsProvider provides pipeline counters
type MetricsProvider interface {
	Snapshot() fwdmetrics.Snapshot
	History(count int) []fwdmetrics.RateSample
}

// ListenerController restarts and stops the UDP listeners
type ListenerController interface {
	StartListening(addresses []string) fwdlisten.StartResult
	Stop()
	Addresses() []string
}

// Exporter writes a channel's events to a destination and returns the
// encoded size
type Exporter interface {
	ExportChannel(ctx context.Context, channel, destination string, events []*fwdevent.LogEvent) (int, error)
}

// LogBufferProvider provides access to logfwd's own log entries
type LogBufferProvider interface {
	Last(n int) []LogBufferEntry
	Count() int
	Clear()
}

// ManagerInfo provides runtime information for the info endpoint
type ManagerInfo interface {
	Version() string
	Uptime() time.Duration
	StartTime() time.Time
	TUIEnabled() bool
}
