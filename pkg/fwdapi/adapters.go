package fwdapi

import (
	"github.com/txn2/logfwd/pkg/fwdapi/types"
	"github.com/txn2/logfwd/pkg/fwdcache"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdexport"
	"github.com/txn2/logfwd/pkg/fwdlisten"
	"github.com/txn2/logfwd/pkg/fwdmetrics"
	"github.com/txn2/logfwd/pkg/fwdview"
)

// ChannelReaderAdapter reads the display state through its loop, so
// every read sees a consistent state between two batches.
type ChannelReaderAdapter struct {
	loop *fwdview.Loop
}

// NewChannelReaderAdapter creates a new ChannelReaderAdapter
func NewChannelReaderAdapter(loop *fwdview.Loop) *ChannelReaderAdapter {
	return &ChannelReaderAdapter{loop: loop}
}

func (a *ChannelReaderAdapter) Channels() []fwdview.ChannelInfo {
	var infos []fwdview.ChannelInfo
	if a.loop == nil {
		return infos
	}
	a.loop.Do(func(s *fwdview.State) {
		infos = s.Infos()
	})
	return infos
}

func (a *ChannelReaderAdapter) Events(key string) (fwdview.ChannelInfo, []*fwdevent.LogEvent, bool) {
	var (
		info   fwdview.ChannelInfo
		events []*fwdevent.LogEvent
		found  bool
	)
	if a.loop == nil {
		return info, nil, false
	}
	a.loop.Do(func(s *fwdview.State) {
		ch := s.Channel(key)
		if ch == nil {
			return
		}
		found = true
		info = ch.Info()
		// the channel slice is trimmed in place by later appends
		events = append([]*fwdevent.LogEvent(nil), ch.Events()...)
	})
	return info, events, found
}

// Verify the pipeline components satisfy the API interfaces
var (
	_ types.ChannelReader      = (*ChannelReaderAdapter)(nil)
	_ types.ReplaySource       = (*fwdcache.Registry[*fwdevent.LogEvent])(nil)
	_ types.MetricsProvider    = (*fwdmetrics.Registry)(nil)
	_ types.ListenerController = (*fwdlisten.Manager)(nil)
	_ types.Exporter           = (*fwdexport.Exporter)(nil)
)
