package fwddispatch

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/txn2/logfwd/pkg/fwdcache"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdmetrics"
	"github.com/txn2/logfwd/pkg/fwdview"
)

const (
	DefaultWindow   = 250 * time.Millisecond
	DefaultMaxCount = 1000
)

// Options tunes the dispatcher
type Options struct {
	// Window is the batching interval
	Window time.Duration

	// DefaultCapacity is the replay cache size for new channels
	DefaultCapacity int

	// MaxCount returns the display limit for a new channel. Nil means
	// DefaultMaxCount for every channel.
	MaxCount func(app string) int

	Metrics *fwdmetrics.Registry
}

// Group is the events of one channel collected in a window
type Group struct {
	Key    string
	App    string
	Sender string
	// Name is the application name without its instance suffix, used
	// for per-tab limits
	Name   string
	Events []*fwdevent.LogEvent
}

// Dispatcher batches received events per window and hands each channel's
// share to its replay cache and to the display loop.
type Dispatcher struct {
	in       <-chan fwdevent.Received
	registry *fwdcache.Registry[*fwdevent.LogEvent]
	loop     *fwdview.Loop
	opts     Options
}

// New creates a dispatcher reading from in
func New(in <-chan fwdevent.Received, registry *fwdcache.Registry[*fwdevent.LogEvent], loop *fwdview.Loop, opts Options) *Dispatcher {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.DefaultCapacity <= 0 {
		opts.DefaultCapacity = fwdcache.DefaultCapacity
	}
	if opts.MaxCount == nil {
		opts.MaxCount = func(string) int { return DefaultMaxCount }
	}
	return &Dispatcher{
		in:       in,
		registry: registry,
		loop:     loop,
		opts:     opts,
	}
}

// Run collects events until ctx is cancelled or the input closes, then
// flushes what is left and returns.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.opts.Window)
	defer ticker.Stop()

	var batch []fwdevent.Received
	for {
		select {
		case rcv, ok := <-d.in:
			if !ok {
				d.flush(batch)
				return
			}
			batch = append(batch, rcv)
		case <-ticker.C:
			d.flush(batch)
			batch = nil
		case <-ctx.Done():
			d.flush(batch)
			return
		}
	}
}

// GroupBatch splits a batch per channel. Groups are ordered by the first
// appearance of their key and keep arrival order within a group.
func GroupBatch(batch []fwdevent.Received) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, rcv := range batch {
		norm := fwdevent.NormalizeKey(rcv.Key)
		i, ok := index[norm]
		if !ok {
			i = len(groups)
			index[norm] = i
			groups = append(groups, Group{
				Key:    rcv.Key,
				App:    rcv.Identity.String(),
				Sender: rcv.Sender,
				Name:   appName(rcv),
			})
		}
		groups[i].Events = append(groups[i].Events, rcv.Event)
	}
	return groups
}

func appName(rcv fwdevent.Received) string {
	if rcv.Identity.Name != "" {
		return rcv.Identity.Name
	}
	app, _ := fwdevent.SplitChannelKey(rcv.Key)
	return app
}

func (d *Dispatcher) flush(batch []fwdevent.Received) {
	if len(batch) == 0 {
		return
	}

	groups := GroupBatch(batch)
	for _, g := range groups {
		g := g
		d.registry.GetOrCreate(g.Key, d.opts.DefaultCapacity).Push(g.Events...)

		maxCount := d.opts.MaxCount(g.Name)
		metrics := d.opts.Metrics
		if !d.loop.Post(func(s *fwdview.State) {
			ch := s.Channel(g.Key)
			if ch == nil {
				ch = s.Ensure(g.Key, g.App, g.Sender, maxCount)
				if metrics != nil {
					metrics.IncChannelsCreated()
				}
			}
			ch.Append(g.Events...)
			s.Touch()
		}) {
			log.Debugf("Display loop stopped, dropping %d events for %s", len(g.Events), g.Key)
			continue
		}
		if metrics != nil {
			metrics.AddDispatched(len(g.Events))
		}
	}

	if d.opts.Metrics != nil {
		d.opts.Metrics.IncWindowsFlushed()
	}
}
