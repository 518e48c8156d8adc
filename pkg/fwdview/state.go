package fwdview

import (
	"strings"

	"github.com/txn2/logfwd/pkg/fwdevent"
)

// TrimSlack is how far a channel may grow past MaxCount. Reaching
// MaxCount+TrimSlack trims it back to exactly MaxCount.
const TrimSlack = 100

// Channel is the displayed event list for one application/sender pair.
// It is only touched from the Loop goroutine.
type Channel struct {
	Key      string
	App      string
	Sender   string
	MaxCount int
	Total    int64

	events []*fwdevent.LogEvent
}

// Append adds events in order and trims the oldest ones once the list
// reaches MaxCount+TrimSlack.
func (c *Channel) Append(evs ...*fwdevent.LogEvent) {
	c.events = append(c.events, evs...)
	c.Total += int64(len(evs))

	if c.MaxCount > 0 && len(c.events) >= c.MaxCount+TrimSlack {
		drop := len(c.events) - c.MaxCount
		kept := make([]*fwdevent.LogEvent, c.MaxCount)
		copy(kept, c.events[drop:])
		c.events = kept
	}
}

// Events returns the current events. The slice must not be retained
// outside the Loop goroutine.
func (c *Channel) Events() []*fwdevent.LogEvent {
	return c.events
}

// Len returns the number of displayed events
func (c *Channel) Len() int {
	return len(c.events)
}

// Clear drops all displayed events; Total is kept
func (c *Channel) Clear() {
	c.events = nil
}

// Info returns a copy of the channel header
func (c *Channel) Info() ChannelInfo {
	return ChannelInfo{
		Key:      c.Key,
		App:      c.App,
		Sender:   c.Sender,
		Count:    len(c.events),
		Total:    c.Total,
		MaxCount: c.MaxCount,
	}
}

// ChannelInfo is a snapshot of a channel safe to hand to other goroutines
type ChannelInfo struct {
	Key      string `json:"key"`
	App      string `json:"app"`
	Sender   string `json:"sender"`
	Count    int    `json:"count"`
	Total    int64  `json:"total"`
	MaxCount int    `json:"maxCount"`
}

// State holds every channel in creation order
type State struct {
	channels []*Channel
	index    map[string]*Channel
	Version  uint64
}

// NewState creates empty display state
func NewState() *State {
	return &State{index: make(map[string]*Channel)}
}

// Ensure returns the channel for key, creating it when absent
func (s *State) Ensure(key, app, sender string, maxCount int) *Channel {
	norm := fwdevent.NormalizeKey(key)
	if ch, ok := s.index[norm]; ok {
		return ch
	}
	ch := &Channel{Key: key, App: app, Sender: sender, MaxCount: maxCount}
	s.channels = append(s.channels, ch)
	s.index[norm] = ch
	s.Version++
	return ch
}

// Channel looks a channel up case-insensitively
func (s *State) Channel(key string) *Channel {
	return s.index[fwdevent.NormalizeKey(key)]
}

// Channels returns the channels in creation order
func (s *State) Channels() []*Channel {
	return s.channels
}

// Infos returns snapshots of every channel in creation order
func (s *State) Infos() []ChannelInfo {
	out := make([]ChannelInfo, len(s.channels))
	for i, ch := range s.channels {
		out[i] = ch.Info()
	}
	return out
}

// Touch marks the state as changed
func (s *State) Touch() {
	s.Version++
}

// FindApp returns the first channel whose app matches name
func (s *State) FindApp(name string) *Channel {
	for _, ch := range s.channels {
		if strings.EqualFold(ch.App, name) {
			return ch
		}
	}
	return nil
}
