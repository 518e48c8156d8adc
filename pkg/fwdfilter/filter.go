package fwdfilter

import (
	"github.com/txn2/logfwd/pkg/fwdevent"
)

// Filter decides event visibility from hidden levels and search terms
type Filter struct {
	Levels   *LevelSet
	Terms    []SearchTerm
	Resolver fwdevent.Resolver
}

// Visible applies the level filter, then requires every include term to
// match the logger or the message and rejects the event if any exclude
// term's pattern fails on the logger or the message.
func (f Filter) Visible(ev *fwdevent.LogEvent) bool {
	if !f.Levels.Visible(ev.Level) {
		return false
	}

	msg := f.Resolver.FormatMessage(ev)
	for _, t := range f.Terms {
		switch t.Mode {
		case Include:
			if !t.Matches(ev.LoggerName) && !t.Matches(msg) {
				return false
			}
		case Exclude:
			if !t.passes(ev.LoggerName) || !t.passes(msg) {
				return false
			}
		}
	}
	return true
}

// Apply returns the visible events in order
func (f Filter) Apply(events []*fwdevent.LogEvent) []*fwdevent.LogEvent {
	out := make([]*fwdevent.LogEvent, 0, len(events))
	for _, ev := range events {
		if f.Visible(ev) {
			out = append(out, ev)
		}
	}
	return out
}
