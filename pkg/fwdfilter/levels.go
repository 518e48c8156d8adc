package fwdfilter

import (
	"strings"

	"github.com/txn2/logfwd/pkg/fwdevent"
)

// LevelSet records which levels are hidden. The zero value shows everything.
type LevelSet struct {
	hidden map[fwdevent.Level]bool
}

// Visible reports whether events of level are shown
func (s *LevelSet) Visible(level fwdevent.Level) bool {
	return s == nil || !s.hidden[level]
}

// SetVisible shows or hides level
func (s *LevelSet) SetVisible(level fwdevent.Level, visible bool) {
	if s.hidden == nil {
		s.hidden = make(map[fwdevent.Level]bool)
	}
	if visible {
		delete(s.hidden, level)
		return
	}
	s.hidden[level] = true
}

// Toggle flips the visibility of level and returns the new state
func (s *LevelSet) Toggle(level fwdevent.Level) bool {
	v := !s.Visible(level)
	s.SetVisible(level, v)
	return v
}

// Hidden returns the hidden levels in severity order
func (s *LevelSet) Hidden() []fwdevent.Level {
	var out []fwdevent.Level
	for _, l := range append([]fwdevent.Level{fwdevent.LevelUnknown}, fwdevent.Levels...) {
		if !s.Visible(l) {
			out = append(out, l)
		}
	}
	return out
}

// HideNames hides each level in a comma separated list such as "debug,trace"
func (s *LevelSet) HideNames(list string) {
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		s.SetVisible(fwdevent.ParseLevel(name), false)
	}
}
