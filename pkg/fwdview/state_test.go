package fwdview

import (
	"testing"

	"github.com/txn2/logfwd/pkg/fwdevent"
)

func makeEvents(n int) []*fwdevent.LogEvent {
	out := make([]*fwdevent.LogEvent, n)
	for i := range out {
		out[i] = &fwdevent.LogEvent{Message: string(rune('a' + i%26))}
	}
	return out
}

// TestChannelHysteresis tests that trimming only happens past the slack
func TestChannelHysteresis(t *testing.T) {
	ch := &Channel{MaxCount: 1000}

	ch.Append(makeEvents(1000)...)
	if ch.Len() != 1000 {
		t.Fatalf("Expected 1000, got %d", ch.Len())
	}

	ch.Append(makeEvents(99)...)
	if ch.Len() != 1099 {
		t.Errorf("Expected 1099 kept, got %d", ch.Len())
	}

	last := makeEvents(1)[0]
	ch.Append(last)
	if ch.Len() != 1000 {
		t.Errorf("Expected the 1100th event to trim to 1000, got %d", ch.Len())
	}
	if ch.Events()[ch.Len()-1] != last {
		t.Error("Expected newest event to survive the trim")
	}
	if ch.Total != 1100 {
		t.Errorf("Expected total 1100, got %d", ch.Total)
	}
}

// TestChannelTrimKeepsNewest tests that the oldest events are dropped
func TestChannelTrimKeepsNewest(t *testing.T) {
	ch := &Channel{MaxCount: 2}
	evs := makeEvents(103)
	ch.Append(evs...)

	if ch.Len() != 2 {
		t.Fatalf("Expected 2, got %d", ch.Len())
	}
	if ch.Events()[0] != evs[101] || ch.Events()[1] != evs[102] {
		t.Error("Expected the two newest events")
	}
}

// TestChannelUnbounded tests MaxCount zero never trims
func TestChannelUnbounded(t *testing.T) {
	ch := &Channel{}
	ch.Append(makeEvents(5000)...)
	if ch.Len() != 5000 {
		t.Errorf("Expected 5000, got %d", ch.Len())
	}
}

// TestStateEnsure tests creation order and case-insensitive lookup
func TestStateEnsure(t *testing.T) {
	s := NewState()
	a := s.Ensure("App;Host", "App", "Host", 10)
	s.Ensure("Other;Host", "Other", "Host", 10)
	again := s.Ensure("APP;host", "x", "y", 99)

	if a != again {
		t.Error("Expected existing channel for key differing in case")
	}
	if again.MaxCount != 10 {
		t.Errorf("Expected original MaxCount, got %d", again.MaxCount)
	}
	if len(s.Channels()) != 2 {
		t.Fatalf("Expected 2 channels, got %d", len(s.Channels()))
	}
	if s.Channels()[0].Key != "App;Host" || s.Channels()[1].Key != "Other;Host" {
		t.Error("Expected channels in creation order")
	}
	if s.Channel("app;HOST") != a {
		t.Error("Expected case-insensitive Channel lookup")
	}
	if s.Version != 2 {
		t.Errorf("Expected version 2, got %d", s.Version)
	}
	if s.FindApp("other") == nil {
		t.Error("Expected FindApp to match case-insensitively")
	}
}

// TestStateInfos tests snapshot copies
func TestStateInfos(t *testing.T) {
	s := NewState()
	ch := s.Ensure("a;b", "a", "b", 5)
	ch.Append(makeEvents(3)...)

	infos := s.Infos()
	if len(infos) != 1 {
		t.Fatalf("Expected 1 info, got %d", len(infos))
	}
	if infos[0].Count != 3 || infos[0].Total != 3 || infos[0].App != "a" {
		t.Errorf("Unexpected info %+v", infos[0])
	}
}
