package fwdmetrics

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// TestRegistryCounters tests counter accumulation
func TestRegistryCounters(t *testing.T) {
	reg := NewRegistry()

	reg.AddDatagram(100)
	reg.AddDatagram(50)
	reg.IncParseFailures()
	reg.IncReceiveErrors()
	reg.AddDispatched(7)
	reg.IncWindowsFlushed()
	reg.IncChannelsCreated()
	reg.IncChannelsCreated()

	s := reg.Snapshot()
	if s.DatagramsReceived != 2 {
		t.Errorf("Expected 2 datagrams, got %d", s.DatagramsReceived)
	}
	if s.BytesReceived != 150 {
		t.Errorf("Expected 150 bytes, got %d", s.BytesReceived)
	}
	if s.ParseFailures != 1 || s.ReceiveErrors != 1 {
		t.Errorf("Expected 1 parse failure and 1 receive error, got %d and %d", s.ParseFailures, s.ReceiveErrors)
	}
	if s.EventsDispatched != 7 {
		t.Errorf("Expected 7 dispatched, got %d", s.EventsDispatched)
	}
	if s.WindowsFlushed != 1 || s.ChannelsCreated != 2 {
		t.Errorf("Unexpected windows/channels %d/%d", s.WindowsFlushed, s.ChannelsCreated)
	}
}

// TestRegistryConcurrent tests counters under concurrent updates
func TestRegistryConcurrent(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				reg.AddDatagram(1)
			}
		}()
	}
	wg.Wait()

	if got := reg.Snapshot().DatagramsReceived; got != 10000 {
		t.Errorf("Expected 10000, got %d", got)
	}
}

// TestRegistryStartStop tests the sampler lifecycle
func TestRegistryStartStop(t *testing.T) {
	reg := NewRegistry()
	reg.Start()
	reg.Start()
	reg.Stop()
	reg.Stop()
}

// TestRegistrySampledRate tests rate computation from samples
func TestRegistrySampledRate(t *testing.T) {
	reg := NewRegistry()
	base := time.Now()

	reg.takeSample(base)
	reg.AddDatagram(10)
	reg.AddDatagram(10)
	reg.takeSample(base.Add(time.Second))

	s := reg.Snapshot()
	if s.DatagramsPerSec != 2 {
		t.Errorf("Expected 2 datagrams/sec, got %f", s.DatagramsPerSec)
	}
	if s.BytesPerSec != 20 {
		t.Errorf("Expected 20 bytes/sec, got %f", s.BytesPerSec)
	}
	if len(reg.History(10)) != 2 {
		t.Errorf("Expected 2 history samples, got %d", len(reg.History(10)))
	}
}

// TestSnapshotString tests the one-line rendering
func TestSnapshotString(t *testing.T) {
	reg := NewRegistry()
	reg.AddDatagram(3)
	out := reg.String()
	if !strings.Contains(out, "datagrams=1") || !strings.Contains(out, "bytes=3") {
		t.Errorf("Unexpected string %q", out)
	}
}
