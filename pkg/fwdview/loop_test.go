package fwdview

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestLoopAppliesInOrder tests that mutations run sequentially in post order
func TestLoopAppliesInOrder(t *testing.T) {
	loop := NewLoop(NewState(), 10)
	loop.Start()
	defer loop.Stop()

	var order []int
	for i := 0; i < 100; i++ {
		i := i
		loop.Post(func(s *State) { order = append(order, i) })
	}

	var got []int
	loop.Do(func(s *State) { got = append(got, order...) })

	if len(got) != 100 {
		t.Fatalf("Expected 100 mutations, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("Expected %d at %d, got %d", i, i, v)
		}
	}
}

// TestLoopStopDrains tests that queued mutations run before Stop returns
func TestLoopStopDrains(t *testing.T) {
	loop := NewLoop(NewState(), 100)

	var count int32
	for i := 0; i < 50; i++ {
		loop.Post(func(s *State) { atomic.AddInt32(&count, 1) })
	}

	loop.Start()
	loop.Stop()

	if atomic.LoadInt32(&count) != 50 {
		t.Errorf("Expected 50 applied, got %d", count)
	}

	if loop.Post(func(s *State) {}) {
		t.Error("Expected Post to fail after Stop")
	}
	if loop.Do(func(s *State) {}) {
		t.Error("Expected Do to fail after Stop")
	}
	loop.Stop()
}

// TestLoopRecoversPanic tests that a panicking mutation does not kill the loop
func TestLoopRecoversPanic(t *testing.T) {
	loop := NewLoop(NewState(), 10)
	loop.Start()
	defer loop.Stop()

	loop.Post(func(s *State) { panic("boom") })

	ran := false
	if !loop.Do(func(s *State) { ran = true }) || !ran {
		t.Error("Expected loop to keep running after a panic")
	}

	if !loop.Do(func(s *State) { panic("inside do") }) {
		t.Error("Expected Do to return after a panicking closure")
	}
}

// TestLoopObservers tests change notification and unsubscribe
func TestLoopObservers(t *testing.T) {
	loop := NewLoop(NewState(), 10)
	loop.Start()
	defer loop.Stop()

	var mu sync.Mutex
	var seen []ChangeEvent
	unsub := loop.Subscribe(func(ev ChangeEvent) {
		mu.Lock()
		seen = append(seen, ev)
		mu.Unlock()
	})

	loop.Do(func(s *State) { s.Ensure("a;b", "a", "b", 0) })

	// observers run after the batch, which may be just after Do returns
	var n int
	var version uint64
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n = len(seen)
		if n > 0 {
			version = seen[n-1].Version
		}
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if n == 0 {
		t.Fatal("Expected at least one change event")
	}
	if version != 1 {
		t.Errorf("Expected version 1, got %d", version)
	}

	// let the Do batch finish notifying before unsubscribing
	loop.Do(func(s *State) {})
	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	n = len(seen)
	mu.Unlock()

	unsub()
	loop.Do(func(s *State) { s.Touch() })
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != n {
		t.Errorf("Expected no events after unsubscribe, got %d more", len(seen)-n)
	}
}
