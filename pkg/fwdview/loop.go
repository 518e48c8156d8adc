/*
Copyright 2018-2024 Craig Johnston <cjimti@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package fwdview

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Mutation is applied to the display state on the Loop goroutine
type Mutation func(*State)

// ChangeEvent is sent to observers after the loop applied a batch of mutations
type ChangeEvent struct {
	Version uint64
	Applied int
}

// Observer receives change events on the Loop goroutine
type Observer func(ChangeEvent)

// UnsubscribeFunc removes an observer
type UnsubscribeFunc func()

type observerEntry struct {
	id uint64
	fn Observer
}

// Loop is the single consumer that owns the display state. Producers post
// mutations; readers use Do. Nothing else touches the State.
type Loop struct {
	state     *State
	queue     chan Mutation
	stopChan  chan struct{}
	doneChan  chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once

	mu        sync.RWMutex
	observers []observerEntry
	nextID    uint64
}

// NewLoop creates a loop around state with a queue of the given size
func NewLoop(state *State, buffer int) *Loop {
	if state == nil {
		state = NewState()
	}
	if buffer <= 0 {
		buffer = 1000
	}
	return &Loop{
		state:    state,
		queue:    make(chan Mutation, buffer),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start runs the consumer goroutine. Calling it again has no effect.
func (l *Loop) Start() {
	l.startOnce.Do(func() {
		go l.run()
	})
}

// Post queues a mutation. It blocks while the queue is full and returns
// false without queuing once the loop is stopped.
func (l *Loop) Post(fn Mutation) bool {
	select {
	case <-l.stopChan:
		return false
	default:
	}

	select {
	case l.queue <- fn:
		return true
	case <-l.stopChan:
		return false
	}
}

// Do runs fn on the consumer and waits for it to finish. It returns false
// if the loop stopped before fn ran.
func (l *Loop) Do(fn Mutation) bool {
	done := make(chan struct{})
	ok := l.Post(func(s *State) {
		defer close(done)
		fn(s)
	})
	if !ok {
		return false
	}

	select {
	case <-done:
		return true
	case <-l.doneChan:
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}

// Stop drains queued mutations and waits for the consumer to exit
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
	})
	l.Start()
	<-l.doneChan
}

// Done is closed once the consumer has exited
func (l *Loop) Done() <-chan struct{} {
	return l.doneChan
}

// Subscribe registers an observer called after each applied batch
func (l *Loop) Subscribe(fn Observer) UnsubscribeFunc {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.observers = append(l.observers, observerEntry{id: id, fn: fn})

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, entry := range l.observers {
			if entry.id == id {
				l.observers = append(l.observers[:i], l.observers[i+1:]...)
				return
			}
		}
	}
}

func (l *Loop) run() {
	defer close(l.doneChan)
	for {
		select {
		case fn := <-l.queue:
			l.applyBatch(fn)
		case <-l.stopChan:
			for {
				select {
				case fn := <-l.queue:
					l.applyBatch(fn)
				default:
					return
				}
			}
		}
	}
}

// applyBatch applies fn and anything already queued behind it, then
// notifies observers once.
func (l *Loop) applyBatch(first Mutation) {
	applied := 1
	l.apply(first)
	for {
		select {
		case fn := <-l.queue:
			l.apply(fn)
			applied++
		default:
			l.notify(ChangeEvent{Version: l.state.Version, Applied: applied})
			return
		}
	}
}

func (l *Loop) apply(fn Mutation) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Display state mutation panic: %v", r)
		}
	}()
	fn(l.state)
}

func (l *Loop) notify(ev ChangeEvent) {
	l.mu.RLock()
	observers := make([]observerEntry, len(l.observers))
	copy(observers, l.observers)
	l.mu.RUnlock()

	for _, entry := range observers {
		l.safeCall(entry.fn, ev)
	}
}

func (l *Loop) safeCall(fn Observer, ev ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Display observer panic: %v", r)
		}
	}()
	fn(ev)
}
