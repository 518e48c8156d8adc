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

package fwdcache

import (
	"sync"
)

// DefaultCapacity is used when a cache is created with a non-positive capacity
const DefaultCapacity = 500

// ReplayCache keeps the most recent items of one channel and fans out
// every pushed item to its subscribers. A new subscriber first receives
// the retained items, oldest first, then live items.
type ReplayCache[T any] struct {
	name  string
	items []T
	size  int
	head  int
	count int

	subs   map[uint64]*Subscription[T]
	nextID uint64
	mu     sync.Mutex
}

// NewReplayCache creates a cache retaining up to capacity items
func NewReplayCache[T any](name string, capacity int) *ReplayCache[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ReplayCache[T]{
		name:  name,
		items: make([]T, capacity),
		size:  capacity,
		subs:  make(map[uint64]*Subscription[T]),
	}
}

// Name returns the channel name the cache was created for
func (c *ReplayCache[T]) Name() string {
	return c.name
}

// Capacity returns the ring size
func (c *ReplayCache[T]) Capacity() int {
	return c.size
}

// Len returns the number of retained items
func (c *ReplayCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Subscribers returns the number of open subscriptions
func (c *ReplayCache[T]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Push stores items and delivers them to every subscriber. It never blocks
// on a slow subscriber.
func (c *ReplayCache[T]) Push(items ...T) {
	if len(items) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range items {
		c.items[c.head] = it
		c.head = (c.head + 1) % c.size
		if c.count < c.size {
			c.count++
		}
	}

	for _, s := range c.subs {
		s.enqueue(items)
	}
}

// Snapshot returns the retained items, oldest first
func (c *ReplayCache[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *ReplayCache[T]) snapshotLocked() []T {
	out := make([]T, c.count)
	start := (c.head - c.count + c.size) % c.size
	for i := 0; i < c.count; i++ {
		out[i] = c.items[(start+i)%c.size]
	}
	return out
}

// Subscribe attaches a new subscriber. The retained items are queued before
// the subscriber is attached, under the same lock Push takes, so no item is
// lost or delivered twice at the boundary.
func (c *ReplayCache[T]) Subscribe() *Subscription[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := newSubscription(c, c.nextID)
	c.nextID++
	s.enqueue(c.snapshotLocked())
	c.subs[s.id] = s
	go s.pump()
	return s
}

func (c *ReplayCache[T]) detach(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, id)
}

// Subscription receives replayed then live items on C until closed
type Subscription[T any] struct {
	id     uint64
	cache  *ReplayCache[T]
	queue  []T
	mu     sync.Mutex
	notify chan struct{}
	out    chan T
	done   chan struct{}
	once   sync.Once
}

func newSubscription[T any](c *ReplayCache[T], id uint64) *Subscription[T] {
	return &Subscription[T]{
		id:     id,
		cache:  c,
		notify: make(chan struct{}, 1),
		out:    make(chan T),
		done:   make(chan struct{}),
	}
}

// C returns the delivery channel. It is closed after Close.
func (s *Subscription[T]) C() <-chan T {
	return s.out
}

// Close detaches the subscriber. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.cache.detach(s.id)
		close(s.done)
	})
}

// enqueue appends without blocking; the queue is unbounded
func (s *Subscription[T]) enqueue(items []T) {
	if len(items) == 0 {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, items...)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) next() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if len(s.queue) == 0 {
		return zero, false
	}
	it := s.queue[0]
	s.queue[0] = zero
	s.queue = s.queue[1:]
	return it, true
}

// pump moves queued items to the delivery channel in order
func (s *Subscription[T]) pump() {
	defer close(s.out)
	for {
		it, ok := s.next()
		if !ok {
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		select {
		case s.out <- it:
		case <-s.done:
			return
		}
	}
}
