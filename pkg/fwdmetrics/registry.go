package fwdmetrics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Registry holds the pipeline counters. It is created once per process and
// passed to the listener and dispatcher.
type Registry struct {
	datagrams       uint64
	bytes           uint64
	parseFailures   uint64
	receiveErrors   uint64
	eventsDispatch  uint64
	windowsFlushed  uint64
	channelsCreated uint64
	startedAt       time.Time

	rateCalc *RateCalculator
	mu       sync.Mutex
	ticker   *time.Ticker
	stopCh   chan struct{}
	started  bool
	wg       sync.WaitGroup
}

// Snapshot is a point-in-time copy of the counters
type Snapshot struct {
	DatagramsReceived uint64        `json:"datagramsReceived"`
	BytesReceived     uint64        `json:"bytesReceived"`
	ParseFailures     uint64        `json:"parseFailures"`
	ReceiveErrors     uint64        `json:"receiveErrors"`
	EventsDispatched  uint64        `json:"eventsDispatched"`
	WindowsFlushed    uint64        `json:"windowsFlushed"`
	ChannelsCreated   uint64        `json:"channelsCreated"`
	DatagramsPerSec   float64       `json:"datagramsPerSec"`
	BytesPerSec       float64       `json:"bytesPerSec"`
	Uptime            time.Duration `json:"uptime"`
}

// NewRegistry creates a registry with zeroed counters
func NewRegistry() *Registry {
	return &Registry{
		startedAt: time.Now(),
		rateCalc:  NewRateCalculator(DefaultMaxSamples),
		stopCh:    make(chan struct{}),
	}
}

// AddDatagram counts one received datagram of n bytes
func (r *Registry) AddDatagram(n int) {
	atomic.AddUint64(&r.datagrams, 1)
	atomic.AddUint64(&r.bytes, uint64(n))
}

// IncParseFailures counts a datagram that did not parse
func (r *Registry) IncParseFailures() {
	atomic.AddUint64(&r.parseFailures, 1)
}

// IncReceiveErrors counts a socket read error
func (r *Registry) IncReceiveErrors() {
	atomic.AddUint64(&r.receiveErrors, 1)
}

// AddDispatched counts events handed to the display state
func (r *Registry) AddDispatched(n int) {
	atomic.AddUint64(&r.eventsDispatch, uint64(n))
}

// IncWindowsFlushed counts a non-empty batching window
func (r *Registry) IncWindowsFlushed() {
	atomic.AddUint64(&r.windowsFlushed, 1)
}

// IncChannelsCreated counts a new channel
func (r *Registry) IncChannelsCreated() {
	atomic.AddUint64(&r.channelsCreated, 1)
}

// Start begins the sampling ticker for rate calculation
func (r *Registry) Start() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	r.ticker = time.NewTicker(1 * time.Second)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-r.ticker.C:
				r.takeSample(time.Now())
			case <-r.stopCh:
				r.ticker.Stop()
				return
			}
		}
	}()
}

func (r *Registry) takeSample(now time.Time) {
	r.rateCalc.AddSample(atomic.LoadUint64(&r.datagrams), atomic.LoadUint64(&r.bytes), now)
}

// Stop shuts down the sampler and waits for it to exit
func (r *Registry) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	close(r.stopCh)
	r.started = false
	r.mu.Unlock()

	r.wg.Wait()
}

// History returns recent rate samples, oldest first
func (r *Registry) History(count int) []RateSample {
	return r.rateCalc.GetHistory(count)
}

// Snapshot returns the current counter values
func (r *Registry) Snapshot() Snapshot {
	dps, bps := r.rateCalc.Rate(10)
	return Snapshot{
		DatagramsReceived: atomic.LoadUint64(&r.datagrams),
		BytesReceived:     atomic.LoadUint64(&r.bytes),
		ParseFailures:     atomic.LoadUint64(&r.parseFailures),
		ReceiveErrors:     atomic.LoadUint64(&r.receiveErrors),
		EventsDispatched:  atomic.LoadUint64(&r.eventsDispatch),
		WindowsFlushed:    atomic.LoadUint64(&r.windowsFlushed),
		ChannelsCreated:   atomic.LoadUint64(&r.channelsCreated),
		DatagramsPerSec:   dps,
		BytesPerSec:       bps,
		Uptime:            time.Since(r.startedAt),
	}
}

// String renders the snapshot on one line for logs and the status bar
func (s Snapshot) String() string {
	return fmt.Sprintf("datagrams=%d bytes=%d parseFailures=%d receiveErrors=%d dispatched=%d windows=%d channels=%d rate=%.1f/s",
		s.DatagramsReceived, s.BytesReceived, s.ParseFailures, s.ReceiveErrors,
		s.EventsDispatched, s.WindowsFlushed, s.ChannelsCreated, s.DatagramsPerSec)
}

// String renders the current counters
func (r *Registry) String() string {
	return r.Snapshot().String()
}
