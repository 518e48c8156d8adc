package fwdmetrics

import (
	"sync"
	"time"
)

// DefaultMaxSamples keeps a minute of history at one sample per second
const DefaultMaxSamples = 60

// RateSample is one reading of the cumulative receive counters
type RateSample struct {
	Timestamp time.Time `json:"timestamp"`
	Datagrams uint64    `json:"datagrams"`
	Bytes     uint64    `json:"bytes"`
}

// RateCalculator keeps the most recent counter readings in a ring and
// derives per-second rates from them.
type RateCalculator struct {
	mu    sync.RWMutex
	ring  []RateSample
	start int
	n     int
}

// NewRateCalculator creates a calculator holding up to maxSamples readings
func NewRateCalculator(maxSamples int) *RateCalculator {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &RateCalculator{ring: make([]RateSample, maxSamples)}
}

// at returns the i-th stored sample, 0 being the oldest
func (rc *RateCalculator) at(i int) RateSample {
	return rc.ring[(rc.start+i)%len(rc.ring)]
}

// AddSample records a reading, evicting the oldest when full
func (rc *RateCalculator) AddSample(datagrams, bytes uint64, timestamp time.Time) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	s := RateSample{Timestamp: timestamp, Datagrams: datagrams, Bytes: bytes}
	if rc.n < len(rc.ring) {
		rc.ring[(rc.start+rc.n)%len(rc.ring)] = s
		rc.n++
		return
	}
	rc.ring[rc.start] = s
	rc.start = (rc.start + 1) % len(rc.ring)
}

// Rate returns datagrams/sec and bytes/sec across the last windowSeconds
// samples. A window of 1 compares the two newest samples.
func (rc *RateCalculator) Rate(windowSeconds int) (datagramsPerSec, bytesPerSec float64) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	if rc.n < 2 || windowSeconds <= 0 {
		return 0, 0
	}

	span := min(windowSeconds, rc.n-1)
	newest := rc.at(rc.n - 1)
	oldest := rc.at(rc.n - 1 - span)

	secs := newest.Timestamp.Sub(oldest.Timestamp).Seconds()
	if secs <= 0 {
		return 0, 0
	}
	// a decrease means the counters were reset
	if newest.Datagrams < oldest.Datagrams || newest.Bytes < oldest.Bytes {
		return 0, 0
	}

	return float64(newest.Datagrams-oldest.Datagrams) / secs,
		float64(newest.Bytes-oldest.Bytes) / secs
}

// GetHistory returns up to count of the newest samples, oldest first
func (rc *RateCalculator) GetHistory(count int) []RateSample {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	if count <= 0 || rc.n == 0 {
		return nil
	}
	count = min(count, rc.n)

	out := make([]RateSample, count)
	for i := range out {
		out[i] = rc.at(rc.n - count + i)
	}
	return out
}

// SampleCount returns the number of samples currently stored
func (rc *RateCalculator) SampleCount() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.n
}
