package fwdmetrics

import (
	"testing"
	"time"
)

// TestRateCalculatorEmpty tests rates with too few samples
func TestRateCalculatorEmpty(t *testing.T) {
	rc := NewRateCalculator(0)
	d, b := rc.Rate(1)
	if d != 0 || b != 0 {
		t.Errorf("Expected zero rate, got %f %f", d, b)
	}
	rc.AddSample(1, 1, time.Now())
	d, b = rc.Rate(1)
	if d != 0 || b != 0 {
		t.Errorf("Expected zero rate with one sample, got %f %f", d, b)
	}
}

// TestRateCalculatorWindow tests instantaneous and windowed rates
func TestRateCalculatorWindow(t *testing.T) {
	rc := NewRateCalculator(10)
	base := time.Now()
	for i := 0; i < 5; i++ {
		rc.AddSample(uint64(i*10), uint64(i*1000), base.Add(time.Duration(i)*time.Second))
	}

	d, b := rc.Rate(1)
	if d != 10 || b != 1000 {
		t.Errorf("Expected 10/s and 1000/s, got %f %f", d, b)
	}

	d, _ = rc.Rate(100)
	if d != 10 {
		t.Errorf("Expected 10/s over the whole history, got %f", d)
	}
}

// TestRateCalculatorWraps tests ring buffer reuse and history order
func TestRateCalculatorWraps(t *testing.T) {
	rc := NewRateCalculator(3)
	base := time.Now()
	for i := 0; i < 5; i++ {
		rc.AddSample(uint64(i), 0, base.Add(time.Duration(i)*time.Second))
	}

	if rc.SampleCount() != 3 {
		t.Fatalf("Expected 3 samples, got %d", rc.SampleCount())
	}
	h := rc.GetHistory(3)
	for i, s := range h {
		if s.Datagrams != uint64(i+2) {
			t.Errorf("Expected %d at %d, got %d", i+2, i, s.Datagrams)
		}
	}
}

// TestRateCalculatorReset tests that counter decreases yield zero
func TestRateCalculatorReset(t *testing.T) {
	rc := NewRateCalculator(5)
	base := time.Now()
	rc.AddSample(100, 100, base)
	rc.AddSample(5, 5, base.Add(time.Second))
	d, b := rc.Rate(1)
	if d != 0 || b != 0 {
		t.Errorf("Expected zero after reset, got %f %f", d, b)
	}
}
