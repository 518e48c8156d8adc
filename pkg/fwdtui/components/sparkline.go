package components

import (
	"slices"

	"github.com/txn2/logfwd/pkg/fwdmetrics"
)

// SparklineChars are the eight bar heights, lowest first
var SparklineChars = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline draws values scaled to their maximum in exactly width
// runes, stretching or sampling the series as needed.
func RenderSparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}

	out := make([]rune, width)
	var peak float64
	if len(values) > 0 {
		peak = slices.Max(values)
	}

	top := len(SparklineChars) - 1
	for i := range out {
		if peak <= 0 {
			out[i] = SparklineChars[0]
			continue
		}
		v := values[min(i*len(values)/width, len(values)-1)]
		// +0.5 rounds to the nearest bar
		level := int(v/peak*float64(top) + 0.5)
		out[i] = SparklineChars[max(0, min(level, top))]
	}
	return string(out)
}

// DatagramRates converts cumulative samples into per-second datagram
// rates between neighbours. Gaps and counter resets read as zero.
func DatagramRates(history []fwdmetrics.RateSample) []float64 {
	if len(history) < 2 {
		return nil
	}
	rates := make([]float64, len(history)-1)
	for i := range rates {
		a, b := history[i], history[i+1]
		dt := b.Timestamp.Sub(a.Timestamp).Seconds()
		if dt > 0 && b.Datagrams >= a.Datagrams {
			rates[i] = float64(b.Datagrams-a.Datagrams) / dt
		}
	}
	return rates
}
