package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/txn2/logfwd/pkg/fwdapi/types"
)

// MetricsHandler handles the pipeline counters endpoint
type MetricsHandler struct {
	metrics types.MetricsProvider
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(metrics types.MetricsProvider) *MetricsHandler {
	return &MetricsHandler{
		metrics: metrics,
	}
}

// Summary returns the counters and, with ?points=N, the rate history
func (h *MetricsHandler) Summary(c *gin.Context) {
	if h.metrics == nil {
		notReady(c, "Metrics provider")
		return
	}

	snap := h.metrics.Snapshot()
	response := types.MetricsResponse{
		DatagramsReceived: snap.DatagramsReceived,
		BytesReceived:     snap.BytesReceived,
		ParseFailures:     snap.ParseFailures,
		ReceiveErrors:     snap.ReceiveErrors,
		EventsDispatched:  snap.EventsDispatched,
		WindowsFlushed:    snap.WindowsFlushed,
		ChannelsCreated:   snap.ChannelsCreated,
		DatagramsPerSec:   snap.DatagramsPerSec,
		BytesPerSec:       snap.BytesPerSec,
		Uptime:            snap.Uptime.Round(time.Second).String(),
	}

	if c.Query("points") != "" {
		for _, s := range h.metrics.History(intQuery(c, "points", 60, 300)) {
			response.History = append(response.History, types.RateSampleResponse{
				Timestamp: s.Timestamp,
				Datagrams: s.Datagrams,
				Bytes:     s.Bytes,
			})
		}
	}

	respond(c, response, len(response.History))
}
