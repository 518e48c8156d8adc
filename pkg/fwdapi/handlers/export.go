package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/txn2/logfwd/pkg/fwdapi/types"
	"github.com/txn2/logfwd/pkg/fwdexport"
)

// ExportHandler writes a channel's replay cache to a file or bucket
type ExportHandler struct {
	replay   types.ReplaySource
	exporter types.Exporter
}

// NewExportHandler creates a new export handler
func NewExportHandler(replay types.ReplaySource, exporter types.Exporter) *ExportHandler {
	return &ExportHandler{
		replay:   replay,
		exporter: exporter,
	}
}

// Export handles POST /channels/:key/export
func (h *ExportHandler) Export(c *gin.Context) {
	if h.replay == nil || h.exporter == nil {
		notReady(c, "Exporter")
		return
	}

	var req types.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	key := c.Param("key")
	cache := h.replay.Get(key)
	if cache == nil {
		fail(c, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Channel %s not found", key))
		return
	}

	events := cache.Snapshot()
	n, err := h.exporter.ExportChannel(c.Request.Context(), cache.Name(), req.Destination, events)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, fwdexport.ErrNoEvents) {
			status = http.StatusConflict
		}
		fail(c, status, "EXPORT_FAILED", err.Error())
		return
	}

	respond(c, types.ExportResponse{
		Channel:     cache.Name(),
		Destination: req.Destination,
		Events:      len(events),
		Bytes:       n,
	}, len(events))
}
