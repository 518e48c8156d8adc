package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/txn2/logfwd/pkg/fwdapi/types"
)

// LogsHandler serves logfwd's own log entries
type LogsHandler struct {
	getLogBuffer func() types.LogBufferProvider
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(getLogBuffer func() types.LogBufferProvider) *LogsHandler {
	return &LogsHandler{
		getLogBuffer: getLogBuffer,
	}
}

func (h *LogsHandler) buffer() types.LogBufferProvider {
	if h.getLogBuffer == nil {
		return nil
	}
	return h.getLogBuffer()
}

// System returns the newest entries, oldest first
func (h *LogsHandler) System(c *gin.Context) {
	buf := h.buffer()
	if buf == nil {
		notReady(c, "Log buffer")
		return
	}

	entries := buf.Last(intQuery(c, "count", 100, 1000))
	response := types.LogsResponse{
		Logs: make([]types.LogEntryResponse, len(entries)),
	}
	for i, e := range entries {
		response.Logs[i] = types.LogEntryResponse{
			Timestamp: e.Timestamp,
			Level:     e.Level,
			Message:   e.Message,
			Fields:    e.Fields,
		}
	}

	respond(c, response, len(entries))
}

// ClearSystem empties the log buffer
func (h *LogsHandler) ClearSystem(c *gin.Context) {
	buf := h.buffer()
	if buf == nil {
		notReady(c, "Log buffer")
		return
	}

	cleared := buf.Count()
	buf.Clear()
	respond(c, map[string]int{"cleared": cleared}, cleared)
}
