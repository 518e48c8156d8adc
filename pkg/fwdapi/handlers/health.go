package handlers

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/txn2/logfwd/pkg/fwdapi/types"
)

// HealthHandler serves liveness and runtime information
type HealthHandler struct {
	version   string
	started   time.Time
	manager   func() types.ManagerInfo
	listeners types.ListenerController
}

// NewHealthHandler creates a health handler. manager and listeners may be nil.
func NewHealthHandler(version string, started time.Time, manager func() types.ManagerInfo, listeners types.ListenerController) *HealthHandler {
	return &HealthHandler{
		version:   version,
		started:   started,
		manager:   manager,
		listeners: listeners,
	}
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.started).Round(time.Second).String()
}

// Health handles GET /health. It answers as long as the server runs,
// whether or not any UDP listener is bound.
func (h *HealthHandler) Health(c *gin.Context) {
	respond(c, types.HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    h.uptime(),
		Timestamp: time.Now(),
	}, 0)
}

// Info handles GET /info
func (h *HealthHandler) Info(c *gin.Context) {
	info := types.InfoResponse{
		Version:    h.version,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		StartTime:  h.started,
		Uptime:     h.uptime(),
		Listeners:  []string{},
		APIEnabled: true,
	}

	if h.listeners != nil {
		if addrs := h.listeners.Addresses(); addrs != nil {
			info.Listeners = addrs
		}
	}
	if h.manager != nil {
		if m := h.manager(); m != nil {
			info.TUIEnabled = m.TUIEnabled()
		}
	}

	respond(c, info, len(info.Listeners))
}
