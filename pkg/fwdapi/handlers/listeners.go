package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/txn2/logfwd/pkg/fwdapi/types"
)

// ListenersHandler lists, restarts and stops the UDP listeners
type ListenersHandler struct {
	listeners types.ListenerController
}

// NewListenersHandler creates a new listeners handler
func NewListenersHandler(listeners types.ListenerController) *ListenersHandler {
	return &ListenersHandler{
		listeners: listeners,
	}
}

func (h *ListenersHandler) addresses() []string {
	addrs := h.listeners.Addresses()
	if addrs == nil {
		addrs = []string{}
	}
	return addrs
}

// List returns the bound addresses
func (h *ListenersHandler) List(c *gin.Context) {
	if h.listeners == nil {
		notReady(c, "Listener")
		return
	}
	addrs := h.addresses()
	respond(c, types.ListenersResponse{Addresses: addrs}, len(addrs))
}

// Restart replaces the listener set. It answers 200 when at least one
// address was bound and 409 when none could be.
func (h *ListenersHandler) Restart(c *gin.Context) {
	if h.listeners == nil {
		notReady(c, "Listener")
		return
	}

	var req types.ListenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if len(req.Addresses) == 0 {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "addresses must not be empty")
		return
	}

	log.Infof("Restarting listeners on %v via API", req.Addresses)
	result := h.listeners.StartListening(req.Addresses)
	response := types.StartResultResponse{
		AnyStarted:   result.AnyStarted,
		ErrorMessage: result.ErrorMessage,
		Addresses:    h.addresses(),
	}

	if !result.AnyStarted {
		c.JSON(http.StatusConflict, types.Response{
			Success: false,
			Data:    response,
			Error: &types.ErrorInfo{
				Code:    "BIND_FAILED",
				Message: result.ErrorMessage,
			},
		})
		return
	}
	respond(c, response, len(response.Addresses))
}

// Stop closes every listener
func (h *ListenersHandler) Stop(c *gin.Context) {
	if h.listeners == nil {
		notReady(c, "Listener")
		return
	}
	h.listeners.Stop()
	log.Info("Listeners stopped via API")
	respond(c, types.ListenersResponse{Addresses: h.addresses()}, 0)
}
