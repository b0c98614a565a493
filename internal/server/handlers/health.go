package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/mavroute/internal/server/response"
	"github.com/agentstation/mavroute/pkg/constants"
)

// HandleHealth handles GET /health. It is the liveness probe.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": constants.AppName,
		"version": h.version,
	})
}

// HandleReady handles GET /api/v1/ready. The server is ready once a registry
// is attached.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if h.registry == nil {
		response.ServiceUnavailable(w, "Endpoint registry not available")
		return
	}

	response.OK(w, map[string]any{
		"status":            "ready",
		"endpoints":         h.registry.Len(),
		"uptime":            time.Since(h.startTime).Round(time.Second).String(),
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
	})
}
