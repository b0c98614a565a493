package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/agentstation/mavroute/internal/server/events"
)

// HandleWebSocket handles GET /api/v1/updates/ws. The client receives a
// client.connected greeting, then every registry event.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	id := fmt.Sprintf("%s-%d", r.RemoteAddr, time.Now().UnixNano())
	h.wsHub.Serve(id, conn, &events.Event{
		Type:      events.ClientConnected,
		Timestamp: time.Now().UTC(),
		Data:      map[string]any{"transport": "websocket", "endpoints": h.registry.Len()},
	})
}

// HandleSSE handles GET /api/v1/updates/stream.
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.ServeHTTP(w, r)
}
