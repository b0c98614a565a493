package handlers

import (
	"net/http"

	"github.com/agentstation/mavroute/internal/cmd/table"
	"github.com/agentstation/mavroute/internal/server/response"
	"github.com/agentstation/mavroute/pkg/endpoint"
)

// HandleKinds handles GET /api/v1/kinds.
func (h *Handlers) HandleKinds(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, table.KindList())
}

// HandleBaudRates handles GET /api/v1/baudrates.
func (h *Handlers) HandleBaudRates(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, endpoint.BaudRates())
}
