package handlers

import (
	"bytes"
	"net/http"

	"github.com/agentstation/mavroute/internal/server/response"
	"github.com/agentstation/mavroute/pkg/manifest"
)

// HandleValidate handles POST /api/v1/validate. The body is a manifest in
// YAML or JSON; nothing is registered. The response summarizes each entry.
func (h *Handlers) HandleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		h.bodyError(w, err)
		return
	}

	res, err := manifest.Load(r.Context(), bytes.NewReader(body), "request",
		manifest.WithMetrics(h.metrics),
		manifest.WithMaxSize(h.maxBodySize),
	)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, res.Summarize())
}
