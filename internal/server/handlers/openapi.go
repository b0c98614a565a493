package handlers

import (
	"net/http"

	"github.com/agentstation/mavroute/internal/embedded/openapi"
	"github.com/agentstation/mavroute/internal/server/response"
)

// HandleOpenAPIJSON handles GET /api/v1/openapi.json.
func (h *Handlers) HandleOpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	spec, err := openapi.JSON(h.pathPrefix)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to render OpenAPI document")
		response.InternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(spec)
}

// HandleOpenAPIYAML handles GET /api/v1/openapi.yaml.
func (h *Handlers) HandleOpenAPIYAML(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(openapi.YAML(h.pathPrefix))
}
