package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/agentstation/mavroute/internal/server/response"
	"github.com/agentstation/mavroute/pkg/endpoint"
	"github.com/agentstation/mavroute/pkg/errors"
	"github.com/agentstation/mavroute/pkg/logging"
	"github.com/agentstation/mavroute/pkg/registry"
)

// EndpointList is the body of a list response.
type EndpointList struct {
	Count     int                 `json:"count"`
	Endpoints []endpoint.Endpoint `json:"endpoints"`
}

// parseQuery reads ?kind= (repeatable), ?owner=, ?persistent= and ?match=.
func parseQuery(r *http.Request) (registry.Query, error) {
	q := r.URL.Query()
	query := registry.Query{Owner: q.Get("owner"), Match: q.Get("match")}
	for _, raw := range q["kind"] {
		k, err := endpoint.ParseKind(raw)
		if err != nil {
			return query, err
		}
		query.Kinds = append(query.Kinds, k)
	}
	if raw := q.Get("persistent"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return query, errors.NewValidationError("persistent", raw, "must be a boolean")
		}
		query.Persistent = &b
	}
	return query, nil
}

// HandleListEndpoints handles GET /api/v1/endpoints.
func (h *Handlers) HandleListEndpoints(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	eps, err := h.registry.Select(q)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, EndpointList{Count: len(eps), Endpoints: eps})
}

// HandleGetEndpoint handles GET /api/v1/endpoints/{key...}.
func (h *Handlers) HandleGetEndpoint(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	e, ok := h.registry.Get(key)
	if !ok {
		response.ErrorFromType(w, errors.NewNotFoundError("endpoint", key))
		return
	}
	response.OK(w, e)
}

// HandleCreateEndpoint handles POST /api/v1/endpoints. The body is one
// endpoint in its configuration form.
func (h *Handlers) HandleCreateEndpoint(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	body, err := h.readBody(w, r)
	if err != nil {
		h.bodyError(w, err)
		return
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var c endpoint.Config
	if err := dec.Decode(&c); err != nil {
		response.ErrorFromType(w, errors.WrapParse("json", "request body", err))
		return
	}

	e, err := endpoint.FromConfig(c)
	if err != nil {
		h.metrics.ObserveRejection(err)
		logger.Info().Err(err).Str("reason", errors.Reason(err)).Msg("endpoint rejected")
		response.ErrorFromType(w, err)
		return
	}

	if err := h.registry.Add(e); err != nil {
		h.metrics.ObserveRejection(err)
		response.ErrorFromType(w, err)
		return
	}

	w.Header().Set("Location", r.URL.Path+"/"+e.Key())
	response.Created(w, e)
}

// HandleDeleteEndpoint handles DELETE /api/v1/endpoints/{key...}. Protected
// endpoints need ?force=true.
func (h *Handlers) HandleDeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "Invalid force parameter", "force must be a boolean")
			return
		}
		force = b
	}

	if err := h.registry.RemoveKey(key, force); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.NoContent(w)
}

// readBody reads at most maxBodySize bytes of the request body.
func (h *Handlers) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
}

func (h *Handlers) bodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.TooLarge(w, tooLarge.Limit)
		return
	}
	response.BadRequest(w, "Unreadable request body", err.Error())
}
