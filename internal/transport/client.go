// Package transport is an HTTP client for the API served by "mavroute serve".
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/mavroute/pkg/constants"
	"github.com/agentstation/mavroute/pkg/endpoint"
	"github.com/agentstation/mavroute/pkg/errors"
	"github.com/agentstation/mavroute/pkg/logging"
	"github.com/agentstation/mavroute/pkg/manifest"
	"github.com/agentstation/mavroute/pkg/registry"
)

// Client talks to one mavroute server.
type Client struct {
	http   *http.Client
	base   *url.URL
	auth   Authenticator
	logger *zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client, which has
// constants.DefaultHTTPTimeout as timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithAuth sets the authenticator.
func WithAuth(a Authenticator) Option {
	return func(c *Client) {
		if a != nil {
			c.auth = a
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the API at baseURL, which includes the path
// prefix, for example http://localhost:8080/api/v1.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.NewValidationError("server", baseURL, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.NewValidationError("server", baseURL, "scheme must be http or https")
	}
	if u.Host == "" {
		return nil, errors.NewValidationError("server", baseURL, "host is required")
	}

	c := &Client{
		http:   &http.Client{Timeout: constants.DefaultHTTPTimeout},
		base:   u,
		auth:   NoAuth{},
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string { return c.base.String() }

// Health checks that the server is alive.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, "", nil)
}

// List returns the endpoints matching q, sorted by key.
func (c *Client) List(ctx context.Context, q registry.Query) ([]endpoint.Endpoint, error) {
	params := url.Values{}
	for _, k := range q.Kinds {
		params.Add("kind", k.String())
	}
	if q.Owner != "" {
		params.Set("owner", q.Owner)
	}
	if q.Persistent != nil {
		params.Set("persistent", strconv.FormatBool(*q.Persistent))
	}
	if q.Match != "" {
		params.Set("match", q.Match)
	}

	var out struct {
		Endpoints []endpoint.Endpoint `json:"endpoints"`
	}
	if err := c.do(ctx, http.MethodGet, "/endpoints", params, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Endpoints, nil
}

// Get returns the endpoint with the canonical key.
func (c *Client) Get(ctx context.Context, key string) (endpoint.Endpoint, error) {
	var e endpoint.Endpoint
	err := c.do(ctx, http.MethodGet, "/endpoints/"+key, nil, nil, "", &e)
	return e, err
}

// Create validates cfg on the server and registers it.
func (c *Client) Create(ctx context.Context, cfg endpoint.Config) (endpoint.Endpoint, error) {
	body, err := json.Marshal(cfg)
	if err != nil {
		return endpoint.Endpoint{}, errors.WrapParse("json", "request body", err)
	}
	var e endpoint.Endpoint
	err = c.do(ctx, http.MethodPost, "/endpoints", nil, bytes.NewReader(body), "application/json", &e)
	return e, err
}

// Delete removes the endpoint with the canonical key. force also removes a
// protected endpoint.
func (c *Client) Delete(ctx context.Context, key string, force bool) error {
	var params url.Values
	if force {
		params = url.Values{"force": {"true"}}
	}
	return c.do(ctx, http.MethodDelete, "/endpoints/"+key, params, nil, "", nil)
}

// Validate sends a YAML or JSON manifest and returns the per entry outcome.
// Nothing is registered.
func (c *Client) Validate(ctx context.Context, doc io.Reader) (manifest.Summary, error) {
	var s manifest.Summary
	err := c.do(ctx, http.MethodPost, "/validate", nil, doc, "application/yaml", &s)
	return s, err
}

// envelope mirrors the server's response body.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body io.Reader, contentType string, out any) error {
	u := c.base.JoinPath(path)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.WrapIO("create request", method+" "+u.Path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.auth.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapIO(strings.ToLower(method), u.String(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("method", method).
		Str("url", u.String()).
		Int("status", resp.StatusCode).
		Msg("API request")

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return decode(resp, out)
}

// decode reads the response envelope into out, or converts an error
// envelope into an *errors.APIError.
func decode(resp *http.Response, out any) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxManifestSize*4))
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return errors.NewAPIError(resp.StatusCode, "", strings.TrimSpace(string(data)), "")
		}
		return errors.WrapParse("json", "response body", err)
	}
	if env.Error != nil || resp.StatusCode >= http.StatusBadRequest {
		if env.Error == nil {
			return errors.NewAPIError(resp.StatusCode, "", http.StatusText(resp.StatusCode), "")
		}
		return errors.NewAPIError(resp.StatusCode, env.Error.Code, env.Error.Message, env.Error.Reason)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.WrapParse("json", "response data", err)
	}
	return nil
}
