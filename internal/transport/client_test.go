package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mavroute/internal/server"
	"github.com/agentstation/mavroute/internal/transport"
	"github.com/agentstation/mavroute/pkg/endpoint"
	"github.com/agentstation/mavroute/pkg/errors"
	"github.com/agentstation/mavroute/pkg/registry"
)

func newServer(t *testing.T, mutate func(*server.Config)) (*registry.Registry, string) {
	t.Helper()
	logger := zerolog.Nop()
	reg := registry.New(registry.WithLogger(&logger))
	gcs, err := endpoint.New(endpoint.Params{
		Name: "GCS", Owner: "autopilot_manager", Kind: "udpin", Place: "0.0.0.0",
		Argument: endpoint.Int(14550), Persistent: true, Protected: true,
	})
	require.NoError(t, err)
	require.NoError(t, reg.Add(gcs))

	cfg := server.DefaultConfig()
	cfg.MetricsEnabled = false
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := server.New(reg, cfg, server.WithLogger(&logger))
	require.NoError(t, err)
	srv.Start()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		ts.Close()
	})
	return reg, ts.URL + cfg.PathPrefix
}

func TestNew(t *testing.T) {
	for _, bad := range []string{"localhost:8080", "ftp://host/api", "http:///api/v1", "http://[::1"} {
		_, err := transport.New(bad)
		assert.True(t, errors.IsValidationError(err), bad)
	}

	c, err := transport.New("http://localhost:8080/api/v1/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1", c.BaseURL())
}

func TestClient_Lifecycle(t *testing.T) {
	reg, base := newServer(t, nil)
	c, err := transport.New(base)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	created, err := c.Create(ctx, endpoint.Config{
		Name: "Radio", Owner: "radio_manager", ConnectionType: "serial", Place: "/dev/ttyUSB0", Argument: 57600,
	})
	require.NoError(t, err)
	assert.Equal(t, "serial:/dev/ttyUSB0:57600", created.Key())
	assert.True(t, reg.Contains(created))

	got, err := c.Get(ctx, "serial:/dev/ttyUSB0:57600")
	require.NoError(t, err)
	assert.Equal(t, "Radio", got.Name())

	all, err := c.List(ctx, registry.Query{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	yes := true
	filtered, err := c.List(ctx, registry.Query{Kinds: []endpoint.Kind{endpoint.KindSerial}, Persistent: &yes})
	require.NoError(t, err)
	assert.Empty(t, filtered)

	matched, err := c.List(ctx, registry.Query{Match: "gcs"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "udpin:0.0.0.0:14550", matched[0].Key())

	require.NoError(t, c.Delete(ctx, "serial:/dev/ttyUSB0:57600", false))
	_, err = c.Get(ctx, "serial:/dev/ttyUSB0:57600")
	assert.True(t, errors.IsNotFound(err))
}

func TestClient_Errors(t *testing.T) {
	_, base := newServer(t, nil)
	c, err := transport.New(base)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Create(ctx, endpoint.Config{
		Name: "Bad", Owner: "telemetry", ConnectionType: "udpout", Place: "192.168.2.1", Argument: 70000,
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, "invalid_port", errors.Reason(err))

	_, err = c.Create(ctx, endpoint.Config{
		Name: "Copy", Owner: "someone", ConnectionType: "udpin", Place: "0.0.0.0", Argument: 14550,
	})
	assert.True(t, errors.IsAlreadyExists(err))

	err = c.Delete(ctx, "udpin:0.0.0.0:14550", false)
	assert.True(t, errors.IsProtected(err))
	require.NoError(t, c.Delete(ctx, "udpin:0.0.0.0:14550", true))

	var apiErr *errors.APIError
	err = c.Delete(ctx, "udpin:0.0.0.0:14550", false)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_Validate(t *testing.T) {
	reg, base := newServer(t, nil)
	c, err := transport.New(base)
	require.NoError(t, err)

	doc := `
- name: Telemetry
  owner: telemetry_bridge
  connection_type: tcpout
  place: example.com
  argument: 5760
- name: Bad Port
  owner: telemetry_bridge
  connection_type: udpout
  place: 192.168.2.1
  argument: 70000
`
	s, err := c.Validate(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Accepted)
	assert.Equal(t, 1, s.Rejected)
	assert.Equal(t, "invalid_port", s.Entries[1].Reason)
	assert.Equal(t, 1, reg.Len())
}

func TestClient_Auth(t *testing.T) {
	_, base := newServer(t, func(c *server.Config) {
		c.AuthEnabled = true
		c.APIKey = "s3cret"
		c.ProtectReads = true
	})
	ctx := context.Background()

	anon, err := transport.New(base)
	require.NoError(t, err)
	_, err = anon.List(ctx, registry.Query{})
	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	for _, auth := range []transport.Authenticator{
		transport.HeaderAuth{Key: "s3cret"},
		transport.BearerAuth{Key: "s3cret"},
	} {
		c, err := transport.New(base, transport.WithAuth(auth))
		require.NoError(t, err)
		eps, err := c.List(ctx, registry.Query{})
		require.NoError(t, err)
		assert.Len(t, eps, 1)
	}
}

func TestClient_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := transport.New(url+"/api/v1", transport.WithHTTPClient(&http.Client{Timeout: time.Second}))
	require.NoError(t, err)
	err = c.Health(context.Background())
	assert.True(t, errors.IsIOError(err))
}
