package registry_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mavroute/pkg/endpoint"
	"github.com/agentstation/mavroute/pkg/errors"
	"github.com/agentstation/mavroute/pkg/logging"
	"github.com/agentstation/mavroute/pkg/metrics"
	"github.com/agentstation/mavroute/pkg/registry"
)

func mustEndpoint(t testing.TB, name, kind, place string, arg int, opts ...func(*endpoint.Params)) endpoint.Endpoint {
	t.Helper()
	p := endpoint.Params{
		Name:     name,
		Owner:    "autopilot_manager",
		Kind:     kind,
		Place:    place,
		Argument: endpoint.Int(arg),
	}
	for _, o := range opts {
		o(&p)
	}
	ep, err := endpoint.New(p)
	require.NoError(t, err)
	return ep
}

func protected(p *endpoint.Params)  { p.Protected = true }
func persistent(p *endpoint.Params) { p.Persistent = true }

func TestAdd(t *testing.T) {
	r := registry.New(registry.WithLogger(logging.NewNopLogger()))

	gcs := mustEndpoint(t, "GCS", "udpin", "0.0.0.0", 14550)
	require.NoError(t, r.Add(gcs))
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.Contains(gcs))

	t.Run("duplicate key with other metadata", func(t *testing.T) {
		dup := mustEndpoint(t, "Another label", "udpin", "0.0.0.0", 14550, persistent)
		err := r.Add(dup)
		require.Error(t, err)
		assert.True(t, errors.IsAlreadyExists(err))
		assert.Contains(t, err.Error(), "udpin:0.0.0.0:14550")

		stored, ok := r.Get(gcs.Key())
		require.True(t, ok)
		assert.Equal(t, "GCS", stored.Name())
	})

	t.Run("zero endpoint", func(t *testing.T) {
		err := r.Add(endpoint.Endpoint{})
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("different port is a different endpoint", func(t *testing.T) {
		require.NoError(t, r.Add(mustEndpoint(t, "GCS", "udpin", "0.0.0.0", 14551)))
		assert.Equal(t, 2, r.Len())
	})
}

func TestRemove(t *testing.T) {
	r := registry.New()
	plain := mustEndpoint(t, "Telemetry", "tcpout", "example.com", 5760)
	locked := mustEndpoint(t, "Autopilot", "serial", "/dev/ttyAMA0", 115200, protected)
	require.NoError(t, r.Add(plain))
	require.NoError(t, r.Add(locked))

	t.Run("not found", func(t *testing.T) {
		err := r.Remove(mustEndpoint(t, "Missing", "tcpin", "0.0.0.0", 5760))
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("protection is judged on the stored endpoint", func(t *testing.T) {
		lookalike := mustEndpoint(t, "Lookalike", "serial", "/dev/ttyAMA0", 115200)
		err := r.Remove(lookalike)
		assert.True(t, errors.IsProtected(err))
		assert.True(t, r.Contains(locked))
	})

	t.Run("plain", func(t *testing.T) {
		require.NoError(t, r.Remove(plain))
		assert.False(t, r.Contains(plain))
	})

	t.Run("force", func(t *testing.T) {
		require.NoError(t, r.ForceRemove(locked))
		assert.Zero(t, r.Len())
		assert.True(t, errors.IsNotFound(r.ForceRemove(locked)))
	})
}

func TestRemoveKey(t *testing.T) {
	r := registry.New()
	locked := mustEndpoint(t, "Autopilot", "serial", "/dev/ttyAMA0", 115200, protected)
	require.NoError(t, r.Add(locked))

	assert.True(t, errors.IsNotFound(r.RemoveKey("udpin:0.0.0.0:14550", false)))
	assert.True(t, errors.IsProtected(r.RemoveKey(locked.Key(), false)))
	require.NoError(t, r.RemoveKey(locked.Key(), true))
	assert.Zero(t, r.Len())
}

func TestList(t *testing.T) {
	r := registry.New(registry.WithCapacity(4))
	eps := []endpoint.Endpoint{
		mustEndpoint(t, "Serial", "serial", "/dev/ttyUSB0", 57600, persistent),
		mustEndpoint(t, "GCS", "udpin", "0.0.0.0", 14550),
		mustEndpoint(t, "Telemetry", "tcpout", "example.com", 5760, persistent),
		mustEndpoint(t, "Cloud", "udpout", "192.168.2.1", 14550),
	}
	for _, e := range eps {
		require.NoError(t, r.Add(e))
	}

	keys := func(list []endpoint.Endpoint) []string {
		out := make([]string, len(list))
		for i, e := range list {
			out[i] = e.Key()
		}
		return out
	}

	assert.Equal(t, []string{
		"serial:/dev/ttyUSB0:57600",
		"tcpout:example.com:5760",
		"udpin:0.0.0.0:14550",
		"udpout:192.168.2.1:14550",
	}, keys(r.List()))
	assert.Equal(t, []string{
		"serial:/dev/ttyUSB0:57600",
		"tcpout:example.com:5760",
	}, keys(r.Persistent()))
}

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := registry.New(registry.WithMetrics(m))

	a := mustEndpoint(t, "GCS", "udpin", "0.0.0.0", 14550)
	b := mustEndpoint(t, "QGC", "udpin", "0.0.0.0", 14551)
	require.NoError(t, r.Add(a))
	require.NoError(t, r.Add(b))
	require.Error(t, r.Add(a))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Active.WithLabelValues("udpin")))

	require.NoError(t, r.Remove(a))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Active.WithLabelValues("udpin")))
}

func TestAddAll(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	r := registry.New()
	a := mustEndpoint(t, "GCS", "udpin", "0.0.0.0", 14550)
	dup := mustEndpoint(t, "Other", "udpin", "0.0.0.0", 14550, persistent)
	b := mustEndpoint(t, "Telemetry", "tcpout", "example.com", 5760)

	added := r.AddAll(ctx, "endpoints.yaml", a, dup, b)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, r.Len())

	stored, ok := r.Get(a.Key())
	require.True(t, ok)
	assert.Equal(t, "GCS", stored.Name())

	tl.AssertCount(t, 1)
	tl.AssertContains(t, "endpoint skipped")
	tl.AssertContains(t, "endpoints.yaml")
}

func TestLogging(t *testing.T) {
	tl := logging.NewTestLogger(t)
	r := registry.New(registry.WithLogger(tl.Logger))

	e := mustEndpoint(t, "GCS", "tcpin", "::", 5760)
	require.NoError(t, r.Add(e))
	tl.AssertContains(t, `"endpoint":"tcpin::::5760"`)
	tl.AssertContains(t, "endpoint registered")
}

func TestConcurrentAccess(t *testing.T) {
	r := registry.New(registry.WithLogger(logging.NewNopLogger()))

	var (
		wg    sync.WaitGroup
		added atomic.Int64
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for port := 1; port <= 200; port++ {
				ep, err := endpoint.New(endpoint.Params{
					Name:     fmt.Sprintf("worker-%d", port),
					Owner:    "concurrency",
					Kind:     "udpout",
					Place:    "10.0.0.1",
					Argument: endpoint.Int(port),
				})
				if err != nil {
					t.Error(err)
					return
				}
				if r.Add(ep) == nil {
					added.Add(1)
				}
				_ = r.List()
				_ = r.Contains(ep)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(200), added.Load())
	assert.Equal(t, 200, r.Len())
}
