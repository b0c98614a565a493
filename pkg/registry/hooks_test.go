package registry_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mavroute/pkg/endpoint"
	"github.com/agentstation/mavroute/pkg/registry"
)

func TestHooks(t *testing.T) {
	r := registry.New()

	var added []string
	type removal struct {
		key    string
		forced bool
	}
	var removed []removal

	r.OnAdded(func(e endpoint.Endpoint) { added = append(added, e.Key()) })
	r.OnRemoved(func(e endpoint.Endpoint, forced bool) { removed = append(removed, removal{e.Key(), forced}) })

	plain := mustEndpoint(t, "Telemetry", "tcpout", "example.com", 5760)
	locked := mustEndpoint(t, "Autopilot", "serial", "/dev/ttyAMA0", 115200, protected)
	require.NoError(t, r.Add(plain))
	require.NoError(t, r.Add(locked))
	require.Error(t, r.Add(plain))

	assert.Equal(t, []string{plain.Key(), locked.Key()}, added)

	require.Error(t, r.Remove(locked))
	require.NoError(t, r.ForceRemove(plain))
	require.NoError(t, r.ForceRemove(locked))

	assert.Equal(t, []removal{{plain.Key(), false}, {locked.Key(), true}}, removed)
}

func TestHooks_MayCallRegistry(t *testing.T) {
	r := registry.New()
	var seen int
	r.OnAdded(func(endpoint.Endpoint) { seen = r.Len() })

	require.NoError(t, r.Add(mustEndpoint(t, "GCS", "udpin", "0.0.0.0", 14550)))
	assert.Equal(t, 1, seen)
}

func TestHooks_RunInCommitOrder(t *testing.T) {
	r := registry.New()
	e := mustEndpoint(t, "GCS", "udpin", "0.0.0.0", 14550)

	var events []string
	r.OnAdded(func(endpoint.Endpoint) { events = append(events, "added") })
	r.OnRemoved(func(endpoint.Endpoint, bool) { events = append(events, "removed") })

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 200 {
				_ = r.Add(e)
			}
		}()
		go func() {
			defer wg.Done()
			for range 200 {
				_ = r.Remove(e)
			}
		}()
	}
	wg.Wait()

	require.NotEmpty(t, events)
	for i, ev := range events {
		want := "added"
		if i%2 == 1 {
			want = "removed"
		}
		require.Equal(t, want, ev, "event %d", i)
	}
}

func TestHooks_PanicDoesNotStall(t *testing.T) {
	r := registry.New()
	r.OnAdded(func(e endpoint.Endpoint) {
		if e.Name() == "Broken" {
			panic("hook failed")
		}
	})

	assert.Panics(t, func() { _ = r.Add(mustEndpoint(t, "Broken", "udpin", "0.0.0.0", 14550)) })
	require.NoError(t, r.Add(mustEndpoint(t, "Telemetry", "tcpout", "example.com", 5760)))
	assert.Equal(t, 2, r.Len())
}
