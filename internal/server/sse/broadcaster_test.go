package sse

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mavroute/internal/server/events"
)

func newBroadcaster(t *testing.T) (*Broadcaster, context.CancelFunc) {
	t.Helper()
	logger := zerolog.Nop()
	b := NewBroadcaster(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)
	return b, cancel
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	err := writeFrame(&buf, frame{id: 7, event: events.Event{Type: events.EndpointRemoved, Data: map[string]string{"key": "tcpin::::5760"}}})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "id: 7\nevent: endpoint.removed\ndata: {"))
	assert.Contains(t, out, `"key":"tcpin::::5760"`)
	assert.True(t, strings.HasSuffix(out, "\n\n"))
}

func TestBroadcaster_Stream(t *testing.T) {
	b, _ := newBroadcaster(t)
	srv := httptest.NewServer(b)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 64)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	next := func() string {
		select {
		case l := <-lines:
			return l
		case <-time.After(2 * time.Second):
			t.Fatal("no line received")
			return ""
		}
	}

	assert.Equal(t, "event: client.connected", next())
	assert.Contains(t, next(), `"transport":"sse"`)
	assert.Equal(t, "", next())

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, b.Send(events.Event{Type: events.EndpointAdded}))

	assert.Equal(t, "id: 1", next())
	assert.Equal(t, "event: endpoint.added", next())
}

func TestBroadcaster_ShutdownEndsStreams(t *testing.T) {
	b, cancel := newBroadcaster(t)
	srv := httptest.NewServer(b)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return b.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, b.Close())
}
