// Package sse streams registry events to clients as Server-Sent Events.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/mavroute/internal/server/events"
)

const clientBuffer = 64

// Broadcaster fans events out to streaming HTTP clients. It implements
// events.Subscriber.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[chan frame]struct{}

	join   chan chan frame
	leave  chan chan frame
	events chan frame
	seq    atomic.Uint64
	done   chan struct{}
	logger *zerolog.Logger
}

// frame is one SSE message.
type frame struct {
	id    uint64
	event events.Event
}

// NewBroadcaster creates a broadcaster. Call Run to start it.
func NewBroadcaster(logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan frame]struct{}),
		join:    make(chan chan frame, 16),
		leave:   make(chan chan frame, 16),
		events:  make(chan frame, 256),
		done:    make(chan struct{}),
		logger:  logger,
	}
}

// Run processes clients and events until ctx is done, then ends every stream.
func (b *Broadcaster) Run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for c := range b.clients {
				close(c)
			}
			clear(b.clients)
			b.mu.Unlock()
			b.logger.Debug().Msg("SSE broadcaster stopped")
			return

		case c := <-b.join:
			b.mu.Lock()
			b.clients[c] = struct{}{}
			n := len(b.clients)
			b.mu.Unlock()
			b.logger.Info().Int("total_clients", n).Msg("SSE client connected")

		case c := <-b.leave:
			b.mu.Lock()
			if _, ok := b.clients[c]; ok {
				delete(b.clients, c)
				close(c)
			}
			n := len(b.clients)
			b.mu.Unlock()
			b.logger.Info().Int("total_clients", n).Msg("SSE client disconnected")

		case f := <-b.events:
			b.mu.RLock()
			for c := range b.clients {
				select {
				case c <- f:
				default:
					b.logger.Warn().Uint64("id", f.id).Msg("SSE client buffer full, event skipped")
				}
			}
			b.mu.RUnlock()
		}
	}
}

// Broadcast queues e for every client, numbering it. It drops e when the
// queue is full.
func (b *Broadcaster) Broadcast(e events.Event) {
	f := frame{id: b.seq.Add(1), event: e}
	select {
	case b.events <- f:
	default:
		b.logger.Warn().Str("event_type", string(e.Type)).Msg("SSE broadcast queue full, event dropped")
	}
}

// Send implements events.Subscriber.
func (b *Broadcaster) Send(e events.Event) error {
	b.Broadcast(e)
	return nil
}

// Close implements events.Subscriber. The broadcaster's lifetime is bound to Run.
func (b *Broadcaster) Close() error { return nil }

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// ServeHTTP streams events to the client until it disconnects or the
// broadcaster stops. The first event is a client.connected greeting.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	c := make(chan frame, clientBuffer)
	select {
	case b.join <- c:
	case <-b.done:
		return
	}
	defer func() {
		select {
		case b.leave <- c:
		case <-b.done:
		}
	}()

	hello := events.Event{
		Type:      events.ClientConnected,
		Timestamp: time.Now().UTC(),
		Data:      map[string]string{"transport": "sse"},
	}
	if err := writeFrame(w, frame{event: hello}); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case f, ok := <-c:
			if !ok {
				return
			}
			if err := writeFrame(w, f); err != nil {
				b.logger.Debug().Err(err).Msg("SSE write failed")
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// writeFrame writes f in text/event-stream framing. The data line is the
// JSON encoded event.
func writeFrame(w io.Writer, f frame) error {
	data, err := json.Marshal(f.event)
	if err != nil {
		return err
	}
	if f.id > 0 {
		if _, err := io.WriteString(w, "id: "+strconv.FormatUint(f.id, 10)+"\n"); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.event.Type, data)
	return err
}
