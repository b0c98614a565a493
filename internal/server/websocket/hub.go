// Package websocket pushes registry events to WebSocket clients.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/mavroute/internal/server/events"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames.
	maxMessageSize = 512

	sendBuffer = 64
)

// Hub tracks connected clients and fans events out to them. It implements
// events.Subscriber.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	broadcast  chan events.Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *zerolog.Logger
}

// NewHub creates a hub. Call Run to start it.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan events.Event, 256),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
			}
			clear(h.clients)
			h.mu.Unlock()
			h.logger.Debug().Msg("WebSocket hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info().Str("client_id", c.id).Int("total_clients", n).Msg("WebSocket client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info().Str("client_id", c.id).Int("total_clients", n).Msg("WebSocket client disconnected")

		case e := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- e:
				default:
					// slow client
					delete(h.clients, c)
					close(c.send)
					h.logger.Warn().Str("client_id", c.id).Msg("WebSocket client too slow, disconnected")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds c to the hub. Once the hub has stopped, c's queue is
// closed instead so its WritePump ends.
func (h *Hub) Register(c *Client) {
	select {
	case <-h.done:
		close(c.send)
		return
	default:
	}
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// Unregister removes c and closes its send queue.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues e for every client. It drops e when the queue is full.
func (h *Hub) Broadcast(e events.Event) {
	select {
	case h.broadcast <- e:
	default:
		h.logger.Warn().Str("event_type", string(e.Type)).Msg("WebSocket broadcast queue full, event dropped")
	}
}

// Send implements events.Subscriber.
func (h *Hub) Send(e events.Event) error {
	h.Broadcast(e)
	return nil
}

// Close implements events.Subscriber. The hub's lifetime is bound to Run.
func (h *Hub) Close() error { return nil }

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve attaches conn to the hub and starts its pumps. greeting, when not
// nil, is the first message the client receives.
func (h *Hub) Serve(id string, conn *websocket.Conn, greeting *events.Event) *Client {
	c := NewClient(id, h, conn)
	if greeting != nil {
		c.send <- *greeting
	}
	h.Register(c)
	go c.WritePump()
	go c.ReadPump()
	return c
}

// Client is one WebSocket connection.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan events.Event
}

// NewClient creates a client for conn. It is not registered.
func NewClient(id string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan events.Event, sendBuffer),
	}
}

// ID returns the client identifier.
func (c *Client) ID() string { return c.id }

// ReadPump discards client frames, answering pings, until the connection
// fails, then unregisters the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Str("client_id", c.id).Msg("WebSocket read error")
			}
			return
		}
	}
}

// WritePump writes queued events as JSON text frames and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case e, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			data, err := json.Marshal(e)
			if err != nil {
				c.hub.logger.Error().Err(err).Str("event_type", string(e.Type)).Msg("Failed to encode WebSocket event")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
