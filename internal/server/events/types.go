// Package events fans registry changes out to the realtime transports.
//
// The server turns registry hooks into Events and publishes them on a Broker;
// the WebSocket hub and the SSE broadcaster subscribe to it.
package events

import (
	"time"

	"github.com/agentstation/mavroute/pkg/endpoint"
)

// Type names an event.
type Type string

// Event types.
const (
	EndpointAdded   Type = "endpoint.added"
	EndpointRemoved Type = "endpoint.removed"
	ClientConnected Type = "client.connected"
)

// Event is a timestamped notification.
type Event struct {
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// EndpointChange is the payload of endpoint events.
type EndpointChange struct {
	Key      string            `json:"key"`
	Endpoint endpoint.Endpoint `json:"endpoint"`
	Forced   bool              `json:"forced,omitempty"`
}
