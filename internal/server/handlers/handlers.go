// Package handlers provides the HTTP handlers of the mavroute API.
package handlers

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/mavroute/internal/server/sse"
	ws "github.com/agentstation/mavroute/internal/server/websocket"
	"github.com/agentstation/mavroute/pkg/constants"
	"github.com/agentstation/mavroute/pkg/metrics"
	"github.com/agentstation/mavroute/pkg/registry"
)

// Handlers holds the dependencies shared by every handler.
type Handlers struct {
	registry       *registry.Registry
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	metrics        *metrics.Metrics
	logger         *zerolog.Logger

	maxBodySize int64
	version     string
	startTime   time.Time
	pathPrefix  string
}

// Deps lists what New needs. Metrics may be nil.
type Deps struct {
	Registry       *registry.Registry
	WSHub          *ws.Hub
	SSEBroadcaster *sse.Broadcaster
	Upgrader       websocket.Upgrader
	Metrics        *metrics.Metrics
	Logger         *zerolog.Logger

	// MaxBodySize bounds request bodies. Zero means constants.MaxManifestSize.
	MaxBodySize int64
	Version     string
	StartTime   time.Time
	// PathPrefix is written into the served OpenAPI document.
	PathPrefix string
}

// New creates a Handlers instance.
func New(d Deps) *Handlers {
	if d.MaxBodySize <= 0 {
		d.MaxBodySize = constants.MaxManifestSize
	}
	if d.StartTime.IsZero() {
		d.StartTime = time.Now()
	}
	return &Handlers{
		registry:       d.Registry,
		wsHub:          d.WSHub,
		sseBroadcaster: d.SSEBroadcaster,
		upgrader:       d.Upgrader,
		metrics:        d.Metrics,
		logger:         d.Logger,
		maxBodySize:    d.MaxBodySize,
		version:        d.Version,
		startTime:      d.StartTime,
		pathPrefix:     d.PathPrefix,
	}
}
