// Package server provides the HTTP API of mavroute: the endpoint registry
// over REST plus WebSocket and SSE streams of registry changes.
package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/mavroute/internal/server/events"
	"github.com/agentstation/mavroute/internal/server/sse"
	ws "github.com/agentstation/mavroute/internal/server/websocket"
	"github.com/agentstation/mavroute/pkg/endpoint"
	"github.com/agentstation/mavroute/pkg/errors"
	"github.com/agentstation/mavroute/pkg/logging"
	"github.com/agentstation/mavroute/pkg/metrics"
	"github.com/agentstation/mavroute/pkg/registry"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	registry       *registry.Registry
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	config         Config
	version        string

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	startTime time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics records request and rejection metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithGatherer serves g on /metrics when metrics are enabled.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a server over reg. Registry changes are published to the
// realtime transports once Start is called.
func New(reg *registry.Registry, cfg Config, opts ...Option) (*Server, error) {
	if reg == nil {
		return nil, errors.NewConfigError("server", "a registry is required", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		registry: reg,
		logger:   logging.Default(),
		config:   cfg,
		version:  "dev",
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.broker = events.NewBroker(s.logger)
	s.wsHub = ws.NewHub(s.logger)
	s.sseBroadcaster = sse.NewBroadcaster(s.logger)

	// Registration is buffered, so subscribing before Run does not block.
	s.broker.Subscribe("websocket", s.wsHub)
	s.broker.Subscribe("sse", s.sseBroadcaster)

	s.connectHooks()
	s.logger.Debug().Str("addr", cfg.Addr()).Msg("Server instance created")
	return s, nil
}

// connectHooks publishes registry changes to the broker.
func (s *Server) connectHooks() {
	s.registry.OnAdded(func(e endpoint.Endpoint) {
		s.broker.Publish(events.EndpointAdded, events.EndpointChange{Key: e.Key(), Endpoint: e})
		s.logger.Debug().Str(logging.FieldEndpoint, e.Key()).Msg("Endpoint added event published")
	})
	s.registry.OnRemoved(func(e endpoint.Endpoint, forced bool) {
		s.broker.Publish(events.EndpointRemoved, events.EndpointChange{Key: e.Key(), Endpoint: e, Forced: forced})
		s.logger.Debug().Str(logging.FieldEndpoint, e.Key()).Bool("forced", forced).Msg("Endpoint removed event published")
	})
}

// Start starts the broker, WebSocket hub and SSE broadcaster. Calling it
// more than once has no effect.
func (s *Server) Start() {
	s.startOnce.Do(func() {
		for _, run := range []func(context.Context){s.broker.Run, s.wsHub.Run, s.sseBroadcaster.Run} {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				run(s.ctx)
			}()
		}
		s.logger.Debug().Msg("Background services started")
	})
}

// Handler returns the http.Handler with routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Serve runs the API on ln until ctx is done, then drains requests for up
// to ShutdownTimeout and stops the background services.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.Start()

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Str("prefix", s.config.PathPrefix).Msg("API server listening")
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		stopCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		_ = s.Shutdown(stopCtx)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
	defer cancel()

	// Streams only end when the background services stop.
	s.cancel()
	err := srv.Shutdown(shutdownCtx)
	if shutdownErr := s.Shutdown(shutdownCtx); err == nil {
		err = shutdownErr
	}
	if err != nil {
		return errors.Join(errors.New("server forced to shut down"), err)
	}
	s.logger.Info().Msg("API server stopped gracefully")
	return nil
}

// ListenAndServe listens on the configured address and calls Serve. ctx only
// ends serving; it does not abort the listen.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(context.WithoutCancel(ctx), "tcp", s.config.Addr())
	if err != nil {
		return errors.WrapIO("listen", s.config.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Shutdown stops the background services and waits for them until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Debug().Msg("Background services shut down")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.config.ShutdownTimeout > 0 {
		return s.config.ShutdownTimeout
	}
	return 30 * time.Second
}

// Broker returns the event broker.
func (s *Server) Broker() *events.Broker { return s.broker }

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *ws.Hub { return s.wsHub }

// SSEBroadcaster returns the SSE broadcaster.
func (s *Server) SSEBroadcaster() *sse.Broadcaster { return s.sseBroadcaster }

// StartTime returns the server creation time.
func (s *Server) StartTime() time.Time { return s.startTime }
