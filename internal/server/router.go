package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/mavroute/internal/server/handlers"
	"github.com/agentstation/mavroute/internal/server/middleware"
	"github.com/agentstation/mavroute/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	h := handlers.New(handlers.Deps{
		Registry:       s.registry,
		WSHub:          s.wsHub,
		SSEBroadcaster: s.sseBroadcaster,
		Upgrader:       s.upgrader,
		Metrics:        s.metrics,
		Logger:         s.logger,
		MaxBodySize:    s.config.MaxBodySize,
		Version:        s.version,
		StartTime:      s.startTime,
		PathPrefix:     s.config.PathPrefix,
	})

	mux := http.NewServeMux()
	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Public health endpoints
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/ready", h.HandleReady)

	// Endpoint registry
	mux.HandleFunc("GET "+prefix+"/endpoints", h.HandleListEndpoints)
	mux.HandleFunc("POST "+prefix+"/endpoints", h.HandleCreateEndpoint)
	mux.HandleFunc("GET "+prefix+"/endpoints/{key...}", h.HandleGetEndpoint)
	mux.HandleFunc("DELETE "+prefix+"/endpoints/{key...}", h.HandleDeleteEndpoint)

	// Validation and reference data
	mux.HandleFunc("POST "+prefix+"/validate", h.HandleValidate)
	mux.HandleFunc("GET "+prefix+"/kinds", h.HandleKinds)
	mux.HandleFunc("GET "+prefix+"/baudrates", h.HandleBaudRates)

	mux.HandleFunc("GET "+prefix+"/openapi.json", h.HandleOpenAPIJSON)
	mux.HandleFunc("GET "+prefix+"/openapi.yaml", h.HandleOpenAPIYAML)

	// Real-time endpoints
	mux.HandleFunc("GET "+prefix+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc("GET "+prefix+"/updates/stream", h.HandleSSE)

	if s.config.MetricsEnabled && s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// Anything else under the prefix gets a JSON 404.
	mux.HandleFunc(prefix+"/", func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Not found", "No route for "+r.Method+" "+r.URL.Path)
	})
}

// applyMiddleware wraps handler with the middleware chain. Metrics wraps the
// mux directly so it sees the matched route.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	handler = middleware.Metrics(s.metrics)(handler)

	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig()
		authConfig.Enabled = true
		authConfig.APIKey = cfg.APIKey
		authConfig.ProtectReads = cfg.ProtectReads
		if cfg.AuthHeader != "" {
			authConfig.HeaderName = cfg.AuthHeader
		}
		authConfig.PublicPaths = []string{
			"/health", "/metrics",
			cfg.PathPrefix + "/health", cfg.PathPrefix + "/ready",
			cfg.PathPrefix + "/openapi.json", cfg.PathPrefix + "/openapi.yaml",
		}
		handler = middleware.Auth(authConfig, s.logger)(handler)
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		if cfg.AuthHeader != "" && cfg.AuthHeader != "X-API-Key" {
			corsConfig.AllowedHeaders = append(corsConfig.AllowedHeaders, cfg.AuthHeader)
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	// Logging and recovery are always on.
	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	)(handler)
}
