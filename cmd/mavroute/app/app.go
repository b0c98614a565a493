// Package app wires configuration, logging, metrics and the endpoint registry
// together for the mavroute CLI.
package app

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/agentstation/mavroute/cmd/application"
	"github.com/agentstation/mavroute/internal/config"
	"github.com/agentstation/mavroute/pkg/errors"
	"github.com/agentstation/mavroute/pkg/logging"
	"github.com/agentstation/mavroute/pkg/manifest"
	"github.com/agentstation/mavroute/pkg/metrics"
	"github.com/agentstation/mavroute/pkg/registry"
)

// App is the mavroute application and its dependencies.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	viper  *viper.Viper
	config *Config
	logger *zerolog.Logger

	promRegistry *prometheus.Registry
	metrics      *metrics.Metrics

	// registry is built lazily from the configured sources.
	mu       sync.RWMutex
	registry *registry.Registry
}

// New creates an App with configuration loaded from the environment, .env
// files and the config file.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		viper:   viper.New(),
	}

	cfg, err := LoadConfig(app.viper)
	if err != nil {
		return nil, err
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	app.promRegistry = prometheus.NewRegistry()
	app.promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.promRegistry)

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the --format value.
func (a *App) OutputFormat() string { return a.config.Format }

// Metrics returns the endpoint metrics.
func (a *App) Metrics() *metrics.Metrics { return a.metrics }

// Gatherer returns the prometheus registry the metrics live on.
func (a *App) Gatherer() prometheus.Gatherer { return a.promRegistry }

// EndpointFiles returns the manifest files named by the configuration.
func (a *App) EndpointFiles() []string {
	return a.config.EndpointFiles
}

// ConfiguredEndpoints returns the endpoints listed inline in the config file.
func (a *App) ConfiguredEndpoints() (*manifest.Result, error) {
	return config.Endpoints(a.viper)
}

// Registry returns the registry of configured endpoints, building it on the
// first call. Rejected entries are logged and skipped; only unreadable files
// and malformed documents fail the build.
func (a *App) Registry(ctx context.Context) (*registry.Registry, error) {
	a.mu.RLock()
	if a.registry != nil {
		reg := a.registry
		a.mu.RUnlock()
		return reg, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.registry != nil {
		return a.registry, nil
	}

	ctx = logging.WithLogger(ctx, a.logger)
	reg := registry.New(registry.WithMetrics(a.metrics), registry.WithLogger(a.logger))

	results, err := a.sources(ctx)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		reg.AddAll(ctx, res.Source, res.Endpoints()...)
	}

	a.registry = reg
	return reg, nil
}

// sources reads the inline endpoints and every endpoint file.
func (a *App) sources(ctx context.Context) ([]*manifest.Result, error) {
	inline, err := a.ConfiguredEndpoints()
	if err != nil {
		return nil, err
	}
	for _, rej := range inline.Rejections() {
		a.metrics.ObserveRejection(rej.Err)
		a.logger.Warn().
			Str(logging.FieldSource, inline.Source).
			Str("reason", errors.Reason(rej.Err)).
			Err(rej).
			Msg("Configured endpoint rejected")
	}

	results := []*manifest.Result{inline}
	for _, path := range a.EndpointFiles() {
		res, err := manifest.LoadFile(ctx, path, manifest.WithMetrics(a.metrics))
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Shutdown releases application resources.
func (a *App) Shutdown(context.Context) error {
	a.logger.Debug().Msg("Application shutdown")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithRegistry sets a prebuilt endpoint registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(a *App) error {
		if reg == nil {
			return errors.NewValidationError("registry", nil, "must not be nil")
		}
		a.registry = reg
		return nil
	}
}

var _ application.Application = (*App)(nil)
