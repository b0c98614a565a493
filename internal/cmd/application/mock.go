// Package application provides a mock of the command application interface.
package application

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/mavroute/cmd/application"
	"github.com/agentstation/mavroute/pkg/manifest"
	"github.com/agentstation/mavroute/pkg/metrics"
	"github.com/agentstation/mavroute/pkg/registry"
)

// Mock implements application.Application for tests. Each method calls the
// matching function field when set and otherwise returns a usable default:
// an empty registry, no configured endpoints, a private metrics registry and
// a no-op logger.
type Mock struct {
	RegistryFunc            func(ctx context.Context) (*registry.Registry, error)
	ConfiguredEndpointsFunc func() (*manifest.Result, error)
	EndpointFilesFunc       func() []string
	LoggerFunc              func() *zerolog.Logger
	OutputFormatFunc        func() string
	VersionFunc             func() string
	CommitFunc              func() string
	DateFunc                func() string
	BuiltByFunc             func() string

	once     sync.Once
	reg      *prometheus.Registry
	metrics  *metrics.Metrics
	registry *registry.Registry
}

func (m *Mock) init() {
	m.once.Do(func() {
		m.reg = prometheus.NewRegistry()
		m.metrics = metrics.New(m.reg)
		m.registry = registry.New(registry.WithMetrics(m.metrics), registry.WithLogger(m.Logger()))
	})
}

// Registry returns the registry from RegistryFunc or a shared empty one.
func (m *Mock) Registry(ctx context.Context) (*registry.Registry, error) {
	if m.RegistryFunc != nil {
		return m.RegistryFunc(ctx)
	}
	m.init()
	return m.registry, nil
}

// ConfiguredEndpoints returns the result from ConfiguredEndpointsFunc or an
// empty one.
func (m *Mock) ConfiguredEndpoints() (*manifest.Result, error) {
	if m.ConfiguredEndpointsFunc != nil {
		return m.ConfiguredEndpointsFunc()
	}
	return &manifest.Result{Source: "config"}, nil
}

// EndpointFiles returns the paths from EndpointFilesFunc or none.
func (m *Mock) EndpointFiles() []string {
	if m.EndpointFilesFunc != nil {
		return m.EndpointFilesFunc()
	}
	return nil
}

// Metrics returns metrics registered on the mock's private registry.
func (m *Mock) Metrics() *metrics.Metrics {
	m.init()
	return m.metrics
}

// Gatherer returns the mock's private prometheus registry.
func (m *Mock) Gatherer() prometheus.Gatherer {
	m.init()
	return m.reg
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

var _ application.Application = (*Mock)(nil)
