// Package application defines what mavroute commands need from the running
// application.
//
// Commands accept the Application interface rather than the concrete App so
// that they can be exercised with a mock:
//
//	mock := &application.Mock{
//	    EndpointFilesFunc: func() []string { return []string{"testdata/endpoints.yaml"} },
//	}
//	cmd := list.NewCommand(mock)
package application

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/mavroute/pkg/manifest"
	"github.com/agentstation/mavroute/pkg/metrics"
	"github.com/agentstation/mavroute/pkg/registry"
)

// Application provides the application interface that commands need.
// All methods must be safe for concurrent use.
type Application interface {
	// Registry returns the registry holding every endpoint from the
	// configuration file and the configured endpoint files. It is built on
	// first use and shared afterwards.
	Registry(ctx context.Context) (*registry.Registry, error)

	// ConfiguredEndpoints returns the endpoints listed inline in the
	// configuration file, with per entry outcomes.
	ConfiguredEndpoints() (*manifest.Result, error)

	// EndpointFiles returns the manifest paths named by the configuration.
	EndpointFiles() []string

	// Metrics returns the endpoint metrics, registered on Gatherer.
	Metrics() *metrics.Metrics

	// Gatherer exposes the application's metric registry.
	Gatherer() prometheus.Gatherer

	// Logger returns the configured logger.
	Logger() *zerolog.Logger

	// OutputFormat returns the --format value; empty means auto detect.
	OutputFormat() string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
