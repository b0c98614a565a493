// Package serve implements the serve command.
package serve

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/mavroute/cmd/application"
	"github.com/agentstation/mavroute/internal/server"
	"github.com/agentstation/mavroute/pkg/constants"
	"github.com/agentstation/mavroute/pkg/logging"
)

// NewCommand creates the serve command.
func NewCommand(app application.Application) *cobra.Command {
	defaults := server.DefaultConfig()
	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve the endpoint registry over HTTP",
		Long: `Serve starts a REST API over the endpoint registry, built from the
configuration and the configured endpoint files.

Routes (under --prefix, /api/v1 by default):
  GET    /endpoints              list endpoints (?kind=, ?owner=, ?persistent=, ?match=)
  POST   /endpoints              register an endpoint
  GET    /endpoints/{key}        fetch an endpoint by canonical key
  DELETE /endpoints/{key}        remove an endpoint (?force=true for protected ones)
  POST   /validate               validate a manifest without registering it
  GET    /kinds, /baudrates      accepted connection kinds and baud rates
  GET    /updates/ws             registry changes over WebSocket
  GET    /updates/stream         registry changes as Server-Sent Events
  GET    /openapi.json, .yaml    OpenAPI description of this API

/health and /metrics are served at the root.

Every flag can also be set from the environment with the MAVROUTE_ prefix,
e.g. MAVROUTE_API_KEY or MAVROUTE_CORS_ORIGINS. HTTP_PORT and HTTP_HOST are
honored too.`,
		Example: `  mavroute serve
  mavroute serve --port 3000 --host 0.0.0.0
  MAVROUTE_API_KEY=secret mavroute serve --auth
  mavroute serve --cors-origins https://gcs.example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ConfigFromFlags(cmd)
			if err != nil {
				return err
			}
			return run(cmd, app, cfg)
		},
	}

	cmd.Flags().IntP("port", "p", defaults.Port, "server port (0 picks a free port)")
	cmd.Flags().String("host", defaults.Host, "bind address")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().Int64("max-body-size", defaults.MaxBodySize, "maximum request body size in bytes")

	cmd.Flags().Bool("cors", false, "enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", nil, "allowed CORS origins, enables CORS")

	cmd.Flags().Bool("auth", false, "require an API key for requests that change the registry")
	cmd.Flags().String("auth-header", defaults.AuthHeader, "API key header name")
	cmd.Flags().String("api-key", "", "API key (prefer MAVROUTE_API_KEY)")
	cmd.Flags().Bool("protect-reads", false, "require the API key for read requests too")

	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")
	cmd.Flags().Duration("shutdown-timeout", defaults.ShutdownTimeout, "time allowed to drain requests on shutdown")

	cmd.Flags().Bool("metrics", defaults.MetricsEnabled, "serve Prometheus metrics on /metrics")

	return cmd
}

// settings layers explicitly set flags over MAVROUTE_* environment variables
// over flag defaults.
func settings(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if err := v.BindEnv("port", constants.EnvPrefix+"_PORT", "HTTP_PORT"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("host", constants.EnvPrefix+"_HOST", "HTTP_HOST"); err != nil {
		return nil, err
	}
	return v, nil
}

// ConfigFromFlags resolves the server configuration of cmd.
func ConfigFromFlags(cmd *cobra.Command) (server.Config, error) {
	v, err := settings(cmd)
	if err != nil {
		return server.Config{}, err
	}

	origins := v.GetStringSlice("cors-origins")
	cfg := server.Config{
		Host:            v.GetString("host"),
		Port:            v.GetInt("port"),
		PathPrefix:      v.GetString("prefix"),
		MaxBodySize:     v.GetInt64("max-body-size"),
		CORSEnabled:     v.GetBool("cors") || len(origins) > 0,
		CORSOrigins:     origins,
		AuthEnabled:     v.GetBool("auth"),
		AuthHeader:      v.GetString("auth-header"),
		APIKey:          v.GetString("api-key"),
		ProtectReads:    v.GetBool("protect-reads"),
		ReadTimeout:     v.GetDuration("read-timeout"),
		WriteTimeout:    v.GetDuration("write-timeout"),
		IdleTimeout:     v.GetDuration("idle-timeout"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
		MetricsEnabled:  v.GetBool("metrics"),
	}
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, app application.Application, cfg server.Config) error {
	logger := app.Logger()
	ctx := logging.WithLogger(cmd.Context(), logger)

	reg, err := app.Registry(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Str("addr", cfg.Addr()).
		Str("prefix", cfg.PathPrefix).
		Int("endpoints", reg.Len()).
		Bool("cors", cfg.CORSEnabled).
		Bool("auth", cfg.AuthEnabled).
		Bool("metrics", cfg.MetricsEnabled).
		Dur("shutdown_timeout", cfg.ShutdownTimeout.Round(time.Second)).
		Msg("Starting API server")

	srv, err := server.New(reg, cfg,
		server.WithLogger(logger),
		server.WithMetrics(app.Metrics()),
		server.WithGatherer(app.Gatherer()),
		server.WithVersion(app.Version()),
	)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}
