// Package list implements the list command.
package list

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/mavroute/cmd/application"
	"github.com/agentstation/mavroute/internal/cmd/output"
	"github.com/agentstation/mavroute/internal/cmd/table"
	"github.com/agentstation/mavroute/internal/transport"
	"github.com/agentstation/mavroute/pkg/constants"
	"github.com/agentstation/mavroute/pkg/endpoint"
	"github.com/agentstation/mavroute/pkg/logging"
	"github.com/agentstation/mavroute/pkg/manifest"
	"github.com/agentstation/mavroute/pkg/registry"
)

// Flags holds the list command flags.
type Flags struct {
	Files      []string
	Persistent bool
	Kinds      []string
	Owner      string
	Match      string
	Server     string
	APIKey     string
}

// NewCommand creates the list command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		GroupID: "core",
		Short:   "List registered endpoints",
		Long: `List shows every endpoint in the registry, built from the configuration
and the configured endpoint files, plus any manifests given with --file.

Endpoints are deduplicated by canonical key; the first source wins. Rejected
entries are logged and left out.

With --server the registry of a running "mavroute serve" is listed instead.`,
		Example: `  mavroute list
  mavroute list --file extra.yaml --persistent
  mavroute list --kind udpin --kind udpout -o wide
  mavroute list --match 'gcs*'
  mavroute list --match '^tcp(in|out):'
  mavroute list --server http://localhost:8080/api/v1 --api-key "$KEY"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.Files, "file", "f", nil, "additional endpoint manifest (repeatable, - for stdin)")
	cmd.Flags().BoolVar(&flags.Persistent, "persistent", false, "only list persistent endpoints")
	cmd.Flags().StringSliceVar(&flags.Kinds, "kind", nil, "only list endpoints of these connection kinds")
	cmd.Flags().StringVar(&flags.Owner, "owner", "", "only list endpoints created by this owner")
	cmd.Flags().StringVarP(&flags.Match, "match", "m", "", "only list endpoints whose name, place or key matches this glob or regex")
	cmd.Flags().StringVar(&flags.Server, "server", "", "list from a running server, e.g. http://localhost:8080/api/v1")
	cmd.Flags().StringVar(&flags.APIKey, "api-key", "", "API key sent to --server")
	cmd.MarkFlagsMutuallyExclusive("server", "file")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, flags *Flags) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
	defer cancel()
	ctx = logging.WithLogger(ctx, app.Logger())

	kinds := make([]endpoint.Kind, 0, len(flags.Kinds))
	for _, k := range flags.Kinds {
		kind, err := endpoint.ParseKind(k)
		if err != nil {
			return err
		}
		kinds = append(kinds, kind)
	}

	q := registry.Query{Kinds: kinds, Owner: flags.Owner, Match: flags.Match}
	if flags.Persistent {
		q.Persistent = &flags.Persistent
	}

	var eps []endpoint.Endpoint
	var err error
	if flags.Server != "" {
		eps, err = remote(ctx, app, flags, q)
	} else {
		eps, err = local(ctx, cmd, app, flags, q)
	}
	if err != nil {
		return err
	}

	app.Logger().Debug().Int("count", len(eps)).Msg("Listing endpoints")
	return output.Write(cmd.OutOrStdout(), app.OutputFormat(), table.Endpoints(eps))
}

func local(ctx context.Context, cmd *cobra.Command, app application.Application, flags *Flags, q registry.Query) ([]endpoint.Endpoint, error) {
	reg, err := app.Registry(ctx)
	if err != nil {
		return nil, err
	}
	if len(flags.Files) > 0 {
		reg, err = extend(ctx, cmd, app, reg, flags.Files)
		if err != nil {
			return nil, err
		}
	}
	return reg.Select(q)
}

func remote(ctx context.Context, app application.Application, flags *Flags, q registry.Query) ([]endpoint.Endpoint, error) {
	c, err := transport.New(flags.Server,
		transport.WithAuth(transport.HeaderAuth{Key: flags.APIKey}),
		transport.WithLogger(app.Logger()),
	)
	if err != nil {
		return nil, err
	}
	return c.List(ctx, q)
}

// extend returns a copy of base holding the endpoints of files as well.
// The shared registry is not modified.
func extend(ctx context.Context, cmd *cobra.Command, app application.Application, base *registry.Registry, files []string) (*registry.Registry, error) {
	reg := registry.New(registry.WithCapacity(base.Len()), registry.WithLogger(app.Logger()))
	for _, e := range base.List() {
		if err := reg.Add(e); err != nil {
			return nil, err
		}
	}

	for _, path := range files {
		res, err := manifest.LoadFile(ctx, path,
			manifest.WithMetrics(app.Metrics()),
			manifest.WithStdin(cmd.InOrStdin()))
		if err != nil {
			return nil, err
		}
		reg.AddAll(ctx, res.Source, res.Endpoints()...)
	}
	return reg, nil
}
