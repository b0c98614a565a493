// Package key implements the key command.
package key

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/mavroute/cmd/application"
	"github.com/agentstation/mavroute/internal/cmd/output"
	"github.com/agentstation/mavroute/pkg/endpoint"
	"github.com/agentstation/mavroute/pkg/errors"
)

// Flags holds the endpoint fields given on the command line.
type Flags struct {
	Name       string
	Owner      string
	Kind       string
	Place      string
	Argument   string
	Persistent bool
	Protected  bool
}

// Config returns the loosely typed endpoint the flags describe. An unset
// argument stays absent.
func (f *Flags) Config() endpoint.Config {
	c := endpoint.Config{
		Name:           f.Name,
		Owner:          f.Owner,
		ConnectionType: f.Kind,
		Place:          f.Place,
		Persistent:     f.Persistent,
		Protected:      f.Protected,
	}
	if f.Argument != "" {
		c.Argument = f.Argument
	}
	return c
}

// Result describes a valid endpoint with its identity.
type Result struct {
	Key      string            `json:"key" yaml:"key"`
	Hash     string            `json:"hash" yaml:"hash"`
	Endpoint endpoint.Endpoint `json:"endpoint" yaml:"endpoint"`
}

// NewResult describes ep.
func NewResult(ep endpoint.Endpoint) Result {
	return Result{
		Key:      ep.Key(),
		Hash:     fmt.Sprintf("%016x", ep.Hash()),
		Endpoint: ep,
	}
}

// Properties flattens r for key/value table output.
func (r Result) Properties() map[string]string {
	ep := r.Endpoint
	return map[string]string{
		"key":             r.Key,
		"hash":            r.Hash,
		"name":            ep.Name(),
		"owner":           ep.Owner(),
		"connection_type": ep.Kind().String(),
		"place":           ep.Place(),
		"argument":        strconv.Itoa(ep.Argument()),
		"persistent":      strconv.FormatBool(ep.Persistent()),
		"protected":       strconv.FormatBool(ep.Protected()),
	}
}

// NewCommand creates the key command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}
	cmd := &cobra.Command{
		Use:     "key",
		GroupID: "core",
		Short:   "Validate one endpoint and print its canonical key",
		Long: `Key builds a single endpoint from flags, runs the full validation and
prints its canonical key "kind:place:argument" and 64-bit hash.

Two endpoints with the same key are the same endpoint regardless of name,
owner or persistence flags.`,
		Example: `  mavroute key --name GCS --owner me --kind udpin --place 0.0.0.0 --argument 14550
  mavroute key --name Pixhawk --owner ops_team --kind serial --place /dev/ttyACM0 --argument 115200 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ep, err := endpoint.FromConfig(flags.Config())
			if err != nil {
				app.Metrics().ObserveRejection(err)
				app.Logger().Debug().Str("reason", errors.Reason(err)).Err(err).Msg("Endpoint rejected")
				return err
			}

			res := NewResult(ep)
			format := output.DetectFormat(app.OutputFormat())
			if format.IsTable() {
				return output.Write(cmd.OutOrStdout(), string(format), res.Properties())
			}
			return output.Write(cmd.OutOrStdout(), string(format), res)
		},
	}

	cmd.Flags().StringVar(&flags.Name, "name", "", "human readable label (3-50 characters)")
	cmd.Flags().StringVar(&flags.Owner, "owner", "", "service creating the endpoint (3-50 characters)")
	cmd.Flags().StringVar(&flags.Kind, "kind", "", "connection kind: udpin, udpout, tcpin, tcpout, serial")
	cmd.Flags().StringVar(&flags.Place, "place", "", "IP address, hostname or device path")
	cmd.Flags().StringVar(&flags.Argument, "argument", "", "port or baud rate")
	cmd.Flags().BoolVar(&flags.Persistent, "persistent", false, "mark the endpoint persistent")
	cmd.Flags().BoolVar(&flags.Protected, "protected", false, "mark the endpoint protected")

	return cmd
}
