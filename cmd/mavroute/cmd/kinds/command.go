// Package kinds implements the kinds command.
package kinds

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/mavroute/cmd/application"
	"github.com/agentstation/mavroute/internal/cmd/output"
	"github.com/agentstation/mavroute/internal/cmd/table"
)

// NewCommand creates the kinds command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "kinds",
		GroupID: "reference",
		Short:   "List connection kinds",
		Long: `Kinds lists the accepted connection_type values with the meaning of place
and argument for each. Matching is exact: "UDPIN" or " udpin" are rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), table.KindList())
		},
	}
}
