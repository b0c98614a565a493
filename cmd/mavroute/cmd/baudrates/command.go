// Package baudrates implements the baudrates command.
package baudrates

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/mavroute/cmd/application"
	"github.com/agentstation/mavroute/internal/cmd/output"
	"github.com/agentstation/mavroute/internal/cmd/table"
	"github.com/agentstation/mavroute/pkg/endpoint"
)

// NewCommand creates the baudrates command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "baudrates",
		Aliases: []string{"bauds"},
		GroupID: "reference",
		Short:   "List accepted serial baud rates",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), table.BaudRates(endpoint.BaudRates()))
		},
	}
}
