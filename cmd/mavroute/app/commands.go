package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/mavroute/cmd/mavroute/cmd/baudrates"
	"github.com/agentstation/mavroute/cmd/mavroute/cmd/completion"
	"github.com/agentstation/mavroute/cmd/mavroute/cmd/key"
	"github.com/agentstation/mavroute/cmd/mavroute/cmd/kinds"
	"github.com/agentstation/mavroute/cmd/mavroute/cmd/list"
	"github.com/agentstation/mavroute/cmd/mavroute/cmd/serve"
	"github.com/agentstation/mavroute/cmd/mavroute/cmd/validate"
	"github.com/agentstation/mavroute/cmd/mavroute/cmd/version"
	completionutil "github.com/agentstation/mavroute/internal/cmd/completion"
	"github.com/agentstation/mavroute/internal/cmd/output"
	"github.com/agentstation/mavroute/pkg/endpoint"
)

// registerCommands wires every subcommand to the app.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(validate.NewCommand(a))
	listCmd := list.NewCommand(a)
	completionutil.RegisterFlag(listCmd, "kind", endpoint.KindTokens()...)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(key.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Reference commands
	rootCmd.AddCommand(kinds.NewCommand(a))
	rootCmd.AddCommand(baudrates.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
	rootCmd.AddCommand(completion.NewCommand())
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	formats := make([]string, 0, len(output.Formats()))
	for _, f := range output.Formats() {
		formats = append(formats, string(f))
	}
	completionutil.RegisterFlag(rootCmd, "format", formats...)
	completionutil.RegisterFlag(rootCmd, "log-level", logLevels...)
}
