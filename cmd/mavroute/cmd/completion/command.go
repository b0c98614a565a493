// Package completion implements the completion command.
package completion

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/mavroute/internal/cmd/alerts"
	"github.com/agentstation/mavroute/internal/cmd/completion"
)

// NewCommand creates the completion command. It replaces cobra's default so
// scripts can also be installed and removed.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Manage shell completions",
		Long: `Generate shell completion scripts to stdout, or install and remove them
in the standard location for your shell.`,
		Example: `  source <(mavroute completion bash)
  mavroute completion zsh > "${fpath[1]}/_mavroute"
  mavroute completion install fish
  mavroute completion uninstall`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	for _, shell := range completion.Shells() {
		cmd.AddCommand(&cobra.Command{
			Use:                   shell,
			Short:                 fmt.Sprintf("Generate the %s completion script", shell),
			Args:                  cobra.NoArgs,
			DisableFlagsInUseLine: true,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return completion.Generate(cmd.Root(), cmd.OutOrStdout(), shell)
			},
		})
	}
	cmd.AddCommand(newInstallCommand(), newUninstallCommand())
	return cmd
}

func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "install [SHELL...]",
		Short:     "Install completion scripts (default: bash, zsh and fish)",
		ValidArgs: completion.InstallableShells(),
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := alerts.NewWriter(cmd.OutOrStdout())
			for _, shell := range shellsOrAll(args) {
				path, err := completion.Install(cmd.Root(), shell)
				if err != nil {
					return err
				}
				if err := w.WriteAlert(alerts.NewSuccess("%s completions installed to %s", shell, path)); err != nil {
					return err
				}
			}
			return w.WriteAlert(alerts.NewInfo("start a new shell session to enable completions"))
		},
	}
}

func newUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "uninstall [SHELL...]",
		Short:     "Remove installed completion scripts",
		ValidArgs: completion.InstallableShells(),
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := alerts.NewWriter(cmd.OutOrStdout())
			for _, shell := range shellsOrAll(args) {
				path, removed, err := completion.Uninstall(shell)
				if err != nil {
					return err
				}
				a := alerts.NewInfo("no %s completions found at %s", shell, path)
				if removed {
					a = alerts.NewSuccess("removed %s completions from %s", shell, path)
				}
				if err := w.WriteAlert(a); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func shellsOrAll(args []string) []string {
	if len(args) == 0 {
		return completion.InstallableShells()
	}
	return args
}
