package app

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Execute runs the CLI with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "mavroute",
		Short:   "MAVLink endpoint validation and registry",
		Version: a.version,
		Long: `mavroute validates MAVLink routing endpoints and keeps a registry of them.

An endpoint is a UDP or TCP socket (udpin, udpout, tcpin, tcpout) bound to an
address and port, or a serial device (serial) at a given baud rate. Endpoints
are identified by their canonical key "kind:place:argument".

Endpoints come from the endpoints list in the config file, from manifest
files named by endpoint_files, or from files passed on the command line.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "reference", Title: "Reference Commands:"})

	// Flags stay unbound; setupCommand merges them over the loaded Config.
	rootCmd.PersistentFlags().String("config", "", "config file (default is ./.mavroute.yaml or $HOME/.mavroute.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, json, yaml, wide")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("mavroute {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand runs before every command. It applies flags, rereads an
// explicit --config file and rebuilds the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")
	configFile := mustGetString(cmd, "config")

	if configFile != "" && configFile != a.viper.ConfigFileUsed() {
		if err := a.config.ReloadConfig(a.viper, configFile); err != nil {
			return err
		}
	}

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)
	if a.config.NoColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

// ExitOnError prints err and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
