// Package version implements the version command.
package version

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/mavroute/cmd/application"
	"github.com/agentstation/mavroute/internal/cmd/output"
)

// Info is the build information printed by the version command.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// NewInfo collects build information from app.
func NewInfo(app application.Application) Info {
	return Info{
		Version:   app.Version(),
		Commit:    app.Commit(),
		Date:      app.Date(),
		BuiltBy:   app.BuiltBy(),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// NewCommand creates the version command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := NewInfo(app)
			format := output.DetectFormat(app.OutputFormat())
			if !format.IsTable() {
				return output.Write(cmd.OutOrStdout(), string(format), info)
			}
			cmd.Printf("mavroute %s\n", info.Version)
			cmd.Printf("  commit:   %s\n", info.Commit)
			cmd.Printf("  built:    %s\n", info.Date)
			cmd.Printf("  built by: %s\n", info.BuiltBy)
			cmd.Printf("  go:       %s %s\n", info.GoVersion, info.Platform)
			return nil
		},
	}
}
