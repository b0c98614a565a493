// Package validate implements the validate command.
package validate

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/mavroute/cmd/application"
	"github.com/agentstation/mavroute/internal/cmd/alerts"
	"github.com/agentstation/mavroute/internal/cmd/output"
	"github.com/agentstation/mavroute/internal/cmd/table"
	"github.com/agentstation/mavroute/pkg/constants"
	"github.com/agentstation/mavroute/pkg/errors"
	"github.com/agentstation/mavroute/pkg/logging"
	"github.com/agentstation/mavroute/pkg/manifest"
)

// ErrRejected is returned when at least one entry failed validation.
var ErrRejected = errors.New("endpoints rejected")

// NewCommand creates the validate command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "validate [FILE...]",
		GroupID: "core",
		Short:   "Validate endpoint manifests",
		Long: `Validate checks every entry of one or more endpoint manifests and reports
its canonical key or the reason it was rejected.

A manifest is a YAML or JSON document holding either a list of endpoints or
a mapping with an "endpoints" list. Use "-" to read standard input. Without
arguments the endpoints from the configuration are validated.

The command exits non-zero when any entry is rejected.`,
		Example: `  mavroute validate endpoints.yaml
  mavroute validate -o json a.yaml b.yaml
  cat endpoints.yaml | mavroute validate -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()
			ctx = logging.WithLogger(ctx, app.Logger())

			results, err := load(ctx, cmd, app, args)
			if err != nil {
				return err
			}

			reports := NewReports(results)
			if err := output.Write(cmd.OutOrStdout(), app.OutputFormat(), reports); err != nil {
				return err
			}
			if output.DetectFormat(app.OutputFormat()).IsTable() {
				if err := alerts.NewWriter(cmd.ErrOrStderr()).WriteAlert(reports.Alert()); err != nil {
					return err
				}
			}
			return reports.Err()
		},
	}
}

func load(ctx context.Context, cmd *cobra.Command, app application.Application, args []string) ([]*manifest.Result, error) {
	opts := []manifest.Option{
		manifest.WithMetrics(app.Metrics()),
		manifest.WithStdin(cmd.InOrStdin()),
	}

	var results []*manifest.Result
	if len(args) == 0 {
		inline, err := app.ConfiguredEndpoints()
		if err != nil {
			return nil, err
		}
		for _, rej := range inline.Rejections() {
			app.Metrics().ObserveRejection(rej.Err)
		}
		results = append(results, inline)
		args = app.EndpointFiles()
	}

	for _, path := range args {
		res, err := manifest.LoadFile(ctx, path, opts...)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Report is the outcome of validating one manifest.
type Report = manifest.Summary

// Reports is the outcome of a validate run.
type Reports []Report

// NewReports summarizes every result.
func NewReports(results []*manifest.Result) Reports {
	out := make(Reports, len(results))
	for i, res := range results {
		out[i] = res.Summarize()
	}
	return out
}

// Table implements output.Tabler. With more than one source a SOURCE column
// is added in front.
func (r Reports) Table(bool) table.Data {
	if len(r) == 1 {
		return table.ResultToTableData(r[0].Result())
	}

	var out table.Data
	for _, rep := range r {
		data := table.ResultToTableData(rep.Result())
		if out.Headers == nil {
			out.Headers = append([]string{"SOURCE"}, data.Headers...)
			out.ColumnAlignment = append([]table.Align{table.AlignDefault}, data.ColumnAlignment...)
		}
		for _, row := range data.Rows {
			out.Rows = append(out.Rows, append([]string{rep.Source}, row...))
		}
	}
	return out
}

func (r Reports) totals() (accepted, rejected int) {
	for _, rep := range r {
		accepted += rep.Accepted
		rejected += rep.Rejected
	}
	return accepted, rejected
}

// Alert summarizes the run for a terminal.
func (r Reports) Alert() *alerts.Alert {
	accepted, rejected := r.totals()
	if rejected == 0 {
		return alerts.NewSuccess("%d entries accepted", accepted)
	}
	a := alerts.NewError("%d of %d entries rejected", rejected, accepted+rejected)
	for _, rep := range r {
		for _, e := range rep.Entries {
			if e.Status == manifest.StatusRejected {
				a.WithDetails(fmt.Sprintf("%s #%d %s: %s", rep.Source, e.Index, e.Name, e.Reason))
			}
		}
	}
	return a
}

// Err returns ErrRejected wrapped with the totals when any entry was rejected.
func (r Reports) Err() error {
	accepted, rejected := r.totals()
	if rejected == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d entries", ErrRejected, rejected, accepted+rejected)
}
