// Package table turns endpoint data into rows for the CLI table formatter.
package table

import (
	"strconv"

	"github.com/agentstation/mavroute/pkg/endpoint"
	"github.com/agentstation/mavroute/pkg/errors"
	"github.com/agentstation/mavroute/pkg/manifest"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault leaves alignment to the renderer.
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Data is a rendered table.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// Status labels for validation rows.
const (
	StatusOK       = manifest.StatusOK
	StatusRejected = manifest.StatusRejected
)

// EndpointsToTableData lists endpoints. Wide adds the metadata flags.
func EndpointsToTableData(eps []endpoint.Endpoint, wide bool) Data {
	headers := []string{"NAME", "OWNER", "KIND", "PLACE", "ARGUMENT"}
	align := []Align{AlignDefault, AlignDefault, AlignDefault, AlignDefault, AlignRight}
	if wide {
		headers = append(headers, "PERSISTENT", "PROTECTED", "KEY")
		align = append(align, AlignCenter, AlignCenter, AlignDefault)
	}

	rows := make([][]string, 0, len(eps))
	for _, e := range eps {
		row := []string{e.Name(), e.Owner(), e.Kind().String(), e.Place(), strconv.Itoa(e.Argument())}
		if wide {
			row = append(row, yesNo(e.Persistent()), yesNo(e.Protected()), e.Key())
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// ResultToTableData gives one row per manifest entry with its outcome.
func ResultToTableData(res *manifest.Result) Data {
	rows := make([][]string, 0, len(res.Entries))
	for _, e := range res.Entries {
		if e.OK() {
			rows = append(rows, []string{strconv.Itoa(e.Index), StatusOK, e.Name, e.Endpoint.Key(), ""})
			continue
		}
		rows = append(rows, []string{strconv.Itoa(e.Index), StatusRejected, e.Name, errors.Reason(e.Err), e.Err.Error()})
	}
	return Data{
		Headers:         []string{"#", "STATUS", "NAME", "KEY / REASON", "DETAIL"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignDefault, AlignDefault, AlignDefault, AlignLeft},
	}
}

// Endpoints renders a list of endpoints. Encoded as JSON or YAML it is the
// plain list.
type Endpoints []endpoint.Endpoint

// Table implements output.Tabler.
func (l Endpoints) Table(wide bool) Data {
	return EndpointsToTableData(l, wide)
}

// KindInfo describes one connection kind.
type KindInfo struct {
	Kind      string `json:"kind" yaml:"kind"`
	Transport string `json:"transport" yaml:"transport"`
	Place     string `json:"place" yaml:"place"`
	Argument  string `json:"argument" yaml:"argument"`
}

// Kinds is the connection kind vocabulary.
type Kinds []KindInfo

// KindList describes every connection kind.
func KindList() Kinds {
	kinds := endpoint.Kinds()
	out := make(Kinds, 0, len(kinds))
	for _, k := range kinds {
		info := KindInfo{
			Kind:      k.String(),
			Transport: k.Transport(),
			Place:     "network address",
			Argument:  "port (" + strconv.Itoa(endpoint.MinPort) + "-" + strconv.Itoa(endpoint.MaxPort) + ")",
		}
		if k.IsSerial() {
			info.Place, info.Argument = "absolute device path", "baud rate"
		}
		out = append(out, info)
	}
	return out
}

// Table implements output.Tabler.
func (k Kinds) Table(bool) Data {
	return KindsToTableData(k)
}

// KindsToTableData lists the connection kinds and what their fields mean.
func KindsToTableData(kinds Kinds) Data {
	rows := make([][]string, len(kinds))
	for i, k := range kinds {
		rows[i] = []string{k.Kind, k.Transport, k.Place, k.Argument}
	}
	return Data{Headers: []string{"KIND", "TRANSPORT", "PLACE", "ARGUMENT"}, Rows: rows}
}

// BaudRates is the serial baud rate vocabulary.
type BaudRates []int

// Table implements output.Tabler.
func (b BaudRates) Table(bool) Data {
	return BaudRatesToTableData(b)
}

// BaudRatesToTableData lists baud rates, one per row.
func BaudRatesToTableData(rates []int) Data {
	rows := make([][]string, len(rates))
	for i, r := range rates {
		rows[i] = []string{strconv.Itoa(r)}
	}
	return Data{Headers: []string{"BAUD RATE"}, Rows: rows, ColumnAlignment: []Align{AlignRight}}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
