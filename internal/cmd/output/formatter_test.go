package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mavroute/internal/cmd/table"
)

type tabled struct{ wide bool }

func (t *tabled) Table(wide bool) table.Data {
	t.wide = wide
	return table.Data{Headers: []string{"KIND"}, Rows: [][]string{{"udpin"}}}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "JSON", "yaml", "wide", ""} {
		f, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, Format(strings.ToLower(in)), f)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"xml"`)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestFormatIsTable(t *testing.T) {
	assert.True(t, FormatTable.IsTable())
	assert.True(t, FormatWide.IsTable())
	assert.True(t, Format("").IsTable())
	assert.False(t, FormatJSON.IsTable())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, map[string]int{"argument": 14550}))
	assert.JSONEq(t, `{"argument": 14550}`, buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, map[string]string{"kind": "udpin"}))
	assert.Equal(t, "kind: udpin\n", buf.String())
}

func TestTableFormatter(t *testing.T) {
	t.Run("data", func(t *testing.T) {
		var buf bytes.Buffer
		data := table.Data{
			Headers:         []string{"NAME", "ARGUMENT"},
			Rows:            [][]string{{"GCS", "14550"}},
			ColumnAlignment: []table.Align{table.AlignDefault, table.AlignRight},
		}
		require.NoError(t, NewFormatter(FormatTable).Format(&buf, data))
		out := buf.String()
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "GCS")
		assert.Contains(t, out, "14550")
	})

	t.Run("tabler gets wide flag", func(t *testing.T) {
		var buf bytes.Buffer
		v := &tabled{}
		require.NoError(t, NewFormatter(FormatWide).Format(&buf, v))
		assert.True(t, v.wide)
		assert.Contains(t, buf.String(), "udpin")
	})

	t.Run("string map", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]string{"go_version": "go1.24"}))
		assert.Contains(t, buf.String(), "Go Version")
	})

	t.Run("falls back to json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatTable).Format(&buf, []int{1, 2}))
		assert.JSONEq(t, `[1,2]`, buf.String())
	})
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "json", map[string]string{"key": "udpin:0.0.0.0:14550"}))
	assert.JSONEq(t, `{"key":"udpin:0.0.0.0:14550"}`, buf.String())

	require.Error(t, Write(&buf, "csv", nil))
}
