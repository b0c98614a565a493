package key

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mavroute/internal/cmd/application"
	"github.com/agentstation/mavroute/pkg/errors"
)

func execute(t *testing.T, app *application.Mock, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func base(kind, place, arg string) []string {
	args := []string{"--name", "GCS", "--owner", "autopilot_manager", "--kind", kind, "--place", place}
	if arg != "" {
		args = append(args, "--argument", arg)
	}
	return args
}

func TestKey_JSON(t *testing.T) {
	app := &application.Mock{OutputFormatFunc: func() string { return "json" }}
	out, err := execute(t, app, append(base("udpin", "0.0.0.0", "14550"), "--persistent")...)
	require.NoError(t, err)

	var got struct {
		Key      string         `json:"key"`
		Hash     string         `json:"hash"`
		Endpoint map[string]any `json:"endpoint"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "udpin:0.0.0.0:14550", got.Key)
	assert.Len(t, got.Hash, 16)
	assert.Equal(t, true, got.Endpoint["persistent"])
	assert.Equal(t, 14550.0, got.Endpoint["argument"])
}

func TestKey_Table(t *testing.T) {
	out, err := execute(t, &application.Mock{}, base("serial", "/dev/ttyACM0", "57600")...)
	require.NoError(t, err)
	assert.Contains(t, out, "serial:/dev/ttyACM0:57600")
	assert.Contains(t, out, "Connection Type")
}

func TestKey_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		want   error
		reason string
	}{
		{"unknown kind", base("udp", "0.0.0.0", "14550"), errors.ErrInvalidKind, "invalid_kind"},
		{"bad address", base("tcpout", "not an address", "5760"), errors.ErrInvalidAddress, "invalid_address"},
		{"missing argument", base("udpout", "10.0.0.1", ""), errors.ErrInvalidPort, "invalid_port"},
		{"word argument", base("udpout", "10.0.0.1", "fast"), errors.ErrInvalidPort, "invalid_port"},
		{"relative path", base("serial", "ttyUSB0", "57600"), errors.ErrInvalidPath, "invalid_path"},
		{"odd baud rate", base("serial", "/dev/ttyUSB0", "12345"), errors.ErrInvalidBaudRate, "invalid_baud_rate"},
		{"short name", []string{"--name", "ab", "--owner", "me_too", "--kind", "udpin", "--place", "::", "--argument", "1"}, errors.ErrInvalidField, "invalid_field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &application.Mock{}
			_, err := execute(t, app, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics().Rejections.WithLabelValues(tt.reason)))
		})
	}
}
