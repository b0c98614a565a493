package config_test

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mavroute/internal/config"
	"github.com/agentstation/mavroute/pkg/errors"
)

func newViper(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return v
}

func TestEndpoints(t *testing.T) {
	v := newViper(t, `
log_level: debug
endpoint_files:
  - /etc/mavroute/endpoints.yaml
  - ./local.yaml
endpoints:
  - name: GCS
    owner: autopilot_manager
    connection_type: udpin
    place: 0.0.0.0
    argument: 14550
    persistent: true
  - name: Autopilot
    owner: autopilot_manager
    connection_type: serial
    place: /dev/ttyAMA0
    argument: 115200
    protected: true
  - name: Broken
    owner: autopilot_manager
    connection_type: serial
    place: /dev/ttyAMA0/
    argument: 115200
  - name: Again
    owner: someone
    connection_type: udpin
    place: 0.0.0.0
    argument: "14550"
`)

	res, err := config.Endpoints(v)
	require.NoError(t, err)
	assert.Equal(t, "config", res.Source)
	require.Len(t, res.Entries, 4)

	eps := res.Endpoints()
	require.Len(t, eps, 2)
	assert.Equal(t, "udpin:0.0.0.0:14550", eps[0].Key())
	assert.True(t, eps[0].Persistent())
	assert.Equal(t, "serial:/dev/ttyAMA0:115200", eps[1].Key())
	assert.True(t, eps[1].Protected())

	rej := res.Rejections()
	require.Len(t, rej, 2)
	assert.ErrorIs(t, rej[0], errors.ErrInvalidPath)
	assert.Equal(t, "Broken", rej[0].Name)
	assert.True(t, errors.IsAlreadyExists(rej[1]))

	assert.Equal(t, []string{"/etc/mavroute/endpoints.yaml", "./local.yaml"}, config.EndpointFiles(v))
}

func TestEndpoints_Unset(t *testing.T) {
	res, err := config.Endpoints(newViper(t, "log_level: info\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.NoError(t, res.Err())
	assert.Empty(t, config.EndpointFiles(viper.New()))
}

func TestEndpoints_WrongShape(t *testing.T) {
	_, err := config.Endpoints(newViper(t, "endpoints: nope\n"))
	require.Error(t, err)
	var cerr *errors.ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestGetString(t *testing.T) {
	t.Setenv("MAVROUTE_TEST_ONLY_ENV", "from-env")
	v := viper.New()
	v.Set("set_in_viper", "from-viper")

	assert.Equal(t, "from-viper", config.GetString(v, "set_in_viper"))
	assert.Equal(t, "from-env", config.GetString(v, "MAVROUTE_TEST_ONLY_ENV"))
	assert.Empty(t, config.GetString(v, "MAVROUTE_TEST_MISSING"))
}
