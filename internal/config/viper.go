// Package config reads endpoint definitions embedded in the application
// configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/agentstation/mavroute/pkg/endpoint"
	"github.com/agentstation/mavroute/pkg/errors"
	"github.com/agentstation/mavroute/pkg/manifest"
)

// Keys read from the configuration.
const (
	KeyEndpoints     = "endpoints"
	KeyEndpointFiles = "endpoint_files"
)

// GetString returns key from v, falling back to the process environment when
// v has no value for it.
func GetString(v *viper.Viper, key string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return os.Getenv(key)
}

// EndpointFiles returns the manifest paths listed under endpoint_files.
func EndpointFiles(v *viper.Viper) []string {
	return v.GetStringSlice(KeyEndpointFiles)
}

// Endpoints builds every entry of the endpoints list in v. Entries are
// validated independently the same way manifest files are; per entry
// failures are reported in the Result. The error is non-nil only when the
// endpoints key has the wrong shape.
func Endpoints(v *viper.Viper) (*manifest.Result, error) {
	res := &manifest.Result{Source: sourceName(v)}
	if !v.IsSet(KeyEndpoints) {
		return res, nil
	}

	var configs []endpoint.Config
	err := v.UnmarshalKey(KeyEndpoints, &configs, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = false
		dc.ErrorUnused = false
	})
	if err != nil {
		return nil, errors.NewConfigError("viper", fmt.Sprintf("%s must be a list of endpoints", KeyEndpoints), err)
	}

	return manifest.FromConfigs(res.Source, configs), nil
}

func sourceName(v *viper.Viper) string {
	if f := v.ConfigFileUsed(); f != "" {
		return f
	}
	return "config"
}
