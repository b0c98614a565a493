// Package constants holds values shared across mavroute packages: file
// permissions, size limits, default paths and CLI timeouts.
package constants

import "time"

// File permissions.
const (
	// DirPermissions is rwxr-xr-x.
	DirPermissions = 0755

	// FilePermissions is rw-r--r--.
	FilePermissions = 0644
)

// Limits.
const (
	// MaxManifestSize bounds how much of an endpoint manifest is read (1 MiB).
	MaxManifestSize = 1 << 20

	// MaxManifestEntries bounds the number of endpoints a single manifest may declare.
	MaxManifestEntries = 4096
)

// Timeouts.
const (
	// CommandTimeout bounds a single CLI invocation.
	CommandTimeout = 2 * time.Minute

	// DefaultHTTPTimeout bounds a request to a remote mavroute server.
	DefaultHTTPTimeout = 30 * time.Second
)

// Names and paths.
const (
	// AppName is used for the binary, env prefix and config file name.
	AppName = "mavroute"

	// EnvPrefix is prepended to configuration keys read from the environment.
	EnvPrefix = "MAVROUTE"

	// ConfigFileName is the config file looked up in the home directory, without extension.
	ConfigFileName = ".mavroute"

	// DefaultConfigDir is where system wide configuration lives.
	DefaultConfigDir = "/etc/mavroute"

	// MetricsNamespace prefixes every Prometheus metric name.
	MetricsNamespace = "mavroute"
)
