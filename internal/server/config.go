package server

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/mavroute/pkg/constants"
	"github.com/agentstation/mavroute/pkg/errors"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// API settings
	PathPrefix  string
	MaxBodySize int64

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// Authentication settings
	AuthEnabled  bool
	AuthHeader   string
	APIKey       string
	ProtectReads bool

	// HTTP timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Features
	MetricsEnabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            8080,
		PathPrefix:      "/api/v1",
		MaxBodySize:     constants.MaxManifestSize,
		AuthHeader:      "X-API-Key",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MetricsEnabled:  true,
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate reports the first unusable setting. Port 0 picks a free port.
func (c Config) Validate() error {
	switch {
	case c.Port < 0 || c.Port > 65535:
		return errors.NewConfigError("server", "port must be between 0 and 65535, got "+strconv.Itoa(c.Port), nil)
	case !strings.HasPrefix(c.PathPrefix, "/") || strings.HasSuffix(c.PathPrefix, "/"):
		return errors.NewConfigError("server", "path prefix must start and not end with a slash, got "+strconv.Quote(c.PathPrefix), nil)
	case strings.ContainsAny(c.PathPrefix, "{} "):
		return errors.NewConfigError("server", "path prefix must not contain braces or spaces", nil)
	case c.MaxBodySize < 0:
		return errors.NewConfigError("server", "max body size must not be negative", nil)
	case c.AuthEnabled && c.APIKey == "":
		return errors.NewConfigError("server", "authentication is enabled but no API key is set", nil)
	}
	return nil
}
