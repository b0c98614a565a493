package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/mavroute/internal/config"
	"github.com/agentstation/mavroute/pkg/constants"
	"github.com/agentstation/mavroute/pkg/errors"
)

// Config holds the application configuration loaded from flags, the
// environment, .env files and the config file.
type Config struct {
	// Global flags
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Format   string
	LogLevel string

	// Config file
	ConfigFile string

	// EndpointFiles are manifests loaded into the registry at startup.
	EndpointFiles []string

	// Logging configuration
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration into v from, in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. Environment variables prefixed MAVROUTE_
//  3. .env and .env.local
//  4. Config file (./.mavroute.yaml, ~/.mavroute.yaml, /etc/mavroute/.mavroute.yaml)
//  5. Defaults
func LoadConfig(v *viper.Viper) (*Config, error) {
	loadEnvFiles()

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(constants.ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(constants.DefaultConfigDir)
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}
	return fromViper(v), nil
}

// ReloadConfig reads file into v and refreshes the values derived from it.
// Flag values already in c are kept.
func (c *Config) ReloadConfig(v *viper.Viper, file string) error {
	v.SetConfigFile(file)
	if err := readConfig(v); err != nil {
		return err
	}
	fresh := fromViper(v)
	c.ConfigFile = fresh.ConfigFile
	c.EndpointFiles = fresh.EndpointFiles
	c.LogFormat = fresh.LogFormat
	c.LogOutput = fresh.LogOutput
	return nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Verbose:  v.GetBool("verbose"),
		Quiet:    v.GetBool("quiet"),
		NoColor:  v.GetBool("no_color"),
		Format:   v.GetString("format"),
		LogLevel: v.GetString("log_level"),

		ConfigFile:    v.ConfigFileUsed(),
		EndpointFiles: config.EndpointFiles(v),

		LogFormat: config.GetString(v, "log_format"),
		LogOutput: config.GetString(v, "log_output"),
	}
}

// readConfig reads the config file. A missing file found through the search
// path is not an error; an explicit file that cannot be read or parsed is.
func readConfig(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return errors.NewConfigError("viper", "reading config file", err)
}

// UpdateFromFlags applies parsed command flags. Flags win over every other
// source; empty strings leave the loaded value in place.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads .env then .env.local. godotenv never overrides variables
// that are already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}
