// Package config provides configuration management for esvm using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/thoreinstein/esvm/internal/paths"
)

// AppName is the application name used for config file naming.
const AppName = "esvm"

// Default download mirrors, tried in order. The {version} token is
// substituted before the archive name is appended; bases without the
// token are used as-is. These cover the three historical elastic.co
// release layouts (5.x+, 2.x, 1.x).
var defaultMirrors = []string{
	"https://artifacts.elastic.co/downloads/elasticsearch",
	"https://download.elastic.co/elasticsearch/release/org/elasticsearch/distribution/tar/elasticsearch/{version}",
	"https://download.elastic.co/elasticsearch/elasticsearch",
}

// Config represents the top-level configuration structure.
type Config struct {
	Mirrors         []string      `mapstructure:"mirrors"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
	StartTimeout    time.Duration `mapstructure:"start_timeout"`
	Output          string        `mapstructure:"output"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	home, err := paths.Home()
	if err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(paths.ConfigDir())

	// Environment variable support
	viper.SetEnvPrefix("ESVM")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("mirrors", defaultMirrors)
	viper.SetDefault("connect_timeout", time.Minute)
	viper.SetDefault("download_timeout", time.Hour)
	viper.SetDefault("start_timeout", 30*time.Second)
	viper.SetDefault("output", "text")
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If user specified a path, this is an error
			if path != "" {
				return nil, fmt.Errorf("config file not found at %s: %w", path, err)
			}
			// Otherwise (implicit load), it's fine to use defaults
		} else {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if len(c.Mirrors) == 0 {
		return fmt.Errorf("at least one mirror is required")
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect_timeout must be positive, got %s", c.ConnectTimeout)
	}
	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("download_timeout must be positive, got %s", c.DownloadTimeout)
	}
	if c.StartTimeout <= 0 {
		return fmt.Errorf("start_timeout must be positive, got %s", c.StartTimeout)
	}
	switch c.Output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("output must be one of text, json, yaml; got %q", c.Output)
	}
	return nil
}
