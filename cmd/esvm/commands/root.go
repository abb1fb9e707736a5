// Package commands implements the CLI commands for esvm.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/esvm/internal/config"
	"github.com/thoreinstein/esvm/internal/errors"
	"github.com/thoreinstein/esvm/internal/logging"
)

// version is set at build time via ldflags.
// Default to a development version for local builds.
const version = "0.1.0"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// cfg holds the loaded configuration; set by initConfig.
var cfg *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("esvm version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load("")
	if configLoadErr == nil {
		configLoadErr = cfg.Validate()
	}
}

// activeConfig returns the loaded configuration, falling back to
// defaults when initConfig has not run (direct run* calls in tests).
func activeConfig() *config.Config {
	if cfg != nil {
		return cfg
	}
	config.Init()
	loaded, err := config.Load("")
	if err != nil {
		loaded = &config.Config{}
	}
	return loaded
}

var rootCmd = &cobra.Command{
	Use:   "esvm",
	Short: "Elasticsearch version manager",
	Long: `esvm installs Elasticsearch releases side by side under a single
home directory, switches the active version through a symlink, and
drives the server process of whichever version is active.

Releases are downloaded from the official mirrors, verified against
their published checksums, and unpacked into versioned directories.
Plugin management is proxied to the active version's own plugin tool,
speaking the right dialect for its major line.

State lives in ~/.esvm by default; set ESVM_HOME to move it.`,
	Example: `  # Install a release (the first install becomes active)
  esvm install 6.2.0

  # Switch versions
  esvm use 5.3.1

  # See what is installed
  esvm list

  # Run the active version
  esvm start -c /etc/elasticsearch
  esvm status
  esvm stop`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		if configLoadErr != nil {
			return errors.NewUserError(configLoadErr, "Check your esvm config.yaml")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("ESVM_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 1
				case "2":
					v = 2
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	logger := logging.New(logging.Config{
		Level:  level,
		Format: logging.Format(logFormat),
		Output: cmd.ErrOrStderr(),
	})
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
