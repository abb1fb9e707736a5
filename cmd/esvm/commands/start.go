package commands

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	esvmerrors "github.com/thoreinstein/esvm/internal/errors"
	"github.com/thoreinstein/esvm/internal/logging"
	"github.com/thoreinstein/esvm/internal/registry"
	"github.com/thoreinstein/esvm/internal/server"
)

var startConfigPath string

func init() {
	startCmd.Flags().StringVarP(&startConfigPath, "config-path", "c", "",
		"configuration directory passed to the server")
	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:   "start [-c <dir>]",
	Short: "Start the active Elasticsearch version",
	Long: `Launch the active version's server daemonized and wait for it to
write its PID file. The config-directory flag is translated into the
syntax the active major line expects (-Des.config, -Des.path.conf, or
-Epath.conf).`,
	Example: `  # Start with default configuration
  esvm start

  # Start against a specific config directory
  esvm start -c /etc/elasticsearch`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, _ []string) error {
	return runStartWithIO(cmd, startConfigPath, cmd.OutOrStdout())
}

// runStartWithIO allows injecting the output writer for testing.
func runStartWithIO(cmd *cobra.Command, configPath string, w io.Writer) error {
	reg, err := newRegistry()
	if err != nil {
		return err
	}

	srv := server.New(reg, server.Config{
		StartTimeout: activeConfig().StartTimeout,
		Logger:       logging.FromContext(cmd.Context()),
	})

	started, err := srv.Start(cmd.Context(), configPath)
	if err != nil {
		switch {
		case errors.Is(err, esvmerrors.ErrNoActiveVersion):
			return esvmerrors.NewUserError(err, "Run: esvm use <version>")
		case errors.Is(err, esvmerrors.ErrAlreadyRunning):
			return esvmerrors.NewUserError(err, "Run: esvm status")
		case errors.Is(err, esvmerrors.ErrStartTimeout):
			return esvmerrors.NewExitError(err, esvmerrors.ExitSystem)
		}
		return err
	}

	fmt.Fprintf(w, "Started %s %s\n", registry.Product, started)
	return nil
}
