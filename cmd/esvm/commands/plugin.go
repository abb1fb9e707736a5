package commands

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	esvmerrors "github.com/thoreinstein/esvm/internal/errors"
	"github.com/thoreinstein/esvm/internal/logging"
	"github.com/thoreinstein/esvm/internal/server"
)

func init() {
	rootCmd.AddCommand(pluginCmd)
}

var pluginCmd = &cobra.Command{
	Use:   "plugin <list|install|remove> [<name>]",
	Short: "Manage plugins of the active Elasticsearch version",
	Long: `Proxy a plugin-management command to the active version's own
plugin tool. Versions before 5.x use bin/plugin with double-dash verbs;
5.x and later use bin/elasticsearch-plugin.`,
	Example: `  # List installed plugins
  esvm plugin list

  # Install and remove a plugin
  esvm plugin install analysis-icu
  esvm plugin remove analysis-icu`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPlugin,
}

func runPlugin(cmd *cobra.Command, args []string) error {
	return runPluginWithIO(cmd, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// runPluginWithIO allows injecting the writers for testing.
func runPluginWithIO(cmd *cobra.Command, args []string, stdout, stderr io.Writer) error {
	subcommand := args[0]
	var name string
	if len(args) == 2 {
		name = args[1]
	}

	reg, err := newRegistry()
	if err != nil {
		return err
	}

	srv := server.New(reg, server.Config{Logger: logging.FromContext(cmd.Context())})
	if err := srv.Plugin(cmd.Context(), subcommand, name, stdout, stderr); err != nil {
		switch {
		case errors.Is(err, esvmerrors.ErrUnknownCommand):
			return esvmerrors.NewUserError(err, "Run: esvm plugin list|install|remove")
		case errors.Is(err, esvmerrors.ErrMissingPluginName):
			return esvmerrors.NewUserError(err, "Run: esvm plugin "+subcommand+" <name>")
		case errors.Is(err, esvmerrors.ErrNoActiveVersion):
			return esvmerrors.NewUserError(err, "Run: esvm use <version>")
		}
		return err
	}
	return nil
}
