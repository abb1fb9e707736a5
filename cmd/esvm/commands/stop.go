package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/esvm/internal/logging"
	"github.com/thoreinstein/esvm/internal/registry"
	"github.com/thoreinstein/esvm/internal/server"
)

func init() {
	rootCmd.AddCommand(stopCmd)
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running Elasticsearch server",
	Long: `Send a termination signal to the process recorded in the PID file.
Fails when nothing is running.`,
	Args: cobra.NoArgs,
	RunE: runStop,
}

func runStop(cmd *cobra.Command, _ []string) error {
	return runStopWithIO(cmd, cmd.OutOrStdout())
}

// runStopWithIO allows injecting the output writer for testing.
func runStopWithIO(cmd *cobra.Command, w io.Writer) error {
	reg, err := newRegistry()
	if err != nil {
		return err
	}

	srv := server.New(reg, server.Config{Logger: logging.FromContext(cmd.Context())})
	pid, err := srv.Stop()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Stopped %s (pid %d)\n", registry.Product, pid)
	return nil
}
