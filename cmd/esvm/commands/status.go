package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/esvm/internal/logging"
	"github.com/thoreinstein/esvm/internal/registry"
	"github.com/thoreinstein/esvm/internal/server"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the server is running",
	Long: `Report the running state of the server, the active version, and the
recorded PID. Read-only; always succeeds.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return runStatusWithIO(cmd, cmd.OutOrStdout())
}

// runStatusWithIO allows injecting the output writer for testing.
func runStatusWithIO(cmd *cobra.Command, w io.Writer) error {
	reg, err := newRegistry()
	if err != nil {
		return err
	}

	srv := server.New(reg, server.Config{Logger: logging.FromContext(cmd.Context())})
	st, err := srv.Status()
	if err != nil {
		return err
	}

	switch {
	case st.Running:
		color.New(color.FgGreen).Fprintf(w, "%s %s is running (pid %d)\n",
			registry.Product, st.Version, st.PID)
	case st.Version.IsZero():
		fmt.Fprintf(w, "%s is not running (no active version)\n", registry.Product)
	default:
		fmt.Fprintf(w, "%s %s is not running\n", registry.Product, st.Version)
	}
	return nil
}
