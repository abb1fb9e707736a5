package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/esvm/internal/registry"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the active Elasticsearch version",
	Long: `Print the version currently pointed at by the active-version
symlink, or "none" when no version is active. For the esvm tool's own
version, use --version.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func runVersion(cmd *cobra.Command, _ []string) error {
	return runVersionWithIO(cmd.OutOrStdout())
}

// runVersionWithIO allows injecting the output writer for testing.
func runVersionWithIO(w io.Writer) error {
	reg, err := newRegistry()
	if err != nil {
		return err
	}

	current, ok, err := reg.Current()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(w, "none")
		return nil
	}
	fmt.Fprintf(w, "%s %s\n", registry.Product, current)
	return nil
}
