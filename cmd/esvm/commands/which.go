package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/esvm/internal/registry"
)

func init() {
	rootCmd.AddCommand(whichCmd)
}

var whichCmd = &cobra.Command{
	Use:   "which [<version>]",
	Short: "Print the installation path of a version",
	Long: `Print the installation directory of the given version, or of the
active version when none is given. A missing version prints a message
instead of failing.`,
	Example: `  # Path of the active version
  esvm which

  # Path of a specific version
  esvm which 5.3.1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWhich,
}

func runWhich(cmd *cobra.Command, args []string) error {
	return runWhichWithIO(args, cmd.OutOrStdout())
}

// runWhichWithIO allows injecting the output writer for testing.
func runWhichWithIO(args []string, w io.Writer) error {
	reg, err := newRegistry()
	if err != nil {
		return err
	}

	var v registry.Version
	if len(args) == 1 {
		v, err = registry.ParseVersion(args[0])
		if err != nil {
			return err
		}
	}

	path, ok, err := reg.Path(v)
	if err != nil {
		return err
	}
	if !ok {
		if v.IsZero() {
			fmt.Fprintln(w, "no active version")
		} else {
			fmt.Fprintf(w, "%s %s is not installed\n", registry.Product, v)
		}
		return nil
	}

	fmt.Fprintln(w, path)
	return nil
}
