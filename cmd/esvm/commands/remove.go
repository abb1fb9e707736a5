package commands

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	esvmerrors "github.com/thoreinstein/esvm/internal/errors"
	"github.com/thoreinstein/esvm/internal/registry"
)

func init() {
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:     "remove <version>",
	Aliases: []string{"rm"},
	Short:   "Remove an installed Elasticsearch version",
	Long: `Delete an installed version's directory tree. The active version
cannot be removed; switch away from it first.`,
	Example: `  # Remove an inactive version
  esvm remove 5.2.0

  # Remove the newest installed 5.2.x
  esvm remove "5.2.*"`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	return runRemoveWithIO(args, cmd.OutOrStdout())
}

// runRemoveWithIO allows injecting the output writer for testing.
func runRemoveWithIO(args []string, w io.Writer) error {
	v, err := registry.ParseVersion(args[0])
	if err != nil {
		return err
	}

	reg, err := newRegistry()
	if err != nil {
		return err
	}

	if err := reg.Remove(v); err != nil {
		if errors.Is(err, esvmerrors.ErrVersionInUse) {
			return esvmerrors.NewUserError(err, "Run: esvm use <other-version> first")
		}
		return err
	}

	fmt.Fprintf(w, "Removed %s %s\n", registry.Product, v)
	return nil
}
