package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	esvmerrors "github.com/thoreinstein/esvm/internal/errors"
	"github.com/thoreinstein/esvm/internal/logging"
	"github.com/thoreinstein/esvm/internal/registry"
)

func init() {
	rootCmd.AddCommand(useCmd)
}

var useCmd = &cobra.Command{
	Use:   "use [<version>]",
	Short: "Switch the active Elasticsearch version",
	Long: `Point the active-version symlink at an installed version.

The version may be concrete (5.3.1) or a wildcard selector (5.3.*),
which resolves to the highest installed version of that line. With no
argument and a terminal attached, an interactive picker over the
installed versions is shown.`,
	Example: `  # Activate a specific version
  esvm use 5.3.1

  # Activate the newest installed 5.3.x
  esvm use "5.3.*"

  # Pick interactively
  esvm use`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUse,
}

func runUse(cmd *cobra.Command, args []string) error {
	return runUseWithIO(args, cmd.OutOrStdout())
}

// runUseWithIO allows injecting the output writer for testing.
func runUseWithIO(args []string, w io.Writer) error {
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
	} else {
		v, err = pickInstalledVersion(reg)
		if err != nil {
			return err
		}
		if v.IsZero() {
			// Picker aborted.
			return nil
		}
	}

	if err := reg.Use(v); err != nil {
		if errors.Is(err, esvmerrors.ErrNotInstalled) {
			return esvmerrors.NewUserError(err, fmt.Sprintf("Run: esvm install %s", v))
		}
		return err
	}

	current, _, err := reg.Current()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Now using %s %s\n", registry.Product, current)
	return nil
}

// pickInstalledVersion runs the interactive picker. It requires a
// terminal; without one the version argument is mandatory.
func pickInstalledVersion(reg *registry.Registry) (registry.Version, error) {
	if !logging.IsTTY(os.Stdout) {
		return registry.Version{}, esvmerrors.NewUserError(
			errors.New("version argument required when not running interactively"),
			"Run: esvm use <version>")
	}

	installed, err := reg.List()
	if err != nil {
		return registry.Version{}, err
	}
	if len(installed) == 0 {
		return registry.Version{}, esvmerrors.NewUserError(
			errors.New("no versions installed"),
			"Run: esvm install <version>")
	}

	idx, err := fuzzyfinder.Find(
		installed,
		func(i int) string {
			label := installed[i].Version.String()
			if installed[i].Active {
				label += " (active)"
			}
			return label
		},
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return registry.Version{}, nil
		}
		return registry.Version{}, errors.Wrap(err, "interactive selection failed")
	}
	return installed[idx].Version, nil
}
