package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/esvm/internal/registry"
)

var listOutput string

func init() {
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "",
		"output format: text, json, yaml (default from config)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed Elasticsearch versions",
	Long: `List installed versions in descending version order. The active
version is marked with an asterisk.`,
	Example: `  # Human-readable listing
  esvm list

  # Machine-readable listing
  esvm list --output json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// listEntry is the scripting-friendly shape of one installed version.
type listEntry struct {
	Version string `json:"version" yaml:"version"`
	Path    string `json:"path" yaml:"path"`
	Active  bool   `json:"active" yaml:"active"`
}

func runList(cmd *cobra.Command, _ []string) error {
	format := listOutput
	if format == "" {
		format = activeConfig().Output
	}
	return runListWithIO(cmd.OutOrStdout(), format)
}

// runListWithIO allows injecting the output writer for testing.
func runListWithIO(w io.Writer, format string) error {
	reg, err := newRegistry()
	if err != nil {
		return err
	}
	installed, err := reg.List()
	if err != nil {
		return err
	}

	switch format {
	case "", "text":
		return printListText(w, installed)
	case "json", "yaml":
		entries := make([]listEntry, len(installed))
		for i, in := range installed {
			entries[i] = listEntry{Version: in.Version.String(), Path: in.Path, Active: in.Active}
		}
		if format == "json" {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		return yaml.NewEncoder(w).Encode(entries)
	default:
		return errors.Newf("unknown output format %q (valid: text, json, yaml)", format)
	}
}

func printListText(w io.Writer, installed []registry.Installed) error {
	if len(installed) == 0 {
		fmt.Fprintln(w, "No versions installed. Run: esvm install <version>")
		return nil
	}

	active := color.New(color.FgGreen, color.Bold)
	for _, in := range installed {
		if in.Active {
			active.Fprintf(w, "* %s\n", in.Version)
		} else {
			fmt.Fprintf(w, "  %s\n", in.Version)
		}
	}
	return nil
}
