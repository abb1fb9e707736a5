package commands

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	esvmerrors "github.com/thoreinstein/esvm/internal/errors"
	"github.com/thoreinstein/esvm/internal/logging"
	"github.com/thoreinstein/esvm/internal/registry"
	"github.com/thoreinstein/esvm/internal/release"
)

func init() {
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install <version>",
	Short: "Download and install an Elasticsearch release",
	Long: `Download an Elasticsearch release archive, verify it against its
published checksum, and unpack it under the esvm home directory.

Mirrors are tried in order until one serves the requested version.
When no version was active before the install, the new one becomes
active automatically.`,
	Example: `  # Install a release
  esvm install 6.2.0

  # A concrete version is required; wildcards only select installed versions
  esvm install 5.3.1`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	return runInstallWithIO(cmd, args, cmd.OutOrStdout())
}

// runInstallWithIO allows injecting the output writer for testing.
func runInstallWithIO(cmd *cobra.Command, args []string, w io.Writer) error {
	v, err := registry.ParseVersion(args[0])
	if err != nil {
		return err
	}

	reg, err := newRegistry()
	if err != nil {
		return err
	}

	conf := activeConfig()
	log := logging.FromContext(cmd.Context())
	downloader := release.NewDownloader(release.DownloaderConfig{
		Mirrors:         conf.Mirrors,
		ConnectTimeout:  conf.ConnectTimeout,
		DownloadTimeout: conf.DownloadTimeout,
		Logger:          log,
	})
	installer := release.NewInstaller(reg, downloader, log)

	activated, err := installer.Install(cmd.Context(), v)
	if err != nil {
		if errors.Is(err, esvmerrors.ErrAlreadyInstalled) {
			return esvmerrors.NewUserError(err, fmt.Sprintf("Run: esvm use %s", v))
		}
		if errors.Is(err, esvmerrors.ErrDownload) || errors.Is(err, esvmerrors.ErrChecksumMismatch) {
			return esvmerrors.NewExitError(err, esvmerrors.ExitSystem)
		}
		return err
	}

	fmt.Fprintf(w, "Installed %s %s\n", registry.Product, v)
	if activated {
		fmt.Fprintf(w, "Now using %s %s\n", registry.Product, v)
	}
	return nil
}
