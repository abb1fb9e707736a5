package release

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	esvmerrors "github.com/thoreinstein/esvm/internal/errors"
	"github.com/thoreinstein/esvm/internal/registry"
)

// Fetcher retrieves a verified archive for a version into destDir.
// Satisfied by *Downloader; tests substitute a local fake.
type Fetcher interface {
	Fetch(ctx context.Context, v registry.Version, destDir string) (*Download, error)
}

// Installer orchestrates install: fetch, extract, receipt, and the
// first-install auto-activation.
type Installer struct {
	reg     *registry.Registry
	fetcher Fetcher
	log     *slog.Logger
}

// NewInstaller creates an Installer over a registry and a fetcher.
func NewInstaller(reg *registry.Registry, fetcher Fetcher, log *slog.Logger) *Installer {
	if log == nil {
		log = slog.Default()
	}
	return &Installer{reg: reg, fetcher: fetcher, log: log}
}

// Install downloads and unpacks a version into the registry home.
// When no version was active beforehand, the new one is activated and
// the returned activated flag is true.
func (i *Installer) Install(ctx context.Context, v registry.Version) (activated bool, err error) {
	if v.IsWildcard() {
		return false, errors.Wrapf(esvmerrors.ErrInvalidVersion,
			"cannot install wildcard %s, pick a concrete release", v)
	}
	if i.reg.IsInstalled(v) {
		return false, errors.Wrapf(esvmerrors.ErrAlreadyInstalled, "%s", v)
	}

	dl, err := i.fetcher.Fetch(ctx, v, i.reg.Home())
	if err != nil {
		return false, err
	}
	// Archive cleanup is best effort, success or not.
	defer os.Remove(dl.ArchivePath)

	// Extract next to the final location, then rename, so the registry
	// never sees a half-extracted version directory.
	staging, err := os.MkdirTemp(i.reg.Home(), ".esvm-extract-*")
	if err != nil {
		return false, errors.Wrap(err, "creating staging directory")
	}
	defer os.RemoveAll(staging)

	i.log.Info("extracting", "archive", dl.Archive)
	if err := Extract(dl.ArchivePath, staging); err != nil {
		return false, err
	}

	receipt := registry.Receipt{
		Version:      v.String(),
		InstalledAt:  time.Now().UTC(),
		Mirror:       dl.Mirror,
		Archive:      dl.Archive,
		ChecksumAlgo: dl.ChecksumAlgo,
		Checksum:     dl.Checksum,
	}
	if err := registry.WriteReceipt(staging, receipt); err != nil {
		return false, err
	}

	if err := os.Rename(staging, i.reg.VersionDir(v)); err != nil {
		return false, errors.Wrapf(err, "moving %s into place", v)
	}

	_, hadCurrent, err := i.reg.Current()
	if err != nil {
		return false, err
	}
	if !hadCurrent {
		if err := i.reg.Use(v); err != nil {
			return false, err
		}
		i.log.Debug("activated first installed version", "version", v.String())
		return true, nil
	}
	return false, nil
}
