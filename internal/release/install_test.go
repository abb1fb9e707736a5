package release

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	esvmerrors "github.com/thoreinstein/esvm/internal/errors"
	"github.com/thoreinstein/esvm/internal/logging"
	"github.com/thoreinstein/esvm/internal/registry"
)

// fakeFetcher serves a locally built archive instead of hitting mirrors.
type fakeFetcher struct {
	archive string
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(_ context.Context, v registry.Version, destDir string) (*Download, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	// Copy into destDir so the installer's cleanup removes only its own file.
	data, err := os.ReadFile(f.archive)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(destDir, ArchiveName(v))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	return &Download{
		ArchivePath:  path,
		Mirror:       "https://mirror.test/es",
		Archive:      ArchiveName(v),
		ChecksumAlgo: "sha512",
		Checksum:     "cafe",
	}, nil
}

func newTestInstaller(t *testing.T) (*Installer, *registry.Registry, *fakeFetcher) {
	t.Helper()
	reg := registry.New(t.TempDir())
	fetcher := &fakeFetcher{archive: buildArchive(t, releaseEntries())}
	return NewInstaller(reg, fetcher, logging.ForTest(t)), reg, fetcher
}

func TestInstall(t *testing.T) {
	inst, reg, _ := newTestInstaller(t)
	v := testVersion(t, "5.3.1")

	activated, err := inst.Install(context.Background(), v)
	require.NoError(t, err)
	require.True(t, activated, "first install should auto-activate")

	require.True(t, reg.IsInstalled(v))
	current, ok, err := reg.Current()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "5.3.1", current.String())

	// Extracted tree landed with the leading component stripped.
	_, err = os.Stat(filepath.Join(reg.VersionDir(v), "bin", "elasticsearch"))
	require.NoError(t, err)

	// Receipt written into the version directory.
	rec, err := registry.ReadReceipt(reg.VersionDir(v))
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "5.3.1", rec.Version)
	require.Equal(t, "sha512", rec.ChecksumAlgo)

	// Archive cleaned up after extraction.
	_, err = os.Stat(filepath.Join(reg.Home(), ArchiveName(v)))
	require.True(t, os.IsNotExist(err), "archive should be removed after install")
}

func TestInstall_NoAutoActivateWhenCurrentExists(t *testing.T) {
	inst, reg, fetcher := newTestInstaller(t)

	activated, err := inst.Install(context.Background(), testVersion(t, "6.2.0"))
	require.NoError(t, err)
	require.True(t, activated)

	// The fake always serves the same tree; only the directory name differs.
	fetcher.archive = buildArchive(t, releaseEntries())
	activated, err = inst.Install(context.Background(), testVersion(t, "5.3.1"))
	require.NoError(t, err)
	require.False(t, activated, "install must not steal the active version")

	current, _, err := reg.Current()
	require.NoError(t, err)
	require.Equal(t, "6.2.0", current.String())
}

func TestInstall_AlreadyInstalled(t *testing.T) {
	inst, reg, fetcher := newTestInstaller(t)
	v := testVersion(t, "5.3.1")
	require.NoError(t, os.MkdirAll(reg.VersionDir(v), 0o755))

	_, err := inst.Install(context.Background(), v)
	require.ErrorIs(t, err, esvmerrors.ErrAlreadyInstalled)
	require.Zero(t, fetcher.calls, "no download may happen for an installed version")
}

func TestInstall_WildcardRejected(t *testing.T) {
	inst, _, fetcher := newTestInstaller(t)

	_, err := inst.Install(context.Background(), testVersion(t, "5.3.*"))
	require.ErrorIs(t, err, esvmerrors.ErrInvalidVersion)
	require.Zero(t, fetcher.calls)
}

func TestInstall_FetchFailureLeavesNothingBehind(t *testing.T) {
	inst, reg, fetcher := newTestInstaller(t)
	fetcher.err = errors.Wrap(esvmerrors.ErrDownload, "no mirror serves elasticsearch 5.3.1")
	v := testVersion(t, "5.3.1")

	_, err := inst.Install(context.Background(), v)
	require.ErrorIs(t, err, esvmerrors.ErrDownload)
	require.False(t, reg.IsInstalled(v))

	entries, err := os.ReadDir(reg.Home())
	require.NoError(t, err)
	require.Empty(t, entries, "failed install must not litter the home directory")
}
