// Package paths resolves the esvm home directory and related locations.
//
// All state lives under a single home directory: one subdirectory per
// installed Elasticsearch version, the active-version symlink, and the
// PID file of a running server. The home defaults to ~/.esvm and can be
// overridden with the ESVM_HOME environment variable.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// EnvHome is the environment variable that overrides the esvm home directory.
const EnvHome = "ESVM_HOME"

// defaultHomeName is the dotfile directory created under the user's home
// when ESVM_HOME is unset.
const defaultHomeName = ".esvm"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")
)

// DefaultDirPerm is the default permission for newly created directories.
const DefaultDirPerm = 0o755

// Home returns the esvm home directory without creating it.
// ESVM_HOME takes precedence; otherwise it falls back to ~/.esvm.
func Home() (string, error) {
	if override := os.Getenv(EnvHome); override != "" {
		return filepath.Clean(override), nil
	}
	home := xdg.Home
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
		}
	}
	return filepath.Join(home, defaultHomeName), nil
}

// EnsureHome resolves the esvm home directory and creates it if needed.
func EnsureHome() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	if err := EnsureDir(home, DefaultDirPerm); err != nil {
		return "", err
	}
	return home, nil
}

// ConfigDir returns the directory searched for the esvm config file.
// On Linux this is ~/.config/esvm.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "esvm")
}

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return errors.Newf("path exists but is not a directory: %s", path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return errors.Wrapf(err, "stat %s", path)
	}
	return os.MkdirAll(path, perm)
}
