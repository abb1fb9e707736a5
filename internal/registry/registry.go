package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	esvmerrors "github.com/thoreinstein/esvm/internal/errors"
)

// Product is the managed product name. It prefixes every version
// directory and names the active-version symlink.
const Product = "elasticsearch"

// Registry answers questions about installed versions and mutates the
// active-version pointer. It is constructed with an explicit home
// directory so tests can point it at a temporary location.
type Registry struct {
	home string
}

// New creates a Registry rooted at the given home directory.
// The directory is not created; callers use paths.EnsureHome first.
func New(home string) *Registry {
	return &Registry{home: home}
}

// Home returns the registry's root directory.
func (r *Registry) Home() string { return r.home }

// VersionDir returns the install directory for a version, whether or not
// it exists.
func (r *Registry) VersionDir(v Version) string {
	return filepath.Join(r.home, Product+"-"+v.String())
}

// pointerPath is the active-version symlink location.
func (r *Registry) pointerPath() string {
	return filepath.Join(r.home, Product)
}

// Installed describes one installed version as returned by List.
type Installed struct {
	Version Version
	Path    string
	Active  bool
}

// List enumerates installed versions in descending version order, each
// annotated with whether it is the active one. Entries that carry the
// product prefix but do not parse as versions are skipped.
func (r *Registry) List() ([]Installed, error) {
	entries, err := os.ReadDir(r.home)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", r.home)
	}

	current, _, err := r.Current()
	if err != nil {
		return nil, err
	}

	var out []Installed
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name, ok := strings.CutPrefix(e.Name(), Product+"-")
		if !ok {
			continue
		}
		v, err := ParseVersion(name)
		if err != nil {
			continue
		}
		out = append(out, Installed{
			Version: v,
			Path:    filepath.Join(r.home, e.Name()),
			Active:  !current.IsZero() && current.String() == v.String(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Version.Compare(out[j].Version) > 0
	})
	return out, nil
}

// Current resolves the active-version pointer. The second return value
// is false when no pointer exists.
func (r *Registry) Current() (Version, bool, error) {
	target, err := os.Readlink(r.pointerPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Version{}, false, nil
		}
		return Version{}, false, errors.Wrap(err, "reading active-version pointer")
	}

	name, ok := strings.CutPrefix(filepath.Base(target), Product+"-")
	if !ok {
		return Version{}, false, errors.Newf("active-version pointer has unexpected target %q", target)
	}
	v, err := ParseVersion(name)
	if err != nil {
		return Version{}, false, errors.Wrapf(err, "active-version pointer targets %q", target)
	}
	return v, true, nil
}

// IsInstalled reports whether a directory for the exact version exists.
func (r *Registry) IsInstalled(v Version) bool {
	info, err := os.Stat(r.VersionDir(v))
	return err == nil && info.IsDir()
}

// Resolve maps a version argument to an installed version. Concrete
// versions must be installed as given; wildcards resolve to the highest
// installed version of their line. Fails with ErrNotInstalled.
func (r *Registry) Resolve(v Version) (Version, error) {
	if !v.IsWildcard() {
		if !r.IsInstalled(v) {
			return Version{}, errors.Wrapf(esvmerrors.ErrNotInstalled, "%s", v)
		}
		return v, nil
	}

	installed, err := r.List()
	if err != nil {
		return Version{}, err
	}
	// List is already descending, so the first match is the best one.
	for _, in := range installed {
		if v.Matches(in.Version) {
			return in.Version, nil
		}
	}
	return Version{}, errors.Wrapf(esvmerrors.ErrNotInstalled, "no installed version matches %s", v)
}

// Use atomically repoints the active-version symlink at the given
// version's directory. The pointer is never transiently missing: the new
// link is created under a temporary name and renamed over the old one.
func (r *Registry) Use(v Version) error {
	resolved, err := r.Resolve(v)
	if err != nil {
		return err
	}

	// Relative target keeps the home directory relocatable.
	target := Product + "-" + resolved.String()
	tmp := filepath.Join(r.home, fmt.Sprintf(".%s-pointer-%d", Product, time.Now().UnixNano()))

	if err := os.Symlink(target, tmp); err != nil {
		return errors.Wrap(err, "creating pointer symlink")
	}
	if err := os.Rename(tmp, r.pointerPath()); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "replacing active-version pointer")
	}
	return nil
}

// Remove deletes an installed version's directory tree. It refuses to
// remove the active version.
func (r *Registry) Remove(v Version) error {
	resolved, err := r.Resolve(v)
	if err != nil {
		return err
	}

	current, ok, err := r.Current()
	if err != nil {
		return err
	}
	if ok && current.String() == resolved.String() {
		return errors.Wrapf(esvmerrors.ErrVersionInUse,
			"%s is the active version", resolved)
	}

	if err := os.RemoveAll(r.VersionDir(resolved)); err != nil {
		return errors.Wrapf(err, "removing %s", resolved)
	}
	return nil
}

// Path returns the installation directory for a version, or for the
// active version when v is the zero Version. The boolean is false when
// the directory does not exist; that is a printable miss for callers,
// not a hard failure.
func (r *Registry) Path(v Version) (string, bool, error) {
	if v.IsZero() {
		current, ok, err := r.Current()
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, nil
		}
		v = current
	} else if v.IsWildcard() {
		resolved, err := r.Resolve(v)
		if err != nil {
			if errors.Is(err, esvmerrors.ErrNotInstalled) {
				return "", false, nil
			}
			return "", false, err
		}
		v = resolved
	}

	dir := r.VersionDir(v)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", false, nil
	}
	return dir, true, nil
}
