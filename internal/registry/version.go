package registry

import (
	"regexp"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"

	esvmerrors "github.com/thoreinstein/esvm/internal/errors"
)

// versionPattern is the exact shape a version argument must have.
// Deliberately stricter than semver parsing: no "v" prefix, no partial
// versions, no prerelease or build metadata.
var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+|\*)$`)

// Version is a validated Elasticsearch version string. The patch
// component may be the wildcard "*", in which case the version acts as a
// selector over the major.minor line rather than a concrete release.
type Version struct {
	raw      string
	major    int
	minor    int
	patch    int
	wildcard bool
}

// ParseVersion validates and parses a version string.
// It fails with ErrInvalidVersion for anything that is not exactly
// <int>.<int>.<int|*>.
func ParseVersion(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, errors.Wrapf(esvmerrors.ErrInvalidVersion,
			"%q (expected <major>.<minor>.<patch> or <major>.<minor>.*)", s)
	}

	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Version{}, errors.Wrapf(esvmerrors.ErrInvalidVersion, "%q", s)
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Version{}, errors.Wrapf(esvmerrors.ErrInvalidVersion, "%q", s)
	}

	v := Version{raw: s, major: major, minor: minor}
	if m[3] == "*" {
		v.wildcard = true
	} else {
		v.patch, err = strconv.Atoi(m[3])
		if err != nil {
			return Version{}, errors.Wrapf(esvmerrors.ErrInvalidVersion, "%q", s)
		}
	}
	return v, nil
}

// String returns the version exactly as it was parsed.
func (v Version) String() string { return v.raw }

// IsZero reports whether v is the zero Version (no version at all).
func (v Version) IsZero() bool { return v.raw == "" }

// Major returns the major component, which selects the product line for
// launch-flag and plugin-tool translation.
func (v Version) Major() int { return v.major }

// IsWildcard reports whether the patch component is the "*" selector.
func (v Version) IsWildcard() bool { return v.wildcard }

// sem converts a concrete version to a semver value for comparison.
// Must not be called on wildcard versions.
func (v Version) sem() *semver.Version {
	return semver.New(uint64(v.major), uint64(v.minor), uint64(v.patch), "", "")
}

// Compare orders versions numerically per component. A wildcard sorts
// above every concrete patch of the same line, since it stands for the
// whole line. Returns -1, 0, or 1.
func (v Version) Compare(o Version) int {
	if !v.wildcard && !o.wildcard {
		return v.sem().Compare(o.sem())
	}
	if c := compareInt(v.major, o.major); c != 0 {
		return c
	}
	if c := compareInt(v.minor, o.minor); c != 0 {
		return c
	}
	switch {
	case v.wildcard && o.wildcard:
		return 0
	case v.wildcard:
		return 1
	default:
		return -1
	}
}

// Matches reports whether the concrete version o falls inside the line
// selected by v. A concrete v matches only its exact equal; a wildcard v
// is evaluated as a semver constraint ("5.3.*").
func (v Version) Matches(o Version) bool {
	if o.wildcard {
		return false
	}
	if !v.wildcard {
		return v.raw == o.raw
	}
	c, err := semver.NewConstraint(v.raw)
	if err != nil {
		return false
	}
	return c.Check(o.sem())
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
