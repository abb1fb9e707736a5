package release

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Extract unpacks a gzipped tarball into destDir, stripping the leading
// path component (release tarballs wrap everything in
// elasticsearch-<version>/). Entries that would escape destDir are
// rejected, including writes routed through symlinks unpacked earlier.
func Extract(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrap(err, "opening archive")
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "reading gzip stream")
	}
	defer gz.Close()

	// The resolved root anchors escape checks even when destDir itself
	// sits behind a symlink (as /tmp does on some platforms).
	root, err := filepath.EvalSymlinks(destDir)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", destDir)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading tar stream")
		}
		if err := extractEntry(tr, hdr, destDir, root); err != nil {
			return err
		}
	}
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, destDir, root string) error {
	rel, ok := stripLeadingComponent(hdr.Name)
	if !ok {
		// The wrapping directory itself, or a bare top-level entry.
		return nil
	}

	clean := filepath.Clean(rel)
	if escapes(clean) || filepath.IsAbs(clean) {
		return errors.Newf("unsafe archive path: %s", hdr.Name)
	}
	dest := filepath.Join(destDir, clean)

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := ensureParentInside(dest, root, hdr.Name); err != nil {
			return err
		}
		if err := refuseSymlinkAt(dest, hdr.Name); err != nil {
			return err
		}
		if err := os.MkdirAll(dest, hdr.FileInfo().Mode().Perm()); err != nil {
			return errors.Wrapf(err, "creating directory %s", clean)
		}

	case tar.TypeReg:
		if err := ensureParentInside(dest, root, hdr.Name); err != nil {
			return err
		}
		if err := refuseSymlinkAt(dest, hdr.Name); err != nil {
			return err
		}
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, hdr.FileInfo().Mode().Perm())
		if err != nil {
			return errors.Wrapf(err, "creating %s", clean)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return errors.Wrapf(err, "writing %s", clean)
		}
		if err := out.Close(); err != nil {
			return errors.Wrapf(err, "closing %s", clean)
		}

	case tar.TypeSymlink:
		if filepath.IsAbs(hdr.Linkname) {
			return errors.Newf("unsafe symlink target in archive: %s -> %s", hdr.Name, hdr.Linkname)
		}
		// The target, resolved from the link's own directory, must stay
		// inside the tree; otherwise later entries could write through it.
		target := filepath.Clean(filepath.Join(filepath.Dir(clean), hdr.Linkname))
		if escapes(target) {
			return errors.Newf("unsafe symlink target in archive: %s -> %s", hdr.Name, hdr.Linkname)
		}
		if err := ensureParentInside(dest, root, hdr.Name); err != nil {
			return err
		}
		if err := os.Symlink(hdr.Linkname, dest); err != nil {
			return errors.Wrapf(err, "linking %s", clean)
		}

	default:
		// Hard links, devices and the like do not appear in release
		// tarballs; skip rather than fail.
	}
	return nil
}

// escapes reports whether a cleaned relative path leaves its root.
func escapes(clean string) bool {
	return clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

// ensureParentInside creates the entry's parent directory and verifies
// that, with all symlinks resolved, it still lies under root.
func ensureParentInside(dest, root, name string) error {
	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return errors.Wrapf(err, "creating parent of %s", name)
	}
	resolved, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return errors.Wrapf(err, "resolving parent of %s", name)
	}
	if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return errors.Newf("unsafe archive path: %s resolves outside the destination", name)
	}
	return nil
}

// refuseSymlinkAt rejects an entry whose destination is occupied by a
// symlink, which would redirect the write elsewhere.
func refuseSymlinkAt(dest, name string) error {
	info, err := os.Lstat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "inspecting destination of %s", name)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return errors.Newf("refusing to write through symlink: %s", name)
	}
	return nil
}

// stripLeadingComponent drops the first path component of a tar entry
// name. Returns false when nothing remains.
func stripLeadingComponent(name string) (string, bool) {
	name = strings.TrimPrefix(name, "./")
	idx := strings.IndexByte(name, '/')
	if idx < 0 {
		return "", false
	}
	rest := strings.TrimPrefix(name[idx+1:], "/")
	if rest == "" {
		return "", false
	}
	return rest, true
}
