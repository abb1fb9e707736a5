package release

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

// tarEntry describes one file in a test archive.
type tarEntry struct {
	name     string
	body     string
	mode     int64
	dir      bool
	linkname string
}

// buildArchive writes a gzipped tarball with the given entries and
// returns its path.
func buildArchive(t *testing.T, entries []tarEntry) string {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: e.mode}
		switch {
		case e.dir:
			hdr.Typeflag = tar.TypeDir
		case e.linkname != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.linkname
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.body))
		}
		if hdr.Mode == 0 {
			if e.dir {
				hdr.Mode = 0o755
			} else {
				hdr.Mode = 0o644
			}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "elasticsearch-5.3.1.tar.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// releaseEntries is the minimal shape of a real release tarball.
func releaseEntries() []tarEntry {
	return []tarEntry{
		{name: "elasticsearch-5.3.1/", dir: true},
		{name: "elasticsearch-5.3.1/bin/", dir: true},
		{name: "elasticsearch-5.3.1/bin/elasticsearch", body: "#!/bin/sh\n", mode: 0o755},
		{name: "elasticsearch-5.3.1/config/elasticsearch.yml", body: "cluster.name: test\n"},
		{name: "elasticsearch-5.3.1/README.textile", body: "readme"},
	}
}

func TestExtract(t *testing.T) {
	archive := buildArchive(t, releaseEntries())
	dest := t.TempDir()

	if err := Extract(archive, dest); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	// Leading elasticsearch-5.3.1/ component must be stripped.
	bin := filepath.Join(dest, "bin", "elasticsearch")
	info, err := os.Stat(bin)
	if err != nil {
		t.Fatalf("stat %s: %v", bin, err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("bin/elasticsearch mode = %o, want 755", info.Mode().Perm())
	}

	yml, err := os.ReadFile(filepath.Join(dest, "config", "elasticsearch.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if string(yml) != "cluster.name: test\n" {
		t.Errorf("config content = %q", yml)
	}
}

func TestExtract_RejectsTraversal(t *testing.T) {
	archive := buildArchive(t, []tarEntry{
		{name: "elasticsearch-5.3.1/", dir: true},
		{name: "elasticsearch-5.3.1/../../evil", body: "pwned"},
	})
	dest := t.TempDir()

	if err := Extract(archive, dest); err == nil {
		t.Fatal("Extract() should reject path traversal")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "evil")); err == nil {
		t.Error("traversal entry escaped the destination")
	}
}

func TestExtract_RejectsEscapingSymlinkTarget(t *testing.T) {
	archive := buildArchive(t, []tarEntry{
		{name: "elasticsearch-5.3.1/", dir: true},
		{name: "elasticsearch-5.3.1/evil", linkname: ".."},
	})
	dest := t.TempDir()

	if err := Extract(archive, dest); err == nil {
		t.Fatal("Extract() should reject a symlink targeting outside the destination")
	}
	if _, err := os.Lstat(filepath.Join(dest, "evil")); err == nil {
		t.Error("escaping symlink must not be created")
	}
}

func TestExtract_RejectsWriteThroughEscapingSymlink(t *testing.T) {
	// A symlink out of the tree followed by a file routed through it.
	archive := buildArchive(t, []tarEntry{
		{name: "elasticsearch-5.3.1/", dir: true},
		{name: "elasticsearch-5.3.1/evil", linkname: ".."},
		{name: "elasticsearch-5.3.1/evil/pwn.txt", body: "owned"},
	})
	parent := t.TempDir()
	dest := filepath.Join(parent, "staging")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Extract(archive, dest); err == nil {
		t.Fatal("Extract() should reject the escape")
	}
	if _, err := os.Stat(filepath.Join(parent, "pwn.txt")); err == nil {
		t.Error("file escaped the destination directory")
	}
}

func TestExtract_RejectsWriteThroughInsideSymlinkChain(t *testing.T) {
	// Even a link that stays inside the tree must not receive writes at
	// its own path; the final component check catches redirection.
	archive := buildArchive(t, []tarEntry{
		{name: "elasticsearch-5.3.1/", dir: true},
		{name: "elasticsearch-5.3.1/real", body: "data"},
		{name: "elasticsearch-5.3.1/alias", linkname: "real"},
		{name: "elasticsearch-5.3.1/alias", body: "clobbered"},
	})
	dest := t.TempDir()

	if err := Extract(archive, dest); err == nil {
		t.Fatal("Extract() should refuse writing through a symlink destination")
	}
	data, err := os.ReadFile(filepath.Join(dest, "real"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "data" {
		t.Errorf("real = %q, want untouched content", data)
	}
}

func TestExtract_RejectsAbsoluteSymlink(t *testing.T) {
	archive := buildArchive(t, []tarEntry{
		{name: "elasticsearch-5.3.1/", dir: true},
		{name: "elasticsearch-5.3.1/bin/link", linkname: "/etc/passwd"},
	})

	if err := Extract(archive, t.TempDir()); err == nil {
		t.Fatal("Extract() should reject absolute symlink targets")
	}
}

func TestExtract_RelativeSymlink(t *testing.T) {
	archive := buildArchive(t, []tarEntry{
		{name: "elasticsearch-5.3.1/", dir: true},
		{name: "elasticsearch-5.3.1/bin/es", body: "#!/bin/sh\n", mode: 0o755},
		{name: "elasticsearch-5.3.1/bin/alias", linkname: "es"},
	})
	dest := t.TempDir()

	if err := Extract(archive, dest); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	target, err := os.Readlink(filepath.Join(dest, "bin", "alias"))
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if target != "es" {
		t.Errorf("symlink target = %q, want es", target)
	}
}

func TestExtract_BadArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-tarball.tar.gz")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Extract(path, t.TempDir()); err == nil {
		t.Error("Extract() should fail on a non-gzip file")
	}
}

func TestStripLeadingComponent(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"elasticsearch-5.3.1/bin/elasticsearch", "bin/elasticsearch", true},
		{"./elasticsearch-5.3.1/config/jvm.options", "config/jvm.options", true},
		{"elasticsearch-5.3.1/", "", false},
		{"toplevel", "", false},
	}
	for _, tt := range tests {
		got, ok := stripLeadingComponent(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("stripLeadingComponent(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
