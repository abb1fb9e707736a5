package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunWhich_ActiveVersion(t *testing.T) {
	home := testHome(t)
	installFake(t, home, "5.3.1")
	activate(t, home, "5.3.1")

	var buf bytes.Buffer
	if err := runWhichWithIO(nil, &buf); err != nil {
		t.Fatalf("runWhichWithIO() error = %v", err)
	}
	want := filepath.Join(home, "elasticsearch-5.3.1")
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunWhich_NoActiveVersion(t *testing.T) {
	testHome(t)

	var buf bytes.Buffer
	if err := runWhichWithIO(nil, &buf); err != nil {
		t.Fatalf("runWhichWithIO() error = %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "no active version") {
		t.Errorf("output = %q, want soft no-active-version message", got)
	}
}

func TestRunWhich_SpecificVersion(t *testing.T) {
	home := testHome(t)
	installFake(t, home, "2.4.6")

	var buf bytes.Buffer
	if err := runWhichWithIO([]string{"2.4.6"}, &buf); err != nil {
		t.Fatalf("runWhichWithIO() error = %v", err)
	}
	want := filepath.Join(home, "elasticsearch-2.4.6")
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunWhich_NotInstalledIsSoft(t *testing.T) {
	testHome(t)

	var buf bytes.Buffer
	if err := runWhichWithIO([]string{"9.9.9"}, &buf); err != nil {
		t.Fatalf("missing version should not fail, got %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "9.9.9 is not installed") {
		t.Errorf("output = %q, want not-installed message", got)
	}
}

func TestRunWhich_WildcardResolves(t *testing.T) {
	home := testHome(t)
	installFake(t, home, "5.3.1")
	installFake(t, home, "5.3.4")

	var buf bytes.Buffer
	if err := runWhichWithIO([]string{"5.3.*"}, &buf); err != nil {
		t.Fatalf("runWhichWithIO() error = %v", err)
	}
	want := filepath.Join(home, "elasticsearch-5.3.4")
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
