package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestRunList_Empty(t *testing.T) {
	testHome(t)

	var buf bytes.Buffer
	if err := runListWithIO(&buf, "text"); err != nil {
		t.Fatalf("runListWithIO() error = %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "No versions installed") {
		t.Errorf("output = %q, want empty-state message", got)
	}
}

func TestRunList_TextMarksActive(t *testing.T) {
	home := testHome(t)
	installFake(t, home, "5.3.1")
	installFake(t, home, "6.2.0")
	activate(t, home, "5.3.1")

	var buf bytes.Buffer
	if err := runListWithIO(&buf, "text"); err != nil {
		t.Fatalf("runListWithIO() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	// Descending order, asterisk on the active one.
	if !strings.Contains(lines[0], "6.2.0") || strings.Contains(lines[0], "*") {
		t.Errorf("first line = %q, want inactive 6.2.0", lines[0])
	}
	if !strings.Contains(lines[1], "5.3.1") || !strings.Contains(lines[1], "*") {
		t.Errorf("second line = %q, want active 5.3.1", lines[1])
	}
}

func TestRunList_JSON(t *testing.T) {
	home := testHome(t)
	installFake(t, home, "2.4.6")
	installFake(t, home, "5.3.1")
	activate(t, home, "5.3.1")

	var buf bytes.Buffer
	if err := runListWithIO(&buf, "json"); err != nil {
		t.Fatalf("runListWithIO() error = %v", err)
	}

	var entries []listEntry
	if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Version != "5.3.1" || !entries[0].Active {
		t.Errorf("first entry = %+v, want active 5.3.1", entries[0])
	}
	if entries[1].Version != "2.4.6" || entries[1].Active {
		t.Errorf("second entry = %+v, want inactive 2.4.6", entries[1])
	}
}

func TestRunList_YAML(t *testing.T) {
	home := testHome(t)
	installFake(t, home, "1.7.6")

	var buf bytes.Buffer
	if err := runListWithIO(&buf, "yaml"); err != nil {
		t.Fatalf("runListWithIO() error = %v", err)
	}

	var entries []listEntry
	if err := yaml.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}
	if len(entries) != 1 || entries[0].Version != "1.7.6" {
		t.Errorf("entries = %+v, want just 1.7.6", entries)
	}
}

func TestRunList_UnknownFormat(t *testing.T) {
	testHome(t)

	if err := runListWithIO(&bytes.Buffer{}, "xml"); err == nil {
		t.Fatal("expected error for unknown output format")
	}
}
