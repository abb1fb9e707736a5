package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunStatus_NoActiveVersion(t *testing.T) {
	testHome(t)

	var buf bytes.Buffer
	if err := runStatusWithIO(testCmd(t), &buf); err != nil {
		t.Fatalf("runStatusWithIO() error = %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "not running (no active version)") {
		t.Errorf("output = %q, want no-active-version status", got)
	}
}

func TestRunStatus_NotRunning(t *testing.T) {
	home := testHome(t)
	installFake(t, home, "5.3.1")
	activate(t, home, "5.3.1")

	var buf bytes.Buffer
	if err := runStatusWithIO(testCmd(t), &buf); err != nil {
		t.Fatalf("runStatusWithIO() error = %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "elasticsearch 5.3.1 is not running") {
		t.Errorf("output = %q, want not-running status", got)
	}
}
