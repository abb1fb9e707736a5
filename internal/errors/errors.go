package errors

import (
	"errors"
	"fmt"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, missing argument, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, network, permissions, etc.).
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrInvalidVersion indicates a version string does not match the
	// required <major>.<minor>.<patch|*> form.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrNotInstalled indicates the requested version is not installed.
	ErrNotInstalled = errors.New("version not installed")

	// ErrAlreadyInstalled indicates the version's directory already exists.
	ErrAlreadyInstalled = errors.New("version already installed")

	// ErrVersionInUse indicates removal was blocked because the version
	// is the active one.
	ErrVersionInUse = errors.New("version is in use")

	// ErrNoActiveVersion indicates no version is currently active.
	ErrNoActiveVersion = errors.New("no active version")

	// ErrAlreadyRunning indicates the server process is already running.
	ErrAlreadyRunning = errors.New("elasticsearch is already running")

	// ErrNotRunning indicates no running server process was found.
	ErrNotRunning = errors.New("elasticsearch is not running")

	// ErrInvalidPath indicates a user-supplied path does not exist or is
	// not a directory.
	ErrInvalidPath = errors.New("invalid path")

	// ErrMissingPluginName indicates a plugin subcommand that needs a
	// plugin name was called without one.
	ErrMissingPluginName = errors.New("plugin name is required")

	// ErrUnknownCommand indicates an unrecognized plugin subcommand.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrDownload indicates the release archive could not be fetched from
	// any configured mirror.
	ErrDownload = errors.New("download failed")

	// ErrChecksumMismatch indicates the downloaded archive did not match
	// its detached checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrStartTimeout indicates the server did not write its PID file
	// within the configured startup window.
	ErrStartTimeout = errors.New("timed out waiting for elasticsearch to start")
)

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Code extracts the exit code from an error chain.
// It returns ExitSuccess for nil, the embedded code when an ExitError is
// found, and ExitUser otherwise.
func Code(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUser
}
