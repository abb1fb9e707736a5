package server

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/shirou/gopsutil/v3/process"

	esvmerrors "github.com/thoreinstein/esvm/internal/errors"
	"github.com/thoreinstein/esvm/internal/registry"
)

// Server drives the Elasticsearch process for the active version.
type Server struct {
	reg          *registry.Registry
	startTimeout time.Duration
	log          *slog.Logger

	// launch starts the server binary detached; a test seam.
	launch func(dir, bin string, args []string) error
}

// Config carries the lifecycle knobs.
type Config struct {
	// StartTimeout bounds the wait for the PID file after launch.
	StartTimeout time.Duration
	// Logger receives progress messages; nil means slog.Default.
	Logger *slog.Logger
}

// New creates a Server over the given registry.
func New(reg *registry.Registry, cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.StartTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &Server{
		reg:          reg,
		startTimeout: timeout,
		log:          log,
	}
	s.launch = s.launchDetached
	return s
}

// PIDPath returns the process record location.
func (s *Server) PIDPath() string {
	return filepath.Join(s.reg.Home(), PIDFileName)
}

// livePID returns the recorded PID when the process behind it is alive.
func (s *Server) livePID() (int32, bool, error) {
	pid, ok, err := readPIDFile(s.PIDPath())
	if err != nil || !ok {
		return 0, false, err
	}
	alive, err := process.PidExists(pid)
	if err != nil {
		return 0, false, errors.Wrap(err, "checking process table")
	}
	if !alive {
		return pid, false, nil
	}
	return pid, true, nil
}

// Status describes the running state.
type Status struct {
	Running bool
	PID     int32
	Version registry.Version
}

// Status reports whether the server is running and under which version.
// It is read-only and succeeds even when nothing is active.
func (s *Server) Status() (Status, error) {
	current, _, err := s.reg.Current()
	if err != nil {
		return Status{}, err
	}
	pid, alive, err := s.livePID()
	if err != nil {
		return Status{}, err
	}
	return Status{Running: alive, PID: pid, Version: current}, nil
}

// Start launches the active version daemonized and waits, bounded, for
// its PID file to appear. configDir optionally points the server at a
// configuration directory and must exist when given.
func (s *Server) Start(ctx context.Context, configDir string) (registry.Version, error) {
	if _, alive, err := s.livePID(); err != nil {
		return registry.Version{}, err
	} else if alive {
		return registry.Version{}, errors.WithStack(esvmerrors.ErrAlreadyRunning)
	}

	current, ok, err := s.reg.Current()
	if err != nil {
		return registry.Version{}, err
	}
	if !ok {
		return registry.Version{}, errors.WithStack(esvmerrors.ErrNoActiveVersion)
	}

	if configDir != "" {
		info, err := os.Stat(configDir)
		if err != nil || !info.IsDir() {
			return registry.Version{}, errors.Wrapf(esvmerrors.ErrInvalidPath,
				"config path %q is not a directory", configDir)
		}
	}

	// A dead process may have left its record behind.
	if err := os.Remove(s.PIDPath()); err != nil && !os.IsNotExist(err) {
		return registry.Version{}, errors.Wrap(err, "clearing stale PID file")
	}

	dir := s.reg.VersionDir(current)
	args := LaunchArgs(current.Major(), s.PIDPath(), configDir)
	s.log.Info("starting", "version", current.String(), "args", args)

	if err := s.launch(dir, filepath.Join(dir, serverBinary), args); err != nil {
		return registry.Version{}, err
	}

	if err := s.waitForPIDFile(ctx); err != nil {
		return registry.Version{}, err
	}
	return current, nil
}

// launchDetached starts the binary fire-and-forget. The -d flag makes
// the server daemonize itself, so the direct child exits quickly; a
// goroutine reaps it.
func (s *Server) launchDetached(dir, bin string, args []string) error {
	if _, err := os.Stat(bin); err != nil {
		return errors.Wrapf(err, "server binary not found at %s", bin)
	}
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	cmd.Stdout = nil
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "launching server")
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// waitForPIDFile polls for the process record with exponential backoff,
// bounded by the configured start timeout.
func (s *Server) waitForPIDFile(ctx context.Context) error {
	notYet := errors.New("not yet")

	op := func() error {
		pid, ok, err := readPIDFile(s.PIDPath())
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return notYet
		}
		alive, err := process.PidExists(pid)
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "checking process table"))
		}
		if !alive {
			return notYet
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = s.startTimeout

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if errors.Is(err, notYet) {
			return errors.Wrapf(esvmerrors.ErrStartTimeout, "after %s", s.startTimeout)
		}
		return err
	}
	return nil
}

// Stop sends a termination signal to the recorded process. A missing or
// stale record is NotRunning; the stale file is cleared on the way out.
func (s *Server) Stop() (int32, error) {
	pid, ok, err := readPIDFile(s.PIDPath())
	if err != nil {
		return 0, err
	}
	if !ok {
		// A corrupt record counts as no record; clear it on the way out.
		_ = os.Remove(s.PIDPath())
		return 0, errors.WithStack(esvmerrors.ErrNotRunning)
	}

	alive, err := process.PidExists(pid)
	if err != nil {
		return 0, errors.Wrap(err, "checking process table")
	}
	if !alive {
		// Recorded process died on its own; do not signal a recycled PID.
		_ = os.Remove(s.PIDPath())
		return 0, errors.Wrapf(esvmerrors.ErrNotRunning, "stale PID %d", pid)
	}

	proc, err := process.NewProcess(pid)
	if err != nil {
		return 0, errors.Wrapf(err, "finding process %d", pid)
	}
	if err := proc.Terminate(); err != nil {
		return 0, errors.Wrapf(err, "terminating process %d", pid)
	}
	s.log.Debug("sent termination signal", "pid", pid)
	return pid, nil
}
