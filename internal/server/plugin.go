package server

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/cockroachdb/errors"

	esvmerrors "github.com/thoreinstein/esvm/internal/errors"
)

// Plugin subcommands understood by the façade.
const (
	PluginList    = "list"
	PluginInstall = "install"
	PluginRemove  = "remove"
)

// runCommand executes a command with wired stdio; a test seam.
var runCommand = func(ctx context.Context, dir, bin string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Plugin proxies a plugin-management subcommand to the active version's
// plugin tool. The verb and name are validated before any external
// executable is touched.
func (s *Server) Plugin(ctx context.Context, subcommand, name string, stdout, stderr io.Writer) error {
	switch subcommand {
	case PluginList, PluginInstall, PluginRemove:
	default:
		return errors.Wrapf(esvmerrors.ErrUnknownCommand, "plugin %s", subcommand)
	}
	if subcommand != PluginList && name == "" {
		return errors.Wrapf(esvmerrors.ErrMissingPluginName, "plugin %s", subcommand)
	}

	current, ok, err := s.reg.Current()
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithStack(esvmerrors.ErrNoActiveVersion)
	}

	tool := pluginToolFor(current.Major())
	dir := s.reg.VersionDir(current)
	bin := filepath.Join(dir, tool.binary)
	if _, err := os.Stat(bin); err != nil {
		return errors.Wrapf(err, "plugin tool not found for %s", current)
	}

	args := []string{tool.verbs[subcommand]}
	if name != "" {
		args = append(args, name)
	}

	s.log.Debug("running plugin tool", "bin", bin, "args", args)
	if err := runCommand(ctx, dir, bin, args, stdout, stderr); err != nil {
		return errors.Wrapf(err, "plugin %s", subcommand)
	}
	return nil
}
