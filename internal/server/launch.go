package server

import (
	"fmt"
	"path/filepath"
)

// PIDFileName is the process record written by the launched server.
const PIDFileName = "esvm.pid"

// serverBinary is the launcher relative to a version directory.
const serverBinary = "bin/elasticsearch"

// configFlagFormats maps legacy major lines to their config flag
// spelling. Majors not present use modernConfigFlag. Adding a product
// line is a data change, not a code change.
var configFlagFormats = map[int]string{
	0: "-Des.config=%s/elasticsearch.yml",
	1: "-Des.config=%s/elasticsearch.yml",
	2: "-Des.path.conf=%s",
	3: "-Des.path.conf=%s",
	4: "-Des.path.conf=%s",
}

// modernConfigFlag is the 5.x+ settings syntax.
const modernConfigFlag = "-Epath.conf=%s"

// configFlag renders the config-directory argument for a major line.
func configFlag(major int, configDir string) string {
	format, ok := configFlagFormats[major]
	if !ok {
		format = modernConfigFlag
	}
	return fmt.Sprintf(format, configDir)
}

// LaunchArgs builds the argument list for starting the server daemonized
// with its PID file. configDir may be empty.
func LaunchArgs(major int, pidPath, configDir string) []string {
	args := []string{"-d", "-p", pidPath}
	if configDir != "" {
		args = append(args, configFlag(major, configDir))
	}
	return args
}

// pluginTool describes one generation of the plugin management
// executable.
type pluginTool struct {
	// binary is the executable path relative to the version directory.
	binary string
	// verbs maps the esvm subcommand to the tool's spelling of it.
	verbs map[string]string
}

// legacyPluginTool covers majors before 5 (bin/plugin, double-dash verbs).
var legacyPluginTool = pluginTool{
	binary: filepath.Join("bin", "plugin"),
	verbs: map[string]string{
		"list":    "--list",
		"install": "--install",
		"remove":  "--remove",
	},
}

// modernPluginTool covers 5.x and later.
var modernPluginTool = pluginTool{
	binary: filepath.Join("bin", "elasticsearch-plugin"),
	verbs: map[string]string{
		"list":    "list",
		"install": "install",
		"remove":  "remove",
	},
}

// pluginTools maps legacy major lines to their tool; majors not present
// use the modern tool.
var pluginTools = map[int]pluginTool{
	0: legacyPluginTool,
	1: legacyPluginTool,
	2: legacyPluginTool,
	3: legacyPluginTool,
	4: legacyPluginTool,
}

// pluginToolFor returns the plugin tool for a major line.
func pluginToolFor(major int) pluginTool {
	if tool, ok := pluginTools[major]; ok {
		return tool
	}
	return modernPluginTool
}
