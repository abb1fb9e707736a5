// Package server manages the lifecycle of the Elasticsearch process for
// the active version: launching it detached, tracking it through its PID
// file, stopping it, and proxying plugin commands to the version's own
// plugin tool.
//
// The server is launched fire-and-forget with -d; esvm never holds a
// parent-child relationship with it. All liveness questions go through
// the PID file plus a process-table check. Two pieces of behavior depend
// on the active version's major line and are encoded as lookup tables:
// the config-directory flag spelling (two legacy syntaxes, one modern)
// and the plugin tool (bin/plugin with double-dash verbs before 5.x,
// bin/elasticsearch-plugin after).
package server
