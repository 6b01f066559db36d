package main

import (
	axonerrors "github.com/axon-graph/axon/core/errors"
	"github.com/spf13/cobra"
)

// The commands below are named in spec.md §6 as storage-backend consumers
// outside this component's scope (query planning, the agent-facing RPC
// server, the watcher/incremental-rebuild scheduler). They are kept in the
// CLI surface for discoverability and return ErrNotImplemented.

var cleanCmd = &cobra.Command{
	Use:   "clean <path>",
	Short: "Remove the .axon/ directory for a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  notImplemented,
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Hybrid BM25 + vector + fuzzy search over the knowledge graph",
	Args:  cobra.ExactArgs(1),
	RunE:  notImplemented,
}

var contextCmd = &cobra.Command{
	Use:   "context <symbol>",
	Short: "Print the neighborhood of a symbol: callers, callees, defining file",
	Args:  cobra.ExactArgs(1),
	RunE:  notImplemented,
}

var impactCmd = &cobra.Command{
	Use:   "impact <symbol>",
	Short: "Print the transitive blast radius of changing a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  notImplemented,
}

var deadCodeCmd = &cobra.Command{
	Use:   "dead-code <path>",
	Short: "List symbols marked dead by the analysis run",
	Args:  cobra.ExactArgs(1),
	RunE:  notImplemented,
}

var cypherCmd = &cobra.Command{
	Use:   "cypher <query-name>",
	Short: "Run a named graph query from the storage backend's catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  notImplemented,
}

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Watch a repository and incrementally re-analyze on change",
	Args:  cobra.ExactArgs(1),
	RunE:  notImplemented,
}

var diffCmd = &cobra.Command{
	Use:   "diff <path> <from> <to>",
	Short: "Show how the knowledge graph changed between two commits",
	Args:  cobra.ExactArgs(3),
	RunE:  notImplemented,
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write a default .axon/config.yaml for the current project",
	RunE:  notImplemented,
}

var serveCmd = &cobra.Command{
	Use:   "serve <path>",
	Short: "Serve the knowledge graph over the agent-facing RPC interface",
	RunE:  notImplemented,
}

func notImplemented(cmd *cobra.Command, args []string) error {
	return axonerrors.ErrNotImplemented
}
