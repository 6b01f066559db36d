package main

import (
	"fmt"
	"path/filepath"

	"github.com/axon-graph/axon/core/storage"
	"github.com/axon-graph/axon/core/storage/sqlite"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <path>",
	Short: "Show the last analyze run's phase timings and graph counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	projectDirs := storage.ResolveProjectDirs(root)
	meta, err := sqlite.ReadMeta(projectDirs.Root)
	if err != nil {
		return fmt.Errorf("read %s: %w (has this repository been analyzed?)", projectDirs.Root, err)
	}

	fmt.Printf("schema version: %d\n", meta.SchemaVersion)
	if meta.CommitHash != "" {
		fmt.Printf("commit:         %s\n", meta.CommitHash)
	}
	fmt.Printf("run at:         %s\n\n", meta.RunAt.Format("2006-01-02 15:04:05"))

	fmt.Println("phases:")
	for _, p := range meta.Phases {
		switch {
		case p.Skipped:
			fmt.Printf("  %-10s skipped\n", p.Phase)
		case p.Error != "":
			fmt.Printf("  %-10s %6dms  error: %s\n", p.Phase, p.DurationMs, p.Error)
		default:
			fmt.Printf("  %-10s %6dms\n", p.Phase, p.DurationMs)
		}
	}

	fmt.Println("\nnodes:")
	for kind, n := range meta.NodeCounts {
		fmt.Printf("  %-10s %d\n", kind, n)
	}
	fmt.Println("\nedges:")
	for kind, n := range meta.EdgeCounts {
		fmt.Printf("  %-16s %d\n", kind, n)
	}
	return nil
}
