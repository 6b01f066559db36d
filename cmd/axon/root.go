// Package main implements the axon CLI, the thin collaborator spec.md §6
// names as the storage-backend consumer: analyze and status are
// implemented against the pipeline driver and the sqlite backend; every
// other command named in spec.md is a documented stub.
package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "axon",
	Short: "Axon - a code intelligence engine",
	Long:  `Axon ingests a source repository and builds a queryable knowledge graph of its structure, call relationships, communities, execution flows, dead code, and change coupling.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(deadCodeCmd)
	rootCmd.AddCommand(cypherCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(serveCmd)
}
