package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/axon-graph/axon/core/config"
	"github.com/axon-graph/axon/core/database"
	"github.com/axon-graph/axon/core/knowledge/graph"
	"github.com/axon-graph/axon/core/knowledge/pipeline"
	"github.com/axon-graph/axon/core/search/git"
	"github.com/axon-graph/axon/core/storage"
	"github.com/axon-graph/axon/core/storage/sqlite"
	"github.com/spf13/cobra"
)

var (
	analyzeSourceRoots  []string
	analyzeIgnoreFiles  []string
	analyzeNoEmbed      bool
	analyzeEmbedModel   string
	analyzeEmbedBatch   int
	analyzeCouplingDays int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>",
	Short: "Build the knowledge graph for a repository",
	Long: `Walk the repository at path, run the twelve-phase analysis pipeline,
and persist the resulting knowledge graph to <path>/.axon/graph.db.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzeSourceRoots, "source-root", nil, "package-absolute import roots (default: project config, or \".\")")
	analyzeCmd.Flags().StringSliceVar(&analyzeIgnoreFiles, "ignore-file", nil, "additional ignore file names beyond .gitignore")
	analyzeCmd.Flags().BoolVar(&analyzeNoEmbed, "no-embed", false, "skip the embedding phase")
	analyzeCmd.Flags().StringVar(&analyzeEmbedModel, "embedding-model", "", "embedding encoder, e.g. hash-384 (default: project config)")
	analyzeCmd.Flags().IntVar(&analyzeEmbedBatch, "embedding-batch", 0, "embedding batch size (default: project config)")
	analyzeCmd.Flags().IntVar(&analyzeCouplingDays, "coupling-window-days", 0, "change-coupling lookback window in days (default: project config)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dirs, err := storage.ResolveDirs()
	if err != nil {
		return fmt.Errorf("resolve directories: %w", err)
	}
	cfgMgr := config.NewManager(dirs)
	if err := cfgMgr.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := cfgMgr.Get()

	opts := pipeline.Options{
		Root:            root,
		EnabledPhases:   cfg.EnabledPhases,
		SourceRoots:     cfg.SourceRoots,
		IgnoreFiles:     cfg.IgnoreFiles,
		ConfidenceFloor: float32(cfg.ConfidenceFloor),
		EmbeddingOn:     cfg.Embedding.Enabled,
		EmbeddingModel:  cfg.Embedding.Model,
		EmbeddingBatch:  cfg.Embedding.BatchSize,
		Coupling: pipeline.CouplingOptions{
			WindowDays:   cfg.Coupling.WindowDays,
			MinCoChanges: cfg.Coupling.MinCoChanges,
			MinStrength:  cfg.Coupling.MinStrength,
		},
	}
	if len(analyzeSourceRoots) > 0 {
		opts.SourceRoots = analyzeSourceRoots
	}
	if len(analyzeIgnoreFiles) > 0 {
		opts.IgnoreFiles = analyzeIgnoreFiles
	}
	if analyzeNoEmbed {
		opts.EmbeddingOn = false
	}
	if analyzeEmbedModel != "" {
		opts.EmbeddingModel = analyzeEmbedModel
	}
	if analyzeEmbedBatch > 0 {
		opts.EmbeddingBatch = analyzeEmbedBatch
	}
	if analyzeCouplingDays > 0 {
		opts.Coupling.WindowDays = analyzeCouplingDays
	}

	ctx := cmd.Context()
	g, summary, err := pipeline.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	projectDirs := storage.ResolveProjectDirs(root)
	dbPath := filepath.Join(projectDirs.Root, "graph.db")
	dbMgr := database.NewManager(&storage.Dirs{})
	backend, err := sqlite.Open(ctx, dbMgr, dbPath)
	if err != nil {
		return fmt.Errorf("open graph store: %w", err)
	}
	defer backend.Close()

	if err := persistGraph(ctx, backend, g); err != nil {
		return fmt.Errorf("persist graph: %w", err)
	}

	meta := summaryToMeta(summary, g)
	if commit, err := headCommitOf(root); err == nil {
		meta.CommitHash = commit
	}
	if err := sqlite.WriteMeta(projectDirs.Root, meta); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}

	slog.Info("analyze complete",
		slog.String("root", root),
		slog.Int("nodes", summary.NodeCount),
		slog.Int("edges", summary.EdgeCount))
	fmt.Printf("analyzed %s: %d nodes, %d edges\n", root, summary.NodeCount, summary.EdgeCount)
	return nil
}

func persistGraph(ctx context.Context, backend *sqlite.Backend, g *graph.KnowledgeGraph) error {
	if err := backend.UpsertNodes(ctx, g.Nodes()); err != nil {
		return err
	}
	if err := backend.UpsertEdges(ctx, g.Edges()); err != nil {
		return err
	}
	for _, kind := range symbolKinds {
		if err := backend.CreateFTSIndex(ctx, kind); err != nil {
			return err
		}
	}
	return nil
}

var symbolKinds = []graph.NodeKind{
	graph.KindFolder, graph.KindFile, graph.KindFunction, graph.KindClass,
	graph.KindMethod, graph.KindInterface, graph.KindTypeAlias, graph.KindEnum,
	graph.KindCommunity, graph.KindProcess,
}

func summaryToMeta(summary *pipeline.Summary, g *graph.KnowledgeGraph) *sqlite.Meta {
	m := &sqlite.Meta{
		SchemaVersion: sqlite.CurrentSchemaVersion,
		RunAt:         time.Now(),
		NodeCounts:    map[string]int{},
		EdgeCounts:    map[string]int{},
	}
	for _, p := range summary.Phases {
		t := sqlite.PhaseTiming{
			Phase:      p.Name,
			Skipped:    p.Skipped,
			DurationMs: p.Duration.Milliseconds(),
		}
		if p.Err != nil {
			t.Error = p.Err.Error()
		}
		m.Phases = append(m.Phases, t)
	}
	for _, n := range g.Nodes() {
		m.NodeCounts[n.Kind.String()]++
	}
	for _, e := range g.Edges() {
		m.EdgeCounts[e.Type.String()]++
	}
	return m
}

func headCommitOf(root string) (string, error) {
	client, err := git.NewGitClient(root)
	if err != nil {
		return "", err
	}
	return client.GetHeadCommit()
}
