// Package pipeline implements the twelve-phase analysis run: walk the repo,
// build the structural skeleton, parse symbols, resolve cross-file
// relationships, then derive communities, execution flows, dead code, and
// change coupling over the finished graph.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	axonerrors "github.com/axon-graph/axon/core/errors"
	"github.com/axon-graph/axon/core/knowledge/graph"
	"github.com/axon-graph/axon/core/knowledge/pipeline/embed"
	"github.com/axon-graph/axon/core/search/git"
)

// PhaseResult records one phase's outcome for the run summary.
type PhaseResult struct {
	Name     string
	Skipped  bool
	Duration time.Duration
	Err      error
}

// Summary is the driver's account of a completed or aborted run.
type Summary struct {
	Phases    []PhaseResult
	NodeCount int
	EdgeCount int
}

// Options configures a single pipeline run. It is the driver's narrow view
// of config.Config plus the repo root, so the driver package never imports
// core/config directly.
type Options struct {
	Root            string
	EnabledPhases   []string
	SourceRoots     []string
	IgnoreFiles     []string
	ConfidenceFloor float32
	Coupling        CouplingOptions
	EmbeddingModel  string
	EmbeddingBatch  int
	EmbeddingOn     bool
}

// Run executes every enabled phase in order against a fresh graph and
// returns it along with a Summary. On a fatal error (KindCancellation,
// KindStorage, or an unexpected error from a phase that has no per-unit
// skip policy) the partially built graph is discarded and only the error is
// returned, per spec.md §5/§7's no-partial-persistence rule.
func Run(ctx context.Context, opts Options) (*graph.KnowledgeGraph, *Summary, error) {
	enabled := make(map[string]bool, len(opts.EnabledPhases))
	for _, p := range opts.EnabledPhases {
		enabled[p] = true
	}

	g := graph.New()
	summary := &Summary{}

	record := func(name string, start time.Time, err error) {
		dur := time.Since(start)
		summary.Phases = append(summary.Phases, PhaseResult{
			Name:     name,
			Duration: dur,
			Err:      err,
		})
		if err != nil {
			slog.Warn("phase completed with error",
				slog.String("phase", name),
				slog.Int64("duration_ms", dur.Milliseconds()),
				slog.String("error", err.Error()))
			return
		}
		slog.Info("phase completed",
			slog.String("phase", name),
			slog.Int64("duration_ms", dur.Milliseconds()),
			slog.Int("nodes_total", len(g.Nodes())),
			slog.Int("edges_total", len(g.Edges())))
	}

	skip := func(name string) {
		summary.Phases = append(summary.Phases, PhaseResult{Name: name, Skipped: true})
		slog.Info("phase skipped", slog.String("phase", name))
	}

	checkCancelled := func() error {
		if err := ctx.Err(); err != nil {
			return axonerrors.ErrCancelled
		}
		return nil
	}

	// Phase 1: walk.
	if !enabled["walk"] {
		return nil, nil, fmt.Errorf("pipeline: phase %q cannot be disabled", "walk")
	}
	start := time.Now()
	entries, walkErrs := Walk(opts.Root, opts.IgnoreFiles)
	for _, e := range walkErrs {
		if axonerrors.IsFatal(e) {
			record("walk", start, e)
			return nil, summary, e
		}
		slog.Warn("file skipped", slog.String("phase", "walk"), slog.String("error", e.Error()))
	}
	record("walk", start, nil)

	if err := checkCancelled(); err != nil {
		return nil, summary, err
	}

	sink := graph.NewSink(g, 512)

	// Phase 2: structure.
	if enabled["structure"] {
		start = time.Now()
		BuildStructure(entries, sink)
		record("structure", start, nil)
	} else {
		skip("structure")
	}

	// Phase 3: parse.
	var parsed ParseOutput
	if enabled["parse"] {
		start = time.Now()
		parsed = RunParsers(ctx, entries, sink)
		record("parse", start, nil)
	} else {
		skip("parse")
	}

	sink.Close()
	if err := checkCancelled(); err != nil {
		return nil, summary, err
	}

	var filePaths []string
	for _, e := range entries {
		filePaths = append(filePaths, e.Path)
	}

	// Phases 4-7 resolve the raw Phase 3 output against the graph built so
	// far. Each opens and closes its own Sink so the next phase always sees
	// a fully drained graph.
	if enabled["imports"] {
		start = time.Now()
		s := graph.NewSink(g, 512)
		ResolveImports(parsed.Imports, filePaths, opts.SourceRoots, s)
		s.Close()
		record("imports", start, nil)
	} else {
		skip("imports")
	}
	if err := checkCancelled(); err != nil {
		return nil, summary, err
	}

	if enabled["calls"] {
		start = time.Now()
		s := graph.NewSink(g, 512)
		TraceCalls(parsed.Calls, g, s, opts.ConfidenceFloor)
		s.Close()
		record("calls", start, nil)
	} else {
		skip("calls")
	}
	if err := checkCancelled(); err != nil {
		return nil, summary, err
	}

	if enabled["heritage"] {
		start = time.Now()
		s := graph.NewSink(g, 512)
		ResolveHeritage(parsed.Heritage, g, s)
		s.Close()
		record("heritage", start, nil)
	} else {
		skip("heritage")
	}
	if err := checkCancelled(); err != nil {
		return nil, summary, err
	}

	if enabled["typerefs"] {
		start = time.Now()
		s := graph.NewSink(g, 512)
		ResolveTypeRefs(parsed.TypeUses, g, s)
		s.Close()
		record("typerefs", start, nil)
	} else {
		skip("typerefs")
	}
	if err := checkCancelled(); err != nil {
		return nil, summary, err
	}

	// Phase 8: community detection.
	if enabled["community"] {
		start = time.Now()
		s := graph.NewSink(g, 512)
		DetectCommunities(g, s)
		s.Close()
		record("community", start, nil)
	} else {
		skip("community")
	}
	if err := checkCancelled(); err != nil {
		return nil, summary, err
	}

	// Phase 9: execution-flow tracing.
	if enabled["process"] {
		start = time.Now()
		s := graph.NewSink(g, 512)
		DetectProcesses(g, s)
		s.Close()
		record("process", start, nil)
	} else {
		skip("process")
	}
	if err := checkCancelled(); err != nil {
		return nil, summary, err
	}

	// Phase 10: dead-code analysis. Mutates existing nodes via MarkDead, no
	// Sink involved.
	if enabled["deadcode"] {
		start = time.Now()
		AnalyzeDeadCode(g)
		record("deadcode", start, nil)
	} else {
		skip("deadcode")
	}
	if err := checkCancelled(); err != nil {
		return nil, summary, err
	}

	// Phase 11: change coupling. Needs a git repo; a non-git root or a
	// lookup failure is a per-run skip (KindIO), not fatal to the rest of
	// the pipeline.
	if enabled["coupling"] {
		start = time.Now()
		if client, err := git.NewGitClient(opts.Root); err == nil {
			s := graph.NewSink(g, 512)
			cErr := DetectChangeCoupling(client, g, s, opts.Coupling)
			s.Close()
			record("coupling", start, cErr)
		} else {
			record("coupling", start, axonerrors.New(axonerrors.KindIO, "coupling", opts.Root, err))
		}
	} else {
		skip("coupling")
	}
	if err := checkCancelled(); err != nil {
		return nil, summary, err
	}

	// Phase 12: embeddings.
	if enabled["embed"] {
		start = time.Now()
		enc := encoderFor(opts)
		eErr := EmbedSymbols(ctx, g, enc, opts.EmbeddingBatch)
		record("embed", start, eErr)
		if eErr != nil && axonerrors.IsFatal(eErr) {
			return nil, summary, eErr
		}
	} else {
		skip("embed")
	}

	summary.NodeCount = len(g.Nodes())
	summary.EdgeCount = len(g.Edges())
	return g, summary, nil
}

func encoderFor(opts Options) embed.Encoder {
	if !opts.EmbeddingOn {
		return embed.NoopEncoder{}
	}
	dim := 384
	if n, err := fmt.Sscanf(opts.EmbeddingModel, "hash-%d", &dim); err != nil || n != 1 {
		dim = 384
	}
	return embed.HashEncoder{Dim: dim}
}
