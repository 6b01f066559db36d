package pipeline

import (
	"sort"
	"time"

	"github.com/axon-graph/axon/core/knowledge/graph"
	"github.com/axon-graph/axon/core/search/git"
)

const (
	defaultCouplingWindowDays  = 180
	defaultCouplingMinCoChange = 3
	defaultCouplingMinStrength = 0.3
)

// CouplingOptions tunes the change-coupling window and thresholds; the
// driver passes it in from Options.Coupling.
type CouplingOptions struct {
	WindowDays   int
	MinCoChanges int
	MinStrength  float64
}

func (o CouplingOptions) orDefaults() CouplingOptions {
	if o.WindowDays <= 0 {
		o.WindowDays = defaultCouplingWindowDays
	}
	if o.MinCoChanges <= 0 {
		o.MinCoChanges = defaultCouplingMinCoChange
	}
	if o.MinStrength <= 0 {
		o.MinStrength = defaultCouplingMinStrength
	}
	return o
}

// DetectChangeCoupling walks the commit history of the last WindowDays days
// and emits a symmetric COUPLED_WITH edge between every pair of File nodes
// that co-changed at least MinCoChanges times with strength at or above
// MinStrength, where strength is co-changes divided by the larger of the
// two files' individual change counts. Each unordered pair is scored once
// and written as two directed edges (A->B and B->A) with identical
// properties.
func DetectChangeCoupling(client *git.GitClient, g *graph.KnowledgeGraph, sink *graph.Sink, opts CouplingOptions) error {
	opts = opts.orDefaults()

	since := time.Now().AddDate(0, 0, -opts.WindowDays)
	commits, err := client.GetCommitsSince(since)
	if err != nil {
		return err
	}

	changeCount := map[string]int{}
	coChange := map[[2]string]int{}

	for _, c := range commits {
		files := dedupPaths(c.FilesChanged)
		for _, f := range files {
			changeCount[f]++
		}
		sort.Strings(files)
		for i := 0; i < len(files); i++ {
			for j := i + 1; j < len(files); j++ {
				coChange[[2]string{files[i], files[j]}]++
			}
		}
	}

	fileIDByPath := map[string]string{}
	for _, n := range g.NodesByKind(graph.KindFile) {
		fileIDByPath[n.Path] = n.ID
	}

	for pair, count := range coChange {
		if count < opts.MinCoChanges {
			continue
		}
		a, b := pair[0], pair[1]
		maxCount := changeCount[a]
		if changeCount[b] > maxCount {
			maxCount = changeCount[b]
		}
		if maxCount == 0 {
			continue
		}
		strength := float64(count) / float64(maxCount)
		if strength < opts.MinStrength {
			continue
		}
		aID, aOK := fileIDByPath[a]
		bID, bOK := fileIDByPath[b]
		if !aOK || !bOK {
			continue
		}
		sink.AddEdge(&graph.Edge{SourceID: aID, TargetID: bID, Type: graph.EdgeCoupledWith, Strength: strength, CoChanges: count})
		sink.AddEdge(&graph.Edge{SourceID: bID, TargetID: aID, Type: graph.EdgeCoupledWith, Strength: strength, CoChanges: count})
	}

	return nil
}

func dedupPaths(paths []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
