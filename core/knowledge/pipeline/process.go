package pipeline

import (
	"strings"

	"github.com/axon-graph/axon/core/knowledge/graph"
)

const (
	flowMaxDepth     = 6
	flowMaxBranching = 4
	flowDedupOverlap = 0.7
)

// flow is one entry point's traversal before it becomes a Process node.
type flow struct {
	entry   *graph.Node
	visited []string // symbol IDs in BFS order
	steps   map[string]int
}

// DetectProcesses finds entry points by framework-aware pattern match, BFS
// traces each one over CALLS edges, deduplicates near-identical flows, and
// emits one Process node plus STEP_IN_PROCESS edges per surviving flow.
func DetectProcesses(g *graph.KnowledgeGraph, sink *graph.Sink) {
	entries := findEntryPoints(g)
	var flows []flow
	for _, e := range entries {
		flows = append(flows, traceFlow(e, g))
	}
	flows = deduplicateFlows(flows)

	memberOf := communityOf(g)

	for _, f := range flows {
		name := generateProcessLabel(f, g)
		kind := classifyFlow(f, memberOf)
		proc := &graph.Node{
			ID:            graph.FreshID(graph.KindProcess),
			Kind:          graph.KindProcess,
			Name:          name,
			EntrySymbolID: f.entry.ID,
			ProcessKind:   kind,
		}
		sink.AddNode(proc)
		for _, symID := range f.visited {
			sink.AddEdge(&graph.Edge{
				SourceID:   symID,
				TargetID:   proc.ID,
				Type:       graph.EdgeStepInProcess,
				StepNumber: f.steps[symID],
			})
		}
	}
}

var pythonEntryDecorators = []string{"app.route", "router.get", "router.post", "router.put", "router.delete", "click.command"}
var csharpEntryAttrs = []string{"HttpGet", "HttpPost", "Route", "ApiController", "Fact", "Test", "TestMethod"}

// findEntryPoints applies the framework-pattern rules of spec.md §4.9.
func findEntryPoints(g *graph.KnowledgeGraph) []*graph.Node {
	var out []*graph.Node
	langByPath := map[string]string{}
	for _, n := range g.NodesByKind(graph.KindFile) {
		langByPath[n.Path] = n.Language
	}
	for _, n := range g.Nodes() {
		if n.Kind != graph.KindFunction && n.Kind != graph.KindMethod {
			continue
		}
		if isEntryPoint(n, langByPath[n.Path]) {
			out = append(out, n)
		}
	}
	return out
}

func isEntryPoint(n *graph.Node, lang string) bool {
	switch lang {
	case "python":
		if matchesAnyDecorator(n.Decorators, pythonEntryDecorators) {
			return true
		}
		if strings.HasPrefix(n.Name, "test_") {
			return true
		}
		if n.Name == "__main__" {
			// Module-level code guarded by `if __name__ == "__main__":`,
			// synthesized as a Function symbol by the Python extractor.
			return true
		}
	case "typescript", "javascript":
		if n.Name == "handler" || n.Name == "middleware" {
			return true
		}
		if strings.Contains(n.Signature, "req") && strings.Contains(n.Signature, "res") {
			return true
		}
	case "csharp":
		if n.Name == "Main" {
			return true
		}
		if matchesAnyDecorator(n.Decorators, csharpEntryAttrs) {
			return true
		}
	}
	return false
}

func matchesAnyDecorator(decorators, patterns []string) bool {
	for _, d := range decorators {
		for _, p := range patterns {
			if d == p || strings.HasPrefix(d, p) {
				return true
			}
		}
	}
	return false
}

func traceFlow(entry *graph.Node, g *graph.KnowledgeGraph) flow {
	f := flow{entry: entry, steps: map[string]int{entry.ID: 0}}
	f.visited = append(f.visited, entry.ID)

	type frontier struct {
		id    string
		depth int
	}
	queue := []frontier{{entry.ID, 0}}
	visitedSet := map[string]bool{entry.ID: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= flowMaxDepth {
			continue
		}
		edges := g.Out(cur.id, graph.EdgeCalls)
		sortEdgesByConfidenceDesc(edges)
		branched := 0
		for _, e := range edges {
			if branched >= flowMaxBranching {
				break
			}
			if visitedSet[e.TargetID] {
				continue
			}
			visitedSet[e.TargetID] = true
			f.steps[e.TargetID] = cur.depth + 1
			f.visited = append(f.visited, e.TargetID)
			queue = append(queue, frontier{e.TargetID, cur.depth + 1})
			branched++
		}
	}
	return f
}

func sortEdgesByConfidenceDesc(edges []*graph.Edge) {
	for i := 1; i < len(edges); i++ {
		for j := i; j > 0 && edges[j-1].Confidence < edges[j].Confidence; j-- {
			edges[j-1], edges[j] = edges[j], edges[j-1]
		}
	}
}

// deduplicateFlows discards the smaller of two flows whose visited-symbol
// sets overlap more than 70%.
func deduplicateFlows(flows []flow) []flow {
	keep := make([]bool, len(flows))
	for i := range flows {
		keep[i] = true
	}
	for i := 0; i < len(flows); i++ {
		if !keep[i] {
			continue
		}
		for j := i + 1; j < len(flows); j++ {
			if !keep[j] {
				continue
			}
			if overlapRatio(flows[i], flows[j]) > flowDedupOverlap {
				if len(flows[i].visited) >= len(flows[j].visited) {
					keep[j] = false
				} else {
					keep[i] = false
				}
			}
		}
	}
	var out []flow
	for i, f := range flows {
		if keep[i] {
			out = append(out, f)
		}
	}
	return out
}

func overlapRatio(a, b flow) float64 {
	setB := make(map[string]bool, len(b.visited))
	for _, id := range b.visited {
		setB[id] = true
	}
	shared := 0
	for _, id := range a.visited {
		if setB[id] {
			shared++
		}
	}
	smaller := len(a.visited)
	if len(b.visited) < smaller {
		smaller = len(b.visited)
	}
	if smaller == 0 {
		return 0
	}
	return float64(shared) / float64(smaller)
}

// generateProcessLabel arrow-joins the entry point's name and up to three
// more symbol names taken in BFS visit order.
func generateProcessLabel(f flow, g *graph.KnowledgeGraph) string {
	names := []string{f.entry.Name}
	for _, id := range f.visited[1:] {
		if len(names) >= 4 {
			break
		}
		if n := g.Node(id); n != nil {
			names = append(names, n.Name)
		}
	}
	return strings.Join(names, " -> ")
}

func communityOf(g *graph.KnowledgeGraph) map[string]string {
	out := map[string]string{}
	for _, e := range g.Edges() {
		if e.Type == graph.EdgeMemberOf {
			out[e.SourceID] = e.TargetID
		}
	}
	return out
}

func classifyFlow(f flow, memberOf map[string]string) string {
	var first string
	for i, id := range f.visited {
		c, ok := memberOf[id]
		if !ok {
			return "unknown"
		}
		if i == 0 {
			first = c
			continue
		}
		if c != first {
			return "cross-community"
		}
	}
	return "intra-community"
}
