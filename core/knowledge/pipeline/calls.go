package pipeline

import (
	"log/slog"

	"github.com/axon-graph/axon/core/knowledge/graph"
)

type callCandidate struct {
	id         string
	filePath   string
	className  string
	confidence float32
}

// symbolIndex is the read-only lookup frozen-graph snapshot the call
// tracer, heritage resolver, and type resolver all build once per run.
type symbolIndex struct {
	byName       map[string][]*graph.Node // Function/Method/Class/Interface/TypeAlias/Enum, keyed by bare Name
	byQualified  map[string][]*graph.Node // keyed by "ClassName.method" or bare function name
	importedInto map[string]map[string]bool // importing file path -> set of imported file paths
}

func buildSymbolIndex(g *graph.KnowledgeGraph) *symbolIndex {
	idx := &symbolIndex{
		byName:       map[string][]*graph.Node{},
		byQualified:  map[string][]*graph.Node{},
		importedInto: map[string]map[string]bool{},
	}
	for _, n := range g.Nodes() {
		if !n.Kind.IsSymbol() {
			continue
		}
		idx.byName[n.Name] = append(idx.byName[n.Name], n)
		qn := n.Name
		if n.Kind == graph.KindMethod {
			if cls := g.Node(n.ClassID); cls != nil {
				qn = cls.Name + "." + n.Name
			}
		}
		idx.byQualified[qn] = append(idx.byQualified[qn], n)
	}
	for _, e := range g.Edges() {
		if e.Type != graph.EdgeImports {
			continue
		}
		src := g.Node(e.SourceID)
		dst := g.Node(e.TargetID)
		if src == nil || dst == nil {
			continue
		}
		if idx.importedInto[src.Path] == nil {
			idx.importedInto[src.Path] = map[string]bool{}
		}
		idx.importedInto[src.Path][dst.Path] = true
	}
	return idx
}

// TraceCalls binds every raw call site to zero or more callee symbols per
// spec.md §4.5's confidence ladder and writes a CALLS edge for each
// binding whose confidence is at or above minConfidence. Blocklisted names
// are dropped first. Ambiguous matches are capped at three edges.
func TraceCalls(calls []CallSite, g *graph.KnowledgeGraph, sink *graph.Sink, minConfidence float32) {
	idx := buildSymbolIndex(g)

	for _, c := range calls {
		if isBlocked(c.Callee, c.Receiver) {
			continue
		}
		caller := g.Node(c.CallerID)
		if caller == nil {
			continue
		}

		candidates := resolveCallCandidates(c, caller, idx)
		if len(candidates) == 0 {
			continue
		}

		if len(candidates) > 3 {
			candidates = candidates[:3]
		}
		if len(candidates) > 1 {
			slog.Warn("unresolved call ambiguity",
				slog.String("phase", "calls"),
				slog.String("path", c.FilePath),
				slog.Int("line", c.Line),
				slog.String("callee", c.Callee),
				slog.Int("candidates", len(candidates)))
		}
		for _, cand := range candidates {
			// className is only ever set by the Rule 2 receiver-type branch in
			// resolveCallCandidates. Guarding on it being non-empty keeps this
			// suppression scoped to that branch's false positive (a receiver
			// call resolving back onto the caller's own class) instead of
			// catching every same-ID candidate: a plain recursive call or a
			// same-class self/this call never sets className, so it is never
			// mistaken for the disambiguation case and its CALLS edge survives.
			if cand.className != "" && cand.id == c.CallerID && cand.className == callerOwningClass(caller, g) {
				continue
			}
			if cand.confidence < minConfidence {
				continue
			}
			sink.AddEdge(&graph.Edge{
				SourceID:   c.CallerID,
				TargetID:   cand.id,
				Type:       graph.EdgeCalls,
				Confidence: cand.confidence,
			})
		}
	}
}

func callerOwningClass(caller *graph.Node, g *graph.KnowledgeGraph) string {
	if caller.Kind != graph.KindMethod || caller.ClassID == "" {
		return ""
	}
	if cls := g.Node(caller.ClassID); cls != nil {
		return cls.Name
	}
	return ""
}

func resolveCallCandidates(c CallSite, caller *graph.Node, idx *symbolIndex) []callCandidate {
	// Rule 2: receiver type known -> method on that class, confidence 0.8.
	if c.ReceiverType != "" {
		qn := c.ReceiverType + "." + c.Callee
		if nodes := idx.byQualified[qn]; len(nodes) == 1 {
			return []callCandidate{{id: nodes[0].ID, filePath: nodes[0].Path, className: c.ReceiverType, confidence: 0.8}}
		}
	}

	all := idx.byName[c.Callee]
	if len(all) == 0 {
		// Rule 4: fuzzy match (edit distance <= 2, unique), confidence 0.5.
		if fuzzy := fuzzyUniqueMatch(c.Callee, idx.byName); fuzzy != nil {
			return []callCandidate{{id: fuzzy.ID, filePath: fuzzy.Path, confidence: 0.5}}
		}
		return nil
	}

	// Rule 1 (same-file or imported-module exact match), confidence 1.0.
	var exact []*graph.Node
	for _, n := range all {
		if n.Path == c.FilePath {
			exact = append(exact, n)
			continue
		}
		if idx.importedInto[c.FilePath] != nil && idx.importedInto[c.FilePath][n.Path] {
			exact = append(exact, n)
		}
	}
	if len(exact) == 1 {
		return []callCandidate{{id: exact[0].ID, filePath: exact[0].Path, confidence: 1.0}}
	}

	// Rule 3: unique symbol globally by name, confidence 0.6.
	if len(all) == 1 {
		return []callCandidate{{id: all[0].ID, filePath: all[0].Path, confidence: 0.6}}
	}

	// Rule 5: ambiguous, 0.4 each, capped at 3 (cap applied by caller).
	out := make([]callCandidate, 0, len(all))
	for _, n := range all {
		out = append(out, callCandidate{id: n.ID, filePath: n.Path, confidence: 0.4})
	}
	return out
}

func fuzzyUniqueMatch(name string, byName map[string][]*graph.Node) *graph.Node {
	var match *graph.Node
	for candidateName, nodes := range byName {
		if len(nodes) != 1 || candidateName == name {
			continue
		}
		if levenshtein(name, candidateName) <= 2 {
			if match != nil {
				return nil // more than one fuzzy match: not unique
			}
			match = nodes[0]
		}
	}
	return match
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = minInt(del, minInt(ins, sub))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
