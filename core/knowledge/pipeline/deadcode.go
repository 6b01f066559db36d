package pipeline

import (
	"strings"

	"github.com/axon-graph/axon/core/knowledge/graph"
)

// AnalyzeDeadCode runs the five-pass dead-code analysis and flips is_dead
// on every symbol that survives all five passes as unreachable. Entry
// points are rediscovered with the same framework-pattern rules the
// process detector uses, so running this phase does not depend on having
// run process detection first.
func AnalyzeDeadCode(g *graph.KnowledgeGraph) {
	entryIDs := map[string]bool{}
	for _, n := range findEntryPoints(g) {
		entryIDs[n.ID] = true
	}
	imported := importedSymbolNames(g)

	dead := initialCandidates(g)
	exempt(g, dead, entryIDs, imported)
	overridePass(g, dead)
	protocolConformancePass(g, dead)
	protocolStubsPass(g, dead)

	for id, isDead := range dead {
		g.MarkDead(id, isDead)
	}
}

// initialCandidates: pass 1. Any symbol with no incoming CALLS is
// candidate-dead; the "not imported by any file" check is applied in exempt.
func initialCandidates(g *graph.KnowledgeGraph) map[string]bool {
	dead := map[string]bool{}
	for _, n := range g.Nodes() {
		if !n.Kind.IsSymbol() {
			continue
		}
		if len(g.In(n.ID, graph.EdgeCalls)) > 0 {
			continue
		}
		dead[n.ID] = true
	}
	return dead
}

// importedSymbolNames maps a File's path to the set of symbol names some
// other file's IMPORTS edge names on it, so pass 2 can exempt a symbol
// that is imported but not yet called — e.g. a re-exported helper with no
// caller yet (spec.md §4.10 pass 1).
func importedSymbolNames(g *graph.KnowledgeGraph) map[string]map[string]bool {
	out := map[string]map[string]bool{}
	for _, e := range g.Edges() {
		if e.Type != graph.EdgeImports || len(e.ImportedSymbols) == 0 {
			continue
		}
		target := g.Node(e.TargetID)
		if target == nil {
			continue
		}
		if out[target.Path] == nil {
			out[target.Path] = map[string]bool{}
		}
		for _, name := range e.ImportedSymbols {
			out[target.Path][name] = true
		}
	}
	return out
}

// exempt: pass 2. Un-flag entry points, exported symbols, constructors,
// dunder methods, __init__.*/index.* residents, test symbols, decorated
// symbols, is_property symbols, and symbols named by some file's IMPORTS
// edge (spec.md §4.10 pass 1's "not imported by any file" half, applied
// here since ImportedSymbols is only resolvable after ResolveImports has
// run, by symbol name rather than at candidate-generation time).
func exempt(g *graph.KnowledgeGraph, dead map[string]bool, entryIDs map[string]bool, imported map[string]map[string]bool) {
	for id := range dead {
		n := g.Node(id)
		if n == nil {
			continue
		}
		if entryIDs[id] {
			dead[id] = false
			continue
		}
		if n.IsExported || n.IsCtor || n.IsTest || n.IsProperty {
			dead[id] = false
			continue
		}
		if imported[n.Path] != nil && imported[n.Path][n.Name] {
			dead[id] = false
			continue
		}
		if isDunder(n.Name) {
			dead[id] = false
			continue
		}
		if len(n.Decorators) > 0 {
			dead[id] = false
			continue
		}
		if isInitOrBarrelFile(n.Path) {
			dead[id] = false
			continue
		}
		if isTestFile(n.Path) {
			dead[id] = false
			continue
		}
	}
}

func isDunder(name string) bool {
	return len(name) > 4 && hasPrefixSuffix(name, "__")
}

func hasPrefixSuffix(s, affix string) bool {
	return len(s) >= 2*len(affix) && s[:len(affix)] == affix && s[len(s)-len(affix):] == affix
}

func isInitOrBarrelFile(path string) bool {
	base := lastSegment(path)
	return base == "__init__.py" || base == "index.ts" || base == "index.js"
}

func isTestFile(path string) bool {
	for _, suf := range []string{"_test.py", ".test.ts", ".test.js", ".spec.ts", "_test.cs", "Tests.cs"} {
		if hasSuffix(path, suf) {
			return true
		}
	}
	return false
}

func hasSuffix(s, suf string) bool {
	return len(s) >= len(suf) && s[len(s)-len(suf):] == suf
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// overridePass: pass 3. Un-flag a method if it overrides a non-dead method
// on any ancestor class, matched by name and arity (spec.md §4.10 pass 3,
// §9: "name + arity match") so that two same-named methods with different
// parameter counts — a legal overload, e.g. in the C# extractor — are
// never mistaken for an override of one another.
func overridePass(g *graph.KnowledgeGraph, dead map[string]bool) {
	type methodKey struct {
		name  string
		arity int
	}
	methodsByClassAndKey := map[string]map[methodKey]*graph.Node{}
	for _, n := range g.NodesByKind(graph.KindMethod) {
		if n.ClassID == "" {
			continue
		}
		if methodsByClassAndKey[n.ClassID] == nil {
			methodsByClassAndKey[n.ClassID] = map[methodKey]*graph.Node{}
		}
		key := methodKey{name: n.Name, arity: signatureArity(n.Signature)}
		methodsByClassAndKey[n.ClassID][key] = n
	}

	for id := range dead {
		n := g.Node(id)
		if n == nil || n.Kind != graph.KindMethod || n.ClassID == "" {
			continue
		}
		key := methodKey{name: n.Name, arity: signatureArity(n.Signature)}
		for _, ancestorID := range ancestorClassIDs(g, n.ClassID) {
			if m, ok := methodsByClassAndKey[ancestorID][key]; ok && !dead[m.ID] {
				dead[id] = false
				break
			}
		}
	}
}

// signatureArity counts the comma-separated parameters in the first
// top-level parenthesized group of a method signature line, e.g. 2 for
// both "def handler(self, evt):" and "public void Handler(Event evt, int n) {".
// Returns 0 for an empty parameter list or a signature with no parens.
func signatureArity(sig string) int {
	start := -1
	depth := 0
	for i, r := range sig {
		switch r {
		case '(':
			if depth == 0 {
				start = i
			}
			depth++
		case ')':
			depth--
			if depth == 0 && start >= 0 {
				params := sig[start+1 : i]
				if strings.TrimSpace(params) == "" {
					return 0
				}
				return strings.Count(params, ",") + 1
			}
		}
	}
	return 0
}

func ancestorClassIDs(g *graph.KnowledgeGraph, classID string) []string {
	var out []string
	queue := []string{classID}
	visited := map[string]bool{classID: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.Out(cur, graph.EdgeExtends) {
			if !visited[e.TargetID] {
				visited[e.TargetID] = true
				out = append(out, e.TargetID)
				queue = append(queue, e.TargetID)
			}
		}
	}
	return out
}

// protocolConformancePass: pass 4. Un-flag methods on classes that
// IMPLEMENT an Interface whose declaration contains that method name.
func protocolConformancePass(g *graph.KnowledgeGraph, dead map[string]bool) {
	for id := range dead {
		n := g.Node(id)
		if n == nil || n.Kind != graph.KindMethod || n.ClassID == "" {
			continue
		}
		for _, e := range g.Out(n.ClassID, graph.EdgeImplements) {
			iface := g.Node(e.TargetID)
			if iface == nil {
				continue
			}
			if containsString(iface.MethodsDeclared, n.Name) {
				dead[id] = false
				break
			}
		}
	}
}

// protocolStubsPass: pass 5. Every method declared on an Interface node
// itself is exempt unconditionally — stubs are contracts, not dead code.
func protocolStubsPass(g *graph.KnowledgeGraph, dead map[string]bool) {
	for _, n := range g.NodesByKind(graph.KindMethod) {
		if n.IsStub {
			dead[n.ID] = false
		}
	}
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
