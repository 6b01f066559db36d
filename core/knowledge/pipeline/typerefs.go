package pipeline

import (
	"regexp"
	"strings"

	"github.com/axon-graph/axon/core/knowledge/graph"
)

var typeNameBare = regexp.MustCompile(`[A-Za-z_]\w*`)

// ResolveTypeRefs resolves each raw parameter/return/variable type
// occurrence to a symbol id restricted to Class/Interface/TypeAlias/Enum,
// using the same same-file-preferred candidate pool as the call tracer.
// A single (source, target, role) triple is written at most once.
func ResolveTypeRefs(uses []TypeUse, g *graph.KnowledgeGraph, sink *graph.Sink) {
	byName := map[string][]*graph.Node{}
	for _, n := range g.Nodes() {
		switch n.Kind {
		case graph.KindClass, graph.KindInterface, graph.KindTypeAlias, graph.KindEnum:
			byName[n.Name] = append(byName[n.Name], n)
		}
	}

	seen := map[string]bool{}

	for _, u := range uses {
		src := g.Node(u.SymbolID)
		if src == nil {
			continue
		}
		name := bareTypeName(u.TypeName)
		if name == "" {
			continue
		}
		candidates := byName[name]
		if len(candidates) == 0 {
			continue
		}
		target := pickSameFileOrFirst(candidates, src.Path)
		key := u.SymbolID + "|" + target.ID + "|" + u.Role.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		sink.AddEdge(&graph.Edge{
			SourceID: u.SymbolID,
			TargetID: target.ID,
			Type:     graph.EdgeUsesType,
			Role:     u.Role,
		})
	}
}

// bareTypeName strips generic/array/nullable/pointer decoration down to
// the first identifier: "List<User>" -> "List", "IUserRepository?" ->
// "IUserRepository", "*User" -> "User".
func bareTypeName(t string) string {
	t = strings.TrimSpace(t)
	m := typeNameBare.FindString(t)
	return m
}
