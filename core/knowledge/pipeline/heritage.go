package pipeline

import (
	"github.com/axon-graph/axon/core/knowledge/graph"
	"github.com/axon-graph/axon/core/knowledge/pipeline/parse"
)

// ResolveHeritage turns each class's bases_syntactic/implements list into
// EXTENDS (when the base resolves to a Class) and IMPLEMENTS (when it
// resolves to an Interface) edges. Unresolved bases are dropped silently.
func ResolveHeritage(heritage []parse.Heritage, g *graph.KnowledgeGraph, sink *graph.Sink) {
	classByName := map[string][]*graph.Node{}
	ifaceByName := map[string][]*graph.Node{}
	childByName := map[string][]*graph.Node{}
	for _, n := range g.Nodes() {
		switch n.Kind {
		case graph.KindClass:
			classByName[n.Name] = append(classByName[n.Name], n)
			childByName[n.Name] = append(childByName[n.Name], n)
		case graph.KindInterface:
			ifaceByName[n.Name] = append(ifaceByName[n.Name], n)
			childByName[n.Name] = append(childByName[n.Name], n)
		}
	}

	for _, h := range heritage {
		children := childByName[h.ClassName]
		if len(children) == 0 {
			continue
		}
		for _, child := range children {
			if parent := pickSameFileOrFirst(classByName[h.ParentName], child.Path); parent != nil {
				sink.AddEdge(&graph.Edge{SourceID: child.ID, TargetID: parent.ID, Type: graph.EdgeExtends})
				continue
			}
			if parent := pickSameFileOrFirst(ifaceByName[h.ParentName], child.Path); parent != nil {
				sink.AddEdge(&graph.Edge{SourceID: child.ID, TargetID: parent.ID, Type: graph.EdgeImplements})
			}
		}
	}
}

// pickSameFileOrFirst prefers a candidate defined in the same file as the
// referencing symbol, falling back to the first candidate otherwise.
func pickSameFileOrFirst(candidates []*graph.Node, filePath string) *graph.Node {
	if len(candidates) == 0 {
		return nil
	}
	for _, c := range candidates {
		if c.Path == filePath {
			return c
		}
	}
	return candidates[0]
}
