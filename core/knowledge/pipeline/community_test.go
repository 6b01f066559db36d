package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-graph/axon/core/knowledge/graph"
)

func TestDetectCommunities_ConnectedPairJoinsOneCommunity(t *testing.T) {
	g, sink := newTestGraph()
	a := &graph.Node{ID: graph.SymbolID(graph.KindFunction, "pkg/a.py", "a"), Kind: graph.KindFunction, Path: "pkg/a.py", Name: "a"}
	b := &graph.Node{ID: graph.SymbolID(graph.KindFunction, "pkg/b.py", "b"), Kind: graph.KindFunction, Path: "pkg/b.py", Name: "b"}
	sink.AddNode(a)
	sink.AddNode(b)
	sink.AddEdge(&graph.Edge{SourceID: a.ID, TargetID: b.ID, Type: graph.EdgeCalls, Confidence: 1.0})
	sink.Close()

	sink2 := graph.NewSink(g, 64)
	DetectCommunities(g, sink2)
	sink2.Close()

	memberEdges := []*graph.Edge{}
	for _, e := range g.Edges() {
		if e.Type == graph.EdgeMemberOf {
			memberEdges = append(memberEdges, e)
		}
	}
	require.Len(t, memberEdges, 2)
	assert.Equal(t, memberEdges[0].TargetID, memberEdges[1].TargetID)
}

func TestDetectCommunities_SingletonGoesToMisc(t *testing.T) {
	g, sink := newTestGraph()
	a := &graph.Node{ID: graph.SymbolID(graph.KindFunction, "pkg/a.py", "a"), Kind: graph.KindFunction, Path: "pkg/a.py", Name: "a"}
	sink.AddNode(a)
	sink.Close()

	sink2 := graph.NewSink(g, 64)
	DetectCommunities(g, sink2)
	sink2.Close()

	communities := g.NodesByKind(graph.KindCommunity)
	require.Len(t, communities, 1)
	assert.Equal(t, "misc", communities[0].Name)
}
