package pipeline

import (
	"strings"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	kg "github.com/axon-graph/axon/core/knowledge/graph"
)

// DetectCommunities runs modularity-optimization clustering (gonum's
// Louvain implementation, the closest available library to Leiden) over
// the undirected subgraph induced by Symbol nodes and the union of CALLS,
// USES_TYPE, EXTENDS, IMPLEMENTS edges, unweighted. Emits one Community
// node per cluster plus MEMBER_OF edges. Singletons are attached to a
// synthetic "misc" Community.
func DetectCommunities(g *kg.KnowledgeGraph, sink *kg.Sink) {
	symbols := g.NodesByKind(kg.KindFunction)
	for _, k := range []kg.NodeKind{kg.KindClass, kg.KindMethod, kg.KindInterface, kg.KindTypeAlias, kg.KindEnum} {
		symbols = append(symbols, g.NodesByKind(k)...)
	}
	if len(symbols) == 0 {
		return
	}

	idOf := map[string]int64{}
	nodeOf := map[int64]*kg.Node{}
	for i, n := range symbols {
		idOf[n.ID] = int64(i)
		nodeOf[int64(i)] = n
	}

	ug := simple.NewUndirectedGraph()
	for _, n := range symbols {
		ug.AddNode(simple.Node(idOf[n.ID]))
	}

	relevant := map[kg.EdgeType]bool{
		kg.EdgeCalls: true, kg.EdgeUsesType: true, kg.EdgeExtends: true, kg.EdgeImplements: true,
	}
	internalCount := map[string]int{} // nodeID -> count of subgraph edges kept that touch it
	for _, e := range g.Edges() {
		if !relevant[e.Type] {
			continue
		}
		a, aok := idOf[e.SourceID]
		b, bok := idOf[e.TargetID]
		if !aok || !bok || a == b {
			continue
		}
		if ug.HasEdgeBetween(a, b) {
			continue
		}
		ug.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
		internalCount[e.SourceID]++
		internalCount[e.TargetID]++
	}

	reduced := community.Modularize(ug, 1.0, rand.NewSource(1))
	clusters := reduced.Structure()

	misc := &kg.Node{ID: kg.FreshID(kg.KindCommunity), Kind: kg.KindCommunity, Name: "misc", Label: "misc"}
	miscUsed := false

	for _, cluster := range clusters {
		if len(cluster) <= 1 {
			if len(cluster) == 1 {
				n := nodeOf[cluster[0].ID()]
				sink.AddEdge(&kg.Edge{SourceID: n.ID, TargetID: misc.ID, Type: kg.EdgeMemberOf})
				miscUsed = true
			}
			continue
		}

		members := make([]*kg.Node, 0, len(cluster))
		for _, cn := range cluster {
			members = append(members, nodeOf[cn.ID()])
		}

		internal, boundary := countInternalBoundary(members, g)
		cohesion := 0.0
		if internal+boundary > 0 {
			cohesion = float64(internal) / float64(internal+boundary)
		}

		commNode := &kg.Node{
			ID:       kg.FreshID(kg.KindCommunity),
			Kind:     kg.KindCommunity,
			Label:    labelFromPrefixes(members),
			Cohesion: cohesion,
		}
		commNode.Name = commNode.Label
		sink.AddNode(commNode)

		for _, m := range members {
			sink.AddEdge(&kg.Edge{SourceID: m.ID, TargetID: commNode.ID, Type: kg.EdgeMemberOf})
		}
	}

	if miscUsed {
		sink.AddNode(misc)
	}
}

// countInternalBoundary counts, over CALLS/USES_TYPE/EXTENDS/IMPLEMENTS
// edges, how many touch only members of this cluster (internal) versus
// exactly one member (boundary).
func countInternalBoundary(members []*kg.Node, g *kg.KnowledgeGraph) (internal, boundary int) {
	inCluster := map[string]bool{}
	for _, m := range members {
		inCluster[m.ID] = true
	}
	relevant := map[kg.EdgeType]bool{
		kg.EdgeCalls: true, kg.EdgeUsesType: true, kg.EdgeExtends: true, kg.EdgeImplements: true,
	}
	seen := map[string]bool{}
	for _, m := range members {
		for _, e := range g.Out(m.ID) {
			if !relevant[e.Type] {
				continue
			}
			key := e.SourceID + "->" + e.TargetID + "|" + e.Type.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			if inCluster[e.TargetID] {
				internal++
			} else {
				boundary++
			}
		}
		for _, e := range g.In(m.ID) {
			if !relevant[e.Type] || inCluster[e.SourceID] {
				continue
			}
			key := e.SourceID + "->" + e.TargetID + "|" + e.Type.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			boundary++
		}
	}
	return internal, boundary
}

// labelFromPrefixes derives a Community label from the most frequent
// two-segment path prefix among members, tie-broken by member count.
func labelFromPrefixes(members []*kg.Node) string {
	counts := map[string]int{}
	for _, m := range members {
		counts[twoSegmentPrefix(m.Path)]++
	}
	best := ""
	bestCount := -1
	for prefix, count := range counts {
		if count > bestCount || (count == bestCount && prefix < best) {
			best = prefix
			bestCount = count
		}
	}
	return best
}

func twoSegmentPrefix(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return ""
}
