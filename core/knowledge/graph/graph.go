// Package graph implements the in-memory KnowledgeGraph value that every
// pipeline phase reads and mutates, plus the single-writer Sink that
// serializes concurrent producers into it.
package graph

import "sync"

// KnowledgeGraph is the property graph a pipeline run builds up. Phases
// never mutate it directly except through a Sink (see NewSink); reads are
// always safe to run concurrently with a draining Sink since the Sink
// itself holds the only write lock.
type KnowledgeGraph struct {
	mu sync.RWMutex

	nodes     map[string]*Node
	nodeOrder []string

	edgesByKey map[edgeKey]*Edge
	outgoing   map[string][]*Edge
	incoming   map[string][]*Edge
}

// New returns an empty KnowledgeGraph.
func New() *KnowledgeGraph {
	return &KnowledgeGraph{
		nodes:      make(map[string]*Node),
		edgesByKey: make(map[edgeKey]*Edge),
		outgoing:   make(map[string][]*Edge),
		incoming:   make(map[string][]*Edge),
	}
}

// Node returns the node with the given id, or nil.
func (g *KnowledgeGraph) Node(id string) *Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[id]
}

// Nodes returns every node, in insertion order.
func (g *KnowledgeGraph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodesByKind returns every node of the given kind, in insertion order.
func (g *KnowledgeGraph) NodesByKind(kind NodeKind) []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*Node
	for _, id := range g.nodeOrder {
		if n := g.nodes[id]; n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Out returns the outgoing edges from id, optionally filtered by type.
func (g *KnowledgeGraph) Out(id string, types ...EdgeType) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return filterEdges(g.outgoing[id], types)
}

// In returns the incoming edges to id, optionally filtered by type.
func (g *KnowledgeGraph) In(id string, types ...EdgeType) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return filterEdges(g.incoming[id], types)
}

func filterEdges(edges []*Edge, types []EdgeType) []*Edge {
	if len(types) == 0 {
		out := make([]*Edge, len(edges))
		copy(out, edges)
		return out
	}
	want := make(map[EdgeType]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var out []*Edge
	for _, e := range edges {
		if want[e.Type] {
			out = append(out, e)
		}
	}
	return out
}

// Edges returns every edge in the graph.
func (g *KnowledgeGraph) Edges() []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Edge, 0, len(g.edgesByKey))
	for _, e := range g.edgesByKey {
		out = append(out, e)
	}
	return out
}

// putNode inserts or, for a flag flip such as is_dead, overwrites a node.
// It is only ever called from the Sink's drain loop.
func (g *KnowledgeGraph) putNode(n *Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.nodes[n.ID]; !exists {
		g.nodeOrder = append(g.nodeOrder, n.ID)
	}
	g.nodes[n.ID] = n
}

// putEdge inserts an edge, idempotent by (source, target, type, role). A
// duplicate CALLS edge keeps the maximum confidence already recorded.
func (g *KnowledgeGraph) putEdge(e *Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := keyOf(*e)
	if existing, ok := g.edgesByKey[key]; ok {
		if e.Type == EdgeCalls && e.Confidence > existing.Confidence {
			existing.Confidence = e.Confidence
		}
		return
	}

	g.edgesByKey[key] = e
	g.outgoing[e.SourceID] = append(g.outgoing[e.SourceID], e)
	g.incoming[e.TargetID] = append(g.incoming[e.TargetID], e)
}

// MarkDead flips is_dead on an existing node. Used by the dead-code analyzer;
// SetVector is the only other method that mutates a node after creation.
func (g *KnowledgeGraph) MarkDead(id string, dead bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.nodes[id]; ok {
		n.IsDead = dead
	}
}

// SetVector stores an embedding on an existing symbol node.
func (g *KnowledgeGraph) SetVector(id string, vec []float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.nodes[id]; ok {
		n.Vector = vec
	}
}
