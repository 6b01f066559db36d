package graph

import "sync"

// record is a single queued write. Exactly one of Node/Edge is set.
type record struct {
	node *Node
	edge *Edge
}

// Sink is the single-writer discipline the pipeline is built on: any number
// of producers (parallel parsers, parallel resolvers) enqueue node and edge
// records concurrently; one drain goroutine applies them to the underlying
// KnowledgeGraph in the order they arrive. There is no mutex guarding the
// graph's maps from producers — only the drain goroutine ever calls putNode
// / putEdge.
type Sink struct {
	g       *KnowledgeGraph
	records chan record
	wg      sync.WaitGroup
}

// NewSink starts draining into g with the given channel buffer size.
func NewSink(g *KnowledgeGraph, buffer int) *Sink {
	if buffer <= 0 {
		buffer = 256
	}
	s := &Sink{g: g, records: make(chan record, buffer)}
	s.wg.Add(1)
	go s.drain()
	return s
}

func (s *Sink) drain() {
	defer s.wg.Done()
	for rec := range s.records {
		switch {
		case rec.node != nil:
			s.g.putNode(rec.node)
		case rec.edge != nil:
			s.g.putEdge(rec.edge)
		}
	}
}

// AddNode enqueues a node for insertion. Safe for concurrent use.
func (s *Sink) AddNode(n *Node) {
	s.records <- record{node: n}
}

// AddEdge enqueues an edge for insertion. Safe for concurrent use.
func (s *Sink) AddEdge(e *Edge) {
	s.records <- record{edge: e}
}

// Close stops accepting writes and blocks until every queued record has been
// drained into the graph. The phase that opened the Sink must call Close
// before the next phase begins, per the pipeline's ordering guarantee.
func (s *Sink) Close() {
	close(s.records)
	s.wg.Wait()
}
