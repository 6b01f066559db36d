package pipeline

import (
	"context"

	"github.com/axon-graph/axon/core/knowledge/graph"
	"github.com/axon-graph/axon/core/knowledge/pipeline/embed"
)

const defaultEmbedBatchSize = 64

// EmbedSymbols runs Phase 12: every symbol node's name, signature and body
// snippet are joined into one text, encoded in batches, and attached to
// the node via graph.SetVector — the one other post-construction node
// mutation the graph API allows, alongside Phase 10's MarkDead.
func EmbedSymbols(ctx context.Context, g *graph.KnowledgeGraph, enc embed.Encoder, batchSize int) error {
	if batchSize <= 0 {
		batchSize = defaultEmbedBatchSize
	}

	var symbols []*graph.Node
	for _, n := range g.Nodes() {
		if n.Kind.IsSymbol() {
			symbols = append(symbols, n)
		}
	}

	for start := 0; start < len(symbols); start += batchSize {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		end := start + batchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := symbols[start:end]

		texts := make([]string, len(batch))
		for i, n := range batch {
			texts[i] = symbolEmbeddingText(n)
		}

		vecs, err := enc.Encode(ctx, texts)
		if err != nil {
			return err
		}
		for i, n := range batch {
			g.SetVector(n.ID, vecs[i])
		}
	}

	return nil
}

func symbolEmbeddingText(n *graph.Node) string {
	if n.BodySnippet != "" {
		return n.Name + " " + n.Signature + " " + n.BodySnippet
	}
	return n.Name + " " + n.Signature
}
