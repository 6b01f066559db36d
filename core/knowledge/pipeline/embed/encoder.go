// Package embed implements Phase 12: attaching a fixed-width vector to
// every symbol node for downstream similarity search.
package embed

import "context"

// Encoder turns text into fixed-width vectors. Mirrors the shape of the
// teacher's vectorgraphdb/vamana/embedder.Embedder interface.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}
