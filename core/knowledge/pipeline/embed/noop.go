package embed

import "context"

// NoopEncoder returns zero vectors of the configured dimension, used when
// embedding generation is disabled by config. Grounded on the teacher's
// own MockEmbedder (vamana/embedder/mock.go), minus the deterministic
// hashing — a disabled phase should produce an unambiguous empty vector,
// not a plausible-looking fake one.
type NoopEncoder struct {
	Dim int
}

func (n NoopEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	dim := n.Dim
	if dim <= 0 {
		dim = 384
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, dim)
	}
	return out, nil
}

func (n NoopEncoder) Dimension() int {
	if n.Dim <= 0 {
		return 384
	}
	return n.Dim
}
