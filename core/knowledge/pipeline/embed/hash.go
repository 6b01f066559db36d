package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashEncoder is a deterministic, network-free encoder: each text is
// tokenized into words and character trigrams, and every feature is
// hashed into a single dimension with a hash-derived sign (signed feature
// hashing), the same technique as the teacher's HybridLocalEmbedder
// (vamana/embedder/hybrid_local.go), minus its corpus-wide IDF table —
// a single-document term-frequency weighting is enough for a code
// symbol's name, signature and body snippet.
type HashEncoder struct {
	Dim int
}

func (h HashEncoder) Dimension() int {
	if h.Dim <= 0 {
		return 384
	}
	return h.Dim
}

func (h HashEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	dim := h.Dimension()
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedOne(t, dim)
	}
	return out, nil
}

func embedOne(text string, dim int) []float32 {
	vec := make([]float32, dim)
	addTrigramFeatures(vec, extractTrigrams(text), 0.5)
	addTokenFeatures(vec, tokenize(text), 0.5)
	normalizeVec(vec)
	return vec
}

func addTrigramFeatures(vec []float32, trigrams []string, weight float64) {
	if len(trigrams) == 0 {
		return
	}
	w := float32(weight / math.Sqrt(float64(len(trigrams))))
	for _, tg := range trigrams {
		hash := fnvHash64(tg)
		idx, sign := multiHashOne(hash, len(vec))
		vec[idx] += w * sign
	}
}

func addTokenFeatures(vec []float32, tokens []string, weight float64) {
	if len(tokens) == 0 {
		return
	}
	tf := map[string]int{}
	for _, tok := range tokens {
		tf[tok]++
	}
	var norm float64
	for _, count := range tf {
		norm += float64(count) * float64(count)
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for tok, count := range tf {
		hash := fnvHash64(tok)
		idx, sign := multiHashOne(hash, len(vec))
		w := float32(weight * float64(count) / norm)
		vec[idx] += w * sign
	}
}

func tokenize(text string) []string {
	text = strings.ToLower(text)
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() >= 2 {
			tokens = append(tokens, cur.String())
		}
		cur.Reset()
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

func extractTrigrams(text string) []string {
	text = strings.ToLower(text)
	if len(text) < 3 {
		return nil
	}
	out := make([]string, 0, len(text)-2)
	for i := 0; i <= len(text)-3; i++ {
		out = append(out, text[i:i+3])
	}
	return out
}

func fnvHash64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func multiHashOne(seed uint64, dim int) (idx int, sign float32) {
	idx = int(seed % uint64(dim))
	if seed&1 == 1 {
		sign = 1
	} else {
		sign = -1
	}
	return idx, sign
}

func normalizeVec(vec []float32) {
	var mag float64
	for _, v := range vec {
		mag += float64(v) * float64(v)
	}
	if mag == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(mag))
	for i := range vec {
		vec[i] *= inv
	}
}
