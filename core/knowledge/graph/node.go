package graph

import "hash/fnv"

// Node is the graph's single flat shape for every kind of vertex. Kind
// discriminates which subset of the fields below is meaningful; parsers and
// resolvers dispatch on it, and the storage layer emits one row per kind.
//
// ID is the graph's only cross-phase handle and must be deterministic:
// "{kind}:{relative_path}:{qualified_name}" for anything path-rooted, a
// fresh UUID for Community and Process nodes (see idgen.go).
type Node struct {
	ID   string
	Kind NodeKind

	// Folder, File, and every Symbol kind carry a repo-relative Path.
	Path string
	Name string

	// File-only.
	Language    string
	ByteSize    int64
	Hash        uint64
	ParseFailed bool

	// Span, shared by every Symbol kind.
	StartLine int
	EndLine   int

	Signature   string
	BodySnippet string
	Decorators  []string

	IsExported bool
	IsTest     bool
	IsDead     bool

	// Class-only.
	BasesSyntactic []string

	// Method-only.
	ClassID    string
	IsOverride bool
	IsProperty bool
	IsCtor     bool
	IsStub     bool

	// Interface-only.
	MethodsDeclared []string

	// TypeAlias-only.
	TargetSyntactic string

	// Enum-only.
	Variants []string

	// Community-only.
	Label    string
	Cohesion float64

	// Process-only.
	EntrySymbolID string
	ProcessKind   string // "intra-community" | "cross-community"

	// Optional per-symbol embedding, populated by the encoder phase.
	Vector []float32
}

// HashContent computes the content hash stored on File nodes. Unlike
// hash/maphash (randomly seeded per process), fnv.New64a is deterministic
// across runs, so re-analyzing an unchanged tree from a fresh process
// produces the same File.Hash every time (spec.md §8 invariant 8).
func HashContent(content []byte) uint64 {
	h := fnv.New64a()
	h.Write(content)
	return h.Sum64()
}
