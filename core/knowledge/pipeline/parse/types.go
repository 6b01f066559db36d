// Package parse turns one file's byte content into the raw data Phase 3
// contributes: symbol definitions, call sites, import statements, heritage
// declarations, and type references. Nothing here resolves across files —
// that is the resolvers' job in the phases that follow.
package parse

import "github.com/axon-graph/axon/core/knowledge/graph"

// Symbol is one definition found in a file, not yet turned into a graph.Node
// (that happens once the driver assigns it a deterministic ID).
type Symbol struct {
	Kind            graph.NodeKind
	Name            string
	QualifiedName   string // "User.save" for a method, else == Name
	ClassName       string // owning class, methods only
	StartLine       int
	EndLine         int
	Signature       string
	BodySnippet     string
	Decorators      []string
	IsExported      bool
	IsTest          bool
	IsOverride      bool
	IsProperty      bool
	IsCtor          bool
	IsStub          bool     // interface method declaration with no body
	BasesSyntactic  []string // class only: textual base/implements list
	MethodsDeclared []string // interface only
	TargetSyntactic string   // type alias only
	Variants        []string // enum only

	// Raw type-reference text, resolved in Phase 7.
	ParamTypes []string
	ReturnType string
	VarTypes   []string
}

// Call is one call expression found inside a symbol's body.
type Call struct {
	CallerQualifiedName string
	Callee              string // textual callee name, e.g. "validate_user"
	Receiver            string // textual receiver expression, e.g. "self", "_repo"
	ReceiverType        string // statically known receiver type, if any
	Line                int
}

// Import is one raw import/using/require statement.
type Import struct {
	Specifier string // "./utils", "src.a.b", "System.Collections.Generic"
	Symbols   []string
	Line      int
}

// Heritage is one syntactic base/implements declaration.
type Heritage struct {
	ClassName  string
	Kind       string // "extends" | "implements"
	ParentName string
}

// FileResult is everything Phase 3 extracts from a single file.
type FileResult struct {
	Language    string
	Symbols     []Symbol
	Calls       []Call
	Imports     []Import
	Heritage    []Heritage
	ParseFailed bool
}
