package sqlite

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/axon-graph/axon/core/knowledge/graph"
)

func encodeStrings(ss []string) any {
	if len(ss) == 0 {
		return nil
	}
	b, _ := json.Marshal(ss)
	return string(b)
}

// jsonArrayColumns names the node/edge columns that hold a JSON-encoded
// string array rather than a scalar; QueryCypher decodes these back into
// []string instead of returning the raw JSON text to callers.
var jsonArrayColumns = map[string]bool{
	"decorators":       true,
	"bases_syntactic":  true,
	"methods_declared": true,
	"variants":         true,
	"imported_symbols": true,
}

func decodeStrings(raw any) []string {
	s, ok := raw.(string)
	if !ok || s == "" {
		return nil
	}
	var out []string
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

// encodeVector packs a []float32 into a little-endian byte blob, the same
// fixed-width layout the teacher's vectorgraphdb package uses for on-disk
// vectors, minus its header/checksum framing (this table has no separate
// dimension column to validate against, since every symbol in a run shares
// one encoder).
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	if len(buf) == 0 {
		return nil
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nodeArgs returns the positional column values for one upsert of n, in the
// same order as the insertNodeColumns list.
func nodeArgs(n *graph.Node) []any {
	return []any{
		n.ID,
		n.Kind.String(),
		n.Path,
		n.Name,
		n.Language,
		n.ByteSize,
		n.Hash,
		boolToInt(n.ParseFailed),
		n.StartLine,
		n.EndLine,
		n.Signature,
		n.BodySnippet,
		encodeStrings(n.Decorators),
		boolToInt(n.IsExported),
		boolToInt(n.IsTest),
		boolToInt(n.IsDead),
		encodeStrings(n.BasesSyntactic),
		n.ClassID,
		boolToInt(n.IsOverride),
		boolToInt(n.IsProperty),
		boolToInt(n.IsCtor),
		boolToInt(n.IsStub),
		encodeStrings(n.MethodsDeclared),
		n.TargetSyntactic,
		encodeStrings(n.Variants),
		n.Label,
		n.Cohesion,
		n.EntrySymbolID,
		n.ProcessKind,
		encodeVector(n.Vector),
	}
}

var insertNodeColumns = []string{
	"id", "kind", "path", "name", "language", "byte_size", "content_hash",
	"parse_failed", "start_line", "end_line", "signature", "body_snippet",
	"decorators", "is_exported", "is_test", "is_dead", "bases_syntactic",
	"class_id", "is_override", "is_property", "is_ctor", "is_stub",
	"methods_declared", "target_syntactic", "variants", "label", "cohesion",
	"entry_symbol_id", "process_kind", "vector",
}

func edgeArgs(e *graph.Edge) []any {
	role := ""
	if e.Type == graph.EdgeUsesType {
		role = e.Role.String()
	}
	return []any{
		e.SourceID,
		e.TargetID,
		e.Type.String(),
		e.Confidence,
		encodeStrings(e.ImportedSymbols),
		role,
		e.StepNumber,
		e.Strength,
		e.CoChanges,
	}
}

var insertEdgeColumns = []string{
	"source_id", "target_id", "type", "confidence", "imported_symbols",
	"role", "step_number", "strength", "co_changes",
}
