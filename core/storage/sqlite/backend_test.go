package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/axon-graph/axon/core/database"
	"github.com/axon-graph/axon/core/knowledge/graph"
	"github.com/axon-graph/axon/core/storage"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	tmpDir := t.TempDir()
	mgr := database.NewManager(&storage.Dirs{Data: tmpDir})
	t.Cleanup(func() { mgr.CloseAll() })

	b, err := Open(context.Background(), mgr, filepath.Join(tmpDir, "graph.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return b
}

func TestBackend_UpsertNodesIsIdempotentById(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	n := &graph.Node{ID: "Function:a.py:f", Kind: graph.KindFunction, Path: "a.py", Name: "f", Signature: "def f()"}
	if err := b.UpsertNodes(ctx, []*graph.Node{n}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	n.Signature = "def f(x)"
	if err := b.UpsertNodes(ctx, []*graph.Node{n}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int
	if err := b.pool.QueryRow(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after idempotent upsert, got %d", count)
	}

	var sig string
	if err := b.pool.QueryRow(ctx, `SELECT signature FROM nodes WHERE id = ?`, n.ID).Scan(&sig); err != nil {
		t.Fatal(err)
	}
	if sig != "def f(x)" {
		t.Errorf("signature: got %q, want updated value", sig)
	}
}

func TestBackend_UpsertEdgesIsIdempotentByCompositeKey(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	for _, n := range []*graph.Node{
		{ID: "a", Kind: graph.KindFunction, Name: "a"},
		{ID: "b", Kind: graph.KindFunction, Name: "b"},
	} {
		if err := b.UpsertNodes(ctx, []*graph.Node{n}); err != nil {
			t.Fatal(err)
		}
	}

	e := &graph.Edge{SourceID: "a", TargetID: "b", Type: graph.EdgeCalls, Confidence: 0.5}
	if err := b.UpsertEdges(ctx, []*graph.Edge{e}); err != nil {
		t.Fatal(err)
	}
	e.Confidence = 0.9
	if err := b.UpsertEdges(ctx, []*graph.Edge{e}); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := b.pool.QueryRow(ctx, `SELECT COUNT(*) FROM edges`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 edge row, got %d", count)
	}
}

func TestBackend_FTSIndexFindsSymbolByName(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	n := &graph.Node{ID: "Function:a.py:handleRequest", Kind: graph.KindFunction, Path: "a.py", Name: "handleRequest", Signature: "def handleRequest(req)"}
	if err := b.UpsertNodes(ctx, []*graph.Node{n}); err != nil {
		t.Fatal(err)
	}
	if err := b.CreateFTSIndex(ctx, graph.KindFunction); err != nil {
		t.Fatal(err)
	}

	ids, err := b.SearchText(ctx, "handleRequest", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != n.ID {
		t.Errorf("SearchText: got %v, want [%s]", ids, n.ID)
	}
}

func TestBackend_VectorIndexRanksByCosineSimilarity(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	nodes := []*graph.Node{
		{ID: "f1", Kind: graph.KindFunction, Name: "f1", Vector: []float32{1, 0, 0}},
		{ID: "f2", Kind: graph.KindFunction, Name: "f2", Vector: []float32{0, 1, 0}},
		{ID: "f3", Kind: graph.KindFunction, Name: "f3", Vector: []float32{0.9, 0.1, 0}},
	}
	if err := b.UpsertNodes(ctx, nodes); err != nil {
		t.Fatal(err)
	}

	idx, err := b.CreateVectorIndex(ctx, graph.KindFunction)
	if err != nil {
		t.Fatal(err)
	}

	results := idx.SearchVectors([]float32{1, 0, 0}, 2)
	if len(results) != 2 || results[0] != "f1" {
		t.Errorf("SearchVectors: got %v, want f1 first", results)
	}
}

func TestBackend_QueryCypherRunsNamedCatalogQuery(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	nodes := []*graph.Node{
		{ID: "caller", Kind: graph.KindFunction, Name: "caller"},
		{ID: "callee", Kind: graph.KindFunction, Name: "callee"},
	}
	if err := b.UpsertNodes(ctx, nodes); err != nil {
		t.Fatal(err)
	}
	edge := &graph.Edge{SourceID: "caller", TargetID: "callee", Type: graph.EdgeCalls, Confidence: 1}
	if err := b.UpsertEdges(ctx, []*graph.Edge{edge}); err != nil {
		t.Fatal(err)
	}

	rows, err := b.QueryCypher(ctx, "callers_of", map[string]any{"target_id": "callee"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0]["id"] != "caller" {
		t.Errorf("callers_of: got %v, want one row for caller", rows)
	}
}
