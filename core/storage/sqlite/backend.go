// Package sqlite implements the spec's storage-backend contract
// (upsert_nodes, upsert_edges, create_fts_index, create_vector_index,
// query_cypher) against the .axon/graph.db relational schema, built on
// core/database's connection-pool layer.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/axon-graph/axon/core/database"
	"github.com/axon-graph/axon/core/knowledge/graph"
	"github.com/viterin/vek/vek32"
)

// Backend is the sqlite-backed storage-layer implementation of spec.md
// §6's storage-backend contract, opened against one project's .axon/graph.db.
type Backend struct {
	pool *database.Pool
}

// Open applies pending migrations to dbPath (creating it if absent) and
// returns a ready Backend.
func Open(ctx context.Context, mgr *database.Manager, dbPath string) (*Backend, error) {
	pool, err := mgr.Open(dbPath, database.DefaultPoolConfig())
	if err != nil {
		return nil, fmt.Errorf("open graph db: %w", err)
	}

	migrator := database.NewMigrator(pool, Migrations)
	if err := migrator.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate graph db: %w", err)
	}

	return &Backend{pool: pool}, nil
}

func (b *Backend) Pool() *database.Pool { return b.pool }

func (b *Backend) Close() error { return b.pool.Close() }

// UpsertNodes writes every node in rows, idempotent by id, per spec.md §6.
func (b *Backend) UpsertNodes(ctx context.Context, rows []*graph.Node) error {
	if len(rows) == 0 {
		return nil
	}
	placeholders := make([]string, len(insertNodeColumns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	update := make([]string, 0, len(insertNodeColumns)-1)
	for _, c := range insertNodeColumns[1:] {
		update = append(update, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	query := fmt.Sprintf(
		"INSERT INTO nodes (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(insertNodeColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(update, ", "),
	)

	return b.pool.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, n := range rows {
			if _, err := stmt.ExecContext(ctx, nodeArgs(n)...); err != nil {
				return fmt.Errorf("upsert node %s: %w", n.ID, err)
			}
		}
		return nil
	})
}

// UpsertEdges writes every edge in rows, idempotent by
// (source_id, target_id, type, role), per spec.md §6.
func (b *Backend) UpsertEdges(ctx context.Context, rows []*graph.Edge) error {
	if len(rows) == 0 {
		return nil
	}
	placeholders := make([]string, len(insertEdgeColumns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	query := fmt.Sprintf(
		"INSERT INTO edges (%s) VALUES (%s) ON CONFLICT(source_id, target_id, type, role) DO UPDATE SET confidence = excluded.confidence",
		strings.Join(insertEdgeColumns, ", "),
		strings.Join(placeholders, ", "),
	)

	return b.pool.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, e := range rows {
			if _, err := stmt.ExecContext(ctx, edgeArgs(e)...); err != nil {
				return fmt.Errorf("upsert edge %s->%s: %w", e.SourceID, e.TargetID, err)
			}
		}
		return nil
	})
}

// CreateFTSIndex repopulates nodes_fts from the current nodes table,
// restricted to the given kind. Re-creatable: callers may call this again
// after a fresh UpsertNodes batch.
func (b *Backend) CreateFTSIndex(ctx context.Context, kind graph.NodeKind) error {
	return b.pool.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes_fts WHERE id IN (SELECT id FROM nodes WHERE kind = ?)`, kind.String()); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO nodes_fts (id, name, signature, body_snippet)
SELECT id, name, signature, body_snippet FROM nodes WHERE kind = ?`, kind.String())
		return err
	})
}

// SearchText runs a full-text query over nodes_fts and returns matching
// node ids ranked by relevance.
func (b *Backend) SearchText(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := b.pool.Query(ctx, `SELECT id FROM nodes_fts WHERE nodes_fts MATCH ? ORDER BY rank LIMIT ?`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateVectorIndex loads every vector of the given kind into memory for
// brute-force cosine search. There is no sqlite vector extension in the
// dependency pack, so "index" here means "materialized candidate set";
// SearchVectors below does the ranking.
func (b *Backend) CreateVectorIndex(ctx context.Context, kind graph.NodeKind) (*VectorIndex, error) {
	rows, err := b.pool.Query(ctx, `SELECT id, vector FROM nodes WHERE kind = ? AND vector IS NOT NULL`, kind.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	idx := &VectorIndex{}
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		v := decodeVector(blob)
		if len(v) == 0 {
			continue
		}
		idx.ids = append(idx.ids, id)
		idx.vectors = append(idx.vectors, v)
	}
	return idx, rows.Err()
}

// VectorIndex is a materialized, in-memory cosine-similarity candidate set
// over one node kind's embeddings.
type VectorIndex struct {
	ids     []string
	vectors [][]float32
}

// SearchVectors ranks every indexed vector against query by cosine
// similarity using vek32.Dot (the same SIMD dot-product primitive the
// teacher's vamana/ivf package uses for its own centroid and candidate
// scoring) and returns the top k node ids.
func (idx *VectorIndex) SearchVectors(query []float32, k int) []string {
	type scored struct {
		id    string
		score float32
	}
	queryNorm := math.Sqrt(float64(vek32.Dot(query, query)))
	if queryNorm == 0 {
		return nil
	}

	results := make([]scored, 0, len(idx.ids))
	for i, v := range idx.vectors {
		if len(v) != len(query) {
			continue
		}
		dot := vek32.Dot(query, v)
		vNorm := math.Sqrt(float64(vek32.Dot(v, v)))
		if vNorm == 0 {
			continue
		}
		cos := float32(float64(dot) / (queryNorm * vNorm))
		results = append(results, scored{idx.ids[i], cos})
	}

	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j-1].score < results[j].score; j-- {
			results[j-1], results[j] = results[j], results[j-1]
		}
	}

	if k > len(results) {
		k = len(results)
	}
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = results[i].id
	}
	return out
}

// QueryCypher executes a read-only named query from the catalog seeded by
// migration 3 (see schema.go), binding params by name. spec.md §6 names
// this operation query_cypher(text, params); there is no Cypher
// implementation anywhere in the dependency pack to ground a real parser
// on, so this accepts the catalog entry's name in place of Cypher text —
// see DESIGN.md for the Open Question resolution.
func (b *Backend) QueryCypher(ctx context.Context, name string, params map[string]any) ([]map[string]any, error) {
	var querySQL string
	err := b.pool.QueryRow(ctx, `SELECT sql FROM queries WHERE name = ?`, name).Scan(&querySQL)
	if err != nil {
		return nil, fmt.Errorf("unknown query %q: %w", name, err)
	}

	args := make([]any, 0, len(params))
	for k, v := range params {
		args = append(args, sql.Named(k, v))
	}

	rows, err := b.pool.Query(ctx, querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if jsonArrayColumns[c] {
				row[c] = decodeStrings(vals[i])
				continue
			}
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
