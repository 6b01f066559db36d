package sqlite

import (
	"database/sql"

	"github.com/axon-graph/axon/core/database"
)

// Migrations is the ordered schema history for .axon/graph.db, applied
// through database.Migrator. Grounded on overkam-code-property-graph's
// nodes/edges relational shape (db.go's createTables/createIndexes),
// generalized from its Go-specific columns (package, parent_function) to
// the multi-language Node/Edge fields spec.md §3 defines.
var Migrations = []database.Migration{
	{
		Version:     1,
		Description: "nodes and edges tables",
		Up:          migrate1Up,
		Down:        migrate1Down,
	},
	{
		Version:     2,
		Description: "full-text search over symbol signature and body",
		Up:          migrate2Up,
		Down:        migrate2Down,
	},
	{
		Version:     3,
		Description: "named graph-traversal queries catalog",
		Up:          migrate3Up,
		Down:        migrate3Down,
	},
}

func migrate1Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
CREATE TABLE nodes (
	id               TEXT PRIMARY KEY,
	kind             TEXT NOT NULL,
	path             TEXT,
	name             TEXT NOT NULL,
	language         TEXT,
	byte_size        INTEGER,
	content_hash     INTEGER,
	parse_failed     INTEGER NOT NULL DEFAULT 0,
	start_line       INTEGER,
	end_line         INTEGER,
	signature        TEXT,
	body_snippet     TEXT,
	decorators       TEXT,
	is_exported      INTEGER NOT NULL DEFAULT 0,
	is_test          INTEGER NOT NULL DEFAULT 0,
	is_dead          INTEGER NOT NULL DEFAULT 0,
	bases_syntactic  TEXT,
	class_id         TEXT,
	is_override      INTEGER NOT NULL DEFAULT 0,
	is_property      INTEGER NOT NULL DEFAULT 0,
	is_ctor          INTEGER NOT NULL DEFAULT 0,
	is_stub          INTEGER NOT NULL DEFAULT 0,
	methods_declared TEXT,
	target_syntactic TEXT,
	variants         TEXT,
	label            TEXT,
	cohesion         REAL,
	entry_symbol_id  TEXT,
	process_kind     TEXT,
	vector           BLOB
);

CREATE INDEX idx_nodes_kind ON nodes(kind);
CREATE INDEX idx_nodes_path ON nodes(path);
CREATE INDEX idx_nodes_class_id ON nodes(class_id);

CREATE TABLE edges (
	source_id        TEXT NOT NULL,
	target_id        TEXT NOT NULL,
	type             TEXT NOT NULL,
	confidence       REAL,
	imported_symbols TEXT,
	role             TEXT,
	step_number      INTEGER,
	strength         REAL,
	co_changes       INTEGER,
	PRIMARY KEY (source_id, target_id, type, role)
);

CREATE INDEX idx_edges_source ON edges(source_id, type);
CREATE INDEX idx_edges_target ON edges(target_id, type);
`)
	return err
}

func migrate1Down(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS edges; DROP TABLE IF EXISTS nodes;`)
	return err
}

// migrate2Up creates the FTS5 virtual table. mattn/go-sqlite3 (the driver
// core/database registers) compiles in fts5 by default since v1.14 — the
// same assumption the teacher's own archivalist package makes for its
// entries_fts/summaries_fts tables, just against modernc.org/sqlite there
// instead.
func migrate2Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
CREATE VIRTUAL TABLE nodes_fts USING fts5(
	id UNINDEXED,
	name,
	signature,
	body_snippet
);
`)
	return err
}

func migrate2Down(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS nodes_fts;`)
	return err
}

func migrate3Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
CREATE TABLE queries (
	name        TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	sql         TEXT NOT NULL
);

INSERT INTO queries (name, description, sql) VALUES
('callers_of',
 'Transitive callers of a symbol, up to depth 5',
 'WITH RECURSIVE callers(id, depth) AS (
  SELECT :target_id, 0
  UNION
  SELECT e.source_id, c.depth + 1
  FROM callers c JOIN edges e ON e.target_id = c.id
  WHERE e.type = ''CALLS'' AND c.depth < 5
)
SELECT DISTINCT n.* FROM callers c JOIN nodes n ON n.id = c.id WHERE c.depth > 0 ORDER BY c.depth'),
('callees_of',
 'Transitive callees of a symbol, up to depth 5',
 'WITH RECURSIVE callees(id, depth) AS (
  SELECT :source_id, 0
  UNION
  SELECT e.target_id, c.depth + 1
  FROM callees c JOIN edges e ON e.source_id = c.id
  WHERE e.type = ''CALLS'' AND c.depth < 5
)
SELECT DISTINCT n.* FROM callees c JOIN nodes n ON n.id = c.id WHERE c.depth > 0 ORDER BY c.depth'),
('dead_symbols_in_file',
 'Every dead symbol defined in a given file',
 'SELECT n.* FROM nodes n
  JOIN edges e ON e.target_id = n.id AND e.type = ''DEFINES''
  WHERE e.source_id = :file_id AND n.is_dead = 1'),
('coupled_files',
 'Files change-coupled with a given file above the configured threshold',
 'SELECT n.*, e.strength, e.co_changes FROM edges e
  JOIN nodes n ON n.id = e.target_id
  WHERE e.source_id = :file_id AND e.type = ''COUPLED_WITH''
  ORDER BY e.strength DESC');
`)
	return err
}

func migrate3Down(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS queries;`)
	return err
}
