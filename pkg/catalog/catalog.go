// Package catalog persists a completed statute hierarchy into SQLite so the
// downstream consumers (citation lookup, retrieval indexing) can address
// nodes without re-parsing the Act XML. The driver is pure Go
// (modernc.org/sqlite), so the catalog builds without cgo.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/coolbeans/statutree/pkg/statute"
)

// ErrNotFound indicates no catalog entry matched the lookup.
var ErrNotFound = errors.New("catalog entry not found")

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id        TEXT PRIMARY KEY,
	act_code  TEXT NOT NULL,
	kind      TEXT NOT NULL,
	parent_id TEXT NOT NULL,
	label     TEXT NOT NULL,
	title     TEXT NOT NULL,
	citation  TEXT NOT NULL,
	text      TEXT NOT NULL,
	path      TEXT NOT NULL,
	position  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nodes_citation ON nodes(citation);
CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);
CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(act_code, kind);
`

// Entry is one catalog row: the addressable projection of a statute node.
type Entry struct {
	ID       string
	ActCode  string
	Kind     statute.Kind
	ParentID string
	Label    string
	Title    string
	Citation string
	Text     string
	Path     string
	Position int
}

// Catalog is a SQLite-backed citation index over one or more parsed acts.
type Catalog struct {
	db *sql.DB
}

// Open opens (or creates) a catalog database at the given path and ensures
// the schema exists. Use ":memory:" for an ephemeral catalog.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close releases the underlying database handle.
func (catalog *Catalog) Close() error {
	return catalog.db.Close()
}

// Build indexes a completed hierarchy, replacing any previous rows for the
// same act. Rows are written in insertion order so position reflects
// document order.
func (catalog *Catalog) Build(hierarchy *statute.Hierarchy) error {
	if hierarchy == nil {
		return fmt.Errorf("hierarchy is nil")
	}

	tx, err := catalog.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin catalog transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM nodes WHERE act_code = ?`, hierarchy.ActCode); err != nil {
		return fmt.Errorf("failed to clear previous catalog rows: %w", err)
	}

	insert, err := tx.Prepare(`
		INSERT INTO nodes (id, act_code, kind, parent_id, label, title, citation, text, path, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare catalog insert: %w", err)
	}
	defer insert.Close()

	for position, id := range hierarchy.IDs() {
		node := hierarchy.Node(id)
		path := strings.Join(hierarchy.Path(id), " > ")
		if _, err := insert.Exec(
			node.ID, hierarchy.ActCode, string(node.Kind), node.ParentID,
			node.Label, node.Title, node.Citation, node.Text, path, position,
		); err != nil {
			return fmt.Errorf("failed to index node %s: %w", node.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog transaction: %w", err)
	}
	return nil
}

const entryColumns = `id, act_code, kind, parent_id, label, title, citation, text, path, position`

// scanEntry reads one Entry from a row scanner.
func scanEntry(row interface{ Scan(...any) error }) (*Entry, error) {
	var entry Entry
	var kind string
	err := row.Scan(&entry.ID, &entry.ActCode, &kind, &entry.ParentID,
		&entry.Label, &entry.Title, &entry.Citation, &entry.Text,
		&entry.Path, &entry.Position)
	if err != nil {
		return nil, err
	}
	entry.Kind = statute.Kind(kind)
	return &entry, nil
}

// LookupID returns the entry with the given node id.
func (catalog *Catalog) LookupID(id string) (*Entry, error) {
	row := catalog.db.QueryRow(`SELECT `+entryColumns+` FROM nodes WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up node %q: %w", id, err)
	}
	return entry, nil
}

// LookupCitation returns the entry whose citation string matches exactly.
func (catalog *Catalog) LookupCitation(citation string) (*Entry, error) {
	row := catalog.db.QueryRow(`SELECT `+entryColumns+` FROM nodes WHERE citation = ?`, citation)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("citation %q: %w", citation, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up citation %q: %w", citation, err)
	}
	return entry, nil
}

// ChildrenOf returns the direct children of a node in document order.
func (catalog *Catalog) ChildrenOf(id string) ([]*Entry, error) {
	rows, err := catalog.db.Query(
		`SELECT `+entryColumns+` FROM nodes WHERE parent_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query children of %q: %w", id, err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child of %q: %w", id, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read children of %q: %w", id, err)
	}
	return entries, nil
}

// NodesOfKind returns all entries of one kind for an act, in document order.
func (catalog *Catalog) NodesOfKind(actCode string, kind statute.Kind) ([]*Entry, error) {
	rows, err := catalog.db.Query(
		`SELECT `+entryColumns+` FROM nodes WHERE act_code = ? AND kind = ? ORDER BY position`,
		actCode, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s nodes: %w", kind, err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s node: %w", kind, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s nodes: %w", kind, err)
	}
	return entries, nil
}
