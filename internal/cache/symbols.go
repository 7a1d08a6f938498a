package cache

import (
	"fmt"
	"strings"

	"github.com/reflexsearch/reflex/internal/symbols"
)

// ReplaceSymbols deletes fileID's existing symbol rows and inserts syms,
// used by the indexer after (re)extracting a file's symbols (spec
// section 5.6). Runs in a single transaction so a reader never observes
// a half-updated symbol set for one file.
func (c *Cache) ReplaceSymbols(fileID int64, syms []symbols.Symbol) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM symbols_index WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("clear symbols for file %d: %w", fileID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO symbols_index (file_id, kind, identifier, start_line, start_col, end_line, end_col, exported)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare symbol insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range syms {
		exported := 0
		if s.Exported {
			exported = 1
		}
		if _, err := stmt.Exec(fileID, int(s.Kind), s.Identifier, s.Span.StartLine, s.Span.StartCol, s.Span.EndLine, s.Span.EndCol, exported); err != nil {
			return fmt.Errorf("insert symbol %q: %w", s.Identifier, err)
		}
	}
	return tx.Commit()
}

// SymbolRow is a symbols_index row joined with its owning file's path,
// the shape the query engine's symbol: search returns (spec section 5.7).
type SymbolRow struct {
	FileID     int64
	Path       string
	Kind       symbols.Kind
	Identifier string
	Span       symbols.Span
	Exported   bool
}

// FindSymbolsByIdentifier returns every symbol (across branch) whose
// identifier contains needle as a case-sensitive substring (the
// symbol-by-trigram path of spec.md section 4.7 point 4 — "STRUCT"
// against a struct named UPPERCASE_STRUCT is a match; against
// lowercase_struct it is not), optionally filtered to kind when
// kindFilter >= 0. The match runs in Go rather than SQL LIKE/GLOB to
// keep it exact-case without fighting SQLite's ASCII-only
// case-insensitive LIKE default.
func (c *Cache) FindSymbolsByIdentifier(branch, needle string, kindFilter int) ([]SymbolRow, error) {
	rows, err := c.FindSymbolsByKind(branch, kindFilter)
	if err != nil {
		return nil, fmt.Errorf("find symbols %q: %w", needle, err)
	}
	out := rows[:0]
	for _, r := range rows {
		if strings.Contains(r.Identifier, needle) {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindSymbolsByKind returns every symbol of kindFilter across branch,
// regardless of identifier. Used by the query engine's keyword-shortcut
// rule (e.g. "struct"), where the keyword names a kind to list, not a
// literal identifier to exact-match.
func (c *Cache) FindSymbolsByKind(branch string, kindFilter int) ([]SymbolRow, error) {
	query := `
		SELECT s.file_id, f.path, s.kind, s.identifier, s.start_line, s.start_col, s.end_line, s.end_col, s.exported
		FROM symbols_index s
		JOIN files f ON f.id = s.file_id
		WHERE f.branch = ?`
	args := []any{branch}
	if kindFilter >= 0 {
		query += ` AND s.kind = ?`
		args = append(args, kindFilter)
	}
	query += ` ORDER BY f.path, s.start_line, s.start_col`

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("find symbols by kind %d: %w", kindFilter, err)
	}
	defer rows.Close()

	var out []SymbolRow
	for rows.Next() {
		var r SymbolRow
		var kind int
		var exported int
		if err := rows.Scan(&r.FileID, &r.Path, &kind, &r.Identifier, &r.Span.StartLine, &r.Span.StartCol, &r.Span.EndLine, &r.Span.EndCol, &exported); err != nil {
			return nil, fmt.Errorf("scan symbol row: %w", err)
		}
		r.Kind = symbols.Kind(kind)
		r.Exported = exported != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReplaceDeps deletes fileID's existing dependency edges and inserts the
// given ones (spec section 9's dependency-edge domain-stack addition).
func (c *Cache) ReplaceDeps(fileID int64, deps []DepEdge) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM deps WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("clear deps for file %d: %w", fileID, err)
	}
	stmt, err := tx.Prepare(`INSERT INTO deps (file_id, imported_path, kind, resolved) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare dep insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range deps {
		resolved := 0
		if d.Resolved {
			resolved = 1
		}
		if _, err := stmt.Exec(fileID, d.ImportedPath, d.Kind, resolved); err != nil {
			return fmt.Errorf("insert dep %q: %w", d.ImportedPath, err)
		}
	}
	return tx.Commit()
}

// DepEdge is one dependency/import edge extracted from a file (spec
// section 4, domain-stack addition).
type DepEdge struct {
	ImportedPath string
	Kind         string // "import" | "require" | "use" | "include"
	Resolved     bool
}

// ListDeps returns every dependency edge recorded for branch, joined
// with the owning file's path.
func (c *Cache) ListDeps(branch string) (map[string][]DepEdge, error) {
	rows, err := c.db.Query(`
		SELECT f.path, d.imported_path, d.kind, d.resolved
		FROM deps d JOIN files f ON f.id = d.file_id
		WHERE f.branch = ?
	`, branch)
	if err != nil {
		return nil, fmt.Errorf("list deps: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]DepEdge)
	for rows.Next() {
		var path string
		var d DepEdge
		var resolved int
		if err := rows.Scan(&path, &d.ImportedPath, &d.Kind, &resolved); err != nil {
			return nil, fmt.Errorf("scan dep row: %w", err)
		}
		d.Resolved = resolved != 0
		out[path] = append(out[path], d)
	}
	return out, rows.Err()
}
