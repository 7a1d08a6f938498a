package cache

import (
	"database/sql"
	"fmt"
)

// FileRecord is one row of the files table: the join key between
// meta.db, content.bin, and symbols.bin for a single (path, branch)
// pair (spec section 4.1/5.1).
type FileRecord struct {
	ID            int64
	Path          string
	Branch        string
	Language      string
	ContentHash   string
	SizeBytes     int64
	ContentOffset uint32
	ContentLength uint32
	SymbolOffset  int64
	SymbolLength  int64
	IndexedAt     string
}

// UpsertFile inserts or replaces the (path, branch) row, returning its
// file ID; a new row's ID is assigned by SQLite. The indexer writes its
// rows through ReplaceAllFiles instead.
func (c *Cache) UpsertFile(r FileRecord) (int64, error) {
	r.IndexedAt = nowRFC3339()
	res, err := c.db.Exec(`
		INSERT INTO files (path, branch, language, content_hash, size_bytes,
			content_offset, content_length, symbol_offset, symbol_length, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path, branch) DO UPDATE SET
			language=excluded.language,
			content_hash=excluded.content_hash,
			size_bytes=excluded.size_bytes,
			content_offset=excluded.content_offset,
			content_length=excluded.content_length,
			symbol_offset=excluded.symbol_offset,
			symbol_length=excluded.symbol_length,
			indexed_at=excluded.indexed_at
	`, r.Path, r.Branch, r.Language, r.ContentHash, r.SizeBytes,
		r.ContentOffset, r.ContentLength, r.SymbolOffset, r.SymbolLength, r.IndexedAt)
	if err != nil {
		return 0, fmt.Errorf("upsert file %s: %w", r.Path, err)
	}

	id, err := res.LastInsertId()
	if err != nil || id == 0 {
		// ON CONFLICT UPDATE paths don't populate LastInsertId on every
		// driver; fall back to a lookup by the unique key.
		var existing int64
		if scanErr := c.db.QueryRow(`SELECT id FROM files WHERE path = ? AND branch = ?`, r.Path, r.Branch).Scan(&existing); scanErr != nil {
			return 0, fmt.Errorf("lookup file id for %s: %w", r.Path, scanErr)
		}
		return existing, nil
	}
	return id, nil
}

// DeleteFile removes a file's row (and its symbols/deps via cascade) by
// path+branch, used when the indexer's diff step detects a deletion.
func (c *Cache) DeleteFile(path, branch string) error {
	_, err := c.db.Exec(`DELETE FROM files WHERE path = ? AND branch = ?`, path, branch)
	if err != nil {
		return fmt.Errorf("delete file %s: %w", path, err)
	}
	return nil
}

// GetFile looks up a single file by path+branch.
func (c *Cache) GetFile(path, branch string) (*FileRecord, error) {
	row := c.db.QueryRow(`
		SELECT id, path, branch, language, content_hash, size_bytes,
			content_offset, content_length, symbol_offset, symbol_length, indexed_at
		FROM files WHERE path = ? AND branch = ?
	`, path, branch)
	return scanFileRow(row)
}

// GetFileByID looks up a single file by its numeric ID, the join key the
// query engine uses to turn a trigram posting list (file IDs) back into
// paths/offsets.
func (c *Cache) GetFileByID(id int64) (*FileRecord, error) {
	row := c.db.QueryRow(`
		SELECT id, path, branch, language, content_hash, size_bytes,
			content_offset, content_length, symbol_offset, symbol_length, indexed_at
		FROM files WHERE id = ?
	`, id)
	return scanFileRow(row)
}

// ListFiles returns every file row for branch, ordered by path — the
// deterministic iteration order the query engine and stats rely on.
func (c *Cache) ListFiles(branch string) ([]FileRecord, error) {
	rows, err := c.db.Query(`
		SELECT id, path, branch, language, content_hash, size_bytes,
			content_offset, content_length, symbol_offset, symbol_length, indexed_at
		FROM files WHERE branch = ? ORDER BY path
	`, branch)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var r FileRecord
		if err := rows.Scan(&r.ID, &r.Path, &r.Branch, &r.Language, &r.ContentHash, &r.SizeBytes,
			&r.ContentOffset, &r.ContentLength, &r.SymbolOffset, &r.SymbolLength, &r.IndexedAt); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReplaceAllFiles atomically replaces every files row for branch with
// records, whose IDs the caller has already assigned (spec section
// 5.6/8): the indexer numbers files in sorted-path order on a full
// reindex and keeps existing files' IDs on an incremental one.
// Symbols/deps rows cascade-delete with their old file rows;
// callers re-populate them afterward against the new IDs.
func (c *Cache) ReplaceAllFiles(branch string, records []FileRecord) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM files WHERE branch = ?`, branch); err != nil {
		return fmt.Errorf("clear files for %s: %w", branch, err)
	}

	now := nowRFC3339()
	for _, r := range records {
		if _, err := tx.Exec(`
			INSERT INTO files (id, path, branch, language, content_hash, size_bytes,
				content_offset, content_length, symbol_offset, symbol_length, indexed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, r.Path, branch, r.Language, r.ContentHash, r.SizeBytes,
			r.ContentOffset, r.ContentLength, r.SymbolOffset, r.SymbolLength, now); err != nil {
			return fmt.Errorf("insert file %s: %w", r.Path, err)
		}
	}
	return tx.Commit()
}

// NextFileID returns one past the current max file ID across all
// branches (1 for an empty table).
func (c *Cache) NextFileID() (int64, error) {
	var max sql.NullInt64
	if err := c.db.QueryRow(`SELECT MAX(id) FROM files`).Scan(&max); err != nil {
		return 0, fmt.Errorf("read max file id: %w", err)
	}
	if !max.Valid {
		return 1, nil
	}
	return max.Int64 + 1, nil
}

func scanFileRow(row *sql.Row) (*FileRecord, error) {
	var r FileRecord
	err := row.Scan(&r.ID, &r.Path, &r.Branch, &r.Language, &r.ContentHash, &r.SizeBytes,
		&r.ContentOffset, &r.ContentLength, &r.SymbolOffset, &r.SymbolLength, &r.IndexedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return &r, nil
}

// RecordBranchFile records path's content hash for branch, the basis for
// the next run's change-detection diff.
func (c *Cache) RecordBranchFile(branch, path, contentHash string) error {
	_, err := c.db.Exec(`
		INSERT INTO branch_hashes (branch, path, content_hash) VALUES (?, ?, ?)
		ON CONFLICT(branch, path) DO UPDATE SET content_hash = excluded.content_hash
	`, branch, path, contentHash)
	if err != nil {
		return fmt.Errorf("record branch file %s: %w", path, err)
	}
	return nil
}

// LoadHashesForBranch returns the path -> content hash map recorded for
// branch as of the last indexing run.
func (c *Cache) LoadHashesForBranch(branch string) (map[string]string, error) {
	rows, err := c.db.Query(`SELECT path, content_hash FROM branch_hashes WHERE branch = ?`, branch)
	if err != nil {
		return nil, fmt.Errorf("load branch hashes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, fmt.Errorf("scan branch hash: %w", err)
		}
		out[path] = hash
	}
	return out, rows.Err()
}

// ForgetBranchFile removes path's recorded hash for branch, used when a
// file is deleted from the working tree.
func (c *Cache) ForgetBranchFile(branch, path string) error {
	_, err := c.db.Exec(`DELETE FROM branch_hashes WHERE branch = ? AND path = ?`, branch, path)
	if err != nil {
		return fmt.Errorf("forget branch file %s: %w", path, err)
	}
	return nil
}
