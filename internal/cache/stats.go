package cache

import (
	"database/sql"
	"fmt"
)

// Stats is the snapshot `reflex stats` reports (spec section 4/6).
type Stats struct {
	TotalFiles    int64
	TotalSymbols  int64
	TotalPostings int64
	IndexBytes    int64
	LastUpdated   string
	SchemaHash    string
}

// Stats computes a live snapshot from meta.db. TotalPostings and
// IndexBytes are supplied by the caller (the indexer/trigram package
// knows them; meta.db doesn't duplicate trigrams.bin internals).
func (c *Cache) Stats(branch string) (Stats, error) {
	var s Stats

	if err := c.db.QueryRow(`SELECT COUNT(*) FROM files WHERE branch = ?`, branch).Scan(&s.TotalFiles); err != nil {
		return s, fmt.Errorf("count files: %w", err)
	}

	if err := c.db.QueryRow(`
		SELECT COUNT(*) FROM symbols_index s JOIN files f ON f.id = s.file_id WHERE f.branch = ?
	`, branch).Scan(&s.TotalSymbols); err != nil {
		return s, fmt.Errorf("count symbols: %w", err)
	}

	var lastUpdated sql.NullString
	if err := c.db.QueryRow(`SELECT MAX(indexed_at) FROM files WHERE branch = ?`, branch).Scan(&lastUpdated); err != nil {
		return s, fmt.Errorf("read last indexed: %w", err)
	}
	s.LastUpdated = lastUpdated.String

	hash, err := c.SchemaHash()
	if err != nil {
		return s, err
	}
	s.SchemaHash = hash

	return s, nil
}

// SetStatistic persists an arbitrary key/value pair recorded by the
// indexer at the end of a run (e.g. total posting entries, index byte
// size — values the cache package itself has no other way to know).
func (c *Cache) SetStatistic(key, value string) error {
	_, err := c.db.Exec(`
		INSERT INTO statistics (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set statistic %s: %w", key, err)
	}
	return nil
}

// GetStatistic reads back a value set by SetStatistic, or "" if absent.
func (c *Cache) GetStatistic(key string) (string, error) {
	var v string
	err := c.db.QueryRow(`SELECT value FROM statistics WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get statistic %s: %w", key, err)
	}
	return v, nil
}
