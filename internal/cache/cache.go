// Package cache manages the on-disk .reflex cache directory: the
// relational metadata store (meta.db), the advisory single-writer lock
// (meta.lock), and the hashes.json mirror, a readable JSON copy of one
// branch's path->hash map (spec section 5.1).
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/reflexsearch/reflex/internal/rerrors"
)

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Cache wraps the metadata database for one .reflex directory.
type Cache struct {
	dir string
	db  *sql.DB
}

// Open opens (creating if necessary) meta.db inside dir and applies any
// pending migrations. It does not acquire the writer lock — callers that
// intend to mutate the cache call Lock first.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, rerrors.NewIoError(dir, err)
	}
	dbPath := filepath.Join(dir, "meta.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, rerrors.NewIoError(dbPath, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: one writer connection avoids SQLITE_BUSY

	c := &Cache{dir: dir, db: db}
	if err := c.ensureSchema(); err != nil {
		db.Close()
		return nil, &rerrors.CorruptStoreError{Store: dbPath, Underlying: err}
	}
	return c, nil
}

// Init is Open plus recording schemaHash as the schema_hash config row
// when none is stored yet; an existing schema_hash row is left unchanged.
func Init(dir string, schemaHash string) (*Cache, error) {
	c, err := Open(dir)
	if err != nil {
		return nil, err
	}
	if err := c.setConfigIfAbsent("schema_hash", schemaHash); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) setConfigIfAbsent(key, value string) error {
	_, err := c.db.Exec(`INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO NOTHING`, key, value)
	return err
}

// SchemaHash returns the schema_hash recorded at Init time, or "" if
// never set (a cache directory from before this field existed).
func (c *Cache) SchemaHash() (string, error) {
	var v string
	err := c.db.QueryRow(`SELECT value FROM config WHERE key = 'schema_hash'`).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read schema hash: %w", err)
	}
	return v, nil
}

// Close closes the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Dir returns the .reflex directory this Cache was opened against.
func (c *Cache) Dir() string {
	return c.dir
}

// WriteLock is the advisory single-writer lock over meta.lock (spec
// section 5.1/6), grounded on gofrs/flock's TryLockContext pattern.
type WriteLock struct {
	fl *flock.Flock
}

// Lock acquires the exclusive writer lock for dir, retrying every 50ms
// via TryLockContext until it succeeds or ctx is done; in the latter case
// it returns a LockHeldError.
func Lock(ctx context.Context, dir string) (*WriteLock, error) {
	fl := flock.New(filepath.Join(dir, "meta.lock"))
	ok, err := fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &rerrors.LockHeldError{CacheDir: dir}
		}
		return nil, rerrors.NewIoError(fl.Path(), err)
	}
	if !ok {
		return nil, &rerrors.LockHeldError{CacheDir: dir}
	}
	return &WriteLock{fl: fl}, nil
}

// Unlock releases the lock.
func (l *WriteLock) Unlock() error {
	return l.fl.Unlock()
}

// Clear removes every entry inside dir except meta.lock, used by `reflex
// clear` (spec section 6); dir itself and meta.lock are left in place.
// The caller must
// hold the write lock (and close any Cache/store handles) first.
func Clear(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return rerrors.NewIoError(dir, err)
	}
	for _, e := range entries {
		if e.Name() == "meta.lock" {
			continue // still held by the caller; removed last by the caller itself
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return rerrors.NewIoError(filepath.Join(dir, e.Name()), err)
		}
	}
	return nil
}
