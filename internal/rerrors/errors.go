// Package rerrors defines the typed error kinds that cross the core's
// public boundary (cache, indexer, query engine). Call sites that need to
// wrap a lower-level error but don't produce one of these kinds use
// github.com/pkg/errors or fmt.Errorf directly instead of a bespoke type.
package rerrors

import (
	"fmt"
	"time"
)

// Kind is the closed set of error kinds a caller of the core needs to
// branch on (spec section 7).
type Kind string

const (
	KindNotIndexed      Kind = "not_indexed"
	KindSchemaMismatch  Kind = "schema_mismatch"
	KindCorruptStore    Kind = "corrupt_store"
	KindParseError      Kind = "parse_error"
	KindMalformedPattern Kind = "malformed_pattern"
	KindIo              Kind = "io"
	KindLockHeld        Kind = "lock_held"
)

// NotIndexedError is returned when a query or stats call is made against a
// root with no cache directory.
type NotIndexedError struct {
	Root string
}

func (e *NotIndexedError) Error() string {
	return fmt.Sprintf("not indexed: %s has no .reflex cache; run `reflex index` first", e.Root)
}

func (e *NotIndexedError) Kind() Kind { return KindNotIndexed }

// SchemaMismatchError is returned when the schema hash embedded in the
// binary doesn't match the one recorded in meta.db.
type SchemaMismatchError struct {
	Want, Got string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("stale cache: on-disk schema %s does not match binary schema %s; reindex required", e.Got, e.Want)
}

func (e *SchemaMismatchError) Kind() Kind { return KindSchemaMismatch }

// CorruptStoreError wraps a failure to parse one of the on-disk binary
// stores (bad magic, truncated section, checksum mismatch).
type CorruptStoreError struct {
	Store      string
	Underlying error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt store %s: %v", e.Store, e.Underlying)
}

func (e *CorruptStoreError) Unwrap() error { return e.Underlying }
func (e *CorruptStoreError) Kind() Kind    { return KindCorruptStore }

// ParseError records a diagnostic against a single file during ingestion.
// It never aborts indexing; it is accumulated into a batch's diagnostic
// list.
type ParseError struct {
	Path       string
	Reason     string
	Underlying error
	At         time.Time
}

func NewParseError(path, reason string, err error) *ParseError {
	return &ParseError{Path: path, Reason: reason, Underlying: err, At: time.Now()}
}

func (e *ParseError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("parse error in %s: %s: %v", e.Path, e.Reason, e.Underlying)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Underlying }
func (e *ParseError) Kind() Kind    { return KindParseError }

// MalformedPatternError carries a column-indexed diagnostic for a query
// pattern that failed to parse (invalid regex, empty literal, ...).
type MalformedPatternError struct {
	Pattern string
	Column  int
	Reason  string
}

func (e *MalformedPatternError) Error() string {
	return fmt.Sprintf("malformed pattern %q at column %d: %s", e.Pattern, e.Column, e.Reason)
}

func (e *MalformedPatternError) Kind() Kind { return KindMalformedPattern }

// IoError records a failure to read or write a path (the cache directory,
// a store file, the lock file). During indexing, a source file that
// cannot be read is skipped without an IoError or any diagnostic.
type IoError struct {
	Path       string
	Underlying error
}

func NewIoError(path string, err error) *IoError {
	return &IoError{Path: path, Underlying: err}
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io error on %s: %v", e.Path, e.Underlying)
}

func (e *IoError) Unwrap() error { return e.Underlying }
func (e *IoError) Kind() Kind    { return KindIo }

// LockHeldError is returned when the advisory meta.lock could not be
// acquired within the caller's context deadline.
type LockHeldError struct {
	CacheDir string
}

func (e *LockHeldError) Error() string {
	return fmt.Sprintf("lock held: another writer owns %s/meta.lock", e.CacheDir)
}

func (e *LockHeldError) Kind() Kind { return KindLockHeld }

// Diagnostic is the kind interface implemented by every typed error above,
// letting callers branch with a type switch or errors.As without needing
// to know every concrete struct name.
type Diagnostic interface {
	error
	Kind() Kind
}

// MultiError aggregates the diagnostics collected during a batch (per-file
// ParseError/IoError) without aborting the batch itself.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors during indexing (first: %v)", len(e.Errors), e.Errors[0])
}

func (e *MultiError) Unwrap() []error { return e.Errors }
