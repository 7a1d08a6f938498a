// Package indexer walks an indexed root, detects changed files against
// the cache's recorded hashes, and rebuilds the trigram/symbol/content
// stores for the ones that changed (spec section 5.6).
package indexer

import "time"

// Options configures a single Index call. Empty or non-positive Branch,
// Workers, MaxFileSizeBytes, ExcludeDirs, CaseFoldMaxPerm and
// SymbolPolicy fall back to internal/config.Default()'s values via
// Options.withDefaults; Force and RespectGitignore are used as given.
type Options struct {
	Branch           string
	Force            bool // reprocess every file regardless of hash match
	Workers          int  // 0 = runtime.GOMAXPROCS(0)
	MaxFileSizeBytes int64
	ExcludeDirs      []string
	RespectGitignore bool
	CaseFoldMaxPerm  int
	SymbolPolicy     string // "runtime" | "precomputed"
	SchemaHash       string // embedded build fingerprint, written on first Init
}

// Stats summarizes one Index run (spec section 6's human-readable
// `reflex index` summary line, and the `stats` subcommand's persisted
// counters).
type Stats struct {
	FilesTotal   int
	FilesIndexed int // newly parsed or reparsed this run
	FilesReused  int // unchanged, symbols/content copied forward
	FilesRemoved int
	TrigramCount int
	SymbolCount  int
	Duration     time.Duration
}
