// Package config loads the user-facing config.toml that lives inside a
// cache directory, plus the RFX_CACHE_DIR environment override.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	// DefaultCacheDirName is the directory name created under an indexed
	// root, unless overridden by RFX_CACHE_DIR.
	DefaultCacheDirName = ".reflex"

	envCacheDir = "RFX_CACHE_DIR"
)

// Config is the user-facing shape of config.toml.
type Config struct {
	Index       Index       `toml:"index"`
	Performance Performance `toml:"performance"`
	Symbols     Symbols     `toml:"symbols"`
}

// Index controls what the walker/classifier considers.
type Index struct {
	MaxFileSizeBytes int64    `toml:"max_file_size_bytes"`
	ExcludeDirs      []string `toml:"exclude_dirs"`
	RespectGitignore bool     `toml:"respect_gitignore"`
	Branch           string   `toml:"branch"`
}

// Performance controls the ingestion worker pool.
type Performance struct {
	Workers         int `toml:"workers"` // 0 = runtime.GOMAXPROCS(0)
	CaseFoldMaxPerm int `toml:"case_fold_max_permutations"`
}

// Symbols holds the symbol extraction policy setting (spec section 4.5).
// The indexer does not act on Policy: it always extracts symbols and
// writes symbols.bin, whatever the value.
type Symbols struct {
	Policy string `toml:"policy"` // "runtime" | "precomputed"
}

// Default returns the config used when no config.toml is present yet.
func Default() Config {
	return Config{
		Index: Index{
			MaxFileSizeBytes: 2 << 20,
			ExcludeDirs:      []string{"target", "node_modules", ".git", ".reflex", "dist", "build"},
			RespectGitignore: true,
			Branch:           "main",
		},
		Performance: Performance{
			Workers:         runtime.GOMAXPROCS(0),
			CaseFoldMaxPerm: 8,
		},
		Symbols: Symbols{
			Policy: "precomputed",
		},
	}
}

// Load reads config.toml from cacheDir, falling back to Default() if the
// file doesn't exist yet (first `index` run).
func Load(cacheDir string) (Config, error) {
	path := filepath.Join(cacheDir, "config.toml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "read %s", path)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse %s", path)
	}
	return cfg, nil
}

// Save writes cfg to config.toml inside cacheDir.
func Save(cacheDir string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	path := filepath.Join(cacheDir, "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// CacheDir resolves the cache directory for the given indexed root,
// honoring the RFX_CACHE_DIR override.
func CacheDir(root string) string {
	if dir := os.Getenv(envCacheDir); dir != "" {
		return dir
	}
	return filepath.Join(root, DefaultCacheDirName)
}
