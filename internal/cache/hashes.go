package cache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/reflexsearch/reflex/internal/rerrors"
)

// hashesFileName is the readable JSON mirror of one branch's
// branch_hashes rows, the "hashes.json" entry in the cache directory
// layout (spec section 5.1). Nothing in reflex reads it back.
const hashesFileName = "hashes.json"

// WriteHashesMirror serializes branch's path->hash map, together with the
// branch name, to hashes.json, replacing any previous contents (including
// another branch's map).
func (c *Cache) WriteHashesMirror(branch string) error {
	hashes, err := c.LoadHashesForBranch(branch)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(struct {
		Branch string            `json:"branch"`
		Hashes map[string]string `json:"hashes"`
	}{Branch: branch, Hashes: hashes}, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(c.dir, hashesFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return rerrors.NewIoError(path, err)
	}
	return nil
}
