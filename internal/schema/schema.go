// Package schema computes and checks the build-time fingerprint that
// guards against a stale cache directory being read by a binary whose
// on-disk format has since changed (spec section 5.8).
package schema

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/reflexsearch/reflex/internal/rerrors"
)

// Hash computes the fingerprint over the format-defining source
// contents: (path || bytes) for each file, in ascending path order,
// hashed with BLAKE3 and truncated to 64 bits, hex-encoded. A build can
// embed such a value via `-ldflags "-X main.schemaHash=..."`; the
// repository has no build script or generator that calls Hash.
func Hash(files map[string][]byte) string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sortStrings(names)

	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(name)
		buf.Write(files[name])
	}
	sum := blake3.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:8])
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Check compares the binary's embedded schema hash (built) against the
// hash recorded in an opened cache's meta.db (stored). An empty stored
// hash (a cache directory from before this field existed) is treated as
// a mismatch, forcing a reindex rather than risking misinterpretation of
// an older on-disk layout.
func Check(built, stored string) error {
	if stored == "" || built != stored {
		return &rerrors.SchemaMismatchError{Want: built, Got: stored}
	}
	return nil
}

// Format renders a short human-readable description of a hash for log
// lines and `reflex stats` output.
func Format(hash string) string {
	if hash == "" {
		return "(none)"
	}
	return fmt.Sprintf("schema:%s", hash)
}
