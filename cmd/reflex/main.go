// Command reflex indexes a source tree into a .reflex cache directory
// and answers literal, regex, and symbol queries against it (spec
// section 7).
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/reflexsearch/reflex/internal/rerrors"
)

// schemaHash identifies the on-disk format this binary was built
// against (spec section 5.8). Production builds override it with
// `-ldflags "-X main.schemaHash=..."`, computed from internal/schema.Hash
// over the format-defining sources; this constant covers local builds
// and `go run`.
var schemaHash = "reflex-format-v1"

func main() {
	app := &cli.App{
		Name:  "reflex",
		Usage: "trigram-based source code search",
		Commands: []*cli.Command{
			indexCommand(),
			queryCommand(),
			statsCommand(),
			clearCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "reflex:", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a returned error to the process exit code spec
// section 6 specifies: 0 success (handled by app.Run returning nil), 2
// for a schema mismatch or a malformed query pattern, 1 for any other
// failure.
func exitCodeFor(err error) int {
	if coder, ok := err.(cli.ExitCoder); ok {
		return coder.ExitCode()
	}

	var diag rerrors.Diagnostic
	if asDiagnostic(err, &diag) {
		switch diag.Kind() {
		case rerrors.KindSchemaMismatch, rerrors.KindMalformedPattern:
			return 2
		}
	}
	return 1
}

func asDiagnostic(err error, target *rerrors.Diagnostic) bool {
	for err != nil {
		if d, ok := err.(rerrors.Diagnostic); ok {
			*target = d
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
