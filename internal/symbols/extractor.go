package symbols

// ExtractAll dispatches to the concrete-syntax extractor when a grammar
// is wired for lang, else to the line-oriented fallback, and always
// recovers from a parser panic at the file boundary: one malformed file
// degrades to "no symbols, one diagnostic" rather than aborting an
// entire indexing run (spec section 4.4).
func ExtractAll(fileID int64, path string, lang Language, content []byte) (symbols []Symbol, diag *Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			symbols = nil
			diag = &Diagnostic{Path: path, Reason: "parser panic recovered"}
		}
	}()

	reg := DefaultRegistry()
	if ex, ok := reg.For(lang); ok {
		return ex.Extract(fileID, path, content)
	}
	return ExtractFallback(fileID, lang, content), nil
}
