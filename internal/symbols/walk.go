package symbols

import (
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// captureKind maps a query's primary capture name (the node the whole
// declaration is anchored on, e.g. "function", "class") to the unified
// symbol kind enum. Per-language queries in grammars.go only ever use
// names from this table.
var captureKind = map[string]Kind{
	"function":  KindFunction,
	"method":    KindMethod,
	"class":     KindClass,
	"struct":    KindStruct,
	"enum":      KindEnum,
	"interface": KindInterface,
	"trait":     KindTrait,
	"constant":  KindConstant,
	"variable":  KindVariable,
	"module":    KindModule,
	"namespace": KindNamespace,
	"type":      KindType,
	"macro":     KindMacro,
	"property":  KindProperty,
	"event":     KindEvent,
	"import":    KindImport,
	"export":    KindExport,
	"attribute": KindAttribute,
}

// Extractor runs the concrete-syntax parser for a single language over
// file bytes and produces a symbol list. All Extractors for a language
// share that language's tree-sitter Parser, whose Parse calls are
// serialized by the grammar's parseMu, so concurrent Extract calls are
// safe.
type Extractor struct {
	lang Language
	gr   *grammar
}

// Registry is the tagged enumeration over supported languages (spec
// section 9, "dynamic language dispatch"): each variant carries its own
// parser handle and node-kind mapping as data, rather than a type switch
// over language strings scattered through the codebase.
type Registry struct {
	mu       sync.Mutex
	grammars map[Language]*grammar
}

var (
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry, building all wired
// grammars on first use.
func DefaultRegistry() *Registry {
	globalRegistryOnce.Do(func() {
		globalRegistry = &Registry{grammars: buildGrammars()}
	})
	return globalRegistry
}

// For returns an Extractor for lang, or false if no concrete-syntax
// grammar is wired (caller should use the fallback extractor instead).
func (r *Registry) For(lang Language) (*Extractor, bool) {
	gr, ok := r.grammars[lang]
	if !ok {
		return nil, false
	}
	return &Extractor{lang: lang, gr: gr}, true
}

// Extract parses content and returns the symbol list plus a diagnostic if
// the parser encountered a recoverable failure. A parse failure never
// aborts indexing of the file (spec section 4.4): whatever the tree
// contains up to the point of failure is still walked.
func (e *Extractor) Extract(fileID int64, path string, content []byte) ([]Symbol, *Diagnostic) {
	e.gr.parseMu.Lock()
	tree := e.gr.parser.Parse(content, nil)
	e.gr.parseMu.Unlock()
	if tree == nil {
		return nil, &Diagnostic{Path: path, Reason: "tree-sitter returned no tree"}
	}
	defer tree.Close()

	root := tree.RootNode()

	var diag *Diagnostic
	if root.HasError() {
		diag = &Diagnostic{Path: path, Reason: "parse tree contains error nodes; partial symbol list"}
	}

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(e.gr.query, root, content)
	captureNames := e.gr.query.CaptureNames()

	var out []Symbol
	for {
		match := matches.Next()
		if match == nil {
			break
		}

		names := make(map[string]tree_sitter.Node, 4)
		for _, c := range match.Captures {
			name := captureNames[c.Index]
			if strings.HasSuffix(name, ".name") || strings.HasSuffix(name, ".path") || strings.HasSuffix(name, ".source") {
				names[name] = c.Node
			}
		}

		for _, c := range match.Captures {
			name := captureNames[c.Index]
			kind, ok := captureKind[name]
			if !ok {
				continue // sub-capture like "function.name", handled above
			}
			if e.insideStringOrComment(c.Node) {
				continue
			}

			identifier := ""
			if n, ok := names[name+".name"]; ok {
				identifier = string(content[n.StartByte():n.EndByte()])
			} else if n, ok := names[name+".path"]; ok {
				identifier = string(content[n.StartByte():n.EndByte()])
			} else if n, ok := names[name+".source"]; ok {
				identifier = string(content[n.StartByte():n.EndByte()])
			}

			out = append(out, Symbol{
				FileID:     fileID,
				Kind:       kind,
				Identifier: identifier,
				Span:       spanOf(c.Node),
				Exported:   isExported(e.lang, identifier),
			})
		}
	}

	out = dropEmptyAnonymousWithoutNesting(out)
	return out, diag
}

// insideStringOrComment walks up from n to the root, refusing to emit a
// symbol whose capture node is itself (or is nested inside) a string
// literal or comment node. Tree-sitter's grammar already prevents a
// `struct` keyword written inside a string from ever being parsed as a
// struct_item, so this is a defensive second check for grammars with
// partial error-recovery nodes.
func (e *Extractor) insideStringOrComment(n tree_sitter.Node) bool {
	for cur := &n; cur != nil; {
		if e.gr.stringOrComment[cur.Kind()] {
			return true
		}
		parent := cur.Parent()
		if parent == nil {
			return false
		}
		cur = parent
	}
	return false
}

func spanOf(n tree_sitter.Node) Span {
	start, end := n.StartPosition(), n.EndPosition()
	return Span{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column),
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column),
	}
}

// isExported applies a visibility convention for Go only (identifier
// casing). Every other language, Rust included, defaults to exported:
// visibility modifiers such as Rust's pub are not inspected.
func isExported(lang Language, identifier string) bool {
	if identifier == "" {
		return false
	}
	switch lang {
	case LangGo:
		r := identifier[0]
		return r >= 'A' && r <= 'Z'
	default:
		return true
	}
}

// dropEmptyAnonymousWithoutNesting implements the rule: an anonymous
// entity (empty identifier) is only kept if some other symbol's span is
// properly contained within it, i.e. it introduces nested named symbols
// (spec section 4.4).
func dropEmptyAnonymousWithoutNesting(in []Symbol) []Symbol {
	out := in[:0:0]
	for i, s := range in {
		if s.Identifier != "" {
			out = append(out, s)
			continue
		}
		nested := false
		for j, other := range in {
			if i == j || other.Identifier == "" {
				continue
			}
			if s.Span.Contains(other.Span) && other.Span != s.Span {
				nested = true
				break
			}
		}
		if nested {
			out = append(out, s)
		}
	}
	return out
}
