// Package symbols extracts a language-agnostic symbol list from source
// bytes using a concrete-syntax parser (tree-sitter) per supported
// language, and persists a precomputed sidecar for fast symbol: queries.
package symbols

// Kind is the closed set of symbol kinds the extractor ever emits.
type Kind uint8

const (
	KindFunction Kind = iota
	KindMethod
	KindClass
	KindStruct
	KindEnum
	KindInterface
	KindTrait
	KindConstant
	KindVariable
	KindModule
	KindNamespace
	KindType
	KindMacro
	KindProperty
	KindEvent
	KindImport
	KindExport
	KindAttribute
)

var kindNames = [...]string{
	"Function", "Method", "Class", "Struct", "Enum", "Interface", "Trait",
	"Constant", "Variable", "Module", "Namespace", "Type", "Macro",
	"Property", "Event", "Import", "Export", "Attribute",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// ParseKind maps a lowercase keyword (as typed by a user, e.g. "struct")
// to the symbol kind it denotes, for the query engine's keyword-shortcut
// rule (spec section 4.7, point 4). Only keywords that are unambiguous
// declaration sites across the supported languages are included.
func ParseKind(keyword string) (Kind, bool) {
	switch keyword {
	case "struct":
		return KindStruct, true
	case "class":
		return KindClass, true
	case "enum":
		return KindEnum, true
	case "interface":
		return KindInterface, true
	case "trait":
		return KindTrait, true
	case "fn", "func", "function", "def":
		return KindFunction, true
	case "const":
		return KindConstant, true
	case "mod", "module":
		return KindModule, true
	case "namespace":
		return KindNamespace, true
	case "type":
		return KindType, true
	case "macro":
		return KindMacro, true
	}
	return 0, false
}

// Span is a source range: 1-based lines, 0-based columns, inclusive start,
// exclusive end (spec section 3).
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

// Contains reports whether other lies within s (used to test the
// parent/child forest invariant via order + containment).
func (s Span) Contains(other Span) bool {
	if other.StartLine < s.StartLine || other.EndLine > s.EndLine {
		return false
	}
	if other.StartLine == s.StartLine && other.StartCol < s.StartCol {
		return false
	}
	if other.EndLine == s.EndLine && other.EndCol > s.EndCol {
		return false
	}
	return true
}

// Symbol is a single named (or anonymous) syntactic declaration.
type Symbol struct {
	FileID     int64
	Kind       Kind
	Identifier string // may be empty for anonymous entities
	Span       Span
	Exported   bool // visibility flag
	DocOffset  *uint32
}

// Diagnostic records a non-fatal parse failure: the file still contributes
// whatever symbols were extracted before the failure (spec section 4.4).
type Diagnostic struct {
	Path   string
	Reason string
}
