package symbols

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language is the closed enum from spec section 3.
type Language string

const (
	LangRust       Language = "rust"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangVue        Language = "vue"
	LangSvelte     Language = "svelte"
	LangGo         Language = "go"
	LangJava       Language = "java"
	LangPHP        Language = "php"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangRuby       Language = "ruby"
	LangKotlin     Language = "kotlin"
	LangZig        Language = "zig"
	LangOther      Language = "other"
)

// enryToLanguage maps go-enry's canonical language names (as returned by
// enry.GetLanguage) onto reflex's closed enum. go-enry's names are
// capitalized ("Go", "C++", "C#"); normalize before lookup.
var enryToLanguage = map[string]Language{
	"rust":       LangRust,
	"python":     LangPython,
	"javascript": LangJavaScript,
	"jsx":        LangJavaScript,
	"typescript": LangTypeScript,
	"tsx":        LangTypeScript,
	"vue":        LangVue,
	"svelte":     LangSvelte,
	"go":         LangGo,
	"java":       LangJava,
	"php":        LangPHP,
	"c":          LangC,
	"c++":        LangCPP,
	"c#":         LangCSharp,
	"ruby":       LangRuby,
	"kotlin":     LangKotlin,
	"zig":        LangZig,
}

// DetectLanguage classifies a file by extension, falling back to go-enry's
// content-based detection when the extension alone is ambiguous (e.g.
// ".h" for C vs C++). Unknown extensions classify as LangOther: still
// full-text indexable, not symbol-indexable (spec section 4.6).
//
// Grounded on sourcegraph-zoekt's languages.GetLanguage, which layers
// extension-first heuristics on top of go-enry for the same reason (avoid
// go-enry's content-only fallback misclassifying headers).
func DetectLanguage(path string, content []byte) Language {
	name := enry.GetLanguage(filepath.Base(path), content)
	if lang, ok := enryToLanguage[strings.ToLower(name)]; ok {
		return lang
	}
	return LangOther
}

// HasGrammar reports whether a concrete-syntax (tree-sitter) grammar is
// wired for this language. Languages without one still go through the
// line-oriented fallback extractor (see fallback.go).
func (l Language) HasGrammar() bool {
	switch l {
	case LangGo, LangRust, LangPython, LangJavaScript, LangTypeScript,
		LangJava, LangPHP, LangC, LangCPP, LangCSharp, LangZig:
		return true
	default:
		return false
	}
}
