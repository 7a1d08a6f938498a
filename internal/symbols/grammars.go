package symbols

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// grammar bundles a compiled tree-sitter parser and symbol-extraction
// query for one language. Adding a language means adding one of these
// (spec section 9's "dynamic language dispatch" design note).
type grammar struct {
	// parseMu serializes use of parser: a tree_sitter.Parser is not safe
	// for concurrent Parse calls, and one grammar is shared by every
	// worker extracting that language.
	parseMu sync.Mutex
	parser  *tree_sitter.Parser
	query   *tree_sitter.Query
	// stringOrComment holds the grammar's node kind names for string
	// literals and comments, so the walker can refuse to emit symbols for
	// identifiers found inside them (spec section 4.4).
	stringOrComment map[string]bool
}

func newGrammar(lang *tree_sitter.Language, queryStr string, stringOrComment []string) *grammar {
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(lang); err != nil {
		return nil
	}
	query, err := tree_sitter.NewQuery(lang, queryStr)
	if err != nil || query == nil {
		return nil
	}
	soc := make(map[string]bool, len(stringOrComment))
	for _, k := range stringOrComment {
		soc[k] = true
	}
	return &grammar{parser: parser, query: query, stringOrComment: soc}
}

var genericStringComment = []string{"comment", "line_comment", "block_comment", "string", "string_literal", "interpreted_string_literal", "raw_string_literal", "template_string"}

func buildGrammars() map[Language]*grammar {
	g := make(map[Language]*grammar, 11)

	if l := tree_sitter.NewLanguage(tree_sitter_go.Language()); l != nil {
		g[LangGo] = newGrammar(l, `
			(function_declaration name: (identifier) @function.name) @function
			(method_declaration
				name: (field_identifier) @method.name) @method
			(type_spec name: (type_identifier) @struct.name type: (struct_type)) @struct
			(type_spec name: (type_identifier) @type.name
				type: [(interface_type) (type_identifier) (generic_type) (qualified_type)
					(pointer_type) (array_type) (slice_type) (map_type) (channel_type)
					(function_type) (parenthesized_type)]) @type
			(const_spec name: (identifier) @constant.name) @constant
			(import_spec path: (interpreted_string_literal) @import.path) @import
		`, genericStringComment)
	}

	if l := tree_sitter.NewLanguage(tree_sitter_rust.Language()); l != nil {
		g[LangRust] = newGrammar(l, `
			(impl_item body: (declaration_list (function_item name: (identifier) @method.name))) @method
			(trait_item body: (declaration_list (function_item name: (identifier) @method.name))) @method
			(function_item name: (identifier) @function.name) @function
			(struct_item name: (type_identifier) @struct.name) @struct
			(enum_item name: (type_identifier) @enum.name) @enum
			(trait_item name: (type_identifier) @interface.name) @interface
			(type_item name: (type_identifier) @type.name) @type
			(mod_item name: (identifier) @module.name) @module
			(macro_definition name: (identifier) @macro.name) @macro
			(use_declaration) @import
		`, genericStringComment)
	}

	if l := tree_sitter.NewLanguage(tree_sitter_python.Language()); l != nil {
		g[LangPython] = newGrammar(l, `
			(class_definition body: (block (function_definition name: (identifier) @method.name))) @method
			(function_definition name: (identifier) @function.name) @function
			(class_definition name: (identifier) @class.name) @class
			(import_statement) @import
			(import_from_statement) @import
		`, genericStringComment)
	}

	if l := tree_sitter.NewLanguage(tree_sitter_javascript.Language()); l != nil {
		g[LangJavaScript] = newGrammar(l, `
			(function_declaration name: (identifier) @function.name) @function
			(generator_function_declaration name: (identifier) @function.name) @function
			(variable_declarator name: (identifier) @function.name value: [(arrow_function) (function_expression) (generator_function)]) @function
			(method_definition name: (property_identifier) @method.name) @method
			(class_declaration name: (identifier) @class.name) @class
			(import_statement source: (string) @import.source) @import
		`, genericStringComment)
	}

	if l := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()); l != nil {
		g[LangTypeScript] = newGrammar(l, `
			(function_declaration name: (identifier) @function.name) @function
			(method_definition name: (property_identifier) @method.name) @method
			(class_declaration name: (type_identifier) @class.name) @class
			(interface_declaration name: (type_identifier) @interface.name) @interface
			(type_alias_declaration name: (type_identifier) @type.name) @type
			(enum_declaration name: (identifier) @enum.name) @enum
			(import_statement source: (string) @import.source) @import
		`, genericStringComment)
	}

	if l := tree_sitter.NewLanguage(tree_sitter_java.Language()); l != nil {
		g[LangJava] = newGrammar(l, `
			(method_declaration name: (identifier) @method.name) @method
			(constructor_declaration name: (identifier) @method.name) @method
			(class_declaration name: (identifier) @class.name) @class
			(record_declaration name: (identifier) @class.name) @class
			(interface_declaration name: (identifier) @interface.name) @interface
			(enum_declaration name: (identifier) @enum.name) @enum
			(field_declaration declarator: (variable_declarator name: (identifier) @property.name)) @property
			(import_declaration) @import
			(package_declaration) @namespace
			(annotation_type_declaration name: (identifier) @attribute.name) @attribute
		`, genericStringComment)
	}

	if l := tree_sitter.NewLanguage(tree_sitter_csharp.Language()); l != nil {
		g[LangCSharp] = newGrammar(l, `
			(method_declaration name: (identifier) @method.name) @method
			(constructor_declaration name: (identifier) @method.name) @method
			(class_declaration name: (identifier) @class.name) @class
			(interface_declaration name: (identifier) @interface.name) @interface
			(struct_declaration name: (identifier) @struct.name) @struct
			(record_declaration name: (identifier) @struct.name) @struct
			(enum_declaration name: (identifier) @enum.name) @enum
			(property_declaration name: (identifier) @property.name) @property
			(using_directive) @import
			(namespace_declaration name: (qualified_name) @namespace.name) @namespace
		`, genericStringComment)
	}

	if l := tree_sitter.NewLanguage(tree_sitter_cpp.Language()); l != nil {
		g[LangCPP] = newGrammar(l, `
			(function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
			(class_specifier name: (type_identifier) @class.name) @class
			(struct_specifier name: (type_identifier) @struct.name) @struct
			(enum_specifier name: (type_identifier) @enum.name) @enum
			(namespace_definition name: (namespace_identifier) @namespace.name) @namespace
			(preproc_include) @import
			(using_declaration) @import
		`, genericStringComment)
		g[LangC] = g[LangCPP]
	}

	if l := tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP()); l != nil {
		g[LangPHP] = newGrammar(l, `
			(class_declaration name: (name) @class.name) @class
			(interface_declaration name: (name) @interface.name) @interface
			(trait_declaration name: (name) @trait.name) @trait
			(enum_declaration name: (name) @enum.name) @enum
			(function_definition name: (name) @function.name) @function
			(method_declaration name: (name) @method.name) @method
			(namespace_definition name: (namespace_name) @namespace.name) @namespace
			(namespace_use_declaration) @import
			(const_declaration) @constant
		`, genericStringComment)
	}

	if l := tree_sitter.NewLanguage(tree_sitter_zig.Language()); l != nil {
		g[LangZig] = newGrammar(l, `
			(function_declaration (identifier) @function.name) @function
			(variable_declaration (identifier) @struct.name (struct_declaration) @struct)
			(variable_declaration (identifier) @struct.name (union_declaration) @struct)
		`, genericStringComment)
	}

	// drop any language whose grammar/query failed to initialize (a Go
	// binding quirk zoekt's teacher-adjacent lci codebase also guards
	// against) rather than leaving a nil entry that would panic on use.
	for lang, gr := range g {
		if gr == nil {
			delete(g, lang)
		}
	}
	return g
}
