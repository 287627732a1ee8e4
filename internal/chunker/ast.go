package chunker

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// symbolNodeTypes are the tree-sitter node type strings that mark a
// top-level symbol definition (function/method/type/class/trait/enum/
// impl/module/interface) for each grammar. These strings come from the
// grammars themselves and are stable within a parser version, not Go
// constants.
var symbolNodeTypes = map[string]map[string]bool{
	"go": set(
		"function_declaration", "method_declaration", "type_declaration",
	),
	"java": set(
		"class_declaration", "interface_declaration", "enum_declaration",
		"method_declaration", "constructor_declaration",
	),
	"javascript": set(
		"function_declaration", "class_declaration", "method_definition",
		"arrow_function", "function_expression",
	),
	"typescript": set(
		"function_declaration", "class_declaration", "interface_declaration",
		"type_alias_declaration", "method_definition", "arrow_function",
	),
	"python": set(
		"function_definition", "class_definition",
	),
	"ruby": set(
		"method", "class", "module", "singleton_method",
	),
	"rust": set(
		"function_item", "struct_item", "enum_item", "trait_item",
		"impl_item", "mod_item",
	),
	"c": set(
		"function_definition", "struct_specifier",
	),
	"cpp": set(
		"function_definition", "class_specifier", "struct_specifier", "namespace_definition",
	),
}

// boundaryNodeTypes mark import groups, module declarations, and other
// non-symbol top-level constructs that still deserve their own chunk
// when not already covered by a symbol chunk.
var boundaryNodeTypes = map[string]map[string]bool{
	"go":         set("import_declaration", "comment"),
	"java":       set("import_declaration", "package_declaration", "comment"),
	"javascript": set("import_statement", "comment"),
	"typescript": set("import_statement", "comment"),
	"python":     set("import_statement", "import_from_statement", "comment"),
	"ruby":       set("comment"),
	"rust":       set("use_declaration", "line_comment", "block_comment"),
	"c":          set("preproc_include", "comment"),
	"cpp":        set("preproc_include", "comment"),
}

// nameNodeTypes are the child node types that carry an identifier's text,
// used to extract a symbol's name.
var nameNodeTypes = set("identifier", "type_identifier", "field_identifier", "property_identifier", "name")

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// astParsers holds one tree-sitter parser per supported language. Access
// must be serialized by the owning Chunker's mutex: tree-sitter parsers
// are not safe for concurrent use.
type astParsers struct {
	parsers map[string]*sitter.Parser
}

func newASTParsers() *astParsers {
	p := &astParsers{parsers: make(map[string]*sitter.Parser)}
	register := func(name string, lang *sitter.Language) {
		parser := sitter.NewParser()
		parser.SetLanguage(lang)
		p.parsers[name] = parser
	}
	register("go", golang.GetLanguage())
	register("java", java.GetLanguage())
	register("javascript", javascript.GetLanguage())
	register("typescript", typescript.GetLanguage())
	register("python", python.GetLanguage())
	register("ruby", ruby.GetLanguage())
	register("rust", rust.GetLanguage())
	register("c", c.GetLanguage())
	register("cpp", cpp.GetLanguage())
	return p
}

// parse runs the AST path for one file: walk the tree, classify nodes
// into symbol and boundary chunks, and return them in ascending byte
// order. Returns nil when the file is degenerate (no symbols, no
// boundaries) so the caller falls through to line-window chunking.
func (p *astParsers) parse(language, content string) []rawChunk {
	parser, ok := p.parsers[language]
	if !ok {
		return nil
	}
	tree := parser.Parse(nil, []byte(content))
	if tree == nil {
		return nil
	}
	root := tree.RootNode()
	if root == nil {
		return nil
	}

	symbolTypes := symbolNodeTypes[language]
	boundaryTypes := boundaryNodeTypes[language]

	var symbols []rawChunk
	var boundaries []rawChunk
	walkTopLevel(root, content, symbolTypes, boundaryTypes, &symbols, &boundaries)

	if len(symbols) == 0 && len(boundaries) == 0 {
		return nil
	}

	return mergeSymbolsAndBoundaries(content, symbols, boundaries)
}

// walkTopLevel descends the whole tree, collecting every node (at any
// depth) whose type is a symbol type, and every node whose type is a
// boundary type. A matched symbol node still has its children walked:
// a Rust impl_item or a Java/JS/TS class is itself a symbol, but its
// method_definition/function_item children are symbols too, and each
// produces its own nested chunk alongside the enclosing one.
func walkTopLevel(node *sitter.Node, content string, symbolTypes, boundaryTypes map[string]bool, symbols, boundaries *[]rawChunk) {
	if node == nil {
		return
	}
	nodeType := node.Type()

	if symbolTypes[nodeType] {
		*symbols = append(*symbols, nodeToChunk(node, content))
	} else if boundaryTypes[nodeType] {
		*boundaries = append(*boundaries, nodeToChunk(node, content))
	}

	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		walkTopLevel(node.Child(i), content, symbolTypes, boundaryTypes, symbols, boundaries)
	}
}

func nodeToChunk(node *sitter.Node, content string) rawChunk {
	start := int(node.StartByte())
	end := int(node.EndByte())
	if end > len(content) {
		end = len(content)
	}
	return rawChunk{
		startByte: start,
		endByte:   end,
		symbol:    extractSymbolName(node, content),
	}
}

// extractSymbolName looks for an identifier-shaped direct child, falling
// back into the first two levels for constructs (e.g. arrow functions
// assigned to a variable_declarator) whose name isn't a direct child.
func extractSymbolName(node *sitter.Node, content string) string {
	if name := firstIdentifierChild(node, content); name != "" {
		return name
	}
	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if name := firstIdentifierChild(child, content); name != "" {
			return name
		}
	}
	return ""
}

func firstIdentifierChild(node *sitter.Node, content string) string {
	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if nameNodeTypes[child.Type()] {
			start, end := int(child.StartByte()), int(child.EndByte())
			if start < end && end <= len(content) {
				return content[start:end]
			}
		}
	}
	return ""
}
