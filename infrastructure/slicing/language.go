package slicing

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language describes a parseable language: its tree-sitter grammar and the
// node type names that mark declarations worth slicing into snippets.
type Language struct {
	name      string
	extension string
	grammar   *sitter.Language
	nodes     NodeTypes
}

// NewLanguage creates a Language configuration.
func NewLanguage(name, extension string, grammar *sitter.Language, nodes NodeTypes) Language {
	return Language{name: name, extension: extension, grammar: grammar, nodes: nodes}
}

// Name returns the language's canonical name (matches domain/snippet.Language).
func (l Language) Name() string { return l.name }

// Extension returns the file extension this language is registered under.
func (l Language) Extension() string { return l.extension }

// Grammar returns the tree-sitter grammar used to parse this language.
func (l Language) Grammar() *sitter.Language { return l.grammar }

// Nodes returns the node type names used to find declarations.
func (l Language) Nodes() NodeTypes { return l.nodes }

// NodeTypes names the tree-sitter node kinds a language's declarations use.
type NodeTypes struct {
	functionNodes []string
	methodNodes   []string
	classNodes    []string
	typeNodes     []string
	callNode      string
	nameField     string
}

// NewNodeTypes creates a NodeTypes configuration.
func NewNodeTypes(functionNodes, methodNodes, classNodes, typeNodes []string, callNode, nameField string) NodeTypes {
	return NodeTypes{
		functionNodes: functionNodes,
		methodNodes:   methodNodes,
		classNodes:    classNodes,
		typeNodes:     typeNodes,
		callNode:      callNode,
		nameField:     nameField,
	}
}

// FunctionNodes returns the node types that mark free function declarations.
func (n NodeTypes) FunctionNodes() []string { return n.functionNodes }

// MethodNodes returns the node types that mark method declarations.
func (n NodeTypes) MethodNodes() []string { return n.methodNodes }

// ClassNodes returns the node types that mark class/struct declarations.
func (n NodeTypes) ClassNodes() []string { return n.classNodes }

// TypeNodes returns the node types that mark type declarations.
func (n NodeTypes) TypeNodes() []string { return n.typeNodes }

// CallNode returns the node type used for call expressions.
func (n NodeTypes) CallNode() string { return n.callNode }

// NameField returns the tree-sitter field name that holds a declaration's name.
func (n NodeTypes) NameField() string { return n.nameField }

// Registry resolves a Language by name or file extension.
type Registry struct {
	byName map[string]Language
	byExt  map[string]Language
}

// NewRegistry builds a Registry covering every language this package knows
// how to parse.
func NewRegistry() Registry {
	languages := []Language{
		goLanguage(),
		pythonLanguage(),
		javascriptLanguage(),
		typescriptLanguage(),
		tsxLanguage(),
		javaLanguage(),
		cLanguage(),
		cppLanguage(),
		csharpLanguage(),
		rustLanguage(),
	}

	reg := Registry{byName: make(map[string]Language, len(languages)), byExt: make(map[string]Language, len(languages))}
	for _, lang := range languages {
		reg.byName[lang.name] = lang
		reg.byExt[lang.extension] = lang
	}
	return reg
}

// ByName returns the Language registered under name.
func (r Registry) ByName(name string) (Language, bool) {
	lang, ok := r.byName[name]
	return lang, ok
}

// ByExtension returns the Language registered for a file extension (including
// the leading dot, e.g. ".go").
func (r Registry) ByExtension(ext string) (Language, bool) {
	lang, ok := r.byExt[ext]
	return lang, ok
}

func goLanguage() Language {
	return NewLanguage("go", ".go", golang.GetLanguage(), NewNodeTypes(
		[]string{"function_declaration"},
		[]string{"method_declaration"},
		nil,
		[]string{"type_declaration", "type_spec"},
		"call_expression",
		"name",
	))
}

func pythonLanguage() Language {
	return NewLanguage("python", ".py", python.GetLanguage(), NewNodeTypes(
		[]string{"function_definition"},
		nil,
		[]string{"class_definition"},
		nil,
		"call",
		"name",
	))
}

func javascriptLanguage() Language {
	return NewLanguage("javascript", ".js", javascript.GetLanguage(), NewNodeTypes(
		[]string{"function_declaration", "function_expression", "arrow_function"},
		[]string{"method_definition"},
		[]string{"class_declaration"},
		nil,
		"call_expression",
		"name",
	))
}

func typescriptLanguage() Language {
	return NewLanguage("typescript", ".ts", typescript.GetLanguage(), NewNodeTypes(
		[]string{"function_declaration", "function_expression", "arrow_function"},
		[]string{"method_definition"},
		[]string{"class_declaration"},
		[]string{"type_alias_declaration", "interface_declaration"},
		"call_expression",
		"name",
	))
}

func tsxLanguage() Language {
	return NewLanguage("tsx", ".tsx", tsx.GetLanguage(), NewNodeTypes(
		[]string{"function_declaration", "function_expression", "arrow_function"},
		[]string{"method_definition"},
		[]string{"class_declaration"},
		[]string{"type_alias_declaration", "interface_declaration"},
		"call_expression",
		"name",
	))
}

func javaLanguage() Language {
	return NewLanguage("java", ".java", java.GetLanguage(), NewNodeTypes(
		[]string{"constructor_declaration"},
		[]string{"method_declaration"},
		[]string{"class_declaration", "interface_declaration", "enum_declaration"},
		nil,
		"method_invocation",
		"name",
	))
}

func cLanguage() Language {
	return NewLanguage("c", ".c", c.GetLanguage(), NewNodeTypes(
		[]string{"function_definition"},
		nil,
		[]string{"struct_specifier", "union_specifier", "enum_specifier"},
		[]string{"type_definition"},
		"call_expression",
		"declarator",
	))
}

func cppLanguage() Language {
	return NewLanguage("cpp", ".cpp", cpp.GetLanguage(), NewNodeTypes(
		[]string{"function_definition"},
		nil,
		[]string{"class_specifier", "struct_specifier"},
		[]string{"type_definition", "alias_declaration"},
		"call_expression",
		"declarator",
	))
}

func csharpLanguage() Language {
	return NewLanguage("csharp", ".cs", csharp.GetLanguage(), NewNodeTypes(
		[]string{"local_function_statement"},
		[]string{"method_declaration", "constructor_declaration"},
		[]string{"class_declaration", "struct_declaration", "interface_declaration", "enum_declaration"},
		nil,
		"invocation_expression",
		"name",
	))
}

func rustLanguage() Language {
	return NewLanguage("rust", ".rs", rust.GetLanguage(), NewNodeTypes(
		[]string{"function_item"},
		[]string{"impl_item"},
		[]string{"struct_item", "enum_item"},
		[]string{"type_item", "trait_item"},
		"call_expression",
		"name",
	))
}
