package slicing

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Analyzer extracts declarations from a parsed AST in a language-specific way.
type Analyzer interface {
	Language() Language

	// FunctionName returns the name of a function/method declaration node.
	FunctionName(node *sitter.Node, source []byte) string

	// IsPublic reports whether a declaration is part of the public surface.
	IsPublic(node *sitter.Node, name string, source []byte) bool

	// IsMethod reports whether node declares a method bound to a receiver.
	IsMethod(node *sitter.Node) bool

	// Docstring returns the documentation comment preceding node, if any.
	Docstring(node *sitter.Node, source []byte) string

	// ModulePath returns the logical module/package path of a file.
	ModulePath(file ParsedFile) string

	// Classes returns class/struct declarations, including their methods.
	Classes(tree *sitter.Tree, source []byte) []ClassDefinition

	// Types returns standalone type declarations (aliases, interfaces, structs).
	Types(tree *sitter.Tree, source []byte) []TypeDefinition
}

// ParsedFile is a source file after tree-sitter parsing. Byte slices are
// defensively copied on construction and on read so callers cannot mutate
// shared parser state.
type ParsedFile struct {
	path   string
	tree   *sitter.Tree
	source []byte
}

// NewParsedFile creates a ParsedFile.
func NewParsedFile(path string, tree *sitter.Tree, source []byte) ParsedFile {
	owned := make([]byte, len(source))
	copy(owned, source)
	return ParsedFile{path: path, tree: tree, source: owned}
}

// Path returns the file's repository-relative path.
func (p ParsedFile) Path() string { return p.path }

// Tree returns the parsed AST.
func (p ParsedFile) Tree() *sitter.Tree { return p.tree }

// SourceCode returns a copy of the file's source bytes.
func (p ParsedFile) SourceCode() []byte {
	owned := make([]byte, len(p.source))
	copy(owned, p.source)
	return owned
}

// FunctionDefinition is a function or method declaration found in the AST.
type FunctionDefinition struct {
	filePath      string
	startByte     uint32
	endByte       uint32
	qualifiedName string
	simpleName    string
	isPublic      bool
	isMethod      bool
	docstring     string
}

// NewFunctionDefinition creates a FunctionDefinition.
func NewFunctionDefinition(filePath string, startByte, endByte uint32, qualifiedName, simpleName string, isPublic, isMethod bool, docstring string) FunctionDefinition {
	return FunctionDefinition{
		filePath:      filePath,
		startByte:     startByte,
		endByte:       endByte,
		qualifiedName: qualifiedName,
		simpleName:    simpleName,
		isPublic:      isPublic,
		isMethod:      isMethod,
		docstring:     docstring,
	}
}

// FilePath returns the declaring file's path.
func (f FunctionDefinition) FilePath() string { return f.filePath }

// Span returns the declaration's byte range within its file.
func (f FunctionDefinition) Span() (uint32, uint32) { return f.startByte, f.endByte }

// QualifiedName returns the module-qualified name used as a call graph key.
func (f FunctionDefinition) QualifiedName() string { return f.qualifiedName }

// SimpleName returns the unqualified declaration name.
func (f FunctionDefinition) SimpleName() string { return f.simpleName }

// IsPublic reports whether the function is part of the public surface.
func (f FunctionDefinition) IsPublic() bool { return f.isPublic }

// IsMethod reports whether the function is bound to a receiver/class.
func (f FunctionDefinition) IsMethod() bool { return f.isMethod }

// Docstring returns the function's documentation comment.
func (f FunctionDefinition) Docstring() string { return f.docstring }

// ClassDefinition is a class/struct declaration, together with its methods.
type ClassDefinition struct {
	filePath   string
	startByte  uint32
	endByte    uint32
	simpleName string
	isPublic   bool
	docstring  string
	methods    []FunctionDefinition
}

// NewClassDefinition creates a ClassDefinition.
func NewClassDefinition(filePath string, startByte, endByte uint32, simpleName string, isPublic bool, docstring string, methods []FunctionDefinition) ClassDefinition {
	owned := make([]FunctionDefinition, len(methods))
	copy(owned, methods)
	return ClassDefinition{
		filePath:   filePath,
		startByte:  startByte,
		endByte:    endByte,
		simpleName: simpleName,
		isPublic:   isPublic,
		docstring:  docstring,
		methods:    owned,
	}
}

// FilePath returns the declaring file's path.
func (c ClassDefinition) FilePath() string { return c.filePath }

// Span returns the declaration's byte range within its file.
func (c ClassDefinition) Span() (uint32, uint32) { return c.startByte, c.endByte }

// SimpleName returns the unqualified class name.
func (c ClassDefinition) SimpleName() string { return c.simpleName }

// IsPublic reports whether the class is part of the public surface.
func (c ClassDefinition) IsPublic() bool { return c.isPublic }

// Docstring returns the class's documentation comment.
func (c ClassDefinition) Docstring() string { return c.docstring }

// Methods returns a copy of the class's method declarations.
func (c ClassDefinition) Methods() []FunctionDefinition {
	owned := make([]FunctionDefinition, len(c.methods))
	copy(owned, c.methods)
	return owned
}

// TypeDefinition is a standalone type declaration (alias, interface, struct).
type TypeDefinition struct {
	filePath   string
	startByte  uint32
	endByte    uint32
	simpleName string
	kind       string
	docstring  string
}

// NewTypeDefinition creates a TypeDefinition.
func NewTypeDefinition(filePath string, startByte, endByte uint32, simpleName, kind, docstring string) TypeDefinition {
	return TypeDefinition{
		filePath:   filePath,
		startByte:  startByte,
		endByte:    endByte,
		simpleName: simpleName,
		kind:       kind,
		docstring:  docstring,
	}
}

// FilePath returns the declaring file's path.
func (t TypeDefinition) FilePath() string { return t.filePath }

// Span returns the declaration's byte range within its file.
func (t TypeDefinition) Span() (uint32, uint32) { return t.startByte, t.endByte }

// SimpleName returns the unqualified type name.
func (t TypeDefinition) SimpleName() string { return t.simpleName }

// Kind describes the declaration shape (e.g. "struct", "interface", "alias").
func (t TypeDefinition) Kind() string { return t.kind }

// Docstring returns the type's documentation comment.
func (t TypeDefinition) Docstring() string { return t.docstring }
