package slicing

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// base holds the pieces of Analyzer that every language shares: the language
// configuration, a Walker, and comment-scraping helpers. Concrete analyzers
// embed base and override the declaration-shape-specific methods.
type base struct {
	language Language
	walker   Walker
}

func newBase(language Language) base {
	return base{language: language, walker: NewWalker()}
}

func (b base) Language() Language { return b.language }

func (b base) nodeText(node *sitter.Node, source []byte) string {
	return b.walker.NodeText(node, source)
}

// nameFromField extracts the declaration name via the language's configured
// name field, falling back to the first identifier child.
func (b base) nameFromField(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	field := b.language.Nodes().NameField()
	if field != "" {
		if nameNode := node.ChildByFieldName(field); nameNode != nil {
			return b.nodeText(nameNode, source)
		}
	}

	var name string
	b.walker.Walk(node, func(n *sitter.Node) bool {
		if b.walker.IsIdentifier(n) {
			name = b.nodeText(n, source)
			return false
		}
		return true
	})
	return name
}

// precedingComment collects consecutive comment siblings immediately before
// node, in source order, as a single docstring.
func (b base) precedingComment(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	var lines []string
	for prev := node.PrevSibling(); prev != nil && b.walker.IsComment(prev); prev = prev.PrevSibling() {
		text := cleanComment(b.nodeText(prev, source))
		if text != "" {
			lines = append([]string{text}, lines...)
		}
	}
	return strings.Join(lines, "\n")
}

// leadingStringStatement returns the text of a string-literal expression
// statement at the start of node's body, used for Python-style docstrings.
func (b base) leadingStringStatement(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return ""
	}

	for i := uint32(0); i < body.ChildCount(); i++ {
		child := body.Child(int(i))
		if child == nil {
			continue
		}
		if child.Type() != "expression_statement" || child.ChildCount() == 0 {
			break
		}
		expr := child.Child(0)
		if expr != nil && b.walker.IsString(expr) {
			return cleanDocstring(b.nodeText(expr, source))
		}
		break
	}
	return ""
}

// modulePathFromFilePath derives a dotted module path from a file's
// directory and base name, stripping the given extension.
func (b base) modulePathFromFilePath(filePath, ext string) string {
	base := strings.TrimSuffix(pathBase(filePath), ext)
	dir := pathDir(filePath)

	var parts []string
	for _, part := range strings.Split(dir, "/") {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	parts = append(parts, base)
	return strings.Join(parts, ".")
}

func pathBase(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func pathDir(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i]
	}
	return "."
}

func cleanComment(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "///"):
		text = strings.TrimPrefix(text, "///")
	case strings.HasPrefix(text, "//"):
		text = strings.TrimPrefix(text, "//")
	case strings.HasPrefix(text, "#"):
		text = strings.TrimPrefix(text, "#")
	case strings.HasPrefix(text, "/*") && strings.HasSuffix(text, "*/"):
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	}
	return strings.TrimSpace(text)
}

func cleanDocstring(text string) string {
	text = strings.TrimSpace(text)
	for _, quote := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(text, quote) && strings.HasSuffix(text, quote) && len(text) >= 2*len(quote) {
			text = strings.TrimSuffix(strings.TrimPrefix(text, quote), quote)
			break
		}
	}
	return strings.TrimSpace(text)
}

func isUpperFirst(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return r >= 'A' && r <= 'Z'
}

func hasNoLeadingUnderscore(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_")
}
