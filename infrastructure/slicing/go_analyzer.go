package slicing

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// goAnalyzer implements Analyzer for Go source, using package-clause lookup
// for module paths and Go's exported-identifier convention for visibility.
type goAnalyzer struct {
	base
}

func newGoAnalyzer(language Language) goAnalyzer {
	return goAnalyzer{base: newBase(language)}
}

func (a goAnalyzer) FunctionName(node *sitter.Node, source []byte) string {
	return a.nameFromField(node, source)
}

func (a goAnalyzer) IsPublic(_ *sitter.Node, name string, _ []byte) bool {
	return isUpperFirst(name)
}

func (a goAnalyzer) IsMethod(node *sitter.Node) bool {
	return node != nil && node.Type() == "method_declaration"
}

func (a goAnalyzer) Docstring(node *sitter.Node, source []byte) string {
	return a.precedingComment(node, source)
}

func (a goAnalyzer) ModulePath(file ParsedFile) string {
	tree := file.Tree()
	if tree == nil {
		return ""
	}

	packages := a.walker.CollectNodes(tree.RootNode(), []string{"package_clause"})
	if len(packages) == 0 {
		return ""
	}

	if nameNode := packages[0].ChildByFieldName("name"); nameNode != nil {
		return a.nodeText(nameNode, file.SourceCode())
	}
	return ""
}

// Classes returns nil: Go has no class declarations, only types and methods.
func (a goAnalyzer) Classes(_ *sitter.Tree, _ []byte) []ClassDefinition {
	return nil
}

func (a goAnalyzer) Types(tree *sitter.Tree, source []byte) []TypeDefinition {
	if tree == nil {
		return nil
	}

	var types []TypeDefinition
	for _, node := range a.walker.CollectNodes(tree.RootNode(), []string{"type_spec"}) {
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := a.nodeText(nameNode, source)
		types = append(types, NewTypeDefinition(
			"", node.StartByte(), node.EndByte(), name, a.typeKind(node), a.precedingComment(node, source),
		))
	}
	return types
}

func (a goAnalyzer) typeKind(node *sitter.Node) string {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return "alias"
	}
	switch typeNode.Type() {
	case "struct_type":
		return "struct"
	case "interface_type":
		return "interface"
	default:
		return "alias"
	}
}
