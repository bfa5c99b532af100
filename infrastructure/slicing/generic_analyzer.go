package slicing

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// genericAnalyzer implements Analyzer for languages whose declaration shapes
// are close enough to be driven entirely by NodeTypes configuration: C,
// C++, Java, C#, Rust, JavaScript, TypeScript and TSX. Go and Python get
// their own analyzers because package/module resolution and docstring
// conventions differ too much to express as configuration.
type genericAnalyzer struct {
	base
	extension string
}

func newGenericAnalyzer(language Language, extension string) genericAnalyzer {
	return genericAnalyzer{base: newBase(language), extension: extension}
}

func (a genericAnalyzer) FunctionName(node *sitter.Node, source []byte) string {
	return a.nameFromField(node, source)
}

// IsPublic treats every declaration as public. None of the languages routed
// through genericAnalyzer have a visibility rule simple enough to derive
// from the node alone (C has none; Java/C#/Rust need modifier-node
// inspection this pass doesn't implement); see DESIGN.md.
func (a genericAnalyzer) IsPublic(_ *sitter.Node, name string, _ []byte) bool {
	return name != ""
}

func (a genericAnalyzer) IsMethod(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	return a.language.Nodes().isMethodNode(node.Type())
}

func (a genericAnalyzer) Docstring(node *sitter.Node, source []byte) string {
	return a.precedingComment(node, source)
}

func (a genericAnalyzer) ModulePath(file ParsedFile) string {
	return a.modulePathFromFilePath(file.Path(), a.extension)
}

func (a genericAnalyzer) Classes(tree *sitter.Tree, source []byte) []ClassDefinition {
	if tree == nil || len(a.language.Nodes().classNodes) == 0 {
		return nil
	}

	var classes []ClassDefinition
	for _, node := range a.walker.CollectNodes(tree.RootNode(), a.language.Nodes().classNodes) {
		name := a.nameFromField(node, source)
		if name == "" {
			continue
		}

		var methods []FunctionDefinition
		for _, methodNode := range a.walker.CollectNodes(node, a.language.Nodes().methodNodes) {
			methodName := a.nameFromField(methodNode, source)
			if methodName == "" {
				continue
			}
			methods = append(methods, NewFunctionDefinition(
				"", methodNode.StartByte(), methodNode.EndByte(),
				name+"."+methodName, methodName, true, true,
				a.precedingComment(methodNode, source),
			))
		}

		classes = append(classes, NewClassDefinition(
			"", node.StartByte(), node.EndByte(), name, true,
			a.precedingComment(node, source), methods,
		))
	}
	return classes
}

func (a genericAnalyzer) Types(tree *sitter.Tree, source []byte) []TypeDefinition {
	if tree == nil || len(a.language.Nodes().typeNodes) == 0 {
		return nil
	}

	var types []TypeDefinition
	for _, node := range a.walker.CollectNodes(tree.RootNode(), a.language.Nodes().typeNodes) {
		name := a.nameFromField(node, source)
		if name == "" {
			continue
		}
		types = append(types, NewTypeDefinition(
			"", node.StartByte(), node.EndByte(), name, node.Type(), a.precedingComment(node, source),
		))
	}
	return types
}

func (n NodeTypes) isMethodNode(nodeType string) bool {
	for _, t := range n.methodNodes {
		if t == nodeType {
			return true
		}
	}
	return false
}
