package slicing

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// pythonAnalyzer implements Analyzer for Python source. Python has no
// dedicated method node: methods are function_definition nodes nested in a
// class body, so IsMethod inspects the parent chain instead of node type.
type pythonAnalyzer struct {
	base
}

func newPythonAnalyzer(language Language) pythonAnalyzer {
	return pythonAnalyzer{base: newBase(language)}
}

func (a pythonAnalyzer) FunctionName(node *sitter.Node, source []byte) string {
	return a.nameFromField(node, source)
}

func (a pythonAnalyzer) IsPublic(_ *sitter.Node, name string, _ []byte) bool {
	return hasNoLeadingUnderscore(name)
}

func (a pythonAnalyzer) IsMethod(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	parent := node.Parent()
	if parent == nil || parent.Type() != "block" {
		return false
	}
	grandparent := parent.Parent()
	return grandparent != nil && grandparent.Type() == "class_definition"
}

func (a pythonAnalyzer) Docstring(node *sitter.Node, source []byte) string {
	if doc := a.leadingStringStatement(node, source); doc != "" {
		return doc
	}
	return a.precedingComment(node, source)
}

func (a pythonAnalyzer) ModulePath(file ParsedFile) string {
	return a.modulePathFromFilePath(file.Path(), ".py")
}

func (a pythonAnalyzer) Classes(tree *sitter.Tree, source []byte) []ClassDefinition {
	if tree == nil {
		return nil
	}

	var classes []ClassDefinition
	for _, node := range a.walker.CollectNodes(tree.RootNode(), []string{"class_definition"}) {
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := a.nodeText(nameNode, source)

		var methods []FunctionDefinition
		body := node.ChildByFieldName("body")
		if body != nil {
			for _, methodNode := range a.walker.CollectNodes(body, []string{"function_definition"}) {
				if !a.IsMethod(methodNode) {
					continue
				}
				methodName := a.FunctionName(methodNode, source)
				if methodName == "" {
					continue
				}
				methods = append(methods, NewFunctionDefinition(
					"", methodNode.StartByte(), methodNode.EndByte(),
					name+"."+methodName, methodName,
					a.IsPublic(methodNode, methodName, source), true,
					a.Docstring(methodNode, source),
				))
			}
		}

		classes = append(classes, NewClassDefinition(
			"", node.StartByte(), node.EndByte(), name,
			a.IsPublic(node, name, source), a.Docstring(node, source), methods,
		))
	}
	return classes
}

// Types returns nil: Python's class_definition nodes are reported via Classes.
func (a pythonAnalyzer) Types(_ *sitter.Tree, _ []byte) []TypeDefinition {
	return nil
}
