// Package slicing extracts code snippets from source files by parsing them
// with tree-sitter and slicing out top-level declarations, rather than
// chunking raw text.
package slicing

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Walker provides breadth-first traversal utilities over a tree-sitter AST.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() Walker {
	return Walker{}
}

// WalkFunc is invoked for each visited node. Returning false stops traversal.
type WalkFunc func(node *sitter.Node) bool

// Walk performs a breadth-first traversal of the tree rooted at root.
func (w Walker) Walk(root *sitter.Node, fn WalkFunc) {
	if root == nil {
		return
	}

	visited := make(map[uintptr]struct{})
	queue := []*sitter.Node{root}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if _, seen := visited[node.ID()]; seen {
			continue
		}
		visited[node.ID()] = struct{}{}

		if !fn(node) {
			return
		}

		for i := uint32(0); i < node.ChildCount(); i++ {
			if child := node.Child(int(i)); child != nil {
				queue = append(queue, child)
			}
		}
	}
}

// CollectNodes returns every node under root matching one of nodeTypes.
func (w Walker) CollectNodes(root *sitter.Node, nodeTypes []string) []*sitter.Node {
	wanted := make(map[string]struct{}, len(nodeTypes))
	for _, t := range nodeTypes {
		wanted[t] = struct{}{}
	}

	var nodes []*sitter.Node
	w.Walk(root, func(node *sitter.Node) bool {
		if _, ok := wanted[node.Type()]; ok {
			nodes = append(nodes, node)
		}
		return true
	})
	return nodes
}

// CollectDescendants returns every descendant of root matching nodeType.
func (w Walker) CollectDescendants(root *sitter.Node, nodeType string) []*sitter.Node {
	var nodes []*sitter.Node
	w.Walk(root, func(node *sitter.Node) bool {
		if node.Type() == nodeType {
			nodes = append(nodes, node)
		}
		return true
	})
	return nodes
}

// FindDescendant returns the first descendant of root matching nodeType.
func (w Walker) FindDescendant(root *sitter.Node, nodeType string) *sitter.Node {
	var found *sitter.Node
	w.Walk(root, func(node *sitter.Node) bool {
		if node.Type() == nodeType {
			found = node
			return false
		}
		return true
	})
	return found
}

// NodeText returns the source text spanned by node.
func (w Walker) NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	start, end := node.StartByte(), node.EndByte()
	if start >= uint32(len(source)) || end > uint32(len(source)) || start >= end {
		return ""
	}
	return string(source[start:end])
}

var identifierTypes = map[string]struct{}{
	"identifier":                    {},
	"type_identifier":               {},
	"field_identifier":              {},
	"property_identifier":           {},
	"shorthand_property_identifier": {},
}

// IsIdentifier reports whether node is one of the identifier node kinds.
func (w Walker) IsIdentifier(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	_, ok := identifierTypes[node.Type()]
	return ok
}

var commentTypes = map[string]struct{}{
	"comment":       {},
	"line_comment":  {},
	"block_comment": {},
}

// IsComment reports whether node is a comment.
func (w Walker) IsComment(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	_, ok := commentTypes[node.Type()]
	return ok
}

var stringTypes = map[string]struct{}{
	"string":                     {},
	"string_literal":             {},
	"interpreted_string_literal": {},
	"raw_string_literal":         {},
	"template_string":            {},
}

// IsString reports whether node is a string literal.
func (w Walker) IsString(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	_, ok := stringTypes[node.Type()]
	return ok
}

// CallGraph records caller/callee relationships between qualified function names.
type CallGraph struct {
	calls   map[string]map[string]struct{}
	callers map[string]map[string]struct{}
}

// NewCallGraph creates an empty CallGraph.
func NewCallGraph() *CallGraph {
	return &CallGraph{
		calls:   make(map[string]map[string]struct{}),
		callers: make(map[string]map[string]struct{}),
	}
}

// AddCall records that caller invokes callee.
func (g *CallGraph) AddCall(caller, callee string) {
	if g.calls[caller] == nil {
		g.calls[caller] = make(map[string]struct{})
	}
	g.calls[caller][callee] = struct{}{}

	if g.callers[callee] == nil {
		g.callers[callee] = make(map[string]struct{})
	}
	g.callers[callee][caller] = struct{}{}
}

// Callees returns the functions name directly calls.
func (g *CallGraph) Callees(name string) []string {
	return setToSlice(g.calls[name])
}

// Callers returns the functions that directly call name.
func (g *CallGraph) Callers(name string) []string {
	return setToSlice(g.callers[name])
}

func setToSlice(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	result := make([]string, 0, len(set))
	for name := range set {
		result = append(result, name)
	}
	return result
}

// Dependencies returns the transitive callees of name up to maxDepth levels
// and maxCount entries, breadth-first so nearer dependencies are preferred.
func (g *CallGraph) Dependencies(name string, maxDepth, maxCount int) []string {
	type frame struct {
		name  string
		depth int
	}

	var result []string
	visited := map[string]struct{}{name: {}}
	queue := []frame{{name, 0}}

	for len(queue) > 0 && len(result) < maxCount {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth > maxDepth {
			continue
		}
		if cur.name != name {
			result = append(result, cur.name)
		}

		for _, callee := range g.Callees(cur.name) {
			if _, seen := visited[callee]; seen {
				continue
			}
			visited[callee] = struct{}{}
			queue = append(queue, frame{callee, cur.depth + 1})
		}
	}

	return result
}
