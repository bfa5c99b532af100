package slicing

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/beaconsh/beacon/domain/repository"
	"github.com/beaconsh/beacon/domain/snippet"
)

// Slicer turns a commit's files into content-addressed snippets by parsing
// each file's AST and slicing out top-level declarations, rather than
// chunking raw text at fixed line boundaries. One snippet is produced per
// exported function/method (plus the bodies of its nearest call-graph
// dependencies and a couple of caller examples) and one per exported type,
// matching how a reader would actually navigate the code.
type Slicer struct {
	factory AnalyzerFactory
	walker  Walker
}

// NewSlicer creates a Slicer backed by factory, which resolves the
// language-specific Analyzer used to walk each file's AST.
func NewSlicer(factory AnalyzerFactory) *Slicer {
	return &Slicer{factory: factory, walker: NewWalker()}
}

// SliceConfig bounds how much call-graph context a snippet pulls in.
type SliceConfig struct {
	MaxDependencyDepth int
	MaxDependencyCount int
	MaxExamples        int
	IncludePrivate     bool
}

// DefaultSliceConfig returns the slicing defaults used outside tests.
func DefaultSliceConfig() SliceConfig {
	return SliceConfig{
		MaxDependencyDepth: 2,
		MaxDependencyCount: 8,
		MaxExamples:        2,
		IncludePrivate:     false,
	}
}

// SliceResult holds the snippets and supporting analysis produced by Slice.
type SliceResult struct {
	snippets  []snippet.Snippet
	callGraph *CallGraph
}

// Snippets returns the extracted snippets.
func (r SliceResult) Snippets() []snippet.Snippet { return r.snippets }

// CallGraph returns the call graph built across the sliced files.
func (r SliceResult) CallGraph() *CallGraph { return r.callGraph }

// state accumulates per-slice bookkeeping across files.
type state struct {
	files     []ParsedFile
	fileIndex map[string]repository.File
	defIndex  map[string]FunctionDefinition
	typeIndex map[string]TypeDefinition
	callGraph *CallGraph
}

// Slice parses files and extracts their declarations as snippets. sources
// must hold the raw content of every entry in files, keyed by File.Path();
// Slice never touches disk itself, so callers are responsible for reading
// content through whatever abstraction the rest of the pipeline uses (the
// git adapter, for a cloned working copy).
func (s *Slicer) Slice(ctx context.Context, files []repository.File, sources map[string][]byte, cfg SliceConfig) (SliceResult, error) {
	st := &state{
		fileIndex: make(map[string]repository.File, len(files)),
		defIndex:  make(map[string]FunctionDefinition),
		typeIndex: make(map[string]TypeDefinition),
		callGraph: NewCallGraph(),
	}

	for _, f := range files {
		st.fileIndex[f.Path()] = f
	}

	for _, f := range files {
		select {
		case <-ctx.Done():
			return SliceResult{}, ctx.Err()
		default:
		}

		source, ok := sources[f.Path()]
		if !ok {
			continue
		}

		parsed, err := s.parseFile(ctx, f.Path(), source)
		if err != nil || parsed.Tree() == nil {
			continue
		}
		st.files = append(st.files, parsed)
	}

	for _, parsed := range st.files {
		s.extractDefinitions(parsed, st, cfg)
	}
	for _, parsed := range st.files {
		s.buildCallGraph(parsed, st)
	}

	result := SliceResult{callGraph: st.callGraph}

	for name, fn := range st.defIndex {
		if !fn.IsPublic() && !cfg.IncludePrivate {
			continue
		}
		result.snippets = append(result.snippets, s.buildFunctionSnippet(name, fn, st, cfg))
	}

	for _, typeDef := range st.typeIndex {
		if !isUpperFirst(typeDef.SimpleName()) && !cfg.IncludePrivate {
			continue
		}
		result.snippets = append(result.snippets, s.buildTypeSnippet(typeDef, st))
	}

	return result, nil
}

func (s *Slicer) parseFile(ctx context.Context, path string, source []byte) (ParsedFile, error) {
	ext := filepath.Ext(path)
	analyzer, ok := s.factory.ByExtension(ext)
	if !ok {
		return ParsedFile{}, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(analyzer.Language().Grammar())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return ParsedFile{}, err
	}

	return NewParsedFile(path, tree, source), nil
}

func (s *Slicer) extractDefinitions(parsed ParsedFile, st *state, cfg SliceConfig) {
	analyzer, ok := s.factory.ByExtension(filepath.Ext(parsed.Path()))
	if !ok {
		return
	}

	source := parsed.SourceCode()
	root := parsed.Tree().RootNode()
	modulePath := analyzer.ModulePath(parsed)
	nodeTypes := analyzer.Language().Nodes()

	funcTypes := append(append([]string{}, nodeTypes.FunctionNodes()...), nodeTypes.MethodNodes()...)
	for _, node := range s.walker.CollectNodes(root, funcTypes) {
		name := analyzer.FunctionName(node, source)
		if name == "" {
			continue
		}

		qualified := qualify(modulePath, name)
		receiver := receiverName(s.walker, node, source)
		if analyzer.IsMethod(node) {
			if receiver == "" {
				// Methods nested in a class body (Python, the generic
				// analyzer's class-driven languages) are picked up with
				// their class-qualified name below, via Classes().
				continue
			}
			qualified = qualify(modulePath, receiver+"."+name)
		}

		st.defIndex[qualified] = NewFunctionDefinition(
			parsed.Path(), node.StartByte(), node.EndByte(),
			qualified, name, analyzer.IsPublic(node, name, source), analyzer.IsMethod(node),
			analyzer.Docstring(node, source),
		)
	}

	for _, class := range analyzer.Classes(parsed.Tree(), source) {
		for _, method := range class.Methods() {
			if !method.IsPublic() && !cfg.IncludePrivate {
				continue
			}
			qualified := qualify(modulePath, method.QualifiedName())
			start, end := method.Span()
			st.defIndex[qualified] = NewFunctionDefinition(
				parsed.Path(), start, end,
				qualified, method.SimpleName(), method.IsPublic(), true, method.Docstring(),
			)
		}
	}

	for _, typeDef := range analyzer.Types(parsed.Tree(), source) {
		if typeDef.SimpleName() == "" {
			continue
		}
		qualified := qualify(modulePath, typeDef.SimpleName())
		start, end := typeDef.Span()
		st.typeIndex[qualified] = NewTypeDefinition(
			parsed.Path(), start, end,
			typeDef.SimpleName(), typeDef.Kind(), typeDef.Docstring(),
		)
	}
}

func (s *Slicer) buildCallGraph(parsed ParsedFile, st *state) {
	analyzer, ok := s.factory.ByExtension(filepath.Ext(parsed.Path()))
	if !ok {
		return
	}

	source := parsed.SourceCode()
	root := parsed.Tree().RootNode()
	modulePath := analyzer.ModulePath(parsed)
	nodeTypes := analyzer.Language().Nodes()

	funcTypes := append(append([]string{}, nodeTypes.FunctionNodes()...), nodeTypes.MethodNodes()...)
	for _, funcNode := range s.walker.CollectNodes(root, funcTypes) {
		name := analyzer.FunctionName(funcNode, source)
		if name == "" {
			continue
		}

		caller := qualify(modulePath, name)
		if analyzer.IsMethod(funcNode) {
			if receiver := receiverName(s.walker, funcNode, source); receiver != "" {
				caller = qualify(modulePath, receiver+"."+name)
			}
		}

		if nodeTypes.CallNode() == "" {
			continue
		}
		for _, callNode := range s.walker.CollectDescendants(funcNode, nodeTypes.CallNode()) {
			callee := calleeName(s.walker, callNode, source)
			if callee == "" {
				continue
			}
			st.callGraph.AddCall(caller, s.resolveCallee(callee, modulePath, st))
		}
	}
}

func (s *Slicer) resolveCallee(name, modulePath string, st *state) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}

	if qualified := qualify(modulePath, name); isDefined(st, qualified) {
		return qualified
	}
	for qualified := range st.defIndex {
		if strings.HasSuffix(qualified, "."+name) {
			return qualified
		}
	}
	return name
}

func isDefined(st *state, name string) bool {
	_, ok := st.defIndex[name]
	return ok
}

func (s *Slicer) buildFunctionSnippet(name string, fn FunctionDefinition, st *state, cfg SliceConfig) snippet.Snippet {
	var parts []string
	start, end := fn.Span()
	parts = append(parts, sourceSpan(st, fn.FilePath(), start, end))

	for _, depName := range st.callGraph.Dependencies(name, cfg.MaxDependencyDepth, cfg.MaxDependencyCount) {
		if dep, ok := st.defIndex[depName]; ok {
			depStart, depEnd := dep.Span()
			if span := sourceSpan(st, dep.FilePath(), depStart, depEnd); span != "" {
				parts = append(parts, span)
			}
		}
	}

	callers := st.callGraph.Callers(name)
	sort.Strings(callers)
	examples := 0
	for _, callerName := range callers {
		if examples >= cfg.MaxExamples {
			break
		}
		caller, ok := st.defIndex[callerName]
		if !ok {
			continue
		}
		callerStart, callerEnd := caller.Span()
		if span := sourceSpan(st, caller.FilePath(), callerStart, callerEnd); span != "" {
			parts = append(parts, "// Example usage:\n"+span)
			examples++
		}
	}

	content := strings.Join(nonEmpty(parts), "\n\n")
	return snippet.NewSnippet(content, languageForPath(fn.FilePath()), derivesFrom(st, fn.FilePath()))
}

func (s *Slicer) buildTypeSnippet(typeDef TypeDefinition, st *state) snippet.Snippet {
	start, end := typeDef.Span()
	content := sourceSpan(st, typeDef.FilePath(), start, end)
	return snippet.NewSnippet(content, languageForPath(typeDef.FilePath()), derivesFrom(st, typeDef.FilePath()))
}

func sourceSpan(st *state, filePath string, start, end uint32) string {
	for _, parsed := range st.files {
		if parsed.Path() != filePath {
			continue
		}
		source := parsed.SourceCode()
		if start < uint32(len(source)) && end <= uint32(len(source)) && start < end {
			return string(source[start:end])
		}
	}
	return ""
}

func derivesFrom(st *state, filePath string) []repository.File {
	if f, ok := st.fileIndex[filePath]; ok {
		return []repository.File{f}
	}
	return []repository.File{repository.NewFile("", filePath, languageForPath(filePath), 0)}
}

func nonEmpty(parts []string) []string {
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func qualify(modulePath, name string) string {
	if modulePath == "" {
		return name
	}
	return modulePath + "." + name
}

func receiverName(walker Walker, node *sitter.Node, source []byte) string {
	receiver := node.ChildByFieldName("receiver")
	if receiver == nil {
		return ""
	}

	var name string
	walker.Walk(receiver, func(n *sitter.Node) bool {
		if n.Type() == "type_identifier" {
			name = walker.NodeText(n, source)
			return false
		}
		return true
	})
	return name
}

func calleeName(walker Walker, node *sitter.Node, source []byte) string {
	if fn := node.ChildByFieldName("function"); fn != nil {
		return walker.NodeText(fn, source)
	}
	if name := node.ChildByFieldName("name"); name != nil {
		return walker.NodeText(name, source)
	}
	for i := uint32(0); i < node.ChildCount(); i++ {
		if child := node.Child(int(i)); child != nil && walker.IsIdentifier(child) {
			return walker.NodeText(child, source)
		}
	}
	return ""
}

var pathLanguages = map[string]string{
	".go": "go", ".py": "python", ".js": "javascript", ".jsx": "javascript",
	".ts": "typescript", ".tsx": "tsx", ".java": "java",
	".c": "c", ".h": "c", ".cpp": "cpp", ".cc": "cpp", ".cxx": "cpp", ".hpp": "cpp",
	".rs": "rust", ".cs": "csharp",
}

func languageForPath(path string) string {
	return pathLanguages[filepath.Ext(path)]
}
