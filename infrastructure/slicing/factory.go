package slicing

// AnalyzerFactory resolves an Analyzer for a file extension.
type AnalyzerFactory interface {
	ByExtension(ext string) (Analyzer, bool)
}

// Factory builds per-language Analyzer instances from a Registry.
type Factory struct {
	registry Registry
}

// NewFactory creates a Factory backed by registry.
func NewFactory(registry Registry) Factory {
	return Factory{registry: registry}
}

// ByExtension returns the Analyzer registered for a file extension.
func (f Factory) ByExtension(ext string) (Analyzer, bool) {
	lang, ok := f.registry.ByExtension(ext)
	if !ok {
		return nil, false
	}
	return f.analyzerFor(lang), true
}

func (f Factory) analyzerFor(lang Language) Analyzer {
	switch lang.Name() {
	case "go":
		return newGoAnalyzer(lang)
	case "python":
		return newPythonAnalyzer(lang)
	default:
		return newGenericAnalyzer(lang, lang.Extension())
	}
}
