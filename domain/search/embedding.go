package search

// Embedding pairs a snippet ID with its dense vector representation.
type Embedding struct {
	snippetID string
	vector    []float64
}

// NewEmbedding creates an Embedding for the given snippet.
func NewEmbedding(snippetID string, vector []float64) Embedding {
	return Embedding{snippetID: snippetID, vector: vector}
}

// SnippetID returns the ID of the snippet this embedding represents.
func (e Embedding) SnippetID() string { return e.snippetID }

// Vector returns the embedding's dense vector.
func (e Embedding) Vector() []float64 { return e.vector }
