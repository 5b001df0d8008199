package db

import "github.com/kailas-cloud/sermondex/internal/domain/search/filter"

// DefaultVectorField is the alias the vector field is indexed under.
const DefaultVectorField = "vector"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string // defaults to DefaultVectorField
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for BM25 text search over one TEXT field.
type TextQuery struct {
	IndexName    string
	TextField    string
	Query        string
	Filters      filter.Expression
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. Score is cosine similarity for KNN and the
// BM25 score for text search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
