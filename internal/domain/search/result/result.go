package result

// Result is a single fused search hit.
type Result struct {
	id           string
	text         string
	vectorScore  float64
	keywordScore float64
	rrfScore     float64
	fields       map[string]string
}

// New creates a search result. Scores from a list the item did not appear in are 0.
func New(id, text string, vectorScore, keywordScore, rrfScore float64, fields map[string]string) Result {
	return Result{
		id: id, text: text,
		vectorScore: vectorScore, keywordScore: keywordScore, rrfScore: rrfScore,
		fields: fields,
	}
}

// ID returns the natural identifier (chunk id or book-chapter-verse).
func (r *Result) ID() string { return r.id }

// Text returns the matched text (chunk text or verse text).
func (r *Result) Text() string { return r.text }

// VectorScore returns the cosine similarity, 0 when not found by the vector branch.
func (r *Result) VectorScore() float64 { return r.vectorScore }

// KeywordScore returns the BM25 score, 0 when not found by the keyword branch.
func (r *Result) KeywordScore() float64 { return r.keywordScore }

// RRFScore returns the fused score.
func (r *Result) RRFScore() float64 { return r.rrfScore }

// Fields returns the stored fields of the hit.
func (r *Result) Fields() map[string]string { return r.fields }
