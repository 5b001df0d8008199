package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/domain/bible"
	"github.com/kailas-cloud/sermondex/internal/domain/chunk"
	"github.com/kailas-cloud/sermondex/internal/domain/search/filter"
	"github.com/kailas-cloud/sermondex/internal/domain/search/mode"
	"github.com/kailas-cloud/sermondex/internal/domain/video"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length in bytes.
	MaxQueryLength    = 4096
	DefaultSermonTopK = 5
	DefaultVerseTopK  = 10
	MaxTopK           = 100
)

// Corpus names a searchable collection.
type Corpus string

// Searchable corpora.
const (
	Sermons Corpus = "sermons"
	Verses  Corpus = "verses"
)

// DefaultTopK returns the corpus default result count.
func (c Corpus) DefaultTopK() int {
	if c == Verses {
		return DefaultVerseTopK
	}
	return DefaultSermonTopK
}

// Filters are the caller-facing search filters. Testament applies to verses;
// the others apply to sermons. Dates are inclusive YYYY-MM-DD.
type Filters struct {
	Testament   string
	ServiceType string
	DateFrom    string
	DateTo      string
	VideoID     string
}

// Request is a validated search query.
type Request struct {
	corpus     Corpus
	query      string
	searchMode mode.Mode
	filters    Filters
	expr       filter.Expression
	topK       int
}

// New validates and normalizes search parameters.
// Defaults: mode=hybrid, topK per corpus. TopK is clamped to MaxTopK.
func New(corpus Corpus, query string, m mode.Mode, f Filters, topK int) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d bytes)", domain.ErrInvalidInput, MaxQueryLength)
	}
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid search mode %q", domain.ErrInvalidInput, m)
	}
	if topK < 0 {
		return Request{}, fmt.Errorf("%w: top_k must not be negative", domain.ErrInvalidInput)
	}
	if topK == 0 {
		topK = corpus.DefaultTopK()
	}
	topK = min(topK, MaxTopK)

	var (
		expr filter.Expression
		err  error
	)
	switch corpus {
	case Sermons:
		expr, err = sermonExpression(f)
	case Verses:
		expr, err = verseExpression(f)
	default:
		return Request{}, fmt.Errorf("%w: unknown corpus %q", domain.ErrInvalidInput, corpus)
	}
	if err != nil {
		return Request{}, err
	}

	return Request{
		corpus:     corpus,
		query:      query,
		searchMode: m,
		filters:    f,
		expr:       expr,
		topK:       topK,
	}, nil
}

func sermonExpression(f Filters) (filter.Expression, error) {
	if f.Testament != "" {
		return filter.Expression{}, fmt.Errorf("%w: testament filter applies to bible search only", domain.ErrInvalidInput)
	}

	var conds []filter.Condition
	if f.ServiceType != "" {
		c, err := filter.Tag(chunk.FieldServiceType, f.ServiceType)
		if err != nil {
			return filter.Expression{}, err
		}
		conds = append(conds, c)
	}
	if f.VideoID != "" {
		c, err := filter.Tag(chunk.FieldVideoID, f.VideoID)
		if err != nil {
			return filter.Expression{}, err
		}
		conds = append(conds, c)
	}
	if f.DateFrom != "" || f.DateTo != "" {
		lower, err := dateBound("date_from", f.DateFrom)
		if err != nil {
			return filter.Expression{}, err
		}
		upper, err := dateBound("date_to", f.DateTo)
		if err != nil {
			return filter.Expression{}, err
		}
		c, err := filter.Between(chunk.FieldServiceDateNum, lower, upper)
		if err != nil {
			return filter.Expression{}, err
		}
		conds = append(conds, c)
	}
	return filter.All(conds...)
}

func verseExpression(f Filters) (filter.Expression, error) {
	if f.ServiceType != "" || f.DateFrom != "" || f.DateTo != "" || f.VideoID != "" {
		return filter.Expression{}, fmt.Errorf("%w: sermon filters do not apply to bible search", domain.ErrInvalidInput)
	}
	if f.Testament == "" {
		return filter.Expression{}, nil
	}
	if !bible.ValidTestament(f.Testament) {
		return filter.Expression{}, fmt.Errorf("%w: testament must be %q or %q",
			domain.ErrInvalidInput, bible.OldTestament, bible.NewTestament)
	}
	c, err := filter.Tag(bible.FieldTestament, f.Testament)
	if err != nil {
		return filter.Expression{}, err
	}
	return filter.All(c)
}

func dateBound(name, date string) (*float64, error) {
	if date == "" {
		return nil, nil
	}
	n, err := video.DateNum(date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	f := float64(n)
	return &f, nil
}

// Corpus returns the collection the request targets.
func (r *Request) Corpus() Corpus { return r.corpus }

// Query returns the trimmed search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Filters returns the caller-facing filters.
func (r *Request) Filters() Filters { return r.filters }

// Expression returns the validated pre-filter expression.
func (r *Request) Expression() filter.Expression { return r.expr }

// TopK returns the number of results per branch and after fusion.
func (r *Request) TopK() int { return r.topK }
