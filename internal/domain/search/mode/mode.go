package mode

import (
	"fmt"

	"github.com/kailas-cloud/sermondex/internal/domain"
)

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Hybrid fuses semantic and keyword results with RRF.
	Hybrid   Mode = "hybrid"
	Semantic Mode = "semantic"
	Keyword  Mode = "keyword"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Semantic || m == Keyword
}

// NeedsEmbedding reports whether the query has to be vectorized.
func (m Mode) NeedsEmbedding() bool { return m != Keyword }

// Parse maps "" to Hybrid and rejects unknown values.
func Parse(s string) (Mode, error) {
	if s == "" {
		return Hybrid, nil
	}
	m := Mode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: invalid search mode %q", domain.ErrInvalidInput, s)
	}
	return m, nil
}
