// Package filter holds pre-filter conditions shared by the vector and
// keyword search branches.
package filter

import (
	"fmt"

	"github.com/kailas-cloud/sermondex/internal/domain"
)

// MaxConditions is the maximum number of conditions in one expression.
const MaxConditions = 16

// Expression is a conjunction of conditions. The zero value matches everything.
type Expression struct {
	conds []Condition
}

// All validates and combines conditions with AND semantics.
func All(conds ...Condition) (Expression, error) {
	if len(conds) > MaxConditions {
		return Expression{}, fmt.Errorf("%w: too many filter conditions (max %d)", domain.ErrInvalidInput, MaxConditions)
	}
	return Expression{conds: conds}, nil
}

// Conditions returns the conditions in the order they were given.
func (e Expression) Conditions() []Condition { return e.conds }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conds) == 0 }

// Condition is a single clause: an exact tag match or an inclusive numeric range.
type Condition struct {
	key string
	tag string
	rng *Range
}

// Tag creates an exact tag match condition.
func Tag(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("%w: filter key is required", domain.ErrInvalidInput)
	}
	if value == "" {
		return Condition{}, fmt.Errorf("%w: match value is required for key %q", domain.ErrInvalidInput, key)
	}
	return Condition{key: key, tag: value}, nil
}

// Between creates an inclusive numeric range condition. Either bound may be nil.
func Between(key string, lower, upper *float64) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("%w: filter key is required", domain.ErrInvalidInput)
	}
	if lower == nil && upper == nil {
		return Condition{}, fmt.Errorf("%w: at least one range bound is required for key %q", domain.ErrInvalidInput, key)
	}
	if lower != nil && upper != nil && *lower > *upper {
		return Condition{}, fmt.Errorf("%w: range for key %q has lower bound above upper bound", domain.ErrInvalidInput, key)
	}
	return Condition{key: key, rng: &Range{lower: lower, upper: upper}}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// TagValue returns the exact match value.
func (c Condition) TagValue() string { return c.tag }

// Range returns the numeric range, nil for tag conditions.
func (c Condition) Range() *Range { return c.rng }

// IsTag reports whether this is a tag condition.
func (c Condition) IsTag() bool { return c.tag != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rng != nil }

// Range is an inclusive numeric range; a nil bound is open.
type Range struct {
	lower *float64
	upper *float64
}

// Lower returns the inclusive lower bound.
func (r Range) Lower() *float64 { return r.lower }

// Upper returns the inclusive upper bound.
func (r Range) Upper() *float64 { return r.upper }
