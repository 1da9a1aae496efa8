// Package predicate models the compiled structural filter evaluated by the
// vector store alongside similarity ranking.
package predicate

import "fmt"

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Expression is a boolean filter tree: a conjunction of conditions plus
// optional negated conditions.
type Expression struct {
	must    []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, mustNot: mustNot}, nil
}

// Must returns the conjoined conditions.
func (e Expression) Must() []Condition { return e.must }

// MustNot returns the negated conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.mustNot) == 0
}

// Condition is a single filter clause: an exact match, a boolean match,
// a numeric range, an array containment, or an existential nested scope.
type Condition struct {
	key       string
	match     string
	matchBool *bool
	rangeExpr *Range
	contains  string
	nested    []Condition
}

// NewMatch creates an exact value match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewMatchBool creates a boolean equality condition.
func NewMatchBool(key string, value bool) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	v := value
	return Condition{key: key, matchBool: &v}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// NewContains creates an "array contains value" condition.
func NewContains(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("contains value is required for key %q", key)
	}
	return Condition{key: key, contains: value}, nil
}

// NewNested creates an existential condition over an array-of-objects field:
// some single entry under key must satisfy every sub-condition simultaneously.
// Sub-conditions may not themselves be nested.
func NewNested(key string, conditions ...Condition) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(conditions) == 0 {
		return Condition{}, fmt.Errorf("nested condition on %q requires at least one sub-condition", key)
	}
	for _, c := range conditions {
		if c.IsNested() {
			return Condition{}, fmt.Errorf("nested condition on %q may not contain another nested condition", key)
		}
	}
	return Condition{key: key, nested: conditions}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// MatchBool returns the boolean match value.
func (c Condition) MatchBool() *bool { return c.matchBool }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// Contains returns the array containment value.
func (c Condition) Contains() string { return c.contains }

// Nested returns the existential sub-conditions.
func (c Condition) Nested() []Condition { return c.nested }

// IsMatch reports whether this is an exact match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsMatchBool reports whether this is a boolean match condition.
func (c Condition) IsMatchBool() bool { return c.matchBool != nil }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// IsContains reports whether this is an array containment condition.
func (c Condition) IsContains() bool { return c.contains != "" }

// IsNested reports whether this is an existential nested condition.
func (c Condition) IsNested() bool { return len(c.nested) > 0 }

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeBounds validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeBounds(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }
