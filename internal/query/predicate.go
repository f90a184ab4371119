// Package query turns search requests into a typed predicate tree that a
// single catalog adapter interprets.
package query

// Field names a filterable resource attribute.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldTags        Field = "tags"
	FieldCategories  Field = "categories"
	FieldOrgName     Field = "org_name"
	FieldOrgType     Field = "org_type"
	FieldLocation    Field = "location"
	FieldRating      Field = "rating"
)

// IsList reports whether the field holds a list of strings.
func (f Field) IsList() bool {
	return f == FieldTags || f == FieldCategories
}

// Op is a field comparison operator.
type Op string

const (
	OpContains Op = "contains" // case-insensitive substring
	OpEquals   Op = "equals"   // case-insensitive exact
	OpIn       Op = "in"       // exact match against any of Values
	OpEmpty    Op = "empty"    // null, empty string or empty list
)

// Predicate is one node of the tree: And, Or, FieldMatch or RangeMatch.
type Predicate interface {
	predicate()
}

// And matches when every child matches. An empty And matches everything.
type And []Predicate

// Or matches when any child matches. An empty Or matches nothing.
type Or []Predicate

// FieldMatch compares a single field.
type FieldMatch struct {
	Field  Field
	Op     Op
	Value  string
	Values []string
}

// RangeMatch bounds a numeric field. Nil bounds are open.
type RangeMatch struct {
	Field Field
	Min   *float64
	Max   *float64
}

func (And) predicate()        {}
func (Or) predicate()         {}
func (FieldMatch) predicate() {}
func (RangeMatch) predicate() {}

// Contains is shorthand for a substring FieldMatch.
func Contains(f Field, v string) FieldMatch {
	return FieldMatch{Field: f, Op: OpContains, Value: v}
}

// Equals is shorthand for an exact FieldMatch.
func Equals(f Field, v string) FieldMatch {
	return FieldMatch{Field: f, Op: OpEquals, Value: v}
}

// In is shorthand for an in-list FieldMatch.
func In(f Field, vs ...string) FieldMatch {
	return FieldMatch{Field: f, Op: OpIn, Values: vs}
}

// Empty is shorthand for a null-or-empty FieldMatch.
func Empty(f Field) FieldMatch {
	return FieldMatch{Field: f, Op: OpEmpty}
}

// AtLeast bounds f from below.
func AtLeast(f Field, min float64) RangeMatch {
	return RangeMatch{Field: f, Min: &min}
}
