// Package query compiles untyped sort/filter expressions from list requests
// into parameterized SQL predicates and runs paginated queries with them.
package query

// Kind describes the declared type of a filterable attribute.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
)

// Field maps an exposed attribute name to its column and declared kind.
type Field struct {
	Column string
	Kind   Kind
}

// FieldSet is the startup-time registry of attributes an entity exposes to
// dynamic filtering and sorting. A clause naming an attribute outside the set
// is dropped without error; the same policy applies to literals that do not
// coerce to the declared kind.
type FieldSet map[string]Field
