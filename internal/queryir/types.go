package queryir

import (
	"slices"

	"github.com/roach88/beantag/internal/bean"
)

// Query represents an abstract bean query.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in backend compilers.
//
// Query types:
//   - Find: beans of one type matching a filter
//   - Tagged: beans of one type carrying any/all of a set of tag titles
//   - Related: beans of one type associated with a given bean
//   - Count: number of rows another query yields
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition on a bean type's fields.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Equals: field = value (IS NULL for bean.Null)
//   - In: field IN (values...)
//   - And: all predicates must be true
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Find selects whole beans of one type.
//
// Semantics:
//
//	SELECT <type>.* FROM <type> WHERE <filter> <extra>
//
// Extra is a trailing SQL fragment (ORDER BY, LIMIT) appended verbatim with
// its own positional Bindings. When Extra is empty the backend orders by id.
type Find struct {
	Type     string
	Filter   Predicate // nil = no filter
	Extra    string
	Bindings []any
}

func (Find) queryNode() {}

// Tagged selects beans of Type associated with tags whose titles appear in
// Tags.
//
// Semantics (conceptual):
//
//	SELECT <type>.* FROM <type>
//	  JOIN <link> ON ... JOIN tag ON ...
//	WHERE tag.title IN (<tags>)
//	GROUP BY <type>.id
//	HAVING COUNT(DISTINCT tag.title) >= <need>
//	<extra>
//
// need is 1 for match-any and the number of distinct titles for MatchAll.
// Duplicate titles in Tags therefore never make a MatchAll query
// unsatisfiable. Extra may reference the bean table by its type name,
// e.g. " ORDER BY movie.title DESC LIMIT ?".
type Tagged struct {
	Type     string
	Tags     []string
	MatchAll bool
	Extra    string
	Bindings []any
}

func (Tagged) queryNode() {}

// Related selects beans of Type linked to Source through the pair's link
// table, in association order.
type Related struct {
	Source bean.Identity
	Type   string
}

func (Related) queryNode() {}

// Count counts the rows Of yields.
//
//	SELECT COUNT(*) FROM (<of>)
type Count struct {
	Of Query
}

func (Count) queryNode() {}

// Equals represents a field-equals-literal predicate.
//
// Comparing against bean.Null compiles to "<field> IS NULL".
type Equals struct {
	Field string
	Value bean.Value
}

func (Equals) predicateNode() {}

// In represents set membership.
//
// An empty Values slice matches nothing.
type In struct {
	Field  string
	Values []bean.Value
}

func (In) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// An empty Predicates slice is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// FilterFromMap builds a predicate from a field -> allowed values map, the
// shape bean stores accept for Find. Fields are combined with And in sorted
// order so the result is deterministic.
func FilterFromMap(filter map[string][]bean.Value) Predicate {
	if len(filter) == 0 {
		return nil
	}
	fields := make([]string, 0, len(filter))
	for f := range filter {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	preds := make([]Predicate, 0, len(fields))
	for _, f := range fields {
		preds = append(preds, In{Field: f, Values: filter[f]})
	}
	if len(preds) == 1 {
		return preds[0]
	}
	return And{Predicates: preds}
}
