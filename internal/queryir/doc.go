// Package queryir provides a backend-neutral representation of the queries
// the tagging layer needs from a bean store.
//
// ARCHITECTURE:
//
//	[tag engine / store API] → [Query IR] → [querysql (SQLite)]
//
// The IR is deliberately narrow: whole-bean selection by field filter,
// tag matching (any / all), relation traversal through link tables, and
// counting. Anything richer goes through the Extra SQL fragment, which is
// backend-specific by definition.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package can implement them, so compilers can switch
// exhaustively:
//
//	switch q := query.(type) {
//	case Find:
//	case Tagged:
//	case Related:
//	case Count:
//	}
//
// NAMES:
//
// Type and field names are spliced into SQL as identifiers and must match
// [a-z][a-z0-9_]*; Validate rejects anything else. Values are always bound
// as parameters, never interpolated.
package queryir
