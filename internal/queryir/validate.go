package queryir

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidQuery is wrapped by every error Validate returns.
var ErrInvalidQuery = errors.New("invalid query")

// identPattern is the shape of bean type and field names. Names are spliced
// into SQL as identifiers, so nothing outside this pattern is accepted.
var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// IsIdent reports whether name is usable as a bean type or field name.
func IsIdent(name string) bool {
	return identPattern.MatchString(name)
}

// Validate checks a query for structural problems a backend cannot compile:
// malformed type or field names, a Related query without a stored source,
// nil subqueries. All problems are reported together.
//
// Validate is a pure function with no side effects.
func Validate(query Query) error {
	v := &validator{}
	v.validateQuery(query)
	if len(v.problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidQuery, errors.Join(v.problems...))
}

// validator accumulates problems during traversal.
type validator struct {
	problems []error
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Errorf(format, args...))
}

func (v *validator) checkIdent(kind, name string) {
	if !IsIdent(name) {
		v.addProblem("%s name %q must match %s", kind, name, identPattern)
	}
}

// validateQuery recursively validates a query node.
func (v *validator) validateQuery(q Query) {
	if q == nil {
		v.addProblem("nil query")
		return
	}

	switch query := q.(type) {
	case Find:
		v.checkIdent("type", query.Type)
		v.validatePredicate(query.Filter)
	case *Find:
		v.validateQuery(*query)
	case Tagged:
		v.checkIdent("type", query.Type)
		if query.Type == "tag" {
			v.addProblem("cannot select tags by tag")
		}
	case *Tagged:
		v.validateQuery(*query)
	case Related:
		v.checkIdent("type", query.Type)
		v.checkIdent("source type", query.Source.Type)
		if query.Source.ID == "" {
			v.addProblem("related query source %s has no id", query.Source.Type)
		}
		if query.Source.Type == query.Type {
			v.addProblem("related query between two %s beans", query.Type)
		}
	case *Related:
		v.validateQuery(*query)
	case Count:
		if _, nested := query.Of.(Count); nested {
			v.addProblem("count of count")
		}
		v.validateQuery(query.Of)
	case *Count:
		v.validateQuery(*query)
	default:
		v.addProblem("unknown query type %T", q)
	}
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		return // nil predicates are valid (no filter)
	}

	switch pred := p.(type) {
	case Equals:
		v.checkIdent("field", pred.Field)
		if pred.Value == nil {
			v.addProblem("field %q compared to nil value", pred.Field)
		}
	case *Equals:
		v.validatePredicate(*pred)
	case In:
		v.checkIdent("field", pred.Field)
		for i, val := range pred.Values {
			if val == nil {
				v.addProblem("field %q value %d is nil", pred.Field, i)
			}
		}
	case *In:
		v.validatePredicate(*pred)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *And:
		v.validatePredicate(*pred)
	default:
		v.addProblem("unknown predicate type %T", p)
	}
}
