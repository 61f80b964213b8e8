package harness

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/beantag/internal/bean"
	"github.com/roach88/beantag/internal/cursor"
	"github.com/roach88/beantag/internal/queryir"
	"github.com/roach88/beantag/internal/querysql"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for _, event := range e.Trace {
			if event.Kind == KindStep {
				fmt.Fprintf(&buf, "  [%d] %s %s %s\n", event.Seq, event.Op, event.Bean+event.Type, event.Tags)
			}
		}
	}
	return buf.String()
}

// assertTraceContains checks that the trace has an entry for the op,
// optionally for a given bean.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if event.Op == a.Op && (a.Bean == "" || event.Bean == a.Bean) {
			return nil
		}
	}
	expected := a.Op
	if a.Bean != "" {
		expected += " on " + a.Bean
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that steps with the listed ops appear in order.
// Intervening steps are allowed.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(a.Ops) && event.Kind == KindStep && event.Op == a.Ops[next] {
			next++
		}
	}
	if next == len(a.Ops) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("steps in order: %v", a.Ops),
		Actual:   fmt.Sprintf("%s missing after %v", a.Ops[next], a.Ops[:next]),
		Trace:    trace,
	}
}

// assertTraceCount checks that the op occurs exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Op == a.Op {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Op),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// stateQuery compiles a Find over the assertion's table and where clause.
func stateQuery(a Assertion) (queryir.Find, error) {
	filter := make(map[string][]bean.Value, len(a.Where))
	for field, raw := range a.Where {
		v, err := bean.FromAny(raw)
		if err != nil {
			return queryir.Find{}, fmt.Errorf("where %s: %w", field, err)
		}
		filter[field] = []bean.Value{v}
	}
	return queryir.Find{Type: a.Table, Filter: queryir.FilterFromMap(filter)}, nil
}

// assertFinalState checks that exactly one row of the table matches Where
// and that it carries the expected values.
func assertFinalState(ctx context.Context, db *sql.DB, a Assertion) error {
	find, err := stateQuery(a)
	if err != nil {
		return err
	}
	query, params, err := querysql.NewSQLCompiler().Compile(find)
	if err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, query, params...)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", a.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	found, err := cursor.ScanAll(rows)
	if err != nil {
		return fmt.Errorf("scan %s: %w", a.Table, err)
	}

	switch len(found) {
	case 0:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", a.Table, formatWhere(a.Where)),
			Actual:   "row not found",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", a.Table, formatWhere(a.Where)),
			Actual:   fmt.Sprintf("%d rows matched (assertion is ambiguous)", len(found)),
		}
	}

	row := found[0]
	for _, key := range sortedKeys(a.Expect) {
		actual, ok := row[key]
		if !ok {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("columns: %v", row.SortedKeys()),
			}
		}
		expected, err := bean.FromAny(a.Expect[key])
		if err != nil {
			return fmt.Errorf("expect %s: %w", key, err)
		}
		if !stateValuesEqual(expected, actual) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %s (%s)", key, bean.Text(expected), bean.Kind(expected)),
				Actual:   fmt.Sprintf("field %q = %s (%s)", key, bean.Text(actual), bean.Kind(actual)),
			}
		}
	}
	return nil
}

// assertRowCount checks how many rows of the table match Where.
func assertRowCount(ctx context.Context, db *sql.DB, a Assertion) error {
	find, err := stateQuery(a)
	if err != nil {
		return err
	}
	query, params, err := querysql.NewSQLCompiler().Compile(queryir.Count{Of: find})
	if err != nil {
		return err
	}

	var n int
	if err := db.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("query table %s", a.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows in %s where %s", a.Count, a.Table, formatWhere(a.Where)),
			Actual:   fmt.Sprintf("%d rows", n),
		}
	}
	return nil
}

// stateValuesEqual compares an expected value with a scanned one.
// SQLite drivers differ on booleans, so Bool also matches Int 0/1.
func stateValuesEqual(expected, actual bean.Value) bool {
	if bean.Equal(expected, actual) {
		return true
	}
	if b, ok := expected.(bean.Bool); ok {
		if n, ok := actual.(bean.Int); ok {
			return bool(b) == (n != 0)
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// formatWhere creates a human-readable description of WHERE conditions.
func formatWhere(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}
	keys := sortedKeys(where)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// EvaluateAssertions evaluates all assertions against the result and the
// scenario database. Returns one message per failed assertion.
func EvaluateAssertions(ctx context.Context, db *sql.DB, result *Result, assertions []Assertion) []string {
	var errs []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertFinalState, AssertRowCount:
			if db == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a database", i, a.Type)
			} else if a.Type == AssertFinalState {
				err = assertFinalState(ctx, db, a)
			} else {
				err = assertRowCount(ctx, db, a)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
