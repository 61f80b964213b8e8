package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/beantag/internal/bean"
	"github.com/roach88/beantag/internal/queryir"
)

// TagType is the bean type tags are stored under.
const TagType = "tag"

// SQLCompiler compiles queryir queries to parameterized SQL for SQLite.
//
// Every query without a caller-supplied Extra fragment is ordered by a
// stable key. All values are parameterized, never interpolated; only
// validated identifiers are spliced into the text.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a query to parameterized SQL.
// Returns (sql, params, error). Structural problems are reported as
// queryir.ErrInvalidQuery before any SQL is produced.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, err
	}
	return c.compile(q, true)
}

// compile dispatches on the query type. ordered controls whether a default
// ORDER BY is emitted when the query carries no Extra fragment.
func (c *SQLCompiler) compile(q queryir.Query, ordered bool) (string, []any, error) {
	switch query := q.(type) {
	case queryir.Find:
		return c.compileFind(query, ordered)
	case *queryir.Find:
		return c.compileFind(*query, ordered)
	case queryir.Tagged:
		return c.compileTagged(query, ordered)
	case *queryir.Tagged:
		return c.compileTagged(*query, ordered)
	case queryir.Related:
		return c.compileRelated(query, ordered)
	case *queryir.Related:
		return c.compileRelated(*query, ordered)
	case queryir.Count:
		return c.compileCount(query)
	case *queryir.Count:
		return c.compileCount(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// compileFind compiles a Find to
//
//	SELECT t.* FROM t [WHERE ...] <extra | ORDER BY t.id>
func (c *SQLCompiler) compileFind(q queryir.Find, ordered bool) (string, []any, error) {
	var b strings.Builder
	var params []any

	fmt.Fprintf(&b, "SELECT %s.* FROM %s", q.Type, q.Type)

	if q.Filter != nil {
		where, whereParams, err := c.compilePredicate(q.Type, q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = append(params, whereParams...)
	}

	params = c.writeTail(&b, q.Type+".id", q.Extra, q.Bindings, params, ordered)
	return b.String(), params, nil
}

// compileTagged compiles a Tagged query. The tag titles come first in the
// parameter list, then the HAVING threshold, then the Extra bindings.
func (c *SQLCompiler) compileTagged(q queryir.Tagged, ordered bool) (string, []any, error) {
	link, err := Link(q.Type, TagType)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	var params []any

	fmt.Fprintf(&b, "SELECT %s.* FROM %s", q.Type, q.Type)
	fmt.Fprintf(&b, " INNER JOIN %s ON %s.%s = %s.id",
		link.Name, link.Name, Column(q.Type), q.Type)
	fmt.Fprintf(&b, " INNER JOIN %s ON %s.id = %s.%s",
		TagType, TagType, link.Name, Column(TagType))

	b.WriteString(" WHERE ")
	if len(q.Tags) == 0 {
		b.WriteString("1 = 0")
	} else {
		fmt.Fprintf(&b, "%s.title IN (%s)", TagType, placeholders(len(q.Tags)))
		for _, title := range q.Tags {
			params = append(params, title)
		}
	}

	need := 1
	if q.MatchAll {
		need = countDistinct(q.Tags)
	}
	fmt.Fprintf(&b, " GROUP BY %s.id HAVING COUNT(DISTINCT %s.title) >= ?", q.Type, TagType)
	params = append(params, need)

	params = c.writeTail(&b, q.Type+".id", q.Extra, q.Bindings, params, ordered)
	return b.String(), params, nil
}

// compileRelated compiles a Related query, ordered by link row so results
// come back in association order.
func (c *SQLCompiler) compileRelated(q queryir.Related, ordered bool) (string, []any, error) {
	link, err := Link(q.Source.Type, q.Type)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s.* FROM %s", q.Type, q.Type)
	fmt.Fprintf(&b, " INNER JOIN %s ON %s.%s = %s.id",
		link.Name, link.Name, Column(q.Type), q.Type)
	fmt.Fprintf(&b, " WHERE %s.%s = ?", link.Name, Column(q.Source.Type))
	if ordered {
		fmt.Fprintf(&b, " ORDER BY %s.id ASC", link.Name)
	}
	return b.String(), []any{q.Source.ID}, nil
}

// compileCount wraps the inner query, which is compiled without its
// default ordering.
func (c *SQLCompiler) compileCount(q queryir.Count) (string, []any, error) {
	inner, params, err := c.compile(q.Of, false)
	if err != nil {
		return "", nil, fmt.Errorf("compile count: %w", err)
	}
	return "SELECT COUNT(*) FROM (" + inner + ")", params, nil
}

// writeTail appends either the caller's Extra fragment with its bindings or
// the default stable ordering.
func (c *SQLCompiler) writeTail(b *strings.Builder, orderKey, extra string, bindings, params []any, ordered bool) []any {
	if extra = strings.TrimSpace(extra); extra != "" {
		b.WriteString(" ")
		b.WriteString(extra)
		return append(params, bindings...)
	}
	if ordered {
		// COLLATE BINARY ensures deterministic text ordering across SQLite versions
		fmt.Fprintf(b, " ORDER BY %s ASC COLLATE BINARY", orderKey)
	}
	return append(params, bindings...)
}

// compilePredicate compiles a predicate against table. Field references are
// qualified with the table name so Extra fragments may join freely.
func (c *SQLCompiler) compilePredicate(table string, p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil // Always true
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(table, pred)
	case *queryir.Equals:
		return c.compileEquals(table, *pred)
	case queryir.In:
		return c.compileIn(table, pred)
	case *queryir.In:
		return c.compileIn(table, *pred)
	case queryir.And:
		return c.compileAnd(table, pred)
	case *queryir.And:
		return c.compileAnd(table, *pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEquals compiles an Equals predicate to "t.field = ?".
// Null compiles to IS NULL since NULL never compares equal.
func (c *SQLCompiler) compileEquals(table string, eq queryir.Equals) (string, []any, error) {
	if _, isNull := eq.Value.(bean.Null); isNull {
		return fmt.Sprintf("%s.%s IS NULL", table, eq.Field), nil, nil
	}
	return fmt.Sprintf("%s.%s = ?", table, eq.Field), []any{eq.Value.Any()}, nil
}

// compileIn compiles an In predicate. An empty value set matches nothing.
func (c *SQLCompiler) compileIn(table string, in queryir.In) (string, []any, error) {
	if len(in.Values) == 0 {
		return "1 = 0", nil, nil
	}
	params := make([]any, len(in.Values))
	for i, v := range in.Values {
		params[i] = v.Any()
	}
	return fmt.Sprintf("%s.%s IN (%s)", table, in.Field, placeholders(len(in.Values))), params, nil
}

// compileAnd compiles an And predicate to a conjunction.
func (c *SQLCompiler) compileAnd(table string, and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // Always true (vacuous truth)
	}

	var sqlParts []string
	var allParams []any
	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(table, pred)
		if err != nil {
			return "", nil, err
		}
		if _, nested := pred.(queryir.And); nested {
			sql = "(" + sql + ")"
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func countDistinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
