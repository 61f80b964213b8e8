package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/beantag/internal/bean"
	"github.com/roach88/beantag/internal/cursor"
	"github.com/roach88/beantag/internal/queryir"
	"github.com/roach88/beantag/internal/querysql"
)

// QueryTagged returns the raw rows of typ associated with any (matchAll
// false) or all (matchAll true) of the given tag titles. extraSQL is
// appended after the grouping and may reference the bean table by its type
// name; bindings fill its placeholders.
//
// An empty tag list, or a type that has never been tagged, yields no rows.
func (s *Store) QueryTagged(ctx context.Context, typ string, tags []string, matchAll bool, extraSQL string, bindings ...any) (records []bean.Row, err error) {
	defer func(start time.Time) { observe("tagged", start, err) }(time.Now())

	query, params, ok, err := s.compileTagged(ctx, typ, tags, matchAll, extraSQL, bindings, false)
	if err != nil || !ok {
		return []bean.Row{}, err
	}
	s.logger.Debug("query", "op", "tagged", "sql", query, "match_all", matchAll)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("tagged %s: %w", typ, err)
	}
	records, err = cursor.ScanAll(rows)
	if err != nil {
		return nil, fmt.Errorf("tagged %s: %w", typ, err)
	}
	return records, nil
}

// QueryCountTagged counts what QueryTagged with the same arguments would
// return.
func (s *Store) QueryCountTagged(ctx context.Context, typ string, tags []string, matchAll bool, extraSQL string, bindings ...any) (n int, err error) {
	defer func(start time.Time) { observe("count_tagged", start, err) }(time.Now())

	query, params, ok, err := s.compileTagged(ctx, typ, tags, matchAll, extraSQL, bindings, true)
	if err != nil || !ok {
		return 0, err
	}
	s.logger.Debug("query", "op", "count_tagged", "sql", query, "match_all", matchAll)

	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tagged %s: %w", typ, err)
	}
	return n, nil
}

// compileTagged builds the tagged query. ok is false when the answer is
// known to be empty without a round trip.
func (s *Store) compileTagged(ctx context.Context, typ string, tags []string, matchAll bool, extraSQL string, bindings []any, count bool) (query string, params []any, ok bool, err error) {
	if err := checkName("type", typ); err != nil {
		return "", nil, false, err
	}
	if len(tags) == 0 {
		return "", nil, false, nil
	}

	link, err := linkFor(typ, querysql.TagType)
	if err != nil {
		return "", nil, false, err
	}
	for _, table := range []string{typ, link.Name} {
		exists, err := tableExists(ctx, s.db, table)
		if err != nil {
			return "", nil, false, err
		}
		if !exists {
			return "", nil, false, nil
		}
	}

	var q queryir.Query = queryir.Tagged{
		Type:     typ,
		Tags:     tags,
		MatchAll: matchAll,
		Extra:    extraSQL,
		Bindings: bindings,
	}
	if count {
		q = queryir.Count{Of: q}
	}
	query, params, err = s.compiler.Compile(q)
	if err != nil {
		return "", nil, false, err
	}
	return query, params, true, nil
}
