package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/beantag/internal/bean"
	"github.com/roach88/beantag/internal/cursor"
	"github.com/roach88/beantag/internal/queryir"
)

// FindCursor opens a cursor over the rows of typ. extraSQL (e.g.
// "WHERE year > ? ORDER BY title") is appended after the FROM clause; when
// empty, rows come back in id order. A type with no table yields a
// NullCursor.
//
// The cursor holds the store's only connection until it is closed or
// drained: finish with it before issuing other store calls.
func (s *Store) FindCursor(ctx context.Context, typ, extraSQL string, bindings ...any) (c cursor.Cursor, err error) {
	defer func(start time.Time) { observe("find_cursor", start, err) }(time.Now())

	if err := checkName("type", typ); err != nil {
		return nil, err
	}
	exists, err := tableExists(ctx, s.db, typ)
	if err != nil {
		return nil, err
	}
	if !exists {
		return cursor.NullCursor{}, nil
	}

	query, params, err := s.compiler.Compile(queryir.Find{
		Type:     typ,
		Extra:    extraSQL,
		Bindings: bindings,
	})
	if err != nil {
		return nil, err
	}

	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare cursor for %s: %w", typ, err)
	}
	sc, err := cursor.Open(ctx, stmt, params...)
	if err != nil {
		return nil, fmt.Errorf("open cursor for %s: %w", typ, err)
	}

	metricOpenCursors.Inc()
	sc.OnClose(metricOpenCursors.Dec)
	s.logger.Debug("cursor opened", "type", typ, "sql", query)
	return sc, nil
}

// Collection yields the beans of one type a row at a time.
type Collection struct {
	store  *Store
	typ    string
	cursor cursor.Cursor
}

// FindCollection is FindCursor yielding beans instead of rows.
func (s *Store) FindCollection(ctx context.Context, typ, extraSQL string, bindings ...any) (*Collection, error) {
	c, err := s.FindCursor(ctx, typ, extraSQL, bindings...)
	if err != nil {
		return nil, err
	}
	return &Collection{store: s, typ: typ, cursor: c}, nil
}

// Next returns the next bean, or io.EOF once the collection is exhausted.
// Observers receive "open" for each bean while the cursor is still live, so
// they must not query the store.
func (c *Collection) Next(ctx context.Context) (*bean.Bean, error) {
	row, err := c.cursor.Next(ctx)
	if err != nil {
		return nil, err
	}
	b := hydrate(c.typ, row)
	if err := c.store.signal.Notify(ctx, "open", b); err != nil {
		return nil, err
	}
	return b, nil
}

// Reset restarts the collection from its first bean.
func (c *Collection) Reset(ctx context.Context) error {
	return c.cursor.Reset(ctx)
}

// Close releases the underlying cursor. Idempotent.
func (c *Collection) Close() error {
	return c.cursor.Close()
}
