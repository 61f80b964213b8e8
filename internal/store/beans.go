package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/beantag/internal/bean"
	"github.com/roach88/beantag/internal/cursor"
	"github.com/roach88/beantag/internal/queryir"
	"github.com/roach88/beantag/internal/querysql"
)

// checkName validates a type or field name before it is spliced into SQL.
func checkName(kind, name string) error {
	if !queryir.IsIdent(name) {
		return fmt.Errorf("%w: %s %q", ErrInvalidName, kind, name)
	}
	return nil
}

// Dispense returns a new, unstored bean of typ and notifies "dispense".
func (s *Store) Dispense(ctx context.Context, typ string) (*bean.Bean, error) {
	if err := checkName("type", typ); err != nil {
		return nil, err
	}
	b := bean.New(typ)
	if err := s.signal.Notify(ctx, "dispense", b); err != nil {
		return nil, err
	}
	return b, nil
}

// Store writes the bean, creating its table and any missing columns first.
// A new bean receives its id only once the write has succeeded, so a failed
// store (e.g. a duplicate tag title) leaves it unstored.
//
// Observers see "update" before the write (an error vetoes it) and
// "after_update" after it.
func (s *Store) Store(ctx context.Context, b *bean.Bean) (err error) {
	defer func(start time.Time) { observe("store", start, err) }(time.Now())

	if err := checkName("type", b.Type); err != nil {
		return err
	}
	fields := b.FieldNames()
	for _, f := range fields {
		if f == "id" {
			return fmt.Errorf("%w: field \"id\" is reserved", ErrInvalidName)
		}
		if err := checkName("field", f); err != nil {
			return err
		}
	}

	if err := s.signal.Notify(ctx, "update", b); err != nil {
		return err
	}

	id := b.ID
	fresh := b.IsNew()
	if fresh {
		id = s.newID()
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.ensureTable(ctx, tx, b.Type); err != nil {
			return err
		}
		if err := s.ensureColumns(ctx, tx, b); err != nil {
			return err
		}

		args := make([]any, 0, len(fields)+1)
		args = append(args, id)
		for _, f := range fields {
			args = append(args, b.Get(f).Any())
		}

		query := querysql.Upsert(b.Type, fields)
		if fresh {
			query = querysql.Insert(b.Type, fields)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("store %s: %w", b.Type, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.ID = id
	return s.signal.Notify(ctx, "after_update", b)
}

// ensureTable creates the fluid table for typ if it does not exist.
func (s *Store) ensureTable(ctx context.Context, q querier, typ string) error {
	if _, err := q.ExecContext(ctx, querysql.CreateTable(typ)); err != nil {
		return fmt.Errorf("create table %s: %w", typ, err)
	}
	return nil
}

// ensureColumns adds a column for every field the table lacks, typed after
// the value being stored.
func (s *Store) ensureColumns(ctx context.Context, q querier, b *bean.Bean) error {
	cols, err := tableColumns(ctx, q, b.Type)
	if err != nil {
		return err
	}
	for _, f := range b.FieldNames() {
		if cols[f] {
			continue
		}
		if _, err := q.ExecContext(ctx, querysql.AddColumn(b.Type, f, b.Get(f))); err != nil {
			return fmt.Errorf("add column %s.%s: %w", b.Type, f, err)
		}
		s.logger.Debug("added column", "type", b.Type, "field", f, "affinity", querysql.ColumnType(b.Get(f)))
	}
	return nil
}

// Load returns the stored bean of typ with the given id.
// Returns ErrNotFound if there is none.
func (s *Store) Load(ctx context.Context, typ, id string) (b *bean.Bean, err error) {
	defer func(start time.Time) { observe("load", start, err) }(time.Now())

	if err := checkName("type", typ); err != nil {
		return nil, err
	}
	exists, err := tableExists(ctx, s.db, typ)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, typ, id)
	}

	rows, err := s.db.QueryContext(ctx, querysql.SelectByID(typ), id)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", typ, err)
	}
	records, err := cursor.ScanAll(rows)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", typ, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, typ, id)
	}

	beans, err := s.ConvertToBeans(ctx, typ, records)
	if err != nil {
		return nil, err
	}
	return beans[0], nil
}

// Find returns the beans of typ whose fields match filter: each field must
// equal one of its listed values. A missing table or a filter on a column
// that does not exist yet matches nothing.
func (s *Store) Find(ctx context.Context, typ string, filter map[string][]bean.Value) (beans []*bean.Bean, err error) {
	defer func(start time.Time) { observe("find", start, err) }(time.Now())

	if err := checkName("type", typ); err != nil {
		return nil, err
	}
	for field := range filter {
		if err := checkName("field", field); err != nil {
			return nil, err
		}
	}

	exists, err := tableExists(ctx, s.db, typ)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []*bean.Bean{}, nil
	}
	cols, err := tableColumns(ctx, s.db, typ)
	if err != nil {
		return nil, err
	}
	for field := range filter {
		if !cols[field] {
			return []*bean.Bean{}, nil
		}
	}

	query, params, err := s.compiler.Compile(queryir.Find{
		Type:   typ,
		Filter: queryir.FilterFromMap(filter),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("query", "op", "find", "sql", query)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", typ, err)
	}
	records, err := cursor.ScanAll(rows)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", typ, err)
	}
	return s.ConvertToBeans(ctx, typ, records)
}

// ConvertToBeans turns raw rows of typ into beans, notifying "open" for each.
// The "id" column becomes the bean id; NULL columns are left unset.
func (s *Store) ConvertToBeans(ctx context.Context, typ string, rows []bean.Row) ([]*bean.Bean, error) {
	beans := make([]*bean.Bean, 0, len(rows))
	for _, row := range rows {
		b := hydrate(typ, row)
		if err := s.signal.Notify(ctx, "open", b); err != nil {
			return nil, err
		}
		beans = append(beans, b)
	}
	return beans, nil
}

// hydrate builds a bean from one row.
func hydrate(typ string, row bean.Row) *bean.Bean {
	b := bean.New(typ)
	for col, v := range row {
		if col == "id" {
			b.ID = bean.Text(v)
			continue
		}
		if _, isNull := v.(bean.Null); isNull {
			continue
		}
		b.Fields[col] = v
	}
	return b
}

// Trash deletes a stored bean and every association it takes part in, then
// clears its id. Observers see "delete" before and "after_delete" after.
func (s *Store) Trash(ctx context.Context, b *bean.Bean) (err error) {
	defer func(start time.Time) { observe("trash", start, err) }(time.Now())

	if err := checkName("type", b.Type); err != nil {
		return err
	}
	if b.IsNew() {
		return fmt.Errorf("trash %s: %w", b.Type, ErrUnstored)
	}
	if err := s.signal.Notify(ctx, "delete", b); err != nil {
		return err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		exists, err := tableExists(ctx, tx, b.Type)
		if err != nil || !exists {
			return err
		}
		if _, err := tx.ExecContext(ctx, querysql.Delete(b.Type), b.ID); err != nil {
			return fmt.Errorf("trash %s: %w", b.Type, err)
		}

		links, err := linkTablesFor(ctx, tx, b.Type)
		if err != nil {
			return err
		}
		for _, link := range links {
			if _, err := tx.ExecContext(ctx, link.ClearSQL(b.Type), b.ID); err != nil {
				return fmt.Errorf("trash %s links in %s: %w", b.Type, link.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.ID = ""
	b.Shared = make(map[string][]*bean.Bean)
	return s.signal.Notify(ctx, "after_delete", b)
}
