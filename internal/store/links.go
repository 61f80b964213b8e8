package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/beantag/internal/bean"
	"github.com/roach88/beantag/internal/cursor"
	"github.com/roach88/beantag/internal/queryir"
	"github.com/roach88/beantag/internal/querysql"
)

// Association is the payload of associate and unassociate events.
type Association struct {
	From *bean.Bean
	To   *bean.Bean
}

// linkFor validates both types and returns their link table.
func linkFor(a, b string) (querysql.LinkTable, error) {
	if err := checkName("type", a); err != nil {
		return querysql.LinkTable{}, err
	}
	if err := checkName("type", b); err != nil {
		return querysql.LinkTable{}, err
	}
	if a == b {
		return querysql.LinkTable{}, fmt.Errorf("%w: %s", ErrSelfAssociation, a)
	}
	return querysql.Link(a, b)
}

// Associate links a and b. Unstored beans are stored first. Associating an
// already linked pair is a no-op. Both beans' relation slots for each other
// are dropped so the next Related call reloads them.
func (s *Store) Associate(ctx context.Context, a, b *bean.Bean) (err error) {
	defer func(start time.Time) { observe("associate", start, err) }(time.Now())

	link, err := linkFor(a.Type, b.Type)
	if err != nil {
		return err
	}
	for _, x := range []*bean.Bean{a, b} {
		if x.IsNew() {
			if err := s.Store(ctx, x); err != nil {
				return err
			}
		}
	}
	if err := s.signal.Notify(ctx, "associate", Association{From: a, To: b}); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, link.CreateSQL()); err != nil {
		return fmt.Errorf("create link table %s: %w", link.Name, err)
	}
	if _, err := s.db.ExecContext(ctx, link.InsertSQL(), link.Args(a.Identity(), b.Identity())...); err != nil {
		return fmt.Errorf("associate %s %s: %w", a.Type, b.Type, err)
	}

	a.ForgetShared(b.Type)
	b.ForgetShared(a.Type)
	return nil
}

// Unassociate removes the link between a and b if there is one.
func (s *Store) Unassociate(ctx context.Context, a, b *bean.Bean) (err error) {
	defer func(start time.Time) { observe("unassociate", start, err) }(time.Now())

	link, err := linkFor(a.Type, b.Type)
	if err != nil {
		return err
	}
	if a.IsNew() || b.IsNew() {
		return nil
	}
	exists, err := tableExists(ctx, s.db, link.Name)
	if err != nil || !exists {
		return err
	}
	if err := s.signal.Notify(ctx, "unassociate", Association{From: a, To: b}); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, link.DeleteSQL(), link.Args(a.Identity(), b.Identity())...); err != nil {
		return fmt.Errorf("unassociate %s %s: %w", a.Type, b.Type, err)
	}

	a.ForgetShared(b.Type)
	b.ForgetShared(a.Type)
	return nil
}

// ClearRelations removes every link between b and beans of typ. The related
// beans themselves are kept.
func (s *Store) ClearRelations(ctx context.Context, b *bean.Bean, typ string) (err error) {
	defer func(start time.Time) { observe("clear_relations", start, err) }(time.Now())

	link, err := linkFor(b.Type, typ)
	if err != nil {
		return err
	}
	b.ForgetShared(typ)
	if b.IsNew() {
		return nil
	}
	exists, err := tableExists(ctx, s.db, link.Name)
	if err != nil || !exists {
		return err
	}

	if _, err := s.db.ExecContext(ctx, link.ClearSQL(b.Type), b.ID); err != nil {
		return fmt.Errorf("clear %s relations of %s: %w", typ, b.Type, err)
	}
	s.logger.Debug("cleared relations", "type", b.Type, "id", b.ID, "related", typ)
	return nil
}

// Related loads the beans of typ associated with b, in association order,
// and stores them in b's relation slot for typ.
func (s *Store) Related(ctx context.Context, b *bean.Bean, typ string) (beans []*bean.Bean, err error) {
	defer func(start time.Time) { observe("related", start, err) }(time.Now())

	link, err := linkFor(b.Type, typ)
	if err != nil {
		return nil, err
	}
	beans = []*bean.Bean{}
	if !b.IsNew() {
		exists, err := tableExists(ctx, s.db, link.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			beans, err = s.queryRelated(ctx, b, typ)
			if err != nil {
				return nil, err
			}
		}
	}
	b.SetShared(typ, beans)
	return beans, nil
}

func (s *Store) queryRelated(ctx context.Context, b *bean.Bean, typ string) ([]*bean.Bean, error) {
	query, params, err := s.compiler.Compile(queryir.Related{Source: b.Identity(), Type: typ})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("related %s of %s: %w", typ, b.Type, err)
	}
	records, err := cursor.ScanAll(rows)
	if err != nil {
		return nil, fmt.Errorf("related %s of %s: %w", typ, b.Type, err)
	}
	return s.ConvertToBeans(ctx, typ, records)
}

// linkTablesFor returns every link table with a column for typ. A table
// counts as a link table when its name is the sorted pair name and it has
// both pair columns.
func linkTablesFor(ctx context.Context, q querier, typ string) ([]querysql.LinkTable, error) {
	rows, err := q.QueryContext(ctx, querysql.ListTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("list tables: %w", err)
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	var links []querysql.LinkTable
	for _, name := range names {
		var other string
		switch {
		case strings.HasPrefix(name, typ+"_"):
			other = strings.TrimPrefix(name, typ+"_")
		case strings.HasSuffix(name, "_"+typ):
			other = strings.TrimSuffix(name, "_"+typ)
		default:
			continue
		}
		link, err := querysql.Link(typ, other)
		if err != nil || link.Name != name {
			continue
		}
		cols, err := tableColumns(ctx, q, name)
		if err != nil {
			return nil, err
		}
		if cols[querysql.Column(typ)] && cols[querysql.Column(other)] {
			links = append(links, link)
		}
	}
	return links, nil
}
