package tagging

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/beantag/internal/bean"
)

// memoryBackend is an in-memory BeanStore, AssociationManager and
// QueryWriter. It records every call and can be told to fail one of them.
type memoryBackend struct {
	beans map[string][]*bean.Bean // by type, in insertion order
	links [][2]bean.Identity      // in association order
	seq   int

	calls  []string
	failOn map[string]error

	// lastExtra and lastBindings capture the trailing SQL handed to the writer.
	lastExtra    string
	lastBindings []any
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{
		beans:  map[string][]*bean.Bean{},
		failOn: map[string]error{},
	}
}

func (m *memoryBackend) call(name string) error {
	m.calls = append(m.calls, name)
	return m.failOn[name]
}

func (m *memoryBackend) Find(ctx context.Context, typ string, filter map[string][]bean.Value) ([]*bean.Bean, error) {
	if err := m.call("find " + typ); err != nil {
		return nil, err
	}
	out := []*bean.Bean{}
	for _, b := range m.beans[typ] {
		if matches(b, filter) {
			out = append(out, b)
		}
	}
	return out, nil
}

func matches(b *bean.Bean, filter map[string][]bean.Value) bool {
	for field, values := range filter {
		if !slices.ContainsFunc(values, func(v bean.Value) bool { return bean.Equal(b.Get(field), v) }) {
			return false
		}
	}
	return true
}

func (m *memoryBackend) Dispense(ctx context.Context, typ string) (*bean.Bean, error) {
	if err := m.call("dispense " + typ); err != nil {
		return nil, err
	}
	return bean.New(typ), nil
}

func (m *memoryBackend) Store(ctx context.Context, b *bean.Bean) error {
	if err := m.call("store " + b.Type); err != nil {
		return err
	}
	m.save(b)
	return nil
}

func (m *memoryBackend) save(b *bean.Bean) {
	if !b.IsNew() {
		return
	}
	m.seq++
	b.ID = fmt.Sprintf("%s-%d", b.Type, m.seq)
	m.beans[b.Type] = append(m.beans[b.Type], b)
}

func (m *memoryBackend) ConvertToBeans(ctx context.Context, typ string, rows []bean.Row) ([]*bean.Bean, error) {
	if err := m.call("convert " + typ); err != nil {
		return nil, err
	}
	out := make([]*bean.Bean, 0, len(rows))
	for _, row := range rows {
		b := bean.New(typ)
		for k, v := range row {
			if k == "id" {
				b.ID = bean.Text(v)
				continue
			}
			b.Set(k, v)
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *memoryBackend) linked(a, b bean.Identity) int {
	return slices.IndexFunc(m.links, func(l [2]bean.Identity) bool {
		return (l[0] == a && l[1] == b) || (l[0] == b && l[1] == a)
	})
}

func (m *memoryBackend) Associate(ctx context.Context, a, b *bean.Bean) error {
	if err := m.call("associate " + a.Type + " " + b.Type); err != nil {
		return err
	}
	m.save(a)
	m.save(b)
	if m.linked(a.Identity(), b.Identity()) < 0 {
		m.links = append(m.links, [2]bean.Identity{a.Identity(), b.Identity()})
	}
	return nil
}

func (m *memoryBackend) Unassociate(ctx context.Context, a, b *bean.Bean) error {
	if err := m.call("unassociate " + a.Type + " " + b.Type); err != nil {
		return err
	}
	if i := m.linked(a.Identity(), b.Identity()); i >= 0 {
		m.links = slices.Delete(m.links, i, i+1)
	}
	return nil
}

func (m *memoryBackend) ClearRelations(ctx context.Context, b *bean.Bean, typ string) error {
	if err := m.call("clear " + b.Type + " " + typ); err != nil {
		return err
	}
	id := b.Identity()
	m.links = slices.DeleteFunc(m.links, func(l [2]bean.Identity) bool {
		return (l[0] == id && l[1].Type == typ) || (l[1] == id && l[0].Type == typ)
	})
	return nil
}

func (m *memoryBackend) Related(ctx context.Context, b *bean.Bean, typ string) ([]*bean.Bean, error) {
	if err := m.call("related " + b.Type + " " + typ); err != nil {
		return nil, err
	}
	out := m.related(b.Identity(), typ)
	b.SetShared(typ, out)
	return out, nil
}

func (m *memoryBackend) related(id bean.Identity, typ string) []*bean.Bean {
	out := []*bean.Bean{}
	for _, l := range m.links {
		var other bean.Identity
		switch {
		case l[0] == id:
			other = l[1]
		case l[1] == id:
			other = l[0]
		default:
			continue
		}
		if other.Type != typ {
			continue
		}
		for _, candidate := range m.beans[typ] {
			if candidate.ID == other.ID {
				out = append(out, candidate)
			}
		}
	}
	return out
}

// taggedBeans applies the any/all filter. Extra SQL is recorded, not run.
func (m *memoryBackend) taggedBeans(typ string, tags []string, matchAll bool, extraSQL string, bindings []any) []*bean.Bean {
	m.lastExtra, m.lastBindings = extraSQL, bindings

	out := []*bean.Bean{}
	if len(tags) == 0 {
		return out
	}
	for _, b := range m.beans[typ] {
		var have []string
		for _, t := range m.related(b.Identity(), TagType) {
			have = append(have, t.String("title"))
		}
		hit := func(title string) bool { return slices.Contains(have, title) }
		if matchAll && !allOf(tags, hit) {
			continue
		}
		if !matchAll && !slices.ContainsFunc(tags, hit) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func allOf(tags []string, hit func(string) bool) bool {
	for _, t := range tags {
		if !hit(t) {
			return false
		}
	}
	return true
}

func (m *memoryBackend) QueryTagged(ctx context.Context, typ string, tags []string, matchAll bool, extraSQL string, bindings ...any) ([]bean.Row, error) {
	if err := m.call("query " + typ); err != nil {
		return nil, err
	}
	beans := m.taggedBeans(typ, tags, matchAll, extraSQL, bindings)
	rows := make([]bean.Row, len(beans))
	for i, b := range beans {
		rows[i] = b.Row()
	}
	return rows, nil
}

func (m *memoryBackend) QueryCountTagged(ctx context.Context, typ string, tags []string, matchAll bool, extraSQL string, bindings ...any) (int, error) {
	if err := m.call("count " + typ); err != nil {
		return 0, err
	}
	return len(m.taggedBeans(typ, tags, matchAll, extraSQL, bindings)), nil
}
