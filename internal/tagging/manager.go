package tagging

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/beantag/internal/bean"
)

// TagType is the bean type tags are stored as.
const TagType = "tag"

// BeanStore finds, creates and persists beans.
type BeanStore interface {
	// Find returns the beans of typ whose fields match filter, where each
	// field may take any of the listed values. No match is an empty slice.
	Find(ctx context.Context, typ string, filter map[string][]bean.Value) ([]*bean.Bean, error)
	Dispense(ctx context.Context, typ string) (*bean.Bean, error)
	Store(ctx context.Context, b *bean.Bean) error
	ConvertToBeans(ctx context.Context, typ string, rows []bean.Row) ([]*bean.Bean, error)
}

// AssociationManager maintains many-to-many links between beans.
type AssociationManager interface {
	// Associate links a and b. Linking an already linked pair is a no-op.
	Associate(ctx context.Context, a, b *bean.Bean) error
	Unassociate(ctx context.Context, a, b *bean.Bean) error
	// ClearRelations removes every link between b and beans of typ.
	ClearRelations(ctx context.Context, b *bean.Bean, typ string) error
	// Related returns the beans of typ linked to b and fills b's relation
	// slot for typ.
	Related(ctx context.Context, b *bean.Bean, typ string) ([]*bean.Bean, error)
}

// QueryWriter selects beans of a type by tag titles.
type QueryWriter interface {
	QueryTagged(ctx context.Context, typ string, tags []string, matchAll bool, extraSQL string, bindings ...any) ([]bean.Row, error)
	QueryCountTagged(ctx context.Context, typ string, tags []string, matchAll bool, extraSQL string, bindings ...any) (int, error)
}

// Manager attaches tags to beans and selects beans by tag.
//
// A Manager holds no state of its own. Errors from the collaborators are
// returned exactly as received, and a failed multi-step operation leaves
// whatever the completed steps wrote.
type Manager struct {
	store  BeanStore
	assoc  AssociationManager
	writer QueryWriter
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for tag creation and clearing records.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New creates a Manager over the three collaborators. A single backend
// usually implements all of them.
func New(store BeanStore, assoc AssociationManager, writer QueryWriter, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		assoc:  assoc,
		writer: writer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FindTagByTitle returns the tag bean titled title, or nil if there is none.
func (m *Manager) FindTagByTitle(ctx context.Context, title string) (*bean.Bean, error) {
	tags, err := m.store.Find(ctx, TagType, map[string][]bean.Value{
		"title": {bean.String(title)},
	})
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags[0], nil
}

// HasTag reports whether b carries the tags in list.
//
// With matchAll unset, any shared title is enough. With matchAll set, the
// requested titles that b carries are joined in request order and compared
// with the joined request, so every requested title must be present. An
// empty request therefore matches all and matches none of any.
func (m *Manager) HasTag(ctx context.Context, b *bean.Bean, list List, matchAll bool) (bool, error) {
	current, err := m.Tag(ctx, b, None)
	if err != nil {
		return false, err
	}
	requested := list.Normalize()
	same := intersect(requested, current)
	if matchAll {
		return strings.Join(same, ",") == strings.Join(requested, ","), nil
	}
	return len(same) > 0, nil
}

// intersect keeps the elements of a that occur in b, in a's order.
func intersect(a, b []string) []string {
	out := make([]string, 0, len(a))
	for _, s := range a {
		if slices.Contains(b, s) {
			out = append(out, s)
		}
	}
	return out
}

// Tag reads or replaces the tags of b.
//
// With None it returns the titles of b's tags in association order. Any
// other list replaces b's tags with it: existing tag links are cleared, the
// listed tags added, and the list's titles returned as given.
func (m *Manager) Tag(ctx context.Context, b *bean.Bean, list List) ([]string, error) {
	if list.IsNone() {
		tags, err := m.assoc.Related(ctx, b, TagType)
		if err != nil {
			return nil, err
		}
		titles := make([]string, 0, len(tags))
		for _, t := range tags {
			titles = append(titles, t.String("title"))
		}
		return titles, nil
	}

	if err := m.assoc.ClearRelations(ctx, b, TagType); err != nil {
		return nil, err
	}
	m.logger.Debug("cleared tags", "type", b.Type, "id", b.ID)

	if err := m.AddTags(ctx, b, list); err != nil {
		return nil, err
	}
	return list.Normalize(), nil
}

// AddTags links b to each listed tag, creating tags that do not exist yet.
// Tags already on b are left alone. None does nothing.
func (m *Manager) AddTags(ctx context.Context, b *bean.Bean, list List) error {
	if list.IsNone() {
		return nil
	}
	for _, title := range list.Normalize() {
		t, err := m.FindTagByTitle(ctx, title)
		if err != nil {
			return err
		}
		if t == nil {
			if t, err = m.store.Dispense(ctx, TagType); err != nil {
				return err
			}
			t.Set("title", bean.String(title))
			if err := m.store.Store(ctx, t); err != nil {
				return err
			}
			m.logger.Debug("created tag", "title", title, "id", t.ID)
		}
		if err := m.assoc.Associate(ctx, b, t); err != nil {
			return err
		}
	}
	return nil
}

// Untag unlinks b from each listed tag. Titles with no tag are skipped and
// tags are never deleted.
func (m *Manager) Untag(ctx context.Context, b *bean.Bean, list List) error {
	for _, title := range list.Normalize() {
		t, err := m.FindTagByTitle(ctx, title)
		if err != nil {
			return err
		}
		if t == nil {
			continue
		}
		if err := m.assoc.Unassociate(ctx, b, t); err != nil {
			return err
		}
	}
	return nil
}

// Tagged returns the beans of typ carrying at least one tag in list.
// extraSQL is appended to the generated query with bindings as its
// parameters; it may refer to the bean table by typ.
func (m *Manager) Tagged(ctx context.Context, typ string, list List, extraSQL string, bindings ...any) ([]*bean.Bean, error) {
	return m.tagged(ctx, typ, list, false, extraSQL, bindings)
}

// TaggedAll returns the beans of typ carrying every tag in list.
func (m *Manager) TaggedAll(ctx context.Context, typ string, list List, extraSQL string, bindings ...any) ([]*bean.Bean, error) {
	return m.tagged(ctx, typ, list, true, extraSQL, bindings)
}

func (m *Manager) tagged(ctx context.Context, typ string, list List, matchAll bool, extraSQL string, bindings []any) ([]*bean.Bean, error) {
	rows, err := m.writer.QueryTagged(ctx, typ, list.Normalize(), matchAll, extraSQL, bindings...)
	if err != nil {
		return nil, err
	}
	return m.store.ConvertToBeans(ctx, typ, rows)
}

// CountTagged counts the beans Tagged would return.
func (m *Manager) CountTagged(ctx context.Context, typ string, list List, extraSQL string, bindings ...any) (int, error) {
	return m.writer.QueryCountTagged(ctx, typ, list.Normalize(), false, extraSQL, bindings...)
}

// CountTaggedAll counts the beans TaggedAll would return.
func (m *Manager) CountTaggedAll(ctx context.Context, typ string, list List, extraSQL string, bindings ...any) (int, error) {
	return m.writer.QueryCountTagged(ctx, typ, list.Normalize(), true, extraSQL, bindings...)
}
