package bean

import (
	"maps"
	"slices"
)

// Row is one raw result row: column name to value.
type Row map[string]Value

// SortedKeys returns the row's column names in canonical order.
func (r Row) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// Identity is the (type, primary key) pair that names one entity.
type Identity struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Bean is a schema-flexible record of a named type.
//
// Fields hold primitive values keyed by field name. Shared holds the named
// relation slots, keyed by the related type (the "tag" slot holds the tag
// beans associated with this bean). A bean with an empty ID has not been
// stored yet.
type Bean struct {
	Type   string
	ID     string
	Fields map[string]Value
	Shared map[string][]*Bean
}

// New creates an unstored bean of the given type with no fields.
func New(typ string) *Bean {
	return &Bean{
		Type:   typ,
		Fields: make(map[string]Value),
		Shared: make(map[string][]*Bean),
	}
}

// Identity returns the bean's (type, id) pair.
func (b *Bean) Identity() Identity {
	return Identity{Type: b.Type, ID: b.ID}
}

// IsNew reports whether the bean has never been stored.
func (b *Bean) IsNew() bool {
	return b.ID == ""
}

// SameAs reports whether b and other name the same stored entity.
// Two unstored beans are never the same entity.
func (b *Bean) SameAs(other *Bean) bool {
	if b == nil || other == nil {
		return false
	}
	if b.IsNew() || other.IsNew() {
		return b == other
	}
	return b.Type == other.Type && b.ID == other.ID
}

// Get returns the value of a field, or Null if the field is unset.
func (b *Bean) Get(field string) Value {
	if v, ok := b.Fields[field]; ok && v != nil {
		return v
	}
	return Null{}
}

// Set assigns a field value. A nil value is stored as Null.
func (b *Bean) Set(field string, v Value) *Bean {
	if b.Fields == nil {
		b.Fields = make(map[string]Value)
	}
	if v == nil {
		v = Null{}
	}
	b.Fields[field] = v
	return b
}

// String returns a field rendered as text; see Text.
func (b *Bean) String(field string) string {
	return Text(b.Get(field))
}

// SharedList returns the beans held in the named relation slot.
// The second result is false when the slot was never loaded.
func (b *Bean) SharedList(slot string) ([]*Bean, bool) {
	list, ok := b.Shared[slot]
	return list, ok
}

// SetShared replaces the contents of a relation slot.
func (b *Bean) SetShared(slot string, list []*Bean) {
	if b.Shared == nil {
		b.Shared = make(map[string][]*Bean)
	}
	b.Shared[slot] = list
}

// ForgetShared drops a relation slot so the next read reloads it.
func (b *Bean) ForgetShared(slot string) {
	delete(b.Shared, slot)
}

// Row returns the bean's fields and id as a Row.
func (b *Bean) Row() Row {
	r := make(Row, len(b.Fields)+1)
	maps.Copy(r, b.Fields)
	if !b.IsNew() {
		r["id"] = String(b.ID)
	}
	return r
}

// FieldNames returns the bean's field names in canonical order.
func (b *Bean) FieldNames() []string {
	return Row(b.Fields).SortedKeys()
}
