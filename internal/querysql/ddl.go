package querysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/beantag/internal/bean"
	"github.com/roach88/beantag/internal/queryir"
)

// ErrSelfLink is returned by Link for two beans of the same type.
var ErrSelfLink = errors.New("cannot link a type to itself")

// TableExistsSQL checks sqlite_master for a table by name.
const TableExistsSQL = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`

// ListTablesSQL lists every user table.
const ListTablesSQL = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`

// Column returns the link-table column that references beans of typ.
func Column(typ string) string {
	return typ + "_id"
}

// CreateTable returns the DDL for a fluid bean table. Fields are added later
// with AddColumn as beans carrying them are stored.
func CreateTable(typ string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY)", typ)
}

// CreateUniqueIndex returns the DDL for a single-column unique index.
func CreateUniqueIndex(table, column string) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s_%s_unique ON %s (%s)",
		table, column, table, column)
}

// TableInfo returns the pragma listing the columns of table.
func TableInfo(table string) string {
	return fmt.Sprintf("PRAGMA table_info(%s)", table)
}

// AddColumn returns the DDL adding field to typ with the affinity of v.
func AddColumn(typ, field string, v bean.Value) string {
	if affinity := ColumnType(v); affinity != "" {
		return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", typ, field, affinity)
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", typ, field)
}

// ColumnType maps a value variant to a SQLite column type. Null yields no
// declared type, leaving the column without affinity.
//
// BOOLEAN is declared so drivers that honour declared types hand booleans
// back as bool; SQLite itself stores them as integers.
func ColumnType(v bean.Value) string {
	switch v.(type) {
	case bean.Int:
		return "INTEGER"
	case bean.Float:
		return "REAL"
	case bean.String:
		return "TEXT"
	case bean.Bool:
		return "BOOLEAN"
	case bean.Bytes:
		return "BLOB"
	default:
		return ""
	}
}

// Insert returns an INSERT for typ with id followed by columns.
func Insert(typ string, columns []string) string {
	cols := append([]string{"id"}, columns...)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		typ, strings.Join(cols, ", "), placeholders(len(cols)))
}

// Upsert returns an INSERT that overwrites columns when the id already
// exists.
func Upsert(typ string, columns []string) string {
	insert := Insert(typ, columns)
	if len(columns) == 0 {
		return insert + " ON CONFLICT(id) DO NOTHING"
	}
	sets := make([]string, len(columns))
	for i, col := range columns {
		sets[i] = col + " = excluded." + col
	}
	return insert + " ON CONFLICT(id) DO UPDATE SET " + strings.Join(sets, ", ")
}

// Delete returns a DELETE of one row by id.
func Delete(typ string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE id = ?", typ)
}

// SelectByID returns a single-row lookup by id.
func SelectByID(typ string) string {
	return fmt.Sprintf("SELECT %s.* FROM %s WHERE %s.id = ?", typ, typ, typ)
}

// LinkTable describes the many-to-many table joining two bean types.
// Left and Right are the type names in sorted order; the table is named
// "<left>_<right>".
type LinkTable struct {
	Name  string
	Left  string
	Right string
}

// Link returns the link table for the pair (a, b), in either order.
func Link(a, b string) (LinkTable, error) {
	for _, name := range []string{a, b} {
		if !queryir.IsIdent(name) {
			return LinkTable{}, fmt.Errorf("%w: type name %q", queryir.ErrInvalidQuery, name)
		}
	}
	if a == b {
		return LinkTable{}, fmt.Errorf("%w: %s", ErrSelfLink, a)
	}
	if b < a {
		a, b = b, a
	}
	return LinkTable{Name: a + "_" + b, Left: a, Right: b}, nil
}

// Other returns the type on the other side of the link from typ.
func (l LinkTable) Other(typ string) string {
	if typ == l.Left {
		return l.Right
	}
	return l.Left
}

// CreateSQL returns the DDL for the link table. The integer id records
// association order; the unique pair makes re-association a no-op.
func (l LinkTable) CreateSQL() string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, %s TEXT NOT NULL, %s TEXT NOT NULL, UNIQUE (%s, %s))",
		l.Name, Column(l.Left), Column(l.Right), Column(l.Left), Column(l.Right))
}

// InsertSQL returns the idempotent association insert.
// Parameters are ordered by Args.
func (l LinkTable) InsertSQL() string {
	return fmt.Sprintf("INSERT OR IGNORE INTO %s (%s, %s) VALUES (?, ?)",
		l.Name, Column(l.Left), Column(l.Right))
}

// DeleteSQL returns the statement removing one association.
// Parameters are ordered by Args.
func (l LinkTable) DeleteSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?",
		l.Name, Column(l.Left), Column(l.Right))
}

// ClearSQL returns the statement removing every association of one bean of
// type typ.
func (l LinkTable) ClearSQL(typ string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = ?", l.Name, Column(typ))
}

// Args orders the ids of a and b to match the Left/Right columns.
func (l LinkTable) Args(a, b bean.Identity) []any {
	if a.Type == l.Left {
		return []any{a.ID, b.ID}
	}
	return []any{b.ID, a.ID}
}
