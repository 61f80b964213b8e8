package cursor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/beantag/internal/bean"
)

// ErrClosed is returned by Next and Reset on a cursor that has been closed.
var ErrClosed = errors.New("cursor: use of closed cursor")

// Cursor is a forward-only, resettable, closable iterator over the rows of
// one executed query.
//
// Next returns io.EOF once the rows are exhausted and keeps returning io.EOF
// on further calls. Reset re-executes the original query with its original
// arguments and restarts from the first row. Close releases the backend
// resources and is idempotent.
//
// Some backends accept only one open statement per connection: close a
// cursor before issuing unrelated queries on the same connection.
type Cursor interface {
	Next(ctx context.Context) (bean.Row, error)
	Reset(ctx context.Context) error
	Close() error
}

var (
	_ Cursor = (*StmtCursor)(nil)
	_ Cursor = NullCursor{}
)

// StmtCursor pulls rows one at a time from a prepared statement.
// It owns the statement: Close releases both the live rows and the statement.
// A StmtCursor is not safe for concurrent use.
type StmtCursor struct {
	stmt    *sql.Stmt
	args    []any
	rows    *sql.Rows
	columns []string
	done    bool
	closed  bool
	onClose func()
}

// Open executes stmt with args and returns a cursor positioned before the
// first row. On error the statement is closed.
func Open(ctx context.Context, stmt *sql.Stmt, args ...any) (*StmtCursor, error) {
	c := &StmtCursor{
		stmt: stmt,
		args: args,
	}
	if err := c.execute(ctx); err != nil {
		stmt.Close()
		return nil, err
	}
	return c, nil
}

// OnClose registers fn to run once when the cursor is closed.
func (c *StmtCursor) OnClose(fn func()) *StmtCursor {
	c.onClose = fn
	return c
}

// Columns returns the column names of the current result set.
func (c *StmtCursor) Columns() []string {
	return c.columns
}

// execute runs the statement and captures the column list.
func (c *StmtCursor) execute(ctx context.Context) error {
	rows, err := c.stmt.QueryContext(ctx, c.args...)
	if err != nil {
		return fmt.Errorf("execute cursor statement: %w", err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return fmt.Errorf("read cursor columns: %w", err)
	}
	c.rows = rows
	c.columns = cols
	c.done = false
	return nil
}

// Next advances to the next row.
// Returns io.EOF at end of data (repeatedly), ErrClosed after Close.
func (c *StmtCursor) Next(ctx context.Context) (bean.Row, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if c.done || c.rows == nil {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !c.rows.Next() {
		c.done = true
		err := c.rows.Err()
		// Release the backend cursor as soon as the rows run out
		closeErr := c.rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate cursor: %w", err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("release cursor rows: %w", closeErr)
		}
		return nil, io.EOF
	}

	row, err := ScanRow(c.rows, c.columns)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Reset closes the current rows and re-executes the statement with the same
// arguments. Data observed afterwards reflects whatever is committed at
// re-execution time.
func (c *StmtCursor) Reset(ctx context.Context) error {
	if c.closed {
		return ErrClosed
	}
	if c.rows != nil {
		if err := c.rows.Close(); err != nil {
			return fmt.Errorf("close cursor rows: %w", err)
		}
		c.rows = nil
	}
	c.done = true
	return c.execute(ctx)
}

// Close releases the rows and the statement. Calling Close again is a no-op.
func (c *StmtCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	if c.rows != nil {
		errs = append(errs, c.rows.Close())
		c.rows = nil
	}
	errs = append(errs, c.stmt.Close())

	if c.onClose != nil {
		c.onClose()
	}
	return errors.Join(errs...)
}

// NullCursor is the cursor for paths with no result set: Next always
// reports end of data, Reset and Close do nothing.
type NullCursor struct{}

// Next implements Cursor.
func (NullCursor) Next(context.Context) (bean.Row, error) { return nil, io.EOF }

// Reset implements Cursor.
func (NullCursor) Reset(context.Context) error { return nil }

// Close implements Cursor.
func (NullCursor) Close() error { return nil }
