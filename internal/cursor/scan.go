package cursor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/roach88/beantag/internal/bean"
)

// ScanRow scans the current row of rows into a bean.Row keyed by columns.
func ScanRow(rows *sql.Rows, columns []string) (bean.Row, error) {
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	row := make(bean.Row, len(columns))
	for i, col := range columns {
		v, err := bean.FromAny(values[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		row[col] = v
	}
	return row, nil
}

// ScanAll drains rows into a slice and closes them.
// Returns an empty slice (not nil) when there are no rows.
func ScanAll(rows *sql.Rows) (out []bean.Row, err error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	out = []bean.Row{}
	for rows.Next() {
		row, err := ScanRow(rows, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// All iterates the cursor and closes it on every exit path: exhaustion,
// early break by the caller, or error. An error ends the iteration after
// being yielded once.
//
//	for row, err := range cursor.All(ctx, c) {
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
func All(ctx context.Context, c Cursor) iter.Seq2[bean.Row, error] {
	return func(yield func(bean.Row, error) bool) {
		closed := false
		defer func() {
			if !closed {
				c.Close()
			}
		}()

		for {
			row, err := c.Next(ctx)
			if errors.Is(err, io.EOF) {
				closed = true
				if cerr := c.Close(); cerr != nil {
					yield(nil, cerr)
				}
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

// Collect drains the cursor into a slice and closes it.
func Collect(ctx context.Context, c Cursor) ([]bean.Row, error) {
	out := []bean.Row{}
	for row, err := range All(ctx, c) {
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}
