package cursor

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beantag/internal/bean"
)

// sliceCursor serves fixed rows and counts Close calls.
type sliceCursor struct {
	rows    []bean.Row
	pos     int
	failAt  int // index whose Next fails; -1 for never
	err     error
	closeN  int
	closeEr error
}

func newSliceCursor(n int) *sliceCursor {
	c := &sliceCursor{failAt: -1}
	for i := range n {
		c.rows = append(c.rows, bean.Row{"n": bean.Int(i)})
	}
	return c
}

func (c *sliceCursor) Next(context.Context) (bean.Row, error) {
	if c.pos == c.failAt {
		return nil, c.err
	}
	if c.pos >= len(c.rows) {
		return nil, io.EOF
	}
	row := c.rows[c.pos]
	c.pos++
	return row, nil
}

func (c *sliceCursor) Reset(context.Context) error { c.pos = 0; return nil }

func (c *sliceCursor) Close() error { c.closeN++; return c.closeEr }

func TestAll_ClosesOnExhaustion(t *testing.T) {
	c := newSliceCursor(3)

	var got []int64
	for row, err := range All(context.Background(), c) {
		require.NoError(t, err)
		got = append(got, int64(row["n"].(bean.Int)))
	}

	assert.Equal(t, []int64{0, 1, 2}, got)
	assert.Equal(t, 1, c.closeN)
}

func TestAll_ClosesOnEarlyBreak(t *testing.T) {
	c := newSliceCursor(10)

	seen := 0
	for _, err := range All(context.Background(), c) {
		require.NoError(t, err)
		seen++
		if seen == 2 {
			break
		}
	}

	assert.Equal(t, 2, seen)
	assert.Equal(t, 1, c.closeN)
}

func TestAll_YieldsErrorOnceAndCloses(t *testing.T) {
	c := newSliceCursor(5)
	c.failAt = 2
	c.err = errors.New("disk gone")

	var rows, errs int
	for _, err := range All(context.Background(), c) {
		if err != nil {
			errs++
			assert.ErrorIs(t, err, c.err)
			continue
		}
		rows++
	}

	assert.Equal(t, 2, rows)
	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, c.closeN)
}

func TestAll_ReportsCloseError(t *testing.T) {
	c := newSliceCursor(1)
	c.closeEr = errors.New("close failed")

	_, err := Collect(context.Background(), c)
	assert.ErrorIs(t, err, c.closeEr)
	assert.Equal(t, 1, c.closeN)
}

func TestCollect(t *testing.T) {
	rows, err := Collect(context.Background(), newSliceCursor(4))
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	rows, err = Collect(context.Background(), newSliceCursor(0))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestScanAll(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.Query(`SELECT id, year FROM movie WHERE year > ? ORDER BY id`, 1980)
	require.NoError(t, err)
	got, err := ScanAll(rows)
	require.NoError(t, err)
	assert.Equal(t, []bean.Row{
		{"id": bean.String("m2"), "year": bean.Int(1985)},
		{"id": bean.String("m3"), "year": bean.Int(1997)},
	}, got)

	rows, err = db.Query(`SELECT id FROM movie WHERE 0`)
	require.NoError(t, err)
	got, err = ScanAll(rows)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
