package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/swaptacular/swptlib/core/errors"
	"github.com/swaptacular/swptlib/core/scan"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Cursor is a scan.PageCursor over a SQLite rowid table.
//
// SQLite has no ctid-like primitive, so a "page" here is a synthetic
// one: a fixed-width interval of rowid values, sized page_size/32 to
// mirror the slots-per-block bound the Postgres cursor uses. For the
// common append-mostly table this keeps page ranges aligned with
// insertion order; sparse rowid ranges just yield small batches, which
// the Reader absorbs. The row estimate is an exact COUNT(*), since
// SQLite keeps no catalog estimate.
type Cursor struct {
	db      *sql.DB
	table   string
	columns []string

	resolved     []string
	rowsPerRange int64 // resolved from page_size on first use
}

// NewCursor returns a cursor over the given rowid table. With no
// columns the whole row is projected. Table and column names must be
// plain SQL identifiers.
func NewCursor(db *sql.DB, table string, columns ...string) (*Cursor, error) {
	if db == nil {
		return nil, errors.NewValidation("db", "must not be nil")
	}
	if !identifier.MatchString(table) {
		return nil, &errors.ValidationError{Field: "table", Value: table, Message: "not a plain SQL identifier"}
	}
	for _, col := range columns {
		if !identifier.MatchString(col) {
			return nil, &errors.ValidationError{Field: "column", Value: col, Message: "not a plain SQL identifier"}
		}
	}
	return &Cursor{db: db, table: table, columns: columns}, nil
}

// Columns returns the projected column names, or nil before the first
// fetch when the projection is implicit.
func (c *Cursor) Columns() []string {
	if len(c.columns) > 0 {
		return c.columns
	}
	return c.resolved
}

// rangeWidth returns how many rowid values one synthetic page spans.
func (c *Cursor) rangeWidth(ctx context.Context) (int64, error) {
	if c.rowsPerRange > 0 {
		return c.rowsPerRange, nil
	}
	var pageSize int64
	if err := c.db.QueryRowContext(ctx, `PRAGMA page_size`).Scan(&pageSize); err != nil {
		return 0, errors.NewStorage("page size", c.table, err)
	}
	width := pageSize / 32
	if width < 1 {
		width = 1
	}
	c.rowsPerRange = width
	return width, nil
}

// TotalPages implements scan.PageCursor.
func (c *Cursor) TotalPages(ctx context.Context) (int64, error) {
	width, err := c.rangeWidth(ctx)
	if err != nil {
		return 0, err
	}
	var maxRowID int64
	query := fmt.Sprintf("SELECT COALESCE(MAX(rowid), 0) FROM %s", c.table)
	if err := c.db.QueryRowContext(ctx, query).Scan(&maxRowID); err != nil {
		return 0, errors.NewStorage("total pages", c.table, err)
	}
	if maxRowID < 0 {
		maxRowID = 0
	}
	return maxRowID/width + 1, nil
}

// EstimateRows implements scan.PageCursor.
func (c *Cursor) EstimateRows(ctx context.Context) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", c.table)
	if err := c.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, errors.NewStorage("row estimate", c.table, err)
	}
	return count, nil
}

// FetchPageRange implements scan.PageCursor.
func (c *Cursor) FetchPageRange(ctx context.Context, firstPage, lastPage int64) ([]scan.Row, error) {
	width, err := c.rangeWidth(ctx)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE rowid >= ? AND rowid < ? ORDER BY rowid",
		c.projection(), c.table)
	rows, err := c.db.QueryContext(ctx, query, firstPage*width, (lastPage+1)*width)
	if err != nil {
		return nil, errors.NewStorage("page range fetch", c.table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, errors.NewStorage("page range fetch", c.table, err)
	}
	if len(c.columns) == 0 && c.resolved == nil {
		c.resolved = names
	}

	var out []scan.Row
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.NewStorage("page range fetch", c.table, err)
		}
		out = append(out, scan.Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage("page range fetch", c.table, err)
	}
	return out, nil
}

func (c *Cursor) projection() string {
	if len(c.columns) == 0 {
		return "*"
	}
	return strings.Join(c.columns, ", ")
}
