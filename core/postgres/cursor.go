package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/swaptacular/swptlib/core/errors"
	"github.com/swaptacular/swptlib/core/scan"
)

// lastBlockQuery reports the zero-based number of the table's last
// block. Adding 1 gives the page count, with the division rounding
// acting as a safety margin against a partially filled last block.
const lastBlockQuery = `SELECT pg_relation_size($1::regclass) / current_setting('block_size')::bigint`

// estimateQuery reads the planner's row estimate from the catalog. It
// may be stale, zero for a never-analyzed empty table, or -1 on
// never-analyzed tables since PostgreSQL 14.
const estimateQuery = `SELECT reltuples::bigint FROM pg_catalog.pg_class WHERE oid = $1::regclass`

// tidRangeClause synthesizes every candidate (block, slot) address in
// the requested block range. The slot bound block_size/32 assumes no
// real tuple is smaller than 32 bytes; addresses that hold no row
// simply match nothing, so the bound only needs to be an upper bound.
const tidRangeClause = `ctid = ANY (ARRAY (
  SELECT ('(' || b.b || ',' || t.t || ')')::tid
  FROM generate_series($1::bigint, $2::bigint) AS b(b),
       generate_series(0, current_setting('block_size')::int / 32) AS t(t)
))`

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Cursor is a scan.PageCursor over a PostgreSQL table, addressing rows
// by ctid block ranges.
type Cursor struct {
	db      *sql.DB
	table   string
	columns []string // nil: project all columns

	// resolved column names, captured from the first fetch when the
	// projection is implicit.
	resolved []string
}

// NewCursor returns a cursor over the given table. With no columns the
// whole row is projected. Table and column names must be plain SQL
// identifiers; anything else is rejected to keep them safe to splice
// into queries.
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

// TotalPages implements scan.PageCursor.
func (c *Cursor) TotalPages(ctx context.Context) (int64, error) {
	var lastBlock int64
	err := c.db.QueryRowContext(ctx, lastBlockQuery, c.table).Scan(&lastBlock)
	if err != nil {
		return 0, errors.NewStorage("total pages", c.table, err)
	}
	total := lastBlock + 1
	if total <= 0 {
		return 0, errors.NewStorage("total pages", c.table,
			fmt.Errorf("table reports %d pages", total))
	}
	return total, nil
}

// EstimateRows implements scan.PageCursor. Negative catalog estimates
// are clamped to zero.
func (c *Cursor) EstimateRows(ctx context.Context) (int64, error) {
	var estimate int64
	err := c.db.QueryRowContext(ctx, estimateQuery, c.table).Scan(&estimate)
	if err != nil {
		return 0, errors.NewStorage("row estimate", c.table, err)
	}
	if estimate < 0 {
		estimate = 0
	}
	return estimate, nil
}

// FetchPageRange implements scan.PageCursor.
func (c *Cursor) FetchPageRange(ctx context.Context, firstPage, lastPage int64) ([]scan.Row, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		c.projection(), c.table, tidRangeClause)
	rows, err := c.db.QueryContext(ctx, query, firstPage, lastPage)
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
