// Package scan implements a continuous, rate-paced scanner over a large
// relational table.
//
// A Scanner perpetually walks every row of a table in bounded batches,
// without a disruptive full sequential scan and without overloading the
// database, then restarts from the beginning once the end is reached.
// One full pass over the table (a "lap") takes approximately a configured
// wall-clock duration regardless of table size, with work spread evenly
// over fixed-cadence "beats" rather than bursting.
//
// The physical storage access is abstracted behind PageCursor; see the
// postgres and sqlite packages for implementations.
package scan

import "context"

// Row is one table row, as a slice of column values. The value order
// matches the cursor's Columns().
type Row []any

// PageCursor translates a contiguous range of physical storage pages
// into rows, and reports how many pages the table currently occupies.
//
// Implementations are not required to be safe for concurrent use; a
// Reader owns its cursor exclusively.
type PageCursor interface {
	// Columns returns the names of the projected columns. May return
	// nil before the first fetch when the projection is implicit.
	Columns() []string

	// TotalPages returns the number of physical pages the table
	// occupies, including a safety margin against boundary rounding.
	// The result is always positive; a table reporting zero pages is
	// a caller error, not a recoverable condition.
	TotalPages(ctx context.Context) (int64, error)

	// EstimateRows returns the storage engine's approximate row count
	// for the table. The estimate may be stale or zero.
	EstimateRows(ctx context.Context) (int64, error)

	// FetchPageRange returns all rows physically located in pages
	// [firstPage, lastPage]. Pages past the end of the table simply
	// yield no rows.
	FetchPageRange(ctx context.Context, firstPage, lastPage int64) ([]Row, error)
}
