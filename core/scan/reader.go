package scan

import (
	"context"
	"math/rand"

	"github.com/swaptacular/swptlib/core/errors"
)

// Reader presents an infinite, restartable stream of table rows as
// fixed-size batches, hiding page-boundary bookkeeping.
//
// The reader keeps a monotonically advancing page offset and a FIFO
// buffer of not-yet-delivered rows. The very first fetch starts at a
// uniformly random page, so consecutive process restarts don't all
// hammer the same physical region; every wraparound afterwards resumes
// deterministically from page 0, keeping successive laps' page order
// stable.
type Reader struct {
	cursor         PageCursor
	blocksPerQuery int64

	// page is the next page to fetch; -1 until the first fetch.
	page int64
	buf  []Row

	// randPage picks the initial page; replaced in tests.
	randPage func(totalPages int64) int64
}

// NewReader returns a Reader over cursor that fetches blocksPerQuery
// pages per storage round trip. A larger value means fewer round trips
// at the cost of per-call latency and memory.
func NewReader(cursor PageCursor, blocksPerQuery int64) (*Reader, error) {
	if cursor == nil {
		return nil, errors.NewValidation("cursor", "must not be nil")
	}
	if blocksPerQuery < 1 {
		return nil, errors.NewValidation("blocksPerQuery", "must be at least 1")
	}
	return &Reader{
		cursor:         cursor,
		blocksPerQuery: blocksPerQuery,
		page:           -1,
		randPage:       rand.Int63n,
	}, nil
}

// ReadRows returns at most count rows, in the order their pages were
// scanned. Fewer than count rows are returned only when fewer remain
// before the cursor wraps past the end of the table; reaching the end
// is absorbed here and never surfaces as an error.
func (r *Reader) ReadRows(ctx context.Context, count int) ([]Row, error) {
	for len(r.buf) < count {
		rows, end, err := r.advance(ctx)
		if err != nil {
			return nil, err
		}
		if end {
			// Wrap around; the next call starts a new pass.
			r.page = 0
			break
		}
		r.buf = append(r.buf, rows...)
	}

	n := count
	if n > len(r.buf) {
		n = len(r.buf)
	}
	if n <= 0 {
		return nil, nil
	}
	out := make([]Row, n)
	copy(out, r.buf[:n])
	rest := copy(r.buf, r.buf[n:])
	r.buf = r.buf[:rest]
	return out, nil
}

// advance fetches the next page range and moves the page offset past
// it. end reports that the offset has crossed the page-count boundary.
func (r *Reader) advance(ctx context.Context) (rows []Row, end bool, err error) {
	total, err := r.cursor.TotalPages(ctx)
	if err != nil {
		return nil, false, err
	}
	if total <= 0 {
		return nil, false, errors.NewValidation("totalPages", "table reports no pages")
	}
	if r.page < 0 {
		r.page = r.randPage(total)
	}
	if r.page >= total {
		return nil, true, nil
	}
	first := r.page
	r.page += r.blocksPerQuery
	rows, err = r.cursor.FetchPageRange(ctx, first, r.page-1)
	if err != nil {
		return nil, false, err
	}
	return rows, false, nil
}
