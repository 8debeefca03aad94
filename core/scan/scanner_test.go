package scan

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func testConfig(cursor PageCursor, process ProcessFunc) Config {
	return Config{
		Cursor:         cursor,
		Process:        process,
		CompletionGoal: 100 * time.Millisecond,
	}
}

func nopProcess(ctx context.Context, rows []Row) error { return nil }

func TestNewValidation(t *testing.T) {
	cursor := tableOf(10, 5)

	if _, err := New(testConfig(nil, nopProcess)); err == nil {
		t.Error("New without cursor should fail")
	}
	if _, err := New(testConfig(cursor, nil)); err == nil {
		t.Error("New without process callback should fail")
	}

	cfg := testConfig(cursor, nopProcess)
	cfg.CompletionGoal = 0
	if _, err := New(cfg); err == nil {
		t.Error("New with zero completion goal should fail")
	}

	cfg = testConfig(cursor, nopProcess)
	cfg.BlocksPerQuery = -1
	if _, err := New(cfg); err == nil {
		t.Error("New with negative blocksPerQuery should fail")
	}
}

func TestNewDefaults(t *testing.T) {
	s, err := New(testConfig(tableOf(10, 5), nopProcess))
	if err != nil {
		t.Fatal(err)
	}
	if s.reader.blocksPerQuery != DefaultBlocksPerQuery {
		t.Errorf("blocksPerQuery = %d, want %d", s.reader.blocksPerQuery, DefaultBlocksPerQuery)
	}
	if s.rhythm.targetBeatDuration != DefaultTargetBeatDuration {
		t.Errorf("targetBeatDuration = %v, want %v", s.rhythm.targetBeatDuration, DefaultTargetBeatDuration)
	}
	if s.RunID() == "" {
		t.Error("RunID should not be empty")
	}
}

func TestRunScansAndRestarts(t *testing.T) {
	cursor := tableOf(50, 10)
	clock := newFakeClock()

	var batches [][]Row
	process := func(ctx context.Context, rows []Row) error {
		batches = append(batches, rows)
		return nil
	}

	cfg := testConfig(cursor, process)
	cfg.BlocksPerQuery = 2
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	clock.install(s.rhythm)
	startAt(s.reader, 0)

	// Stop when the third lap is being sized, so exactly two laps run.
	ctx, cancel := context.WithCancel(context.Background())
	estimates := 0
	wrapped := &estimateCounter{fakeCursor: cursor, onEstimate: func() {
		estimates++
		if estimates == 3 {
			cancel()
		}
	}}
	s.cursor = wrapped
	s.reader.cursor = wrapped

	err = s.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if estimates != 3 {
		t.Fatalf("row estimate queried %d times, want once per lap sizing (3)", estimates)
	}

	// Two full laps ran: every batch respects the quota, and the rows
	// delivered within a lap cover the table without repeats.
	quota := s.rhythm.RowsPerBeat()
	var ids []int
	for _, batch := range batches {
		if len(batch) > quota {
			t.Fatalf("batch of %d rows exceeds quota %d", len(batch), quota)
		}
		for _, row := range batch {
			ids = append(ids, rowID(t, row))
		}
	}
	if len(ids) < 100 {
		t.Fatalf("two laps delivered %d rows, want at least 100", len(ids))
	}
	counts := map[int]int{}
	for _, id := range ids[:100] {
		counts[id]++
	}
	for id := 0; id < 50; id++ {
		if counts[id] != 2 {
			t.Errorf("row %d delivered %d times over two laps, want 2", id, counts[id])
		}
	}
}

// estimateCounter wraps a fakeCursor to observe lap sizing.
type estimateCounter struct {
	*fakeCursor
	onEstimate func()
}

func (c *estimateCounter) EstimateRows(ctx context.Context) (int64, error) {
	c.onEstimate()
	return c.fakeCursor.EstimateRows(ctx)
}

func TestRunPropagatesCallbackErrors(t *testing.T) {
	boom := fmt.Errorf("downstream unavailable")
	process := func(ctx context.Context, rows []Row) error { return boom }

	s, err := New(testConfig(tableOf(10, 5), process))
	if err != nil {
		t.Fatal(err)
	}
	newFakeClock().install(s.rhythm)
	startAt(s.reader, 0)

	if err := s.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run = %v, want the callback error", err)
	}
}

func TestRunPropagatesStorageErrors(t *testing.T) {
	cursor := tableOf(10, 5)
	cursor.estimateErr = fmt.Errorf("table dropped")

	s, err := New(testConfig(cursor, nopProcess))
	if err != nil {
		t.Fatal(err)
	}
	newFakeClock().install(s.rhythm)

	if err := s.Run(context.Background()); !errors.Is(err, cursor.estimateErr) {
		t.Errorf("Run = %v, want the storage error", err)
	}
}

func TestRunStopsBetweenBeats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	beats := 0
	process := func(ctx context.Context, rows []Row) error {
		beats++
		if beats == 3 {
			cancel()
		}
		return nil
	}

	s, err := New(testConfig(tableOf(1000, 10), process))
	if err != nil {
		t.Fatal(err)
	}
	newFakeClock().install(s.rhythm)
	startAt(s.reader, 0)

	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if beats != 3 {
		t.Errorf("process called %d times after cancel, want exactly 3", beats)
	}
}

func TestEmptyTableLap(t *testing.T) {
	// A zero row estimate still produces a one-beat lap that reads an
	// empty batch (the table occupies a page but holds no rows).
	cursor := &fakeCursor{pages: [][]Row{nil}, estimate: 0}

	var batchSizes []int
	laps := 0
	ctx, cancel := context.WithCancel(context.Background())
	process := func(ctx context.Context, rows []Row) error {
		batchSizes = append(batchSizes, len(rows))
		return nil
	}

	cfg := testConfig(cursor, process)
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	clock := newFakeClock()
	clock.install(s.rhythm)

	wrapped := &estimateCounter{fakeCursor: cursor, onEstimate: func() {
		laps++
		if laps == 2 {
			cancel()
		}
	}}
	s.cursor = wrapped
	s.reader.cursor = wrapped

	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if len(batchSizes) != 1 || batchSizes[0] != 0 {
		t.Errorf("batches = %v, want a single empty batch", batchSizes)
	}
	if s.rhythm.RowsPerBeat() != 1 || s.rhythm.NumberOfBeats() != 1 {
		t.Errorf("sizing for empty table: %d rows/beat over %d beats, want 1 over 1",
			s.rhythm.RowsPerBeat(), s.rhythm.NumberOfBeats())
	}
}
