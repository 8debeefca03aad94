package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/swaptacular/swptlib/core/errors"
	"github.com/swaptacular/swptlib/internal/logging"
)

// Default configuration values.
const (
	// DefaultBlocksPerQuery is the default number of pages fetched per
	// storage round trip.
	DefaultBlocksPerQuery = 40

	// DefaultTargetBeatDuration is the default nominal beat length.
	DefaultTargetBeatDuration = 25 * time.Millisecond
)

// ProcessFunc handles one batch of scanned rows. It is called
// synchronously inside each beat, with the batch possibly empty; its
// completion time is part of what the rhythm measures and compensates
// for. A returned error terminates the scanner's run.
type ProcessFunc func(ctx context.Context, rows []Row) error

// Config configures a Scanner. The zero value is not usable: Cursor,
// Process and CompletionGoal are required.
type Config struct {
	// Cursor provides physical access to the scanned table.
	Cursor PageCursor

	// Process is called with every scanned batch.
	Process ProcessFunc

	// CompletionGoal is the wall-clock duration one full pass over the
	// table should approximately take. Required, positive.
	CompletionGoal time.Duration

	// TargetBeatDuration is the nominal length of one beat.
	// Defaults to DefaultTargetBeatDuration.
	TargetBeatDuration time.Duration

	// BlocksPerQuery is the number of pages fetched per storage round
	// trip. Defaults to DefaultBlocksPerQuery.
	BlocksPerQuery int64

	// Logger receives lap-level info logs and beat-level debug logs.
	// Defaults to the process-wide logger.
	Logger *slog.Logger
}

// Scanner owns one Reader and one Rhythm and runs the scan loop:
// size a lap from the table's current row estimate, then beat by beat
// read a quota of rows, hand them to the process callback, and sleep
// to stay on pace; when the lap's deadline passes, start a new lap.
type Scanner struct {
	cursor  PageCursor
	reader  *Reader
	rhythm  *Rhythm
	process ProcessFunc
	log     *slog.Logger
	runID   string
}

// New validates cfg, applies defaults, and returns a Scanner.
func New(cfg Config) (*Scanner, error) {
	if cfg.Process == nil {
		return nil, errors.NewValidation("Process", "must not be nil")
	}
	if cfg.CompletionGoal <= 0 {
		return nil, errors.NewValidation("CompletionGoal", "must be positive")
	}
	if cfg.TargetBeatDuration == 0 {
		cfg.TargetBeatDuration = DefaultTargetBeatDuration
	}
	if cfg.BlocksPerQuery == 0 {
		cfg.BlocksPerQuery = DefaultBlocksPerQuery
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetLogger()
	}

	reader, err := NewReader(cfg.Cursor, cfg.BlocksPerQuery)
	if err != nil {
		return nil, err
	}
	rhythm, err := NewRhythm(cfg.CompletionGoal, cfg.TargetBeatDuration)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	return &Scanner{
		cursor:  cfg.Cursor,
		reader:  reader,
		rhythm:  rhythm,
		process: cfg.Process,
		log:     cfg.Logger.With("run_id", runID),
		runID:   runID,
	}, nil
}

// RunID returns the unique identifier of this scanner instance, as it
// appears in its log records.
func (s *Scanner) RunID() string { return s.runID }

// Run executes the scan loop until ctx is canceled or an error occurs.
// There is no other way out: the scanner is meant to run unattended as
// a long-lived background loop. Storage and callback errors are not
// retried here; resilience is the caller's responsibility.
func (s *Scanner) Run(ctx context.Context) error {
	lap := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		totalRows, err := s.cursor.EstimateRows(ctx)
		if err != nil {
			return errors.Wrap(err, "sizing lap")
		}
		s.rhythm.StartLap(totalRows)
		lap++
		s.log.Info("lap started",
			"lap", lap,
			"estimated_rows", totalRows,
			"rows_per_beat", s.rhythm.RowsPerBeat(),
			"beat_duration", s.rhythm.BeatDuration(),
		)

		for !s.rhythm.LapEnded() {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := s.reader.ReadRows(ctx, s.rhythm.RowsPerBeat())
			if err != nil {
				return errors.Wrap(err, "reading rows")
			}
			if err := s.process(ctx, rows); err != nil {
				return errors.Wrap(err, "processing rows")
			}
			s.log.Debug("beat", "lap", lap, "rows", len(rows))
			if err := s.rhythm.RegisterBeat(ctx); err != nil {
				return err
			}
		}
	}
}
