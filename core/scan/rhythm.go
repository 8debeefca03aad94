package scan

import (
	"context"
	"time"

	"github.com/swaptacular/swptlib/core/errors"
)

// minSleep is the shortest pause worth handing to the scheduler;
// smaller slack is carried over to the next beat instead.
const minSleep = 10 * time.Millisecond

// Rhythm converts "read the whole table in roughly completionGoal"
// into a per-beat row quota and a self-correcting sleep schedule.
//
// Sizing happens once per lap (StartLap); pacing happens after every
// beat (RegisterBeat). Slack that a fast beat saves is slept away; a
// slow beat drives the slack negative and subsequent beats skip
// sleeping until the deficit is paid down. The row quota never shrinks
// to catch up, so under sustained overrun a lap simply takes longer
// than the goal.
type Rhythm struct {
	completionGoal     time.Duration
	targetBeatDuration time.Duration

	rowsPerBeat   int
	numberOfBeats int64
	beatDuration  time.Duration
	deadline      time.Time
	lastBeatEnd   time.Time
	slack         time.Duration

	// now and sleep are replaced in tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRhythm returns a Rhythm aiming to finish each lap in
// completionGoal, with beats of roughly targetBeatDuration.
func NewRhythm(completionGoal, targetBeatDuration time.Duration) (*Rhythm, error) {
	if completionGoal <= 0 {
		return nil, errors.NewValidation("completionGoal", "must be positive")
	}
	if targetBeatDuration <= 0 {
		return nil, errors.NewValidation("targetBeatDuration", "must be positive")
	}
	return &Rhythm{
		completionGoal:     completionGoal,
		targetBeatDuration: targetBeatDuration,
		now:                time.Now,
		sleep:              sleepContext,
	}, nil
}

// StartLap sizes a new lap for a table of approximately totalRows rows.
// After sizing, rowsPerBeat*numberOfBeats >= totalRows always holds, so
// the lap is large enough to reach the end of the table.
func (rh *Rhythm) StartLap(totalRows int64) {
	if totalRows < 0 {
		totalRows = 0
	}
	targetBeats := int64(rh.completionGoal / rh.targetBeatDuration)
	if targetBeats < 1 {
		targetBeats = 1
	}
	rowsPerBeat := ceilDiv(totalRows, targetBeats)
	if rowsPerBeat < 1 {
		rowsPerBeat = 1
	}
	numberOfBeats := ceilDiv(totalRows, rowsPerBeat)
	if numberOfBeats < 1 {
		numberOfBeats = 1
	}

	rh.rowsPerBeat = int(rowsPerBeat)
	rh.numberOfBeats = numberOfBeats
	rh.beatDuration = rh.completionGoal / time.Duration(numberOfBeats)
	now := rh.now()
	rh.deadline = now.Add(rh.completionGoal)
	rh.lastBeatEnd = now
	rh.slack = 0
}

// RowsPerBeat returns the current lap's per-beat row quota.
func (rh *Rhythm) RowsPerBeat() int { return rh.rowsPerBeat }

// NumberOfBeats returns how many beats the current lap was sized for.
func (rh *Rhythm) NumberOfBeats() int64 { return rh.numberOfBeats }

// BeatDuration returns the current lap's nominal beat length.
func (rh *Rhythm) BeatDuration() time.Duration { return rh.beatDuration }

// LapEnded reports whether the current lap's deadline has passed. This
// is the sole condition that ends a lap.
func (rh *Rhythm) LapEnded() bool {
	return !rh.lastBeatEnd.Before(rh.deadline)
}

// RegisterBeat records that one beat of work (read + process) has just
// finished, and sleeps off any accumulated slack. The sleep honors ctx
// cancellation.
func (rh *Rhythm) RegisterBeat(ctx context.Context) error {
	rh.slack += rh.beatDuration - rh.tick()
	if rh.slack > minSleep {
		if err := rh.sleep(ctx, rh.slack); err != nil {
			return err
		}
		// Real sleeps are never exact; charge the measured duration.
		rh.slack -= rh.tick()
	}
	return nil
}

// tick returns the time elapsed since the last tick and advances the
// beat-end timestamp.
func (rh *Rhythm) tick() time.Duration {
	now := rh.now()
	elapsed := now.Sub(rh.lastBeatEnd)
	rh.lastBeatEnd = now
	return elapsed
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
