package voxel

import (
	"sync/atomic"
	"time"
)

// BuildMode selects the drain strategy of a build session.
type BuildMode int

const (
	// ModeImmediate drains the chunk stream to exhaustion in one
	// continuous pass, in strict iterator order, without yielding to the
	// presentation loop.
	ModeImmediate BuildMode = iota

	// ModeIncremental is cooperative and time-sliced: chunks are
	// processed until the adaptive per-tick budget runs out, then the
	// continuation is scheduled on the next presentation opportunity.
	ModeIncremental

	// ModeInstanced bypasses the chunk cache and merges the whole
	// schematic into a small fixed set of draw batches.
	ModeInstanced
)

// String returns the mode name.
func (m BuildMode) String() string {
	switch m {
	case ModeImmediate:
		return "immediate"
	case ModeIncremental:
		return "incremental"
	case ModeInstanced:
		return "instanced"
	default:
		return "unknown"
	}
}

// SessionState is the terminal or running state of a build session.
type SessionState int

const (
	// StateRunning means the session is still draining chunks.
	StateRunning SessionState = iota

	// StateCompleted means the iterator was exhausted. The session may
	// still carry a non-zero failed-chunk count.
	StateCompleted

	// StateCancelled means the session was stopped by cancellation.
	// Already-installed chunks are not rolled back.
	StateCancelled

	// StateFailed means an iterator-level error aborted the session.
	StateFailed
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Adaptive tick budget limits. The budget hill-climbs between these bounds
// so the pipeline self-tunes without fixed per-hardware constants.
const (
	// BudgetFloor is the minimum per-tick chunk work allowance.
	BudgetFloor = 4 * time.Millisecond

	// BudgetCeiling is the maximum per-tick chunk work allowance.
	BudgetCeiling = 16 * time.Millisecond

	// initialBudget is the starting allowance of a fresh session.
	initialBudget = 8 * time.Millisecond
)

// BuildSession is the transient state of one scheduler run. It is created
// at build start, owned by exactly one run, and discarded at completion;
// starting a new build supersedes any previous session's continuation chain.
type BuildSession struct {
	mode   BuildMode
	total  int
	budget time.Duration

	processed int
	skipped   int
	failed    int

	cancelled atomic.Bool
	state     SessionState
	err       error
}

func newSession(mode BuildMode, total int) *BuildSession {
	return &BuildSession{
		mode:   mode,
		total:  total,
		budget: initialBudget,
		state:  StateRunning,
	}
}

// Cancel requests the session to stop. The flag is checked at the top of
// each incremental tick and between chunks in all modes; processing already
// in flight for the current chunk finishes first.
func (s *BuildSession) Cancel() {
	s.cancelled.Store(true)
}

// Cancelled reports whether cancellation was requested.
func (s *BuildSession) Cancelled() bool {
	return s.cancelled.Load()
}

// adaptBudget applies one hill-climbing step after a tick. combined is the
// tick's chunk work time plus the present time; target is the desired tick
// interval. Slow ticks shrink the budget 20% (floored), fast ticks grow it
// 20% (capped).
func (s *BuildSession) adaptBudget(combined, target time.Duration) {
	switch {
	case combined > target+target/2:
		s.budget = s.budget * 4 / 5
		if s.budget < BudgetFloor {
			s.budget = BudgetFloor
		}
	case combined < target/2:
		s.budget = s.budget * 6 / 5
		if s.budget > BudgetCeiling {
			s.budget = BudgetCeiling
		}
	}
}

// BuildStats is the immutable summary of a finished (or snapshot of a
// running) session. A completed build with Failed > 0 is a partial success;
// the count is always surfaced, never silently dropped.
type BuildStats struct {
	Mode      BuildMode
	State     SessionState
	Total     int
	Processed int
	Skipped   int
	Failed    int
	Err       error
}

func (s *BuildSession) stats() *BuildStats {
	return &BuildStats{
		Mode:      s.mode,
		State:     s.state,
		Total:     s.total,
		Processed: s.processed,
		Skipped:   s.skipped,
		Failed:    s.failed,
		Err:       s.err,
	}
}
