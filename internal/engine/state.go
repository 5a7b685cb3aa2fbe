package engine

import (
	"sync"
	"sync/atomic"
)

// Status is the lifecycle state of a batch run.
type Status int

// A run starts Idle, moves to Running on entry, and finishes in exactly one
// of Cancelled, Completed, or Failed.
const (
	StatusIdle Status = iota
	StatusRunning
	StatusCancelled
	StatusCompleted
	StatusFailed
)

// String returns the lowercase state name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCancelled:
		return "cancelled"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CancelFlag is the cooperative cancellation signal shared between the run
// and whoever drives the progress surface. The runner polls it at row
// boundaries only; an in-flight lookup is never aborted.
type CancelFlag struct {
	flag atomic.Bool
}

// Cancel requests that the run stop before the next row.
func (c *CancelFlag) Cancel() {
	c.flag.Store(true)
}

// Cancelled reports whether cancellation has been requested.
func (c *CancelFlag) Cancelled() bool {
	return c.flag.Load()
}

// RunState tracks one batch run. It is owned by the Runner; observers get
// read-only snapshots.
type RunState struct {
	mu           sync.RWMutex
	status       Status
	totalRows    int
	currentIndex int
	successCount int
	errorCount   int
}

// StateSnapshot is an immutable view of RunState.
type StateSnapshot struct {
	Status       Status
	TotalRows    int
	CurrentIndex int
	SuccessCount int
	ErrorCount   int
}

func newRunState(totalRows int) *RunState {
	return &RunState{status: StatusIdle, totalRows: totalRows}
}

func (s *RunState) setStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *RunState) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successCount++
}

func (s *RunState) recordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorCount++
}

func (s *RunState) advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentIndex++
}

// Snapshot returns a copy of the current state.
func (s *RunState) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StateSnapshot{
		Status:       s.status,
		TotalRows:    s.totalRows,
		CurrentIndex: s.currentIndex,
		SuccessCount: s.successCount,
		ErrorCount:   s.errorCount,
	}
}
