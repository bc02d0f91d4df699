package store

import (
	"errors"
	"time"
)

// ErrSweepNotFound is returned when a sweep run doesn't exist
var ErrSweepNotFound = errors.New("sweep run not found")

// SweepRun is a sweep pass with its aggregate counts
type SweepRun struct {
	ID         uint
	Trigger    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Fetched    int
	Updated    int
	Skipped    int
	Failed     int
}

// SweepCounts are the aggregate counts recorded when a run finishes
type SweepCounts struct {
	Fetched int
	Updated int
	Skipped int
	Failed  int
}

// SweepsStore abstracts sweep run persistence
type SweepsStore interface {
	// StartSweep creates a run with the given trigger and returns its ID.
	StartSweep(trigger string, startedAt time.Time) (uint, error)

	// FinishSweep marks a run finished and records its counts.
	FinishSweep(id uint, finishedAt time.Time, counts SweepCounts) error

	// LatestSweep returns the most recently started run.
	// Returns ErrSweepNotFound if no run exists.
	LatestSweep() (*SweepRun, error)

	// ListSweeps returns up to limit runs, most recent first.
	ListSweeps(limit int) ([]SweepRun, error)
}
