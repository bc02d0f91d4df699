package model

import "time"

// Sweep triggers.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerCLI      = "cli"
)

// SweepRun records one pass over the configured stores.
type SweepRun struct {
	ID         uint       `gorm:"column:id;primaryKey"`
	Trigger    string     `gorm:"column:trigger"`
	StartedAt  time.Time  `gorm:"column:started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at"`

	// Aggregate counts across all stores in the run
	Fetched int `gorm:"column:fetched"`
	Updated int `gorm:"column:updated"`
	Skipped int `gorm:"column:skipped"`
	Failed  int `gorm:"column:failed"`
}

func (SweepRun) TableName() string {
	return "sweep_runs"
}

// Finished reports whether the run has completed.
func (r *SweepRun) Finished() bool {
	return r.FinishedAt != nil
}
