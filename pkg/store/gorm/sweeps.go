package gorm

import (
	"time"

	"gorm.io/gorm"

	"github.com/centricity/ordersync/pkg/model"
	"github.com/centricity/ordersync/pkg/store"
)

// Ensure SweepsStore implements store.SweepsStore
var _ store.SweepsStore = (*SweepsStore)(nil)

// SweepsStore implements store.SweepsStore using GORM
type SweepsStore struct {
	db *gorm.DB
}

// NewSweepsStore creates a new SweepsStore
func NewSweepsStore(db *gorm.DB) *SweepsStore {
	return &SweepsStore{db: db}
}

// StartSweep creates a run with the given trigger and returns its ID.
func (s *SweepsStore) StartSweep(trigger string, startedAt time.Time) (uint, error) {
	run := model.SweepRun{
		Trigger:   trigger,
		StartedAt: startedAt,
	}
	if err := s.db.Create(&run).Error; err != nil {
		return 0, err
	}
	return run.ID, nil
}

// FinishSweep marks a run finished and records its counts.
func (s *SweepsStore) FinishSweep(id uint, finishedAt time.Time, counts store.SweepCounts) error {
	return s.db.Model(&model.SweepRun{}).Where("id = ?", id).Updates(map[string]interface{}{
		"finished_at": finishedAt,
		"fetched":     counts.Fetched,
		"updated":     counts.Updated,
		"skipped":     counts.Skipped,
		"failed":      counts.Failed,
	}).Error
}

// LatestSweep returns the most recently started run.
func (s *SweepsStore) LatestSweep() (*store.SweepRun, error) {
	var run model.SweepRun
	tx := s.db.Order("started_at desc, id desc").First(&run)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrSweepNotFound
		}
		return nil, tx.Error
	}
	return toStoreSweepRun(&run), nil
}

// ListSweeps returns up to limit runs, most recent first.
func (s *SweepsStore) ListSweeps(limit int) ([]store.SweepRun, error) {
	var runs []model.SweepRun
	tx := s.db.Order("started_at desc, id desc").Limit(limit).Find(&runs)
	if tx.Error != nil {
		return nil, tx.Error
	}

	result := make([]store.SweepRun, len(runs))
	for i := range runs {
		result[i] = *toStoreSweepRun(&runs[i])
	}
	return result, nil
}

func toStoreSweepRun(run *model.SweepRun) *store.SweepRun {
	return &store.SweepRun{
		ID:         run.ID,
		Trigger:    run.Trigger,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Fetched:    run.Fetched,
		Updated:    run.Updated,
		Skipped:    run.Skipped,
		Failed:     run.Failed,
	}
}
