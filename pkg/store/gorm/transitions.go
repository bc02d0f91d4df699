package gorm

import (
	"gorm.io/gorm"

	"github.com/centricity/ordersync/pkg/model"
	"github.com/centricity/ordersync/pkg/store"
)

// Ensure TransitionsStore implements store.TransitionsStore
var _ store.TransitionsStore = (*TransitionsStore)(nil)

// TransitionsStore implements store.TransitionsStore using GORM
type TransitionsStore struct {
	db *gorm.DB
}

// NewTransitionsStore creates a new TransitionsStore
func NewTransitionsStore(db *gorm.DB) *TransitionsStore {
	return &TransitionsStore{db: db}
}

// RecordTransition stores an applied transition.
func (s *TransitionsStore) RecordTransition(t *store.Transition) error {
	row := model.Transition{
		SweepRunID:     t.SweepRunID,
		Subdomain:      t.Subdomain,
		OrderID:        t.OrderID,
		FromStatus:     t.FromStatus,
		ToStatus:       t.ToStatus,
		OrderCreatedAt: t.OrderCreatedAt,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return err
	}
	t.ID = row.ID
	t.AppliedAt = row.AppliedAt
	return nil
}

// LastTransition returns the most recent transition for a store's order.
func (s *TransitionsStore) LastTransition(subdomain string, orderID int64) (*store.Transition, error) {
	var row model.Transition
	tx := s.db.
		Where("subdomain = ? AND order_id = ?", subdomain, orderID).
		Order("applied_at desc, id desc").
		First(&row)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrTransitionNotFound
		}
		return nil, tx.Error
	}
	return toStoreTransition(&row), nil
}

// ListTransitions returns up to limit transitions, most recent first.
func (s *TransitionsStore) ListTransitions(subdomain string, limit int) ([]store.Transition, error) {
	query := s.db.Order("applied_at desc, id desc").Limit(limit)
	if subdomain != "" {
		query = query.Where("subdomain = ?", subdomain)
	}

	var rows []model.Transition
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]store.Transition, len(rows))
	for i := range rows {
		result[i] = *toStoreTransition(&rows[i])
	}
	return result, nil
}

func toStoreTransition(row *model.Transition) *store.Transition {
	return &store.Transition{
		ID:             row.ID,
		SweepRunID:     row.SweepRunID,
		Subdomain:      row.Subdomain,
		OrderID:        row.OrderID,
		FromStatus:     row.FromStatus,
		ToStatus:       row.ToStatus,
		OrderCreatedAt: row.OrderCreatedAt,
		AppliedAt:      row.AppliedAt,
	}
}
