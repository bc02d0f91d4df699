package model

import "time"

// Transition records one order status update applied during a sweep.
type Transition struct {
	ID         uint   `gorm:"column:id;primaryKey"`
	SweepRunID uint   `gorm:"column:sweep_run_id;index"`
	Subdomain  string `gorm:"column:subdomain;index:idx_transitions_store_order"`
	OrderID    int64  `gorm:"column:order_id;index:idx_transitions_store_order"`
	FromStatus string `gorm:"column:from_status"`
	ToStatus   string `gorm:"column:to_status"`

	// OrderCreatedAt is the order's creation time as reported by the store,
	// normalized to UTC
	OrderCreatedAt time.Time `gorm:"column:order_created_at"`
	AppliedAt      time.Time `gorm:"column:applied_at;autoCreateTime"`
}

func (Transition) TableName() string {
	return "transitions"
}
