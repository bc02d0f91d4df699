package store

import (
	"errors"
	"time"
)

// ErrTransitionNotFound is returned when no transition matches
var ErrTransitionNotFound = errors.New("transition not found")

// Transition is an order status update applied during a sweep
type Transition struct {
	ID             uint
	SweepRunID     uint
	Subdomain      string
	OrderID        int64
	FromStatus     string
	ToStatus       string
	OrderCreatedAt time.Time
	AppliedAt      time.Time
}

// TransitionsStore abstracts transition persistence
type TransitionsStore interface {
	// RecordTransition stores an applied transition.
	RecordTransition(t *Transition) error

	// LastTransition returns the most recent transition for a store's order.
	// Returns ErrTransitionNotFound if none exists.
	LastTransition(subdomain string, orderID int64) (*Transition, error)

	// ListTransitions returns up to limit transitions, most recent first.
	// An empty subdomain matches all stores.
	ListTransitions(subdomain string, limit int) ([]Transition, error)
}
