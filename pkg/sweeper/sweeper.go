package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/centricity/ordersync/pkg/brightsites"
	"github.com/centricity/ordersync/pkg/config"
	"github.com/centricity/ordersync/pkg/store"
)

// OrdersClient is the slice of the storefront API the sweeper uses.
type OrdersClient interface {
	ListAllOrders(ctx context.Context, params brightsites.ListOrdersParams) ([]brightsites.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
}

// ClientFactory builds an API client for one configured store.
type ClientFactory func(st config.Store) OrdersClient

// StoreResult is the outcome of sweeping a single store.
type StoreResult struct {
	Subdomain string `json:"subdomain"`
	Fetched   int    `json:"fetched"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	// Err is set when the store could not be swept at all
	Err error `json:"-"`
}

// Result is the outcome of one sweep across all stores.
type Result struct {
	RunID      uint          `json:"run_id,omitempty"`
	Trigger    string        `json:"trigger"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Stores     []StoreResult `json:"stores"`
}

// Counts sums the per-store results.
func (r *Result) Counts() store.SweepCounts {
	var counts store.SweepCounts
	for _, sr := range r.Stores {
		counts.Fetched += sr.Fetched
		counts.Updated += sr.Updated
		counts.Skipped += sr.Skipped
		counts.Failed += sr.Failed
	}
	return counts
}

// Sweeper finds stale "new" orders across the configured stores and moves
// them to "in_progress".
type Sweeper struct {
	cfg         *config.Config
	clients     ClientFactory
	transitions store.TransitionsStore
	sweeps      store.SweepsStore

	// DryRun evaluates orders without issuing updates or recording anything
	DryRun bool

	// clock is injectable for tests
	clock func() time.Time
}

// Option customizes a Sweeper.
type Option func(*Sweeper)

// WithClientFactory overrides how store API clients are built.
func WithClientFactory(f ClientFactory) Option {
	return func(s *Sweeper) { s.clients = f }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Sweeper) { s.clock = clock }
}

// WithDryRun evaluates without updating or recording.
func WithDryRun(dryRun bool) Option {
	return func(s *Sweeper) { s.DryRun = dryRun }
}

// New creates a Sweeper. transitions and sweeps may be nil, in which case
// nothing is persisted (used by one-shot CLI runs without a database).
func New(cfg *config.Config, transitions store.TransitionsStore, sweeps store.SweepsStore, opts ...Option) *Sweeper {
	s := &Sweeper{
		cfg:         cfg,
		transitions: transitions,
		sweeps:      sweeps,
		clock:       time.Now,
	}
	s.clients = func(st config.Store) OrdersClient {
		return brightsites.NewClient(brightsites.Config{
			Subdomain: st.Subdomain,
			Domain:    cfg.APIDomain,
			Token:     st.APIKey(),
			Timeout:   cfg.HTTPTimeout(),
		})
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SweepAll sweeps every configured store. A store that cannot be swept is
// reported in its StoreResult; SweepAll itself only fails when run
// bookkeeping fails.
func (s *Sweeper) SweepAll(ctx context.Context, trigger string) (*Result, error) {
	now := s.clock().UTC()
	result := &Result{
		Trigger:   trigger,
		StartedAt: now,
	}

	if s.sweeps != nil && !s.DryRun {
		id, err := s.sweeps.StartSweep(trigger, now)
		if err != nil {
			return nil, err
		}
		result.RunID = id
	}

	for _, st := range s.cfg.Stores {
		log.Info().Str("store", st.Subdomain).Msg("Processing orders")

		if st.APIKey() == "" {
			log.Error().
				Str("store", st.Subdomain).
				Str("api_key_env", st.APIKeyEnv).
				Msg("Missing API key, skipping store")
			result.Stores = append(result.Stores, StoreResult{
				Subdomain: st.Subdomain,
				Err:       errors.New("missing API key"),
			})
			continue
		}

		sr := s.sweepStore(ctx, st, result.RunID, now)
		result.Stores = append(result.Stores, sr)
	}

	result.FinishedAt = s.clock().UTC()

	if s.sweeps != nil && !s.DryRun {
		if err := s.sweeps.FinishSweep(result.RunID, result.FinishedAt, result.Counts()); err != nil {
			return nil, err
		}
	}

	counts := result.Counts()
	log.Info().
		Str("trigger", trigger).
		Int("fetched", counts.Fetched).
		Int("updated", counts.Updated).
		Int("skipped", counts.Skipped).
		Int("failed", counts.Failed).
		Msg("Sweep finished")

	return result, nil
}

// SweepStore sweeps a single configured store.
func (s *Sweeper) SweepStore(ctx context.Context, st config.Store) (StoreResult, error) {
	if st.APIKey() == "" {
		return StoreResult{Subdomain: st.Subdomain}, errors.New("missing API key")
	}

	now := s.clock().UTC()
	sr := s.sweepStore(ctx, st, 0, now)
	return sr, sr.Err
}

func (s *Sweeper) sweepStore(ctx context.Context, st config.Store, runID uint, now time.Time) StoreResult {
	sr := StoreResult{Subdomain: st.Subdomain}
	client := s.clients(st)

	cutoff := now.Add(-s.cfg.Lookback())
	params := brightsites.ListOrdersParams{
		CreatedAtFrom: EpochFloor,
		CreatedAtTo:   cutoff.Format(APITimeFormat),
		PerPage:       s.cfg.PerPage,
	}

	log.Info().
		Str("store", st.Subdomain).
		Str("created_at_from", params.CreatedAtFrom).
		Str("created_at_to", params.CreatedAtTo).
		Msg("Fetching orders")

	orders, err := client.ListAllOrders(ctx, params)
	if err != nil {
		log.Error().Err(err).Str("store", st.Subdomain).Msg("Failed to fetch orders")
		sr.Err = err
		return sr
	}

	if len(orders) == 0 {
		log.Info().Str("store", st.Subdomain).Msg("No orders found")
		return sr
	}
	sr.Fetched = len(orders)

	for _, order := range orders {
		s.processOrder(ctx, client, st, order, runID, now, &sr)
	}

	return sr
}

func (s *Sweeper) processOrder(
	ctx context.Context,
	client OrdersClient,
	st config.Store,
	order brightsites.Order,
	runID uint,
	now time.Time,
	sr *StoreResult,
) {
	if order.OrderID == 0 || order.CreatedAt == "" {
		log.Warn().
			Str("store", st.Subdomain).
			Int64("order_id", order.OrderID).
			Msg("Skipping order with missing fields")
		sr.Skipped++
		return
	}

	createdAt, err := ParseOrderCreatedAt(order.CreatedAt)
	if err != nil {
		log.Error().
			Err(err).
			Str("store", st.Subdomain).
			Int64("order_id", order.OrderID).
			Str("created_at", order.CreatedAt).
			Msg("Failed to parse order timestamp")
		sr.Failed++
		return
	}

	if order.Status != brightsites.StatusNew || now.Sub(createdAt) <= s.cfg.Lookback() {
		log.Debug().
			Str("store", st.Subdomain).
			Int64("order_id", order.OrderID).
			Str("status", order.Status).
			Msg("Order does not meet update criteria")
		sr.Skipped++
		return
	}

	if s.DryRun {
		log.Info().
			Str("store", st.Subdomain).
			Int64("order_id", order.OrderID).
			Msg("Would update order (dry run)")
		sr.Updated++
		return
	}

	log.Info().
		Str("store", st.Subdomain).
		Int64("order_id", order.OrderID).
		Msg("Updating stale order")

	if err := client.UpdateOrderStatus(ctx, order.OrderID, brightsites.StatusInProgress); err != nil {
		log.Error().
			Err(err).
			Str("store", st.Subdomain).
			Int64("order_id", order.OrderID).
			Msg("Failed to update order")
		sr.Failed++
		return
	}
	sr.Updated++

	if s.transitions == nil {
		return
	}
	tr := &store.Transition{
		SweepRunID:     runID,
		Subdomain:      st.Subdomain,
		OrderID:        order.OrderID,
		FromStatus:     order.Status,
		ToStatus:       brightsites.StatusInProgress,
		OrderCreatedAt: createdAt,
	}
	if err := s.transitions.RecordTransition(tr); err != nil {
		// The remote update already happened; losing the audit row is a
		// logged defect, not a sweep failure.
		log.Error().
			Err(err).
			Str("store", st.Subdomain).
			Int64("order_id", order.OrderID).
			Msg("Failed to record transition")
	}
}
