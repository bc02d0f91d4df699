package sweeper

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centricity/ordersync/pkg/brightsites"
	"github.com/centricity/ordersync/pkg/config"
	"github.com/centricity/ordersync/pkg/store"
)

// fakeClient scripts one store's API.
type fakeClient struct {
	orders    []brightsites.Order
	listErr   error
	updateErr error

	listParams []brightsites.ListOrdersParams
	updated    []int64
}

func (f *fakeClient) ListAllOrders(_ context.Context, params brightsites.ListOrdersParams) ([]brightsites.Order, error) {
	f.listParams = append(f.listParams, params)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.orders, nil
}

func (f *fakeClient) UpdateOrderStatus(_ context.Context, orderID int64, status string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, orderID)
	return nil
}

// memStores is an in-memory SweepsStore + TransitionsStore.
type memStores struct {
	nextRunID   uint
	runs        map[uint]*store.SweepRun
	transitions []store.Transition
}

func newMemStores() *memStores {
	return &memStores{nextRunID: 1, runs: map[uint]*store.SweepRun{}}
}

func (m *memStores) StartSweep(trigger string, startedAt time.Time) (uint, error) {
	id := m.nextRunID
	m.nextRunID++
	m.runs[id] = &store.SweepRun{ID: id, Trigger: trigger, StartedAt: startedAt}
	return id, nil
}

func (m *memStores) FinishSweep(id uint, finishedAt time.Time, counts store.SweepCounts) error {
	run, ok := m.runs[id]
	if !ok {
		return store.ErrSweepNotFound
	}
	run.FinishedAt = &finishedAt
	run.Fetched = counts.Fetched
	run.Updated = counts.Updated
	run.Skipped = counts.Skipped
	run.Failed = counts.Failed
	return nil
}

func (m *memStores) LatestSweep() (*store.SweepRun, error) { return nil, store.ErrSweepNotFound }
func (m *memStores) ListSweeps(int) ([]store.SweepRun, error) {
	return nil, nil
}

func (m *memStores) RecordTransition(t *store.Transition) error {
	t.ID = uint(len(m.transitions) + 1)
	t.AppliedAt = time.Now()
	m.transitions = append(m.transitions, *t)
	return nil
}

func (m *memStores) LastTransition(string, int64) (*store.Transition, error) {
	return nil, store.ErrTransitionNotFound
}

func (m *memStores) ListTransitions(string, int) ([]store.Transition, error) {
	return m.transitions, nil
}

var testNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func testConfig(t *testing.T, subdomains ...string) *config.Config {
	t.Helper()
	t.Setenv("ORDERSYNC_CONFIG_PATH", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	for _, sub := range subdomains {
		envName := "TEST_" + strings.ToUpper(strings.ReplaceAll(sub, "-", "_")) + "_KEY"
		cfg.Stores = append(cfg.Stores, config.Store{Subdomain: sub, APIKeyEnv: envName})
		t.Setenv(envName, "token-"+sub)
	}
	return cfg
}

func newTestSweeper(t *testing.T, cfg *config.Config, clients map[string]*fakeClient, m *memStores, opts ...Option) *Sweeper {
	t.Helper()

	factory := func(st config.Store) OrdersClient {
		return clients[st.Subdomain]
	}

	var transitions store.TransitionsStore
	var sweeps store.SweepsStore
	if m != nil {
		transitions = m
		sweeps = m
	}

	all := append([]Option{WithClientFactory(factory), WithClock(func() time.Time { return testNow })}, opts...)
	return New(cfg, transitions, sweeps, all...)
}

func TestSweepAll_UpdatesStaleNewOrders(t *testing.T) {
	cfg := testConfig(t, "bonappetit")
	client := &fakeClient{orders: []brightsites.Order{
		{OrderID: 1, Status: "new", CreatedAt: testNow.Add(-3 * time.Hour).Format(time.RFC3339)},
		{OrderID: 2, Status: "new", CreatedAt: testNow.Add(-time.Hour).Format(time.RFC3339)},
		{OrderID: 3, Status: "shipped", CreatedAt: testNow.Add(-5 * time.Hour).Format(time.RFC3339)},
	}}
	m := newMemStores()

	s := newTestSweeper(t, cfg, map[string]*fakeClient{"bonappetit": client}, m)

	result, err := s.SweepAll(context.Background(), "cli")
	require.NoError(t, err)

	// Only order 1 is both "new" and older than the 2h lookback. Order 2 is
	// too recent; order 3 has the wrong status.
	assert.Equal(t, []int64{1}, client.updated)

	counts := result.Counts()
	assert.Equal(t, 3, counts.Fetched)
	assert.Equal(t, 1, counts.Updated)
	assert.Equal(t, 2, counts.Skipped)
	assert.Equal(t, 0, counts.Failed)

	require.Len(t, m.transitions, 1)
	tr := m.transitions[0]
	assert.Equal(t, "bonappetit", tr.Subdomain)
	assert.Equal(t, int64(1), tr.OrderID)
	assert.Equal(t, "new", tr.FromStatus)
	assert.Equal(t, "in_progress", tr.ToStatus)
	assert.Equal(t, result.RunID, tr.SweepRunID)

	run := m.runs[result.RunID]
	require.NotNil(t, run)
	assert.Equal(t, "cli", run.Trigger)
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, 1, run.Updated)
}

func TestSweepAll_Window(t *testing.T) {
	cfg := testConfig(t, "bonappetit")
	client := &fakeClient{}
	s := newTestSweeper(t, cfg, map[string]*fakeClient{"bonappetit": client}, nil)

	_, err := s.SweepAll(context.Background(), "cli")
	require.NoError(t, err)

	require.Len(t, client.listParams, 1)
	params := client.listParams[0]
	assert.Equal(t, EpochFloor, params.CreatedAtFrom)
	assert.Equal(t, "2026-01-01T10:00:00", params.CreatedAtTo)
	assert.Equal(t, cfg.PerPage, params.PerPage)
}

func TestSweepAll_ExactlyAtLookbackIsSkipped(t *testing.T) {
	cfg := testConfig(t, "bonappetit")
	client := &fakeClient{orders: []brightsites.Order{
		{OrderID: 1, Status: "new", CreatedAt: testNow.Add(-2 * time.Hour).Format(time.RFC3339)},
	}}
	s := newTestSweeper(t, cfg, map[string]*fakeClient{"bonappetit": client}, nil)

	result, err := s.SweepAll(context.Background(), "cli")
	require.NoError(t, err)

	// Strictly older than the lookback is required
	assert.Empty(t, client.updated)
	assert.Equal(t, 1, result.Counts().Skipped)
}

func TestSweepAll_MissingAPIKey(t *testing.T) {
	cfg := testConfig(t, "bonappetit")
	cfg.Stores = append(cfg.Stores, config.Store{Subdomain: "nokey", APIKeyEnv: "UNSET_KEY_ENV"})

	client := &fakeClient{}
	s := newTestSweeper(t, cfg, map[string]*fakeClient{"bonappetit": client}, nil)

	result, err := s.SweepAll(context.Background(), "cli")
	require.NoError(t, err)

	require.Len(t, result.Stores, 2)
	assert.NoError(t, func() error { return result.Stores[0].Err }())
	assert.Error(t, result.Stores[1].Err)
}

func TestSweepAll_FetchFailureDoesNotAbortOtherStores(t *testing.T) {
	cfg := testConfig(t, "broken", "bonappetit")
	clients := map[string]*fakeClient{
		"broken": {listErr: errors.New("connection refused")},
		"bonappetit": {orders: []brightsites.Order{
			{OrderID: 9, Status: "new", CreatedAt: testNow.Add(-4 * time.Hour).Format(time.RFC3339)},
		}},
	}
	s := newTestSweeper(t, cfg, clients, nil)

	result, err := s.SweepAll(context.Background(), "cli")
	require.NoError(t, err)

	require.Len(t, result.Stores, 2)
	assert.Error(t, result.Stores[0].Err)
	assert.Equal(t, []int64{9}, clients["bonappetit"].updated)
}

func TestSweepAll_UpdateFailureCountsAndContinues(t *testing.T) {
	cfg := testConfig(t, "bonappetit")
	client := &fakeClient{
		orders: []brightsites.Order{
			{OrderID: 1, Status: "new", CreatedAt: testNow.Add(-3 * time.Hour).Format(time.RFC3339)},
			{OrderID: 2, Status: "new", CreatedAt: testNow.Add(-3 * time.Hour).Format(time.RFC3339)},
		},
		updateErr: errors.New("422"),
	}
	m := newMemStores()
	s := newTestSweeper(t, cfg, map[string]*fakeClient{"bonappetit": client}, m)

	result, err := s.SweepAll(context.Background(), "cli")
	require.NoError(t, err)

	counts := result.Counts()
	assert.Equal(t, 2, counts.Failed)
	assert.Equal(t, 0, counts.Updated)
	assert.Empty(t, m.transitions)
}

func TestSweepAll_InvalidOrders(t *testing.T) {
	cfg := testConfig(t, "bonappetit")
	client := &fakeClient{orders: []brightsites.Order{
		{OrderID: 0, Status: "new", CreatedAt: testNow.Add(-3 * time.Hour).Format(time.RFC3339)},
		{OrderID: 5, Status: "new", CreatedAt: ""},
		{OrderID: 6, Status: "new", CreatedAt: "garbage"},
	}}
	s := newTestSweeper(t, cfg, map[string]*fakeClient{"bonappetit": client}, nil)

	result, err := s.SweepAll(context.Background(), "cli")
	require.NoError(t, err)

	counts := result.Counts()
	// Missing fields are skipped with a warning; a bad timestamp is a failure
	assert.Equal(t, 2, counts.Skipped)
	assert.Equal(t, 1, counts.Failed)
	assert.Empty(t, client.updated)
}

func TestSweepAll_DryRun(t *testing.T) {
	cfg := testConfig(t, "bonappetit")
	client := &fakeClient{orders: []brightsites.Order{
		{OrderID: 1, Status: "new", CreatedAt: testNow.Add(-3 * time.Hour).Format(time.RFC3339)},
	}}
	m := newMemStores()
	s := newTestSweeper(t, cfg, map[string]*fakeClient{"bonappetit": client}, m, WithDryRun(true))

	result, err := s.SweepAll(context.Background(), "cli")
	require.NoError(t, err)

	// Counted as would-update, but nothing touched the API or the DB
	assert.Equal(t, 1, result.Counts().Updated)
	assert.Empty(t, client.updated)
	assert.Empty(t, m.transitions)
	assert.Empty(t, m.runs)
}

func TestSweepStore_RequiresAPIKey(t *testing.T) {
	cfg := testConfig(t, "bonappetit")
	s := newTestSweeper(t, cfg, map[string]*fakeClient{"bonappetit": {}}, nil)

	_, err := s.SweepStore(context.Background(), config.Store{Subdomain: "nokey", APIKeyEnv: "UNSET_KEY_ENV"})
	assert.Error(t, err)
}
