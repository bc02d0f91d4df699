package gorm

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centricity/ordersync/pkg/store"
)

func TestTransitionsStore_RecordTransition(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewTransitionsStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "transitions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	tr := &store.Transition{
		SweepRunID:     7,
		Subdomain:      "bonappetit",
		OrderID:        101,
		FromStatus:     "new",
		ToStatus:       "in_progress",
		OrderCreatedAt: time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC),
	}
	err := s.RecordTransition(tr)
	require.NoError(t, err)
	assert.Equal(t, uint(42), tr.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionsStore_LastTransition(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewTransitionsStore(db)

	created := time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC)
	applied := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "sweep_run_id", "subdomain", "order_id", "from_status", "to_status", "order_created_at", "applied_at"}).
		AddRow(42, 7, "bonappetit", 101, "new", "in_progress", created, applied)
	mock.ExpectQuery(`SELECT \* FROM "transitions" WHERE subdomain = \$1 AND order_id = \$2`).
		WithArgs("bonappetit", int64(101)).
		WillReturnRows(rows)

	tr, err := s.LastTransition("bonappetit", 101)
	require.NoError(t, err)

	assert.Equal(t, "in_progress", tr.ToStatus)
	assert.Equal(t, created, tr.OrderCreatedAt)
	assert.Equal(t, applied, tr.AppliedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionsStore_LastTransition_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewTransitionsStore(db)

	mock.ExpectQuery(`SELECT \* FROM "transitions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.LastTransition("bonappetit", 999)
	assert.ErrorIs(t, err, store.ErrTransitionNotFound)
}

func TestTransitionsStore_ListTransitions_AllStores(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewTransitionsStore(db)

	applied := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "sweep_run_id", "subdomain", "order_id", "from_status", "to_status", "order_created_at", "applied_at"}).
		AddRow(43, 7, "amentuminventory", 88, "new", "in_progress", applied.Add(-3*time.Hour), applied).
		AddRow(42, 7, "bonappetit", 101, "new", "in_progress", applied.Add(-4*time.Hour), applied)
	mock.ExpectQuery(`SELECT \* FROM "transitions" ORDER BY applied_at desc`).
		WillReturnRows(rows)

	trs, err := s.ListTransitions("", 50)
	require.NoError(t, err)

	require.Len(t, trs, 2)
	assert.Equal(t, "amentuminventory", trs[0].Subdomain)
	assert.Equal(t, int64(101), trs[1].OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionsStore_ListTransitions_BySubdomain(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewTransitionsStore(db)

	mock.ExpectQuery(`SELECT \* FROM "transitions" WHERE subdomain = \$1`).
		WithArgs("bonappetit").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	trs, err := s.ListTransitions("bonappetit", 50)
	require.NoError(t, err)
	assert.Empty(t, trs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
