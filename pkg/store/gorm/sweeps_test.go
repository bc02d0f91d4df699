package gorm

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/centricity/ordersync/pkg/store"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	return gormDB, mock
}

func TestSweepsStore_StartSweep(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewSweepsStore(db)

	started := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "sweep_runs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	id, err := s.StartSweep("manual", started)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepsStore_FinishSweep(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewSweepsStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "sweep_runs" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.FinishSweep(7, time.Now(), store.SweepCounts{Fetched: 12, Updated: 3, Skipped: 8, Failed: 1})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepsStore_LatestSweep(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewSweepsStore(db)

	started := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(42 * time.Second)

	rows := sqlmock.NewRows([]string{"id", "trigger", "started_at", "finished_at", "fetched", "updated", "skipped", "failed"}).
		AddRow(7, "schedule", started, finished, 12, 3, 8, 1)
	mock.ExpectQuery(`SELECT \* FROM "sweep_runs" ORDER BY started_at desc`).
		WillReturnRows(rows)

	run, err := s.LatestSweep()
	require.NoError(t, err)

	assert.Equal(t, uint(7), run.ID)
	assert.Equal(t, "schedule", run.Trigger)
	assert.Equal(t, 3, run.Updated)
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, finished, *run.FinishedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepsStore_LatestSweep_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewSweepsStore(db)

	mock.ExpectQuery(`SELECT \* FROM "sweep_runs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.LatestSweep()
	assert.ErrorIs(t, err, store.ErrSweepNotFound)
}

func TestSweepsStore_ListSweeps(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewSweepsStore(db)

	started := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "trigger", "started_at", "finished_at", "fetched", "updated", "skipped", "failed"}).
		AddRow(8, "manual", started.Add(time.Hour), nil, 0, 0, 0, 0).
		AddRow(7, "schedule", started, started.Add(time.Minute), 12, 3, 8, 1)
	mock.ExpectQuery(`SELECT \* FROM "sweep_runs" ORDER BY started_at desc`).
		WillReturnRows(rows)

	runs, err := s.ListSweeps(10)
	require.NoError(t, err)

	require.Len(t, runs, 2)
	assert.Equal(t, uint(8), runs[0].ID)
	assert.Nil(t, runs[0].FinishedAt)
	assert.Equal(t, uint(7), runs[1].ID)
}
