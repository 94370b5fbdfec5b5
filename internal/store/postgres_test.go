package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

var pgRunColumns = []string{"id", "source", "target", "format", "dry_run", "row_count", "found", "not_found", "unknown_state", "failures", "started_at", "finished_at"}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS runs`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r := sampleRun(start)

	mock.ExpectExec(`INSERT INTO runs \(id, source, target`).
		WithArgs(pgxmock.AnyArg(), "gva.csv", "incidents.csv", "csv", false, 5, 3, 0, 1,
			[]byte(`{"rate_limited":1}`), start, start.Add(6*time.Second)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.RecordRun(context.Background(), r))
	assert.NotEmpty(t, r.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordRun_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	r := sampleRun(time.Now())
	r.ID = "run-1"

	mock.ExpectExec(`INSERT INTO runs`).
		WillReturnError(errors.New("connection refused"))

	err := s.RecordRun(context.Background(), r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: insert run run-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, source, target, .* FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(mock.NewRows(pgRunColumns).
			AddRow("run-1", "gva.csv", "out.xlsx", "xlsx", true, 10, 7, 2, 0, []byte(`{"timeout":1}`), start, start.Add(time.Minute)))

	got, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "out.xlsx", got.Target)
	assert.True(t, got.DryRun)
	assert.Equal(t, 10, got.Rows)
	assert.Equal(t, map[string]int{"timeout": 1}, got.Failures)
	assert.Equal(t, time.Minute, got.Duration())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, source, target, .* FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.Contains(t, err.Error(), "get run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM runs ORDER BY started_at DESC, id LIMIT \$1`).
		WithArgs(DefaultListLimit).
		WillReturnRows(mock.NewRows(pgRunColumns).
			AddRow("run-2", "gva.csv", "b.csv", "csv", false, 2, 2, 0, 0, []byte(`{}`), start.Add(time.Hour), start.Add(time.Hour)).
			AddRow("run-1", "gva.csv", "a.csv", "csv", false, 1, 0, 1, 0, []byte(`{}`), start, start))

	runs, err := s.ListRuns(context.Background(), -1)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Nil(t, runs[0].Failures)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_QueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM runs`).
		WithArgs(5).
		WillReturnError(errors.New("boom"))

	_, err := s.ListRuns(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: list runs")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Close(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectClose()

	require.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
