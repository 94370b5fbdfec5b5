package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/incident-cli/internal/model"
)

// SQLiteStore implements RunStore using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	target        TEXT NOT NULL,
	format        TEXT NOT NULL,
	dry_run       BOOLEAN NOT NULL DEFAULT 0,
	row_count     INTEGER NOT NULL DEFAULT 0,
	found         INTEGER NOT NULL DEFAULT 0,
	not_found     INTEGER NOT NULL DEFAULT 0,
	unknown_state INTEGER NOT NULL DEFAULT 0,
	failures      TEXT NOT NULL DEFAULT '{}',
	started_at    DATETIME NOT NULL,
	finished_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

const runColumns = `id, source, target, format, dry_run, row_count, found, not_found, unknown_state, failures, started_at, finished_at`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordRun(ctx context.Context, r *model.Run) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}

	failuresJSON, err := marshalFailures(r.Failures)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal failures")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Source, r.Target, r.Format, r.DryRun, r.Rows, r.Found, r.NotFound, r.UnknownState,
		string(failuresJSON), r.StartedAt.UTC(), r.FinishedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert run %s", r.ID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrRunNotFound, "sqlite: get run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", id)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`,
		listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: list runs scan")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var failuresJSON string
	var startedAt, finishedAt time.Time

	err := row.Scan(&r.ID, &r.Source, &r.Target, &r.Format, &r.DryRun, &r.Rows,
		&r.Found, &r.NotFound, &r.UnknownState, &failuresJSON, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalFailures([]byte(failuresJSON), &r); err != nil {
		return nil, err
	}
	r.StartedAt = startedAt.UTC()
	r.FinishedAt = finishedAt.UTC()
	return &r, nil
}

func marshalFailures(failures map[string]int) ([]byte, error) {
	if failures == nil {
		failures = map[string]int{}
	}
	return json.Marshal(failures)
}

func unmarshalFailures(data []byte, r *model.Run) error {
	if len(data) == 0 {
		return nil
	}
	var failures map[string]int
	if err := json.Unmarshal(data, &failures); err != nil {
		return eris.Wrap(err, "unmarshal failures")
	}
	if len(failures) > 0 {
		r.Failures = failures
	}
	return nil
}
