// Package store persists the history of completed runs.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/incident-cli/internal/model"
)

// DefaultListLimit is used by ListRuns when limit is not positive.
const DefaultListLimit = 20

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = eris.New("store: run not found")

// RunStore records completed runs.
type RunStore interface {
	// RecordRun inserts r, assigning a new ID when r.ID is empty.
	RecordRun(ctx context.Context, r *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	// ListRuns returns the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// Open connects to the configured run store and applies its migration.
func Open(ctx context.Context, driver, databaseURL string) (RunStore, error) {
	var (
		s   RunStore
		err error
	)
	switch driver {
	case DriverSQLite:
		if databaseURL == "" {
			databaseURL = "incident-cli.db"
		}
		s, err = NewSQLite(databaseURL)
	case DriverPostgres:
		s, err = NewPostgres(ctx, databaseURL, nil)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
