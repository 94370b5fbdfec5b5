package main

import (
	"context"

	"github.com/sells-group/incident-cli/internal/store"
)

// initStore opens the configured run store. It returns nil, nil when run
// history is disabled.
func initStore(ctx context.Context) (store.RunStore, error) {
	if cfg.Store.Driver == store.DriverNone {
		return nil, nil
	}
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
}
