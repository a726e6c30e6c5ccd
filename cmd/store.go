package main

import (
	"context"

	"github.com/etomlinson-dev/KYI/internal/config"
	"github.com/etomlinson-dev/KYI/internal/store"
)

// initStore opens the configured backend and applies migrations.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	st, err := store.Open(ctx, c.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
