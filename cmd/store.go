package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fairwatch/internal/config"
	"github.com/sells-group/fairwatch/internal/store"
)

// openStore creates the store for the configured driver and runs
// migrations.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	var st store.Store
	var err error

	switch cfg.Driver {
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.DatabaseURL)
	case "memory":
		st = store.NewMemory()
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "open %s store", cfg.Driver)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
