package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/theramap/insights-cli/internal/geo"
	"github.com/theramap/insights-cli/internal/model"
	"github.com/theramap/insights-cli/internal/store"
)

// openStore validates config for the given command and opens the
// configured backend, migrated and ready.
func openStore(ctx context.Context, mode string) (store.Store, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// loadCenters returns stored population centers, falling back to the
// built-in metro table when none have been imported.
func loadCenters(ctx context.Context, st store.Store) ([]model.PopulationCenter, error) {
	centers, err := st.ListCenters(ctx)
	if err != nil {
		return nil, err
	}
	if len(centers) == 0 {
		zap.L().Debug("no stored centers, using built-in metro table")
		return geo.DefaultCenters(), nil
	}
	return centers, nil
}

// printJSON writes v to stdout, indented.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}
