package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/theramap/insights-cli/internal/config"
	"github.com/theramap/insights-cli/internal/model"
)

// ClinicFilter specifies criteria for listing clinics.
type ClinicFilter struct {
	State        string `json:"state,omitempty"`
	VerifiedOnly bool   `json:"verified_only,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the clinic directory.
type Store interface {
	// Clinics
	UpsertClinics(ctx context.Context, clinics []model.ClinicRecord) (int, error)
	ListClinics(ctx context.Context, filter ClinicFilter) ([]model.ClinicRecord, error)
	GetClinic(ctx context.Context, id string) (*model.ClinicRecord, error)
	DeleteClinic(ctx context.Context, id string) error

	// ApplyEnhancement patches only the fields the enhancement carries.
	ApplyEnhancement(ctx context.Context, e model.FieldEnhancement) error

	// Population centers
	UpsertCenters(ctx context.Context, centers []model.PopulationCenter) (int, error)
	ListCenters(ctx context.Context) ([]model.PopulationCenter, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
