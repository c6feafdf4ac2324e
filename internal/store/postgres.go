package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/theramap/insights-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. Tests substitute a
// pgxmock pool through the same interface.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS clinics (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	city        TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL DEFAULT '',
	latitude    DOUBLE PRECISION,
	longitude   DOUBLE PRECISION,
	phone       TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	website     TEXT NOT NULL DEFAULT '',
	services    JSONB NOT NULL DEFAULT '[]',
	cost_level  TEXT NOT NULL DEFAULT 'market-rate',
	teletherapy BOOLEAN NOT NULL DEFAULT false,
	verified    BOOLEAN NOT NULL DEFAULT false,
	notes       TEXT NOT NULL DEFAULT '',
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS population_centers (
	city       TEXT NOT NULL,
	state      TEXT NOT NULL,
	latitude   DOUBLE PRECISION NOT NULL,
	longitude  DOUBLE PRECISION NOT NULL,
	population BIGINT NOT NULL,
	PRIMARY KEY (city, state)
);

CREATE INDEX IF NOT EXISTS idx_clinics_state ON clinics(state);
CREATE INDEX IF NOT EXISTS idx_clinics_verified ON clinics(verified);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertClinics(ctx context.Context, clinics []model.ClinicRecord) (int, error) {
	now := time.Now().UTC()
	count := 0
	for i := range clinics {
		c := &clinics[i]
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		servicesJSON, err := json.Marshal(c.Services)
		if err != nil {
			return count, eris.Wrapf(err, "postgres: marshal services for %s", c.ID)
		}

		_, err = s.pool.Exec(ctx,
			`INSERT INTO clinics
			 (id, name, city, state, latitude, longitude, phone, email, website, services, cost_level, teletherapy, verified, notes, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			 ON CONFLICT (id) DO UPDATE SET
			   name = $2, city = $3, state = $4, latitude = $5, longitude = $6,
			   phone = $7, email = $8, website = $9, services = $10, cost_level = $11,
			   teletherapy = $12, verified = $13, notes = $14, updated_at = $15`,
			c.ID, c.Name, c.City, c.State, c.Latitude, c.Longitude,
			c.Phone, c.Email, c.Website, servicesJSON, string(c.Cost),
			c.Teletherapy, c.Verified, c.Notes, now,
		)
		if err != nil {
			return count, eris.Wrapf(err, "postgres: upsert clinic %s", c.ID)
		}
		count++
	}
	return count, nil
}

func (s *PostgresStore) ListClinics(ctx context.Context, filter ClinicFilter) ([]model.ClinicRecord, error) {
	query := `SELECT id, name, city, state, latitude, longitude, phone, email, website, services, cost_level, teletherapy, verified, notes
	          FROM clinics WHERE true`
	args := []any{}
	argIdx := 1

	if filter.State != "" {
		query += fmt.Sprintf(` AND upper(state) = upper($%d)`, argIdx)
		args = append(args, filter.State)
		argIdx++
	}
	if filter.VerifiedOnly {
		query += ` AND verified`
	}
	query += ` ORDER BY state, city, name`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argIdx)
		args = append(args, filter.Limit)
		argIdx++
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET $%d`, argIdx)
			args = append(args, filter.Offset)
			argIdx++
		}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list clinics")
	}
	defer rows.Close()

	var clinics []model.ClinicRecord
	for rows.Next() {
		c, err := scanClinicPg(rows)
		if err != nil {
			return nil, err
		}
		clinics = append(clinics, *c)
	}
	return clinics, eris.Wrap(rows.Err(), "postgres: list clinics iterate")
}

func (s *PostgresStore) GetClinic(ctx context.Context, id string) (*model.ClinicRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, city, state, latitude, longitude, phone, email, website, services, cost_level, teletherapy, verified, notes
		 FROM clinics WHERE id = $1`,
		id,
	)
	c, err := scanClinicPg(row)
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *PostgresStore) DeleteClinic(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clinics WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete clinic %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("clinic not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) ApplyEnhancement(ctx context.Context, e model.FieldEnhancement) error {
	query := `UPDATE clinics SET updated_at = $1`
	args := []any{time.Now().UTC()}
	argIdx := 2

	if e.Name != "" {
		query += fmt.Sprintf(`, name = $%d`, argIdx)
		args = append(args, e.Name)
		argIdx++
	}
	if e.Phone != "" {
		query += fmt.Sprintf(`, phone = $%d`, argIdx)
		args = append(args, e.Phone)
		argIdx++
	}
	if e.Email != "" {
		query += fmt.Sprintf(`, email = $%d`, argIdx)
		args = append(args, e.Email)
		argIdx++
	}
	if e.Website != "" {
		query += fmt.Sprintf(`, website = $%d`, argIdx)
		args = append(args, e.Website)
		argIdx++
	}
	if len(e.Services) > 0 {
		servicesJSON, err := json.Marshal(e.Services)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal services for %s", e.ClinicID)
		}
		query += fmt.Sprintf(`, services = $%d`, argIdx)
		args = append(args, servicesJSON)
		argIdx++
	}

	query += fmt.Sprintf(` WHERE id = $%d`, argIdx)
	args = append(args, e.ClinicID)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: apply enhancement %s", e.ClinicID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("clinic not found: %s", e.ClinicID)
	}
	return nil
}

func (s *PostgresStore) UpsertCenters(ctx context.Context, centers []model.PopulationCenter) (int, error) {
	count := 0
	for _, pc := range centers {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO population_centers (city, state, latitude, longitude, population)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (city, state) DO UPDATE SET
			   latitude = $3, longitude = $4, population = $5`,
			pc.City, pc.State, pc.Latitude, pc.Longitude, pc.Population,
		)
		if err != nil {
			return count, eris.Wrapf(err, "postgres: upsert center %s, %s", pc.City, pc.State)
		}
		count++
	}
	return count, nil
}

func (s *PostgresStore) ListCenters(ctx context.Context) ([]model.PopulationCenter, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT city, state, latitude, longitude, population FROM population_centers ORDER BY population DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list centers")
	}
	defer rows.Close()

	var centers []model.PopulationCenter
	for rows.Next() {
		var pc model.PopulationCenter
		if err := rows.Scan(&pc.City, &pc.State, &pc.Latitude, &pc.Longitude, &pc.Population); err != nil {
			return nil, eris.Wrap(err, "postgres: scan center")
		}
		centers = append(centers, pc)
	}
	return centers, eris.Wrap(rows.Err(), "postgres: list centers iterate")
}

func scanClinicPg(row pgx.Row) (*model.ClinicRecord, error) {
	var c model.ClinicRecord
	var servicesJSON []byte
	var cost string

	err := row.Scan(&c.ID, &c.Name, &c.City, &c.State, &c.Latitude, &c.Longitude,
		&c.Phone, &c.Email, &c.Website, &servicesJSON, &cost,
		&c.Teletherapy, &c.Verified, &c.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan clinic")
	}

	c.Cost = model.CostLevel(cost)
	if err := json.Unmarshal(servicesJSON, &c.Services); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal services")
	}
	return &c, nil
}
