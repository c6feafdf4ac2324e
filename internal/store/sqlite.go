package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/theramap/insights-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS clinics (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	city        TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL DEFAULT '',
	latitude    REAL,
	longitude   REAL,
	phone       TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	website     TEXT NOT NULL DEFAULT '',
	services    TEXT NOT NULL DEFAULT '[]',
	cost_level  TEXT NOT NULL DEFAULT 'market-rate',
	teletherapy INTEGER NOT NULL DEFAULT 0,
	verified    INTEGER NOT NULL DEFAULT 0,
	notes       TEXT NOT NULL DEFAULT '',
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS population_centers (
	city       TEXT NOT NULL,
	state      TEXT NOT NULL,
	latitude   REAL NOT NULL,
	longitude  REAL NOT NULL,
	population INTEGER NOT NULL,
	PRIMARY KEY (city, state)
);

CREATE INDEX IF NOT EXISTS idx_clinics_state ON clinics(state);
CREATE INDEX IF NOT EXISTS idx_clinics_verified ON clinics(verified);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertClinics(ctx context.Context, clinics []model.ClinicRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	count := 0
	for i := range clinics {
		c := &clinics[i]
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		servicesJSON, err := json.Marshal(c.Services)
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: marshal services for %s", c.ID)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO clinics
			 (id, name, city, state, latitude, longitude, phone, email, website, services, cost_level, teletherapy, verified, notes, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
			   name = excluded.name, city = excluded.city, state = excluded.state,
			   latitude = excluded.latitude, longitude = excluded.longitude,
			   phone = excluded.phone, email = excluded.email, website = excluded.website,
			   services = excluded.services, cost_level = excluded.cost_level,
			   teletherapy = excluded.teletherapy, verified = excluded.verified,
			   notes = excluded.notes, updated_at = excluded.updated_at`,
			c.ID, c.Name, c.City, c.State, c.Latitude, c.Longitude,
			c.Phone, c.Email, c.Website, string(servicesJSON), string(c.Cost),
			c.Teletherapy, c.Verified, c.Notes, now,
		)
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: upsert clinic %s", c.ID)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return count, eris.Wrap(err, "sqlite: commit upsert")
	}
	return count, nil
}

func (s *SQLiteStore) ListClinics(ctx context.Context, filter ClinicFilter) ([]model.ClinicRecord, error) {
	query := `SELECT id, name, city, state, latitude, longitude, phone, email, website, services, cost_level, teletherapy, verified, notes
	          FROM clinics WHERE 1=1`
	var args []any

	if filter.State != "" {
		query += ` AND state = ? COLLATE NOCASE`
		args = append(args, filter.State)
	}
	if filter.VerifiedOnly {
		query += ` AND verified = 1`
	}
	query += ` ORDER BY state, city, name`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list clinics")
	}
	defer rows.Close()

	var clinics []model.ClinicRecord
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, err
		}
		clinics = append(clinics, *c)
	}
	return clinics, eris.Wrap(rows.Err(), "sqlite: list clinics iterate")
}

func (s *SQLiteStore) GetClinic(ctx context.Context, id string) (*model.ClinicRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, city, state, latitude, longitude, phone, email, website, services, cost_level, teletherapy, verified, notes
		 FROM clinics WHERE id = ?`,
		id,
	)
	c, err := scanClinic(row)
	if err == errNoClinic {
		return nil, nil
	}
	return c, err
}

func (s *SQLiteStore) DeleteClinic(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clinics WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete clinic %s", id)
	}
	return checkRowsAffected(res, "clinic", id)
}

func (s *SQLiteStore) ApplyEnhancement(ctx context.Context, e model.FieldEnhancement) error {
	query := `UPDATE clinics SET updated_at = ?`
	args := []any{time.Now().UTC()}

	if e.Name != "" {
		query += `, name = ?`
		args = append(args, e.Name)
	}
	if e.Phone != "" {
		query += `, phone = ?`
		args = append(args, e.Phone)
	}
	if e.Email != "" {
		query += `, email = ?`
		args = append(args, e.Email)
	}
	if e.Website != "" {
		query += `, website = ?`
		args = append(args, e.Website)
	}
	if len(e.Services) > 0 {
		servicesJSON, err := json.Marshal(e.Services)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal services for %s", e.ClinicID)
		}
		query += `, services = ?`
		args = append(args, string(servicesJSON))
	}

	query += ` WHERE id = ?`
	args = append(args, e.ClinicID)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: apply enhancement %s", e.ClinicID)
	}
	return checkRowsAffected(res, "clinic", e.ClinicID)
}

func (s *SQLiteStore) UpsertCenters(ctx context.Context, centers []model.PopulationCenter) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert centers")
	}
	defer tx.Rollback()

	count := 0
	for _, pc := range centers {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO population_centers (city, state, latitude, longitude, population)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (city, state) DO UPDATE SET
			   latitude = excluded.latitude, longitude = excluded.longitude,
			   population = excluded.population`,
			pc.City, pc.State, pc.Latitude, pc.Longitude, pc.Population,
		)
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: upsert center %s, %s", pc.City, pc.State)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return count, eris.Wrap(err, "sqlite: commit upsert centers")
	}
	return count, nil
}

func (s *SQLiteStore) ListCenters(ctx context.Context) ([]model.PopulationCenter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT city, state, latitude, longitude, population FROM population_centers ORDER BY population DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list centers")
	}
	defer rows.Close()

	var centers []model.PopulationCenter
	for rows.Next() {
		var pc model.PopulationCenter
		if err := rows.Scan(&pc.City, &pc.State, &pc.Latitude, &pc.Longitude, &pc.Population); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan center")
		}
		centers = append(centers, pc)
	}
	return centers, eris.Wrap(rows.Err(), "sqlite: list centers iterate")
}

// helpers

var errNoClinic = eris.New("clinic not found")

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanClinic(row scannable) (*model.ClinicRecord, error) {
	var c model.ClinicRecord
	var lat, lon sql.NullFloat64
	var servicesJSON, cost string

	err := row.Scan(&c.ID, &c.Name, &c.City, &c.State, &lat, &lon,
		&c.Phone, &c.Email, &c.Website, &servicesJSON, &cost,
		&c.Teletherapy, &c.Verified, &c.Notes)
	if err == sql.ErrNoRows {
		return nil, errNoClinic
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan clinic")
	}

	if lat.Valid {
		c.Latitude = &lat.Float64
	}
	if lon.Valid {
		c.Longitude = &lon.Float64
	}
	c.Cost = model.CostLevel(cost)
	if err := json.Unmarshal([]byte(servicesJSON), &c.Services); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal services")
	}
	return &c, nil
}
