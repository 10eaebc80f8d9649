// Package database persists planned trips, tours and resolved cities in
// PostgreSQL.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"tripplanner/catalog"
	"tripplanner/planner"
)

// ErrNotFound is returned when no row matches an id.
var ErrNotFound = errors.New("not found")

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// ─── Models ──────────────────────────────────────────────────────────────────

// TripRecord is a stored trip plan.
type TripRecord struct {
	ID            string       `json:"id"`
	TourID        string       `json:"tour_id,omitempty"`
	City          string       `json:"city"`
	Origin        string       `json:"origin"`
	DepartureDate string       `json:"departure_date"`
	ReturnDate    string       `json:"return_date"`
	Trip          planner.Trip `json:"trip"`
	PDFData       []byte       `json:"-"`
	TravelerName  string       `json:"traveler_name,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// ─── Init ─────────────────────────────────────────────────────────────────────

// Open connects to PostgreSQL, waiting for the server to come up, and
// creates the schema.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	for i := 0; i < connectAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		if ctx.Err() != nil {
			break
		}
		logger.Warn("Waiting for database", slog.Int("attempt", i+1), slog.Int("of", connectAttempts), slog.Any("error", err))
		select {
		case <-ctx.Done():
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Database connected and migrated")
	return s, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

// ─── Migrations ───────────────────────────────────────────────────────────────

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS tours (
		id           TEXT PRIMARY KEY,
		start_date   TEXT NOT NULL,
		total_cities INTEGER NOT NULL,
		created_at   TIMESTAMPTZ DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS trip_plans (
		id             TEXT PRIMARY KEY,
		tour_id        TEXT REFERENCES tours(id) ON DELETE CASCADE,
		city           TEXT NOT NULL,
		origin         TEXT,
		departure_date TEXT,
		return_date    TEXT,
		trip_json      TEXT NOT NULL,
		pdf_data       BYTEA,
		traveler_name  TEXT,
		created_at     TIMESTAMPTZ DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS city_cache (
		key       TEXT PRIMARY KEY,
		city_json TEXT NOT NULL,
		cached_at TIMESTAMPTZ DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_trip_plans_tour_id
		ON trip_plans(tour_id)`,

	`CREATE INDEX IF NOT EXISTS idx_trip_plans_created_at
		ON trip_plans(created_at DESC)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Trips ────────────────────────────────────────────────────────────────────

// SaveTrip stores a trip and returns its new id.
func (s *Store) SaveTrip(ctx context.Context, trip planner.Trip) (string, error) {
	return s.insertTrip(ctx, s.db, "", trip)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertTrip(ctx context.Context, db execer, tourID string, trip planner.Trip) (string, error) {
	data, err := json.Marshal(trip)
	if err != nil {
		return "", err
	}
	var departure, ret string
	if trip.TravelDates != nil {
		departure, ret = trip.TravelDates.Departure, trip.TravelDates.Return
	}

	id := uuid.New().String()
	_, err = db.ExecContext(ctx, `
		INSERT INTO trip_plans (id, tour_id, city, origin, departure_date, return_date, trip_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, nullString(tourID), trip.City, trip.Origin, departure, ret, string(data))
	if err != nil {
		return "", fmt.Errorf("save trip %s: %w", trip.City, err)
	}
	return id, nil
}

// GetTrip loads a stored trip.
func (s *Store) GetTrip(ctx context.Context, id string) (*TripRecord, error) {
	var (
		r        TripRecord
		tourID   sql.NullString
		origin   sql.NullString
		dep, ret sql.NullString
		traveler sql.NullString
		tripJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tour_id, city, origin, departure_date, return_date, trip_json, pdf_data, traveler_name, created_at
		FROM trip_plans WHERE id = $1`, id).
		Scan(&r.ID, &tourID, &r.City, &origin, &dep, &ret, &tripJSON, &r.PDFData, &traveler, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tripJSON), &r.Trip); err != nil {
		return nil, fmt.Errorf("decode trip %s: %w", id, err)
	}
	r.TourID, r.Origin = tourID.String, origin.String
	r.DepartureDate, r.ReturnDate = dep.String, ret.String
	r.TravelerName = traveler.String
	return &r, nil
}

// UpdateTripPDF attaches a rendered itinerary to a stored trip.
func (s *Store) UpdateTripPDF(ctx context.Context, id string, pdfData []byte, travelerName string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trip_plans SET pdf_data = $1, traveler_name = $2 WHERE id = $3`,
		pdfData, travelerName, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("trip %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveTour stores a tour and all of its trips in one transaction. It returns
// the tour id and the trip ids in tour order.
func (s *Store) SaveTour(ctx context.Context, tour planner.Tour) (string, []string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", nil, err
	}
	defer tx.Rollback()

	tourID := uuid.New().String()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tours (id, start_date, total_cities) VALUES ($1, $2, $3)`,
		tourID, tour.StartDate, tour.TotalCities); err != nil {
		return "", nil, fmt.Errorf("save tour: %w", err)
	}

	ids := make([]string, 0, len(tour.Trips))
	for _, trip := range tour.Trips {
		id, err := s.insertTrip(ctx, tx, tourID, trip)
		if err != nil {
			return "", nil, err
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return "", nil, err
	}
	return tourID, ids, nil
}

// ─── City cache ───────────────────────────────────────────────────────────────

// GetCity returns a resolved city cached within planner.CityTTL.
func (s *Store) GetCity(ctx context.Context, key string) (catalog.City, error) {
	var (
		data     string
		cachedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT city_json, cached_at FROM city_cache WHERE key = $1`, key).
		Scan(&data, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.City{}, planner.ErrCityNotCached
	}
	if err != nil {
		return catalog.City{}, err
	}
	if time.Since(cachedAt) > planner.CityTTL {
		return catalog.City{}, planner.ErrCityNotCached
	}

	var c catalog.City
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return catalog.City{}, fmt.Errorf("decode cached city %s: %w", key, err)
	}
	return c, nil
}

func (s *Store) PutCity(ctx context.Context, key string, city catalog.City) error {
	data, err := json.Marshal(city)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO city_cache (key, city_json, cached_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET city_json = EXCLUDED.city_json, cached_at = EXCLUDED.cached_at`,
		key, string(data))
	return err
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
