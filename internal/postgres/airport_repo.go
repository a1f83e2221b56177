package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"airport/internal/metrics"
	"airport/models"
)

var ErrNotFound = errors.New("airport not found")

const upsertAirport = `
	INSERT INTO airports (ident, kind, name, elevation_ft, continent, iso_country, iso_region,
	                      municipality, gps_code, iata_code, local_code, latitude, longitude)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (ident) DO UPDATE
	SET kind = EXCLUDED.kind, name = EXCLUDED.name, elevation_ft = EXCLUDED.elevation_ft,
	    continent = EXCLUDED.continent, iso_country = EXCLUDED.iso_country,
	    iso_region = EXCLUDED.iso_region, municipality = EXCLUDED.municipality,
	    gps_code = EXCLUDED.gps_code, iata_code = EXCLUDED.iata_code,
	    local_code = EXCLUDED.local_code, latitude = EXCLUDED.latitude,
	    longitude = EXCLUDED.longitude, updated_at = now()
`

const selectAirport = `
	SELECT ident, kind, name, elevation_ft, continent, iso_country, iso_region,
	       municipality, gps_code, iata_code, local_code, latitude, longitude
	FROM airports
`

// AirportRepo stores airports with pgx.
type AirportRepo struct {
	db *DB
}

func NewAirportRepo(db *DB) *AirportRepo {
	return &AirportRepo{db: db}
}

func upsertArgs(a *models.Airport) []any {
	return []any{
		a.Ident, a.Kind, a.Name, a.ElevationFt, a.Continent, a.ISOCountry, a.ISORegion,
		a.Municipality, a.GPSCode, a.IATACode, a.LocalCode,
		a.Coordinates.Latitude, a.Coordinates.Longitude,
	}
}

// Upsert inserts or replaces a single airport keyed by ident.
func (r *AirportRepo) Upsert(ctx context.Context, a *models.Airport) (err error) {
	defer func() {
		metrics.RecordsStored.WithLabelValues("postgres", metrics.Result(err)).Inc()
	}()

	if _, err := r.db.Pool.Exec(ctx, upsertAirport, upsertArgs(a)...); err != nil {
		return fmt.Errorf("upsert airport %s: %w", a.Ident, err)
	}
	return nil
}

// UpsertBatch upserts many airports in one round trip.
func (r *AirportRepo) UpsertBatch(ctx context.Context, airports []models.Airport) error {
	batch := &pgx.Batch{}
	for i := range airports {
		batch.Queue(upsertAirport, upsertArgs(&airports[i])...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, a := range airports {
		if _, err := br.Exec(); err != nil {
			metrics.RecordsStored.WithLabelValues("postgres", "error").Inc()
			return fmt.Errorf("batch upsert %s: %w", a.Ident, err)
		}
	}
	metrics.RecordsStored.WithLabelValues("postgres", "ok").Add(float64(len(airports)))
	return nil
}

func scanAirport(row pgx.Row) (*models.Airport, error) {
	var a models.Airport
	err := row.Scan(
		&a.Ident, &a.Kind, &a.Name, &a.ElevationFt, &a.Continent, &a.ISOCountry, &a.ISORegion,
		&a.Municipality, &a.GPSCode, &a.IATACode, &a.LocalCode,
		&a.Coordinates.Latitude, &a.Coordinates.Longitude,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByIdent returns ErrNotFound when no row matches.
func (r *AirportRepo) GetByIdent(ctx context.Context, ident string) (*models.Airport, error) {
	a, err := scanAirport(r.db.Pool.QueryRow(ctx, selectAirport+` WHERE ident = $1`, ident))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get airport %s: %w", ident, err)
	}
	return a, nil
}

// ListByCountry returns airports for an ISO country code ordered by ident.
func (r *AirportRepo) ListByCountry(ctx context.Context, country string) ([]models.Airport, error) {
	rows, err := r.db.Pool.Query(ctx, selectAirport+` WHERE iso_country = $1 ORDER BY ident`, country)
	if err != nil {
		return nil, fmt.Errorf("list airports in %s: %w", country, err)
	}
	defer rows.Close()

	var airports []models.Airport
	for rows.Next() {
		a, err := scanAirport(rows)
		if err != nil {
			return nil, err
		}
		airports = append(airports, *a)
	}
	return airports, rows.Err()
}
