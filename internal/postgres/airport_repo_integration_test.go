//go:build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"airport/models"
)

// setupTestDB connects to AIRPORT_TEST_DATABASE_URL and prepares the schema.
func setupTestDB(t *testing.T) *DB {
	dsn := os.Getenv("AIRPORT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("AIRPORT_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := New(ctx, dsn, 2)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, `DELETE FROM airports WHERE ident LIKE 'TEST%'`); err != nil {
		t.Fatalf("clean airports: %v", err)
	}
	return db
}

func TestAirportRepo_UpsertAndGet(t *testing.T) {
	repo := NewAirportRepo(setupTestDB(t))
	ctx := context.Background()

	a := models.Airport{
		Ident:       "TEST1",
		Kind:        "small_airport",
		Name:        "Test Field",
		ElevationFt: -12,
		ISOCountry:  "ZZ",
		Coordinates: models.Coords{Latitude: 40.6413, Longitude: -73.7781},
	}
	if err := repo.Upsert(ctx, &a); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	a.Name = "Renamed Field"
	if err := repo.UpsertBatch(ctx, []models.Airport{a, {Ident: "TEST2", ISOCountry: "ZZ"}}); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	got, err := repo.GetByIdent(ctx, "TEST1")
	if err != nil {
		t.Fatalf("GetByIdent: %v", err)
	}
	if *got != a {
		t.Fatalf("GetByIdent = %+v; want %+v", *got, a)
	}

	list, err := repo.ListByCountry(ctx, "ZZ")
	if err != nil {
		t.Fatalf("ListByCountry: %v", err)
	}
	if len(list) != 2 || list[0].Ident != "TEST1" || list[1].Ident != "TEST2" {
		t.Fatalf("ListByCountry = %+v", list)
	}

	if _, err := repo.GetByIdent(ctx, "TEST-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByIdent missing = %v; want ErrNotFound", err)
	}
}
