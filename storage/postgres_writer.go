package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"housing-scraper/models"
)

// insertColumns is the column list for batch inserts, matching the CSV schema
// minus the serial id and created_at.
var insertColumns = []string{
	"listing_id", "title", "city", "location", "location_clean",
	"price", "price_per_sqft", "area_sqft", "bhk", "bathrooms",
	"property_type", "floor", "total_floors", "furnishing", "age", "parking", "balcony",
	"has_gym", "has_pool", "has_security", "has_lift", "has_power_backup", "has_garden", "has_club",
	"is_high_floor", "is_new_property",
	"price_in_crores", "price_category", "area_category", "area_per_bhk",
	"price_per_bhk", "price_efficiency", "has_parking", "luxury_score", "market_segment",
	"price_raw", "area_raw", "page_scraped", "scraped_at",
}

// PostgresWriter persists featured property records to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id               SERIAL PRIMARY KEY,
			listing_id       TEXT UNIQUE NOT NULL,
			title            TEXT NOT NULL DEFAULT '',
			city             TEXT NOT NULL DEFAULT '',
			location         TEXT NOT NULL DEFAULT '',
			location_clean   TEXT NOT NULL DEFAULT '',
			price            NUMERIC(14,2) NOT NULL DEFAULT 0,
			price_per_sqft   NUMERIC(12,2) NOT NULL DEFAULT 0,
			area_sqft        NUMERIC(10,2) NOT NULL DEFAULT 0,
			bhk              INT NOT NULL DEFAULT 0,
			bathrooms        INT NOT NULL DEFAULT 0,
			property_type    TEXT NOT NULL DEFAULT '',
			floor            INT NOT NULL DEFAULT 0,
			total_floors     INT NOT NULL DEFAULT 0,
			furnishing       TEXT NOT NULL DEFAULT '',
			age              TEXT NOT NULL DEFAULT '',
			parking          INT NOT NULL DEFAULT 0,
			balcony          INT NOT NULL DEFAULT 0,
			has_gym          BOOLEAN NOT NULL DEFAULT FALSE,
			has_pool         BOOLEAN NOT NULL DEFAULT FALSE,
			has_security     BOOLEAN NOT NULL DEFAULT FALSE,
			has_lift         BOOLEAN NOT NULL DEFAULT FALSE,
			has_power_backup BOOLEAN NOT NULL DEFAULT FALSE,
			has_garden       BOOLEAN NOT NULL DEFAULT FALSE,
			has_club         BOOLEAN NOT NULL DEFAULT FALSE,
			is_high_floor    BOOLEAN NOT NULL DEFAULT FALSE,
			is_new_property  BOOLEAN NOT NULL DEFAULT FALSE,
			price_in_crores  NUMERIC(10,4) NOT NULL DEFAULT 0,
			price_category   TEXT NOT NULL DEFAULT '',
			area_category    TEXT NOT NULL DEFAULT '',
			area_per_bhk     NUMERIC(10,2) NOT NULL DEFAULT 0,
			price_per_bhk    NUMERIC(14,2) NOT NULL DEFAULT 0,
			price_efficiency NUMERIC(12,4) NOT NULL DEFAULT 0,
			has_parking      BOOLEAN NOT NULL DEFAULT FALSE,
			luxury_score     INT NOT NULL DEFAULT 0,
			market_segment   TEXT NOT NULL DEFAULT '',
			price_raw        TEXT NOT NULL DEFAULT '',
			area_raw         TEXT NOT NULL DEFAULT '',
			page_scraped     INT NOT NULL DEFAULT 0,
			scraped_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_properties_price    ON properties(price);
		CREATE INDEX IF NOT EXISTS idx_properties_city     ON properties(city);
		CREATE INDEX IF NOT EXISTS idx_properties_location ON properties(location_clean);
		CREATE INDEX IF NOT EXISTS idx_properties_bhk      ON properties(bhk);
		CREATE INDEX IF NOT EXISTS idx_properties_segment  ON properties(market_segment);
	`)
	return err
}

// Clear deletes all existing properties from the table.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM properties")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts ALL featured records, clearing old data first.
func (pw *PostgresWriter) Write(records []*models.PropertyRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 25
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := pw.insertBatch(records[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.PropertyRecord) error {
	n := len(insertColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*n)

	for idx, r := range batch {
		placeholders := make([]string, n)
		for j := 0; j < n; j++ {
			placeholders[j] = fmt.Sprintf("$%d", idx*n+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			r.ListingID, r.Title, r.City, r.Location, r.LocationClean,
			r.Price, r.PricePerSqft, r.AreaSqft, r.BHK, r.Bathrooms,
			r.PropertyType, r.Floor, r.TotalFloors, r.Furnishing, r.Age, r.Parking, r.Balcony,
			r.HasGym, r.HasPool, r.HasSecurity, r.HasLift, r.HasPowerBackup, r.HasGarden, r.HasClub,
			r.IsHighFloor, r.IsNewProperty,
			r.PriceInCrores, r.PriceCategory, r.AreaCategory, r.AreaPerBHK,
			r.PricePerBHK, r.PriceEfficiency, r.HasParking, r.LuxuryScore, r.MarketSegment,
			r.PriceRaw, r.AreaRaw, r.PageScraped, r.ScrapedAt,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO properties (%s)
		VALUES %s
		ON CONFLICT (listing_id) DO NOTHING
	`, strings.Join(insertColumns, ", "), strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored properties — used by the insight service.
func (pw *PostgresWriter) FetchAll() ([]*models.PropertyRecord, error) {
	rows, err := pw.db.Query(fmt.Sprintf(`
		SELECT %s
		FROM properties
		ORDER BY id
	`, strings.Join(insertColumns, ", ")))
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var records []*models.PropertyRecord
	for rows.Next() {
		r := &models.PropertyRecord{}
		if err := rows.Scan(
			&r.ListingID, &r.Title, &r.City, &r.Location, &r.LocationClean,
			&r.Price, &r.PricePerSqft, &r.AreaSqft, &r.BHK, &r.Bathrooms,
			&r.PropertyType, &r.Floor, &r.TotalFloors, &r.Furnishing, &r.Age, &r.Parking, &r.Balcony,
			&r.HasGym, &r.HasPool, &r.HasSecurity, &r.HasLift, &r.HasPowerBackup, &r.HasGarden, &r.HasClub,
			&r.IsHighFloor, &r.IsNewProperty,
			&r.PriceInCrores, &r.PriceCategory, &r.AreaCategory, &r.AreaPerBHK,
			&r.PricePerBHK, &r.PriceEfficiency, &r.HasParking, &r.LuxuryScore, &r.MarketSegment,
			&r.PriceRaw, &r.AreaRaw, &r.PageScraped, &r.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
