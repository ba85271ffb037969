package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"housing-scraper/models"
)

// Columns is the stable column order of every CSV this system writes:
// identifiers first, then the target and key features, property
// characteristics, amenity flags, derived and engineered columns, the raw
// matched substrings, and diagnostics last. Checkpoint files share the schema
// and are a strict prefix of the final table.
var Columns = []string{
	"listing_id", "title", "city", "location", "location_clean",
	"price", "price_per_sqft", "area_sqft", "bhk", "bathrooms",
	"property_type", "floor", "total_floors", "furnishing", "age", "parking", "balcony",
	"has_gym", "has_pool", "has_security", "has_lift", "has_power_backup", "has_garden", "has_club",
	"is_high_floor", "is_new_property",
	"price_in_crores", "price_category", "area_category", "area_per_bhk",
	"price_per_bhk", "price_efficiency", "has_parking", "luxury_score", "market_segment",
	"price_raw", "area_raw",
	"page_scraped", "scraped_at",
}

// CSVWriter persists property tables as delimited text. Write replaces the
// file wholesale, which makes periodic checkpoints naturally atomic prefixes
// of the final output. Safe for concurrent use.
type CSVWriter struct {
	mu   sync.Mutex
	path string
}

// NewCSVWriter prepares a writer for the given path, creating intermediate
// directories.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{path: path}, nil
}

// Write truncates the file and writes the header plus one row per record.
func (c *CSVWriter) Write(records []*models.PropertyRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", c.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, r := range records {
		if err := w.Write(recordRow(r)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// Path returns the output file path.
func (c *CSVWriter) Path() string { return c.path }

// Close is a no-op: Write opens and closes the file per snapshot.
func (c *CSVWriter) Close() error { return nil }

// recordRow serializes one record in Columns order. Absent values become
// empty cells so the table round-trips the way the upstream dataset does.
func recordRow(r *models.PropertyRecord) []string {
	return []string{
		r.ListingID, r.Title, r.City, r.Location, r.LocationClean,
		cell(r.Price), cell(r.PricePerSqft), cell(r.AreaSqft), cellInt(r.BHK), cellInt(r.Bathrooms),
		r.PropertyType, cellInt(r.Floor), cellInt(r.TotalFloors), r.Furnishing, r.Age,
		cellInt(r.Parking), cellInt(r.Balcony),
		cellBool(r.HasGym), cellBool(r.HasPool), cellBool(r.HasSecurity), cellBool(r.HasLift),
		cellBool(r.HasPowerBackup), cellBool(r.HasGarden), cellBool(r.HasClub),
		cellOptBool(r.IsHighFloor, r.Floor > 0), cellOptBool(r.IsNewProperty, r.Age != ""),
		cell(r.PriceInCrores), r.PriceCategory, r.AreaCategory, cell(r.AreaPerBHK),
		cell(r.PricePerBHK), cell(r.PriceEfficiency), cellBool(r.HasParking),
		strconv.Itoa(r.LuxuryScore), r.MarketSegment,
		r.PriceRaw, r.AreaRaw,
		cellInt(r.PageScraped), r.ScrapedAt.Format(time.RFC3339),
	}
}

func cell(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cellInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func cellBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// cellOptBool renders a tri-state flag: empty when the underlying field the
// flag derives from is itself absent.
func cellOptBool(v, present bool) string {
	if !present {
		return ""
	}
	return cellBool(v)
}
