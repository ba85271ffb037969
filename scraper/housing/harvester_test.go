package housing

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"housing-scraper/extract"
	"housing-scraper/models"
	"housing-scraper/storage"
	"housing-scraper/utils"
)

func newTestHarvester(t *testing.T, checkpoint *storage.CSVWriter, interval int) *Harvester {
	t.Helper()
	logger := utils.NewLogger()
	return NewHarvester(extract.NewEngine(logger), checkpoint, interval, 2, logger)
}

func card(id string) models.Fragment {
	return models.Fragment{
		ListingID: id,
		HTML: `<article data-listingid="` + id + `">
			<a href="/p">2 BHK Apartment for Sale in Sector 45</a>
			<div>₹55 Lac</div><div>950 sqft</div></article>`,
	}
}

func TestHarvesterDeduplicatesListingID(t *testing.T) {
	h := newTestHarvester(t, nil, 0)

	accepted := h.ProcessPage([]models.Fragment{card("100"), card("100")}, "Gurgaon", 1)
	if accepted != 1 {
		t.Errorf("accepted: got %d, want 1", accepted)
	}
	if h.Total() != 1 {
		t.Errorf("total: got %d, want 1", h.Total())
	}
}

func TestHarvesterDeduplicatesAcrossPages(t *testing.T) {
	h := newTestHarvester(t, nil, 0)

	h.ProcessPage([]models.Fragment{card("100"), card("101")}, "Gurgaon", 1)
	accepted := h.ProcessPage([]models.Fragment{card("101"), card("102")}, "Gurgaon", 2)

	if accepted != 1 {
		t.Errorf("accepted on page 2: got %d, want 1", accepted)
	}
	if h.Total() != 3 {
		t.Errorf("total: got %d, want 3", h.Total())
	}
}

func TestHarvesterSkipsNoiseFragments(t *testing.T) {
	h := newTestHarvester(t, nil, 0)

	noise := models.Fragment{
		ListingID: "200",
		HTML:      `<article data-listingid="200"><a href="#">Contact</a><div>ad slot</div></article>`,
	}
	accepted := h.ProcessPage([]models.Fragment{noise, card("201")}, "Noida", 1)

	if accepted != 1 {
		t.Errorf("accepted: got %d, want 1", accepted)
	}
	for _, r := range h.Records() {
		if r.ListingID == "200" {
			t.Error("noise fragment must not appear in harvester output")
		}
	}
}

func TestHarvesterRecordsCarryPageAndCity(t *testing.T) {
	h := newTestHarvester(t, nil, 0)

	h.ProcessPage([]models.Fragment{card("300")}, "Faridabad", 4)

	recs := h.Records()
	if len(recs) != 1 {
		t.Fatalf("records: got %d, want 1", len(recs))
	}
	if recs[0].City != "Faridabad" {
		t.Errorf("City: got %q", recs[0].City)
	}
	if recs[0].PageScraped != 4 {
		t.Errorf("PageScraped: got %d, want 4", recs[0].PageScraped)
	}
}

func TestHarvesterCheckpoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.csv")
	cp, err := storage.NewCSVWriter(path)
	if err != nil {
		t.Fatalf("checkpoint writer: %v", err)
	}

	h := newTestHarvester(t, cp, 2)
	h.ProcessPage([]models.Fragment{card("1"), card("2"), card("3")}, "Noida", 1)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("checkpoint file missing: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read checkpoint: %v", err)
	}
	// Header plus every record accepted when the cadence fired.
	if len(rows) != 4 {
		t.Errorf("checkpoint rows: got %d, want 4", len(rows))
	}
	if rows[0][0] != "listing_id" {
		t.Errorf("checkpoint header: got %q", rows[0][0])
	}
}

func TestCityFromSlug(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"new_delhi/new_delhi", "New Delhi"},
		{"greater_noida/greater_noida", "Greater Noida"},
		{"gurgaon/gurgaon", "Gurgaon"},
	}

	for _, tt := range tests {
		if got := CityFromSlug(tt.slug); got != tt.want {
			t.Errorf("CityFromSlug(%q) = %q; want %q", tt.slug, got, tt.want)
		}
	}
}
