package extract

import (
	"math"
	"testing"

	"housing-scraper/models"
	"housing-scraper/utils"
)

const sampleCard = `
<article data-listingid="15837025">
  <a href="/contact">Contact</a>
  <a href="/property/15837025">3 BHK Apartment for Sale in Sector 12 Noida</a>
  <div class="price">₹85 Lac</div>
  <div class="area">1250 sqft</div>
  <ul>
    <li>2 Bathrooms</li>
    <li>7th Floor out of 14</li>
    <li>Semi Furnished</li>
    <li>Ready to Move</li>
    <li>1 Parking</li>
    <li>2 Balconies</li>
  </ul>
  <div class="amenities">Gym, Swimming Pool, Lift, Power Backup</div>
</article>`

func newTestEngine() *Engine { return NewEngine(utils.NewLogger()) }

func TestExtractFullCard(t *testing.T) {
	e := newTestEngine()

	rec, ok := e.Extract(models.Fragment{ListingID: "15837025", HTML: sampleCard}, "Noida", 0)
	if !ok {
		t.Fatal("expected card to be accepted")
	}

	if rec.ListingID != "15837025" {
		t.Errorf("ListingID: got %q", rec.ListingID)
	}
	if rec.Title != "3 BHK Apartment for Sale in Sector 12 Noida" {
		t.Errorf("Title: got %q", rec.Title)
	}
	if rec.City != "Noida" {
		t.Errorf("City: got %q", rec.City)
	}
	if rec.PriceRaw != "₹85 Lac" {
		t.Errorf("PriceRaw: got %q", rec.PriceRaw)
	}
	if rec.Price != 8_500_000 {
		t.Errorf("Price: got %.2f, want 8500000", rec.Price)
	}
	if rec.AreaRaw != "1250 sqft" {
		t.Errorf("AreaRaw: got %q", rec.AreaRaw)
	}
	if rec.AreaSqft != 1250 {
		t.Errorf("AreaSqft: got %.2f, want 1250", rec.AreaSqft)
	}
	if rec.BHK != 3 {
		t.Errorf("BHK: got %d, want 3", rec.BHK)
	}
	if rec.Location != "Sector 12" {
		t.Errorf("Location: got %q, want Sector 12", rec.Location)
	}
	if rec.PropertyType != "apartment" {
		t.Errorf("PropertyType: got %q, want apartment", rec.PropertyType)
	}
	if rec.Bathrooms != 2 {
		t.Errorf("Bathrooms: got %d, want 2", rec.Bathrooms)
	}
	if rec.Floor != 7 || rec.TotalFloors != 14 {
		t.Errorf("Floor: got %d/%d, want 7/14", rec.Floor, rec.TotalFloors)
	}
	if rec.Furnishing != "Semi Furnished" {
		t.Errorf("Furnishing: got %q", rec.Furnishing)
	}
	if rec.Age != models.AgeReadyToMove {
		t.Errorf("Age: got %q, want %q", rec.Age, models.AgeReadyToMove)
	}
	if rec.Parking != 1 {
		t.Errorf("Parking: got %d, want 1", rec.Parking)
	}
	if rec.Balcony != 2 {
		t.Errorf("Balcony: got %d, want 2", rec.Balcony)
	}
}

func TestExtractAmenityFlags(t *testing.T) {
	e := newTestEngine()

	rec, ok := e.Extract(models.Fragment{ListingID: "1", HTML: sampleCard}, "Noida", 0)
	if !ok {
		t.Fatal("expected card to be accepted")
	}

	if !rec.HasGym {
		t.Error("HasGym should be true")
	}
	if !rec.HasPool {
		t.Error("HasPool should be true (swimming)")
	}
	if !rec.HasLift {
		t.Error("HasLift should be true")
	}
	if !rec.HasPowerBackup {
		t.Error("HasPowerBackup should be true")
	}
	if rec.HasSecurity {
		t.Error("HasSecurity should be false")
	}
	if rec.HasClub {
		t.Error("HasClub should be false")
	}
	// "Parking" satisfies the garden|park presence check; the flags are
	// independent substring tests, not word matches.
	if !rec.HasGarden {
		t.Error("HasGarden should be true via the park token")
	}
}

func TestExtractDerivedFields(t *testing.T) {
	e := newTestEngine()

	rec, ok := e.Extract(models.Fragment{ListingID: "1", HTML: sampleCard}, "Noida", 0)
	if !ok {
		t.Fatal("expected card to be accepted")
	}

	want := rec.Price / rec.AreaSqft
	if math.Abs(rec.PricePerSqft-want) > 1e-9 {
		t.Errorf("PricePerSqft: got %.4f, want %.4f", rec.PricePerSqft, want)
	}
	if !rec.IsHighFloor {
		t.Error("IsHighFloor should be true for floor 7")
	}
	if rec.IsNewProperty {
		t.Error("IsNewProperty should be false for Ready to Move")
	}
}

func TestExtractSkipsWithoutTitleAndPrice(t *testing.T) {
	e := newTestEngine()

	frag := models.Fragment{
		ListingID: "2",
		HTML:      `<article data-listingid="2"><a href="#">Contact</a><div>Nice locality with garden</div></article>`,
	}
	if _, ok := e.Extract(frag, "Noida", 1); ok {
		t.Error("fragment with no title and no price must be skipped")
	}
}

func TestExtractAcceptsPriceOnlyCard(t *testing.T) {
	e := newTestEngine()

	frag := models.Fragment{
		ListingID: "3",
		HTML:      `<article data-listingid="3"><div>₹42 Lac</div></article>`,
	}
	rec, ok := e.Extract(frag, "Gurgaon", 2)
	if !ok {
		t.Fatal("price-only fragment should be accepted")
	}
	if rec.Title != "" {
		t.Errorf("Title should be absent, got %q", rec.Title)
	}
	if rec.Price != 4_200_000 {
		t.Errorf("Price: got %.2f, want 4200000", rec.Price)
	}
}

func TestExtractBHKFallsBackToTitle(t *testing.T) {
	e := newTestEngine()

	// BHK token appears only inside the anchor; the flattened text still
	// contains it, so this exercises the title fallback indirectly via a
	// fragment whose body text hides the count behind markup boundaries.
	frag := models.Fragment{
		ListingID: "4",
		HTML:      `<article><a href="/p">Spacious 2 BHK in Indirapuram</a><div>₹60 Lac</div></article>`,
	}
	rec, ok := e.Extract(frag, "Ghaziabad", 0)
	if !ok {
		t.Fatal("expected card to be accepted")
	}
	if rec.BHK != 2 {
		t.Errorf("BHK: got %d, want 2", rec.BHK)
	}
}

func TestExtractFloorOnlyCascade(t *testing.T) {
	e := newTestEngine()

	frag := models.Fragment{
		ListingID: "5",
		HTML:      `<article><a href="/p">1 BHK Builder Floor in Lajpat Nagar</a><div>₹35 Lac</div><div>3rd floor</div></article>`,
	}
	rec, ok := e.Extract(frag, "Delhi", 0)
	if !ok {
		t.Fatal("expected card to be accepted")
	}
	if rec.Floor != 3 {
		t.Errorf("Floor: got %d, want 3", rec.Floor)
	}
	if rec.TotalFloors != 0 {
		t.Errorf("TotalFloors should be absent, got %d", rec.TotalFloors)
	}
	if rec.IsHighFloor {
		t.Error("IsHighFloor should be false for floor 3")
	}
}
