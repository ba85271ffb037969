package services

import (
	"fmt"
	"math"
	"testing"

	"housing-scraper/config"
	"housing-scraper/models"
	"housing-scraper/utils"
)

func newTestEngineer() *FeatureEngineer {
	policy := config.DefaultPolicy()
	return NewFeatureEngineer(&policy.Features, utils.NewLogger())
}

func TestPriceAndAreaCategories(t *testing.T) {
	tests := []struct {
		price     float64
		area      float64
		wantPrice string
		wantArea  string
	}{
		{4_000_000, 500, "Budget", "Compact"},
		{6_000_000, 1_000, "Mid-Range", "Medium"},
		{20_000_000, 1_800, "Premium", "Large"},
		{40_000_000, 3_000, "Luxury", "Very Large"},
		{90_000_000, 5_500, "Ultra-Luxury", "Mansion"},
	}

	f := newTestEngineer()
	for _, tt := range tests {
		r := &models.PropertyRecord{Price: tt.price, AreaSqft: tt.area, BHK: 2}
		f.Enrich([]*models.PropertyRecord{r})

		if r.PriceCategory != tt.wantPrice {
			t.Errorf("price %.0f: category %q, want %q", tt.price, r.PriceCategory, tt.wantPrice)
		}
		if r.AreaCategory != tt.wantArea {
			t.Errorf("area %.0f: category %q, want %q", tt.area, r.AreaCategory, tt.wantArea)
		}
	}
}

func TestRatioFeatures(t *testing.T) {
	f := newTestEngineer()

	r := &models.PropertyRecord{Price: 9_000_000, AreaSqft: 1_500, BHK: 3, PricePerSqft: 6_000}
	f.Enrich([]*models.PropertyRecord{r})

	if math.Abs(r.PriceInCrores-0.9) > 1e-9 {
		t.Errorf("PriceInCrores: got %.4f, want 0.9", r.PriceInCrores)
	}
	if math.Abs(r.AreaPerBHK-500) > 1e-9 {
		t.Errorf("AreaPerBHK: got %.2f, want 500", r.AreaPerBHK)
	}
	if math.Abs(r.PricePerBHK-3_000_000) > 1e-9 {
		t.Errorf("PricePerBHK: got %.2f, want 3000000", r.PricePerBHK)
	}
	if math.Abs(r.PriceEfficiency-2_000) > 1e-9 {
		t.Errorf("PriceEfficiency: got %.4f, want 2000", r.PriceEfficiency)
	}
}

func TestLuxuryScore(t *testing.T) {
	f := newTestEngineer()

	tests := []struct {
		rec  models.PropertyRecord
		want int
	}{
		{models.PropertyRecord{Price: 1_000_000, AreaSqft: 800, BHK: 1}, 0},
		{models.PropertyRecord{Price: 1_000_000, AreaSqft: 1_600, BHK: 2}, 1},
		{models.PropertyRecord{Price: 1_000_000, AreaSqft: 1_600, BHK: 3, Parking: 1}, 3},
		{models.PropertyRecord{Price: 1_000_000, AreaSqft: 1_600, BHK: 4, Parking: 2, PricePerSqft: 9_000}, 4},
	}

	for i, tt := range tests {
		r := tt.rec
		f.Enrich([]*models.PropertyRecord{&r})
		if r.LuxuryScore != tt.want {
			t.Errorf("case %d: LuxuryScore = %d, want %d", i, r.LuxuryScore, tt.want)
		}
	}
}

func TestHasParking(t *testing.T) {
	f := newTestEngineer()

	with := &models.PropertyRecord{Price: 1_000_000, Parking: 2, BHK: 2}
	without := &models.PropertyRecord{Price: 1_000_000, BHK: 2}
	f.Enrich([]*models.PropertyRecord{with, without})

	if !with.HasParking {
		t.Error("HasParking should be true for parking=2")
	}
	if without.HasParking {
		t.Error("HasParking should be false for parking=0")
	}
}

func TestMarketSegmentation(t *testing.T) {
	f := newTestEngineer()

	// Eleven rows with ascending price and area. With the default cut
	// points the 80th percentile lands on row 9's values, the budget price
	// cut on row 4's price and the budget area cut on row 5's area.
	var records []*models.PropertyRecord
	for i := 1; i <= 11; i++ {
		records = append(records, &models.PropertyRecord{
			ListingID: fmt.Sprintf("%d", i),
			Price:     float64(i) * 1_000_000,
			AreaSqft:  500 + float64(i)*100,
			BHK:       2,
		})
	}

	f.Enrich(records)

	wantSegments := map[string]string{
		"1":  SegmentBudget,
		"2":  SegmentBudget,
		"3":  SegmentBudget,
		"4":  SegmentStandard,
		"9":  SegmentStandard,
		"10": SegmentHighEnd,
		"11": SegmentHighEnd,
	}

	for _, r := range records {
		want, checked := wantSegments[r.ListingID]
		if !checked {
			continue
		}
		if r.MarketSegment != want {
			t.Errorf("row %s (price %.0f, area %.0f): segment %q, want %q",
				r.ListingID, r.Price, r.AreaSqft, r.MarketSegment, want)
		}
	}
}

func TestSegmentationSkipsBudgetWithoutArea(t *testing.T) {
	f := newTestEngineer()

	// A cheap row without area can never be Budget — the label needs both
	// price and area below their cut points.
	var records []*models.PropertyRecord
	for i := 1; i <= 10; i++ {
		records = append(records, &models.PropertyRecord{
			ListingID: fmt.Sprintf("%d", i),
			Price:     float64(i) * 1_000_000,
			AreaSqft:  1_000,
			BHK:       2,
		})
	}
	noArea := &models.PropertyRecord{ListingID: "no-area", Price: 500_000, BHK: 1}
	records = append(records, noArea)

	f.Enrich(records)

	if noArea.MarketSegment != SegmentStandard {
		t.Errorf("area-less row: segment %q, want %q", noArea.MarketSegment, SegmentStandard)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{50, 30},
		{100, 50},
		{25, 20},
	}

	for _, tt := range tests {
		if got := percentile(sorted, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("percentile(%.0f) = %.2f, want %.2f", tt.p, got, tt.want)
		}
	}

	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile on empty slice: got %.2f, want 0", got)
	}
}
