package services

import (
	"math"
	"sort"

	"housing-scraper/config"
	"housing-scraper/models"
	"housing-scraper/utils"
)

// Bucket labels, cheapest/smallest first. The breakpoints between them come
// from the feature policy.
var (
	priceCategories = []string{"Budget", "Mid-Range", "Premium", "Luxury", "Ultra-Luxury"}
	areaCategories  = []string{"Compact", "Medium", "Large", "Very Large", "Mansion"}
)

// Market segment labels.
const (
	SegmentStandard = "Standard"
	SegmentHighEnd  = "High-End"
	SegmentBudget   = "Budget"
)

// FeatureEngineer derives the modeling columns from a cleaned table. All
// derivations are deterministic except the market segment, whose percentile
// cut points are computed over the table being labeled — the label
// distribution is dataset-relative by design.
type FeatureEngineer struct {
	policy *config.FeaturePolicy
	logger *utils.Logger
}

// NewFeatureEngineer creates a FeatureEngineer with the given policy.
func NewFeatureEngineer(policy *config.FeaturePolicy, logger *utils.Logger) *FeatureEngineer {
	return &FeatureEngineer{policy: policy, logger: logger}
}

// Enrich fills the engineered columns in place and returns the same slice.
// Existing columns are never modified or removed.
func (f *FeatureEngineer) Enrich(records []*models.PropertyRecord) []*models.PropertyRecord {
	p := f.policy

	for _, r := range records {
		if r.Price > 0 {
			r.PriceInCrores = r.Price / 10_000_000
			r.PriceCategory = bucket(r.Price, p.PriceBins, priceCategories)
		}
		if r.AreaSqft > 0 {
			r.AreaCategory = bucket(r.AreaSqft, p.AreaBins, areaCategories)
		}
		if r.AreaSqft > 0 && r.BHK > 0 {
			r.AreaPerBHK = r.AreaSqft / float64(r.BHK)
		}
		if r.Price > 0 && r.BHK > 0 {
			r.PricePerBHK = r.Price / float64(r.BHK)
		}
		if r.Price > 0 && r.AreaSqft > 0 && r.BHK > 0 {
			r.PriceEfficiency = r.Price / (r.AreaSqft * float64(r.BHK))
		}

		r.HasParking = r.Parking > 0
		r.LuxuryScore = f.luxuryScore(r)
	}

	f.segment(records)

	f.logger.Info("[features] Engineered columns for %d rows", len(records))
	return records
}

// luxuryScore counts how many of the four luxury conditions a record meets.
func (f *FeatureEngineer) luxuryScore(r *models.PropertyRecord) int {
	p := f.policy
	score := 0
	if r.AreaSqft > p.LuxuryArea {
		score++
	}
	if r.BHK >= p.LuxuryBHK {
		score++
	}
	if r.Parking > 0 {
		score++
	}
	if r.PricePerSqft > p.LuxuryPricePerSqft {
		score++
	}
	return score
}

// segment labels each row Standard, then reclassifies High-End rows (price or
// area above the table's high-end percentile) and Budget rows (price below
// the budget price percentile AND area below the budget area percentile).
func (f *FeatureEngineer) segment(records []*models.PropertyRecord) {
	p := f.policy

	var prices, areas []float64
	for _, r := range records {
		if r.Price > 0 {
			prices = append(prices, r.Price)
		}
		if r.AreaSqft > 0 {
			areas = append(areas, r.AreaSqft)
		}
	}
	sort.Float64s(prices)
	sort.Float64s(areas)

	highPrice := percentile(prices, p.HighEndPercentile)
	highArea := percentile(areas, p.HighEndPercentile)
	budgetPrice := percentile(prices, p.BudgetPricePercentile)
	budgetArea := percentile(areas, p.BudgetAreaPercentile)

	for _, r := range records {
		r.MarketSegment = SegmentStandard
		if (r.Price > 0 && r.Price > highPrice) || (r.AreaSqft > 0 && r.AreaSqft > highArea) {
			r.MarketSegment = SegmentHighEnd
		}
		if r.Price > 0 && r.AreaSqft > 0 && r.Price < budgetPrice && r.AreaSqft < budgetArea {
			r.MarketSegment = SegmentBudget
		}
	}
}

// bucket places v into the label whose breakpoint range contains it.
// len(labels) must be len(edges)+1; edges are ascending upper bounds.
func bucket(v float64, edges []float64, labels []string) string {
	for i, edge := range edges {
		if v <= edge {
			return labels[i]
		}
	}
	return labels[len(labels)-1]
}

// percentile interpolates the p-th percentile over an ascending-sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
