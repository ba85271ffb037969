package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Policy collects every cleaning bound and feature-engineering parameter.
// All values are overridable from the yaml policy file; fields left out of
// the file keep the defaults below.
type Policy struct {
	Cleaning CleaningPolicy `yaml:"cleaning"`
	Features FeaturePolicy  `yaml:"features"`
}

// CleaningPolicy bounds the plausible-value filters of the cleaning pipeline.
type CleaningPolicy struct {
	MinPrice float64 `yaml:"min_price"`
	MaxPrice float64 `yaml:"max_price"`

	MinBHK int `yaml:"min_bhk"`
	MaxBHK int `yaml:"max_bhk"`

	MinPricePerSqft float64 `yaml:"min_price_per_sqft"`
	MaxPricePerSqft float64 `yaml:"max_price_per_sqft"`

	MinArea        float64 `yaml:"min_area"`
	MaxArea        float64 `yaml:"max_area"`
	MinAreaPerRoom float64 `yaml:"min_area_per_room"`

	// Location categories seen fewer times than this collapse to "Other".
	MinLocationCount int `yaml:"min_location_count"`
}

// FeaturePolicy holds bin edges and thresholds for the feature stage.
type FeaturePolicy struct {
	// Breakpoints between Budget / Mid-Range / Premium / Luxury / Ultra-Luxury,
	// in base currency units, ascending.
	PriceBins []float64 `yaml:"price_bins"`
	// Breakpoints between Compact / Medium / Large / Very Large / Mansion,
	// in sqft, ascending.
	AreaBins []float64 `yaml:"area_bins"`

	LuxuryArea         float64 `yaml:"luxury_area"`
	LuxuryBHK          int     `yaml:"luxury_bhk"`
	LuxuryPricePerSqft float64 `yaml:"luxury_price_per_sqft"`

	HighEndPercentile     float64 `yaml:"high_end_percentile"`
	BudgetPricePercentile float64 `yaml:"budget_price_percentile"`
	BudgetAreaPercentile  float64 `yaml:"budget_area_percentile"`
}

// DefaultPolicy returns the policy used when no yaml file is present.
func DefaultPolicy() *Policy {
	return &Policy{
		Cleaning: CleaningPolicy{
			MinPrice:         100_000,
			MaxPrice:         1_000_000_000,
			MinBHK:           1,
			MaxBHK:           10,
			MinPricePerSqft:  500,
			MaxPricePerSqft:  150_000,
			MinArea:          200,
			MaxArea:          10_000,
			MinAreaPerRoom:   150,
			MinLocationCount: 5,
		},
		Features: FeaturePolicy{
			PriceBins:             []float64{5_000_000, 10_000_000, 25_000_000, 50_000_000},
			AreaBins:              []float64{600, 1_200, 2_000, 4_000},
			LuxuryArea:            1_500,
			LuxuryBHK:             3,
			LuxuryPricePerSqft:    8_000,
			HighEndPercentile:     80,
			BudgetPricePercentile: 30,
			BudgetAreaPercentile:  40,
		},
	}
}

// LoadPolicy reads the yaml policy file at path, overlaying it on the
// defaults. A missing file is not an error — the defaults are returned.
func LoadPolicy(path string) (*Policy, error) {
	p := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("policy: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("policy: parse %q: %w", path, err)
	}
	return p, nil
}
