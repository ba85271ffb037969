package models

import (
	"strconv"
	"time"
)

// Age labels produced by the extraction cascade. Numeric ages are stored as
// plain digit strings in the same column, matching the scraped site's wording.
const (
	AgeReadyToMove       = "Ready to Move"
	AgeUnderConstruction = "Under Construction"
	AgeNewLaunch         = "New Launch"
)

// Fragment is one listing card as lifted from the results page: the
// source-provided listing id plus the card's raw markup. It is consumed once
// by the extraction engine and discarded.
type Fragment struct {
	ListingID string
	HTML      string
}

// PropertyRecord is the structured output of the extraction engine for one
// fragment, later narrowed by the cleaner and widened by feature engineering.
// The zero value of a field means "absent": extraction is best-effort and a
// missing field never invalidates the record on its own.
type PropertyRecord struct {
	ListingID     string
	Title         string
	City          string
	Location      string
	LocationClean string

	// Raw matched substrings, kept for auditing alongside the parsed values.
	PriceRaw string
	AreaRaw  string
	Price    float64
	AreaSqft float64

	BHK          int
	Bathrooms    int
	PropertyType string
	Floor        int
	TotalFloors  int
	Furnishing   string
	Age          string
	Parking      int
	Balcony      int

	HasGym         bool
	HasPool        bool
	HasSecurity    bool
	HasLift        bool
	HasPowerBackup bool
	HasGarden      bool
	HasClub        bool

	// Derived at extraction time; recomputed by the cleaner.
	PricePerSqft  float64
	IsHighFloor   bool // meaningful only when Floor > 0
	IsNewProperty bool // meaningful only when Age != ""

	// Engineered columns, filled by the feature stage.
	PriceInCrores   float64
	PriceCategory   string
	AreaCategory    string
	AreaPerBHK      float64
	PricePerBHK     float64
	PriceEfficiency float64
	HasParking      bool
	LuxuryScore     int
	MarketSegment   string

	PageScraped int
	ScrapedAt   time.Time
}

// AgeYears returns the numeric age when the Age column holds a year count.
func (r *PropertyRecord) AgeYears() (int, bool) {
	if r.Age == "" {
		return 0, false
	}
	n, err := strconv.Atoi(r.Age)
	if err != nil {
		return 0, false
	}
	return n, true
}

// StageCount records how many rows one cleaning stage removed and why.
type StageCount struct {
	Stage   string
	Dropped int
}

// RunReport holds the end-of-run statistics over the final dataset.
type RunReport struct {
	TotalRecords    int
	Cities          int
	UniqueLocations int

	AvgPrice        float64
	MedianPrice     float64
	MinPrice        float64
	MaxPrice        float64
	AvgPricePerSqft float64
	AvgArea         float64

	BHKDistribution        map[int]int
	PropertyTypes          map[string]int
	FurnishingDistribution map[string]int
	CityDistribution       map[string]int
	SegmentDistribution    map[string]int

	// Coverage maps field name to the share of records carrying a value,
	// in percent.
	Coverage    map[string]float64
	StageCounts []StageCount
}
