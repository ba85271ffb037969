package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"housing-scraper/config"
	"housing-scraper/extract"
	"housing-scraper/models"
	"housing-scraper/utils"
)

var sectorRe = regexp.MustCompile(`(?i)\bsector\s*(\d+\w*)`)

// Cleaner narrows a raw property table down to modeling-quality rows through
// a fixed sequence of filter stages. Stages run in order because later ones
// assume earlier invariants (the ratio stage assumes price is present).
// A row that fails a filter is dropped for good, never repaired — the only
// repair is the LocationClean column, which is derived, not destructive.
type Cleaner struct {
	policy *config.CleaningPolicy
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given bounds policy.
func NewCleaner(policy *config.CleaningPolicy, logger *utils.Logger) *Cleaner {
	return &Cleaner{policy: policy, logger: logger}
}

type stage struct {
	name string
	keep func(*models.PropertyRecord) bool
}

func (c *Cleaner) stages() []stage {
	p := c.policy
	return []stage{
		{"missing area", func(r *models.PropertyRecord) bool {
			return r.AreaSqft > 0 || r.AreaRaw != ""
		}},
		{"missing price", func(r *models.PropertyRecord) bool {
			return r.Price > 0
		}},
		{fmt.Sprintf("price outside [%.0f, %.0f]", p.MinPrice, p.MaxPrice), func(r *models.PropertyRecord) bool {
			return r.Price >= p.MinPrice && r.Price <= p.MaxPrice
		}},
		{fmt.Sprintf("bhk outside [%d, %d]", p.MinBHK, p.MaxBHK), func(r *models.PropertyRecord) bool {
			return r.BHK >= p.MinBHK && r.BHK <= p.MaxBHK
		}},
		{fmt.Sprintf("price/sqft outside [%.0f, %.0f]", p.MinPricePerSqft, p.MaxPricePerSqft), func(r *models.PropertyRecord) bool {
			// Recompute first so downstream consumers always see a
			// consistent ratio. Area-less rows are exempt here; the
			// area stage below deals with them.
			r.PricePerSqft = extract.PricePerSqft(r.Price, r.AreaSqft)
			if r.AreaSqft <= 0 {
				return true
			}
			return r.PricePerSqft >= p.MinPricePerSqft && r.PricePerSqft <= p.MaxPricePerSqft
		}},
		{fmt.Sprintf("implausible area (abs [%.0f, %.0f], min %.0f sqft/room)", p.MinArea, p.MaxArea, p.MinAreaPerRoom), func(r *models.PropertyRecord) bool {
			if r.AreaSqft <= 0 {
				return true
			}
			if r.AreaSqft < p.MinArea || r.AreaSqft > p.MaxArea {
				return false
			}
			return r.AreaSqft >= float64(r.BHK)*p.MinAreaPerRoom
		}},
	}
}

// Clean runs the filter stages in order and returns the surviving rows plus
// the per-stage drop accounting. Running Clean on its own output removes
// nothing.
func (c *Cleaner) Clean(records []*models.PropertyRecord) ([]*models.PropertyRecord, []models.StageCount) {
	result := records
	counts := make([]models.StageCount, 0, 8)

	for _, st := range c.stages() {
		kept := make([]*models.PropertyRecord, 0, len(result))
		for _, r := range result {
			if st.keep(r) {
				kept = append(kept, r)
			}
		}
		dropped := len(result) - len(kept)
		counts = append(counts, models.StageCount{Stage: st.name, Dropped: dropped})
		if dropped > 0 {
			c.logger.Info("[cleaner] Stage %q dropped %d rows (%d left)", st.name, dropped, len(kept))
		}
		result = kept
	}

	bucketed := c.normalizeLocations(result)
	counts = append(counts, models.StageCount{Stage: "location bucketing", Dropped: 0})
	c.logger.Info("[cleaner] Location bucketing collapsed %d rows to \"Other\"", bucketed)

	c.logger.Info("[cleaner] Cleaned %d → %d rows (dropped %d)",
		len(records), len(result), len(records)-len(result))
	return result, counts
}

// normalizeLocations fills LocationClean: title-cased, sector spacing
// canonicalized, and categories seen fewer than MinLocationCount times
// collapsed to "Other". Returns the number of rows bucketed to "Other".
func (c *Cleaner) normalizeLocations(records []*models.PropertyRecord) int {
	freq := make(map[string]int)
	for _, r := range records {
		r.LocationClean = normalizeLocation(r.Location)
		if r.LocationClean != "" {
			freq[r.LocationClean]++
		}
	}

	bucketed := 0
	for _, r := range records {
		if r.LocationClean == "" || freq[r.LocationClean] < c.policy.MinLocationCount {
			r.LocationClean = "Other"
			bucketed++
		}
	}
	return bucketed
}

// normalizeLocation trims, collapses whitespace, title-cases each word and
// rewrites "sector12"/"sector  12" style tokens to "Sector 12".
func normalizeLocation(s string) string {
	s = extract.CleanText(s)
	if s == "" {
		return ""
	}

	s = sectorRe.ReplaceAllString(s, "Sector $1")

	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	runes := []rune(w)
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			break
		}
	}
	return string(runes)
}
