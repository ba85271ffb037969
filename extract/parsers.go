package extract

import (
	"regexp"
	"strconv"
	"strings"

	"housing-scraper/models"
)

// Unit parsers. All of them are total: any input that fails to yield a value
// reports absence instead of an error. Matching is best-effort — the first
// numeric token wins and no further validation is applied.

var (
	priceNumberRe = regexp.MustCompile(`[\d.]+`)
	areaNumberRe  = regexp.MustCompile(`[\d,]+\.?\d*`)
	bhkRe         = regexp.MustCompile(`(\d+)\s*bhk`)
	yearsOldRe    = regexp.MustCompile(`(\d+)\s*years?\s*old`)
)

// ParsePrice extracts a numeric price in base currency units from free text.
// Indian numbering markers scale the value: crore ×1e7, lakh ×1e5.
//
//	"₹45 Lac"  → 4500000
//	"1.2 Cr"   → 12000000
//	"₹9,50,000" → 950000
func ParsePrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	t := strings.ToLower(strings.ReplaceAll(text, ",", ""))

	tok := priceNumberRe.FindString(t)
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}

	switch {
	case strings.Contains(t, "cr"):
		return v * 10_000_000, true
	case strings.Contains(t, "lac") || strings.Contains(t, "lakh"):
		return v * 100_000, true
	}
	return v, true
}

// ParseArea extracts an area from free text, normalized to sqft.
// Square metres convert at 10.764 sqft/sqm, square yards at 9 sqft/sqyrd.
func ParseArea(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	tok := areaNumberRe.FindString(text)
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", ""), 64)
	if err != nil {
		return 0, false
	}

	// Normalize unit spelling ("sq. ft", "sq m") before matching.
	t := strings.ReplaceAll(strings.ToLower(text), ".", "")
	t = strings.Join(strings.Fields(t), " ")
	switch {
	case strings.Contains(t, "sqft") || strings.Contains(t, "sq ft") || strings.Contains(t, "sq feet"):
		return v, true
	case strings.Contains(t, "sqm") || strings.Contains(t, "sq m"):
		return v * 10.764, true
	case strings.Contains(t, "sqyrd") || strings.Contains(t, "sq yrd"):
		return v * 9, true
	}
	return v, true
}

// ParseBHK extracts the bedroom count from an "N BHK" token.
func ParseBHK(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	m := bhkRe.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseAge extracts a property age: either a lifecycle label or a year count
// rendered as a digit string (see models.PropertyRecord.AgeYears).
func ParseAge(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	t := strings.ToLower(text)

	switch {
	case strings.Contains(t, "new construction") || strings.Contains(t, "under construction"):
		return models.AgeUnderConstruction, true
	case strings.Contains(t, "ready to move"):
		return models.AgeReadyToMove, true
	case strings.Contains(t, "new launch"):
		return models.AgeNewLaunch, true
	}

	if m := yearsOldRe.FindStringSubmatch(t); m != nil {
		return m[1], true
	}
	return "", false
}

// CleanText trims the input and collapses internal whitespace runs to single
// spaces. An empty result means the input carried no visible text.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
