package extract

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"housing-scraper/models"
	"housing-scraper/utils"
)

// Per-field pattern cascades, ordered broadest-last.
var (
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)₹\s*([\d.,]+)\s*(Lac|Lakh|Cr|Crore)`),
		regexp.MustCompile(`(?i)([\d.,]+)\s*(Lac|Lakh|Cr|Crore)`),
		regexp.MustCompile(`₹\s*([\d.,]+)`),
	}

	areaPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([\d.,]+)\s*(sq\.?\s*ft|sqft|sq\s*feet)`),
		regexp.MustCompile(`(?i)([\d.,]+)\s*(sq\.?\s*m|sqm)`),
		regexp.MustCompile(`(?i)([\d.,]+)\s*ft`),
	}

	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Sector\s+\d+[A-Z]*`),
		regexp.MustCompile(`(?i)Greater\s+Noida`),
		regexp.MustCompile(`(?i)Noida`),
		regexp.MustCompile(`(?i)Gurgaon`),
		regexp.MustCompile(`(?i)Delhi`),
		regexp.MustCompile(`(?i)Faridabad`),
		regexp.MustCompile(`(?i)Ghaziabad`),
		regexp.MustCompile(`(?i)Phase\s+\d+`),
		regexp.MustCompile(`[A-Z][a-z]+\s+Vihar`),
		regexp.MustCompile(`[A-Z][a-z]+\s+Extension`),
		regexp.MustCompile(`[A-Z][a-z]+pur\b`),
		regexp.MustCompile(`[A-Z][a-z]+\s+Enclave`),
	}

	typePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)apartment|flat`),
		regexp.MustCompile(`(?i)villa|bungalow`),
		regexp.MustCompile(`(?i)house|kothi`),
		regexp.MustCompile(`(?i)duplex`),
		regexp.MustCompile(`(?i)penthouse`),
		regexp.MustCompile(`(?i)studio`),
		regexp.MustCompile(`(?i)plot|land`),
	}

	bhkTextPatterns  = []*regexp.Regexp{regexp.MustCompile(`(?i)(\d+)\s*BHK`)}
	bathroomPatterns = []*regexp.Regexp{regexp.MustCompile(`(?i)(\d+)\s*(?:bath|toilet)`)}

	floorOutOfRe = regexp.MustCompile(`(?i)(\d+)(?:st|nd|rd|th)?\s*floor\s*out\s*of\s*(\d+)`)
	floorRe      = regexp.MustCompile(`(?i)(\d+)(?:st|nd|rd|th)?\s*floor`)

	fullyFurnishedRe = regexp.MustCompile(`(?i)fully\s*furnished`)
	semiFurnishedRe  = regexp.MustCompile(`(?i)semi\s*furnished`)
	unfurnishedRe    = regexp.MustCompile(`(?i)unfurnished`)

	parkingCountRe = regexp.MustCompile(`(?i)(\d+)\s*parking`)
	parkingAnyRe   = regexp.MustCompile(`(?i)parking|garage`)
	balconyCountRe = regexp.MustCompile(`(?i)(\d+)\s*balcon`)
	balconyAnyRe   = regexp.MustCompile(`(?i)balcony`)
)

// amenityChecks are independent presence tests, not a cascade: every flag is
// evaluated for every record.
var amenityChecks = []struct {
	set func(*models.PropertyRecord)
	re  *regexp.Regexp
}{
	{func(r *models.PropertyRecord) { r.HasGym = true }, regexp.MustCompile(`(?i)gym|fitness`)},
	{func(r *models.PropertyRecord) { r.HasPool = true }, regexp.MustCompile(`(?i)pool|swimming`)},
	{func(r *models.PropertyRecord) { r.HasSecurity = true }, regexp.MustCompile(`(?i)security|guard`)},
	{func(r *models.PropertyRecord) { r.HasLift = true }, regexp.MustCompile(`(?i)lift|elevator`)},
	{func(r *models.PropertyRecord) { r.HasPowerBackup = true }, regexp.MustCompile(`(?i)power\s*backup|generator`)},
	{func(r *models.PropertyRecord) { r.HasGarden = true }, regexp.MustCompile(`(?i)garden|park`)},
	{func(r *models.PropertyRecord) { r.HasClub = true }, regexp.MustCompile(`(?i)club\s*house`)},
}

// Engine turns one listing fragment into a structured record by running the
// field cascades over the fragment's flattened text.
type Engine struct {
	logger *utils.Logger
}

// NewEngine creates an extraction engine with the given logger.
func NewEngine(logger *utils.Logger) *Engine {
	return &Engine{logger: logger}
}

// Extract builds a PropertyRecord from a fragment. The city is the harvest
// context (derived from the location slug), index is the fragment's position
// on its page, used only for diagnostics. The second return value is false
// when both title and price extraction fail — such fragments carry no usable
// signal and are skipped.
func (e *Engine) Extract(frag models.Fragment, city string, index int) (*models.PropertyRecord, bool) {
	text := flatten(frag.HTML)

	rec := &models.PropertyRecord{
		ListingID: frag.ListingID,
		City:      city,
		Title:     extractTitle(frag.HTML),
		ScrapedAt: time.Now(),
	}

	if raw, ok := firstMatch(text, pricePatterns); ok {
		rec.PriceRaw = raw
		rec.Price, _ = ParsePrice(raw)
	}
	if raw, ok := firstMatch(text, areaPatterns); ok {
		rec.AreaRaw = raw
		rec.AreaSqft, _ = ParseArea(raw)
	}

	if bhk, ok := firstSubmatchInt(text, bhkTextPatterns); ok {
		rec.BHK = bhk
	} else if bhk, ok := ParseBHK(rec.Title); ok {
		rec.BHK = bhk
	}

	rec.Location, _ = firstMatch(text, locationPatterns)
	if t, ok := firstMatch(text, typePatterns); ok {
		rec.PropertyType = strings.ToLower(t)
	}
	rec.Bathrooms, _ = firstSubmatchInt(text, bathroomPatterns)

	if m := floorOutOfRe.FindStringSubmatch(text); m != nil {
		rec.Floor = atoiSafe(m[1])
		rec.TotalFloors = atoiSafe(m[2])
	} else if m := floorRe.FindStringSubmatch(text); m != nil {
		rec.Floor = atoiSafe(m[1])
	}

	switch {
	case fullyFurnishedRe.MatchString(text):
		rec.Furnishing = "Fully Furnished"
	case semiFurnishedRe.MatchString(text):
		rec.Furnishing = "Semi Furnished"
	case unfurnishedRe.MatchString(text):
		rec.Furnishing = "Unfurnished"
	}

	rec.Age, _ = ParseAge(text)

	if m := parkingCountRe.FindStringSubmatch(text); m != nil {
		rec.Parking = atoiSafe(m[1])
	} else if parkingAnyRe.MatchString(text) {
		rec.Parking = 1
	}

	if m := balconyCountRe.FindStringSubmatch(text); m != nil {
		rec.Balcony = atoiSafe(m[1])
	} else if balconyAnyRe.MatchString(text) {
		rec.Balcony = 1
	}

	for _, a := range amenityChecks {
		if a.re.MatchString(text) {
			a.set(rec)
		}
	}

	if rec.Title == "" && rec.PriceRaw == "" {
		e.logger.Debug("[extract] Skipping fragment %d (id %s): no title and no price", index, frag.ListingID)
		return nil, false
	}

	rec.PricePerSqft = PricePerSqft(rec.Price, rec.AreaSqft)
	rec.IsHighFloor = rec.Floor > 5
	rec.IsNewProperty = rec.Age == models.AgeNewLaunch || rec.Age == models.AgeUnderConstruction

	return rec, true
}

// PricePerSqft computes the price/area ratio, zero when either operand is
// absent. Shared with the cleaning pipeline, which recomputes it.
func PricePerSqft(price, areaSqft float64) float64 {
	if price <= 0 || areaSqft <= 0 {
		return 0
	}
	return price / areaSqft
}

// flatten strips all markup from a fragment and returns the concatenated
// descendant text in document order, whitespace-collapsed. On unparseable
// input the raw payload is used as-is; the cascades still get a shot at it.
func flatten(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return CleanText(html)
	}
	return CleanText(doc.Text())
}

// extractTitle returns the text of the first hyperlink longer than 10
// characters — listing cards wrap the property name in the card link, while
// shorter anchors are chrome ("Contact", "View Number").
func extractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	title := ""
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := CleanText(sel.Text())
		if utf8.RuneCountInString(text) > 10 {
			title = text
			return false
		}
		return true
	})
	return title
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
