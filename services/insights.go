package services

import (
	"fmt"
	"sort"
	"strings"

	"housing-scraper/models"
	"housing-scraper/utils"
)

// InsightService computes the end-of-run accounting over the final dataset:
// price statistics, distributions, per-field coverage, and the cleaning
// stage counts. The report is diagnostic output so results stay auditable
// across runs.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(records []*models.PropertyRecord, stageCounts []models.StageCount) *models.RunReport {
	report := &models.RunReport{
		BHKDistribution:        make(map[int]int),
		PropertyTypes:          make(map[string]int),
		FurnishingDistribution: make(map[string]int),
		CityDistribution:       make(map[string]int),
		SegmentDistribution:    make(map[string]int),
		Coverage:               make(map[string]float64),
		StageCounts:            stageCounts,
	}

	if len(records) == 0 {
		return report
	}

	report.TotalRecords = len(records)

	cities := make(map[string]struct{})
	locations := make(map[string]struct{})

	var prices, areas, ratios []float64
	for _, r := range records {
		if r.City != "" {
			cities[r.City] = struct{}{}
			report.CityDistribution[r.City]++
		}
		if r.LocationClean != "" {
			locations[r.LocationClean] = struct{}{}
		}
		if r.Price > 0 {
			prices = append(prices, r.Price)
		}
		if r.AreaSqft > 0 {
			areas = append(areas, r.AreaSqft)
		}
		if r.PricePerSqft > 0 {
			ratios = append(ratios, r.PricePerSqft)
		}
		if r.BHK > 0 {
			report.BHKDistribution[r.BHK]++
		}
		if r.PropertyType != "" {
			report.PropertyTypes[r.PropertyType]++
		}
		if r.Furnishing != "" {
			report.FurnishingDistribution[r.Furnishing]++
		}
		if r.MarketSegment != "" {
			report.SegmentDistribution[r.MarketSegment]++
		}
	}

	report.Cities = len(cities)
	report.UniqueLocations = len(locations)

	if len(prices) > 0 {
		sort.Float64s(prices)
		report.MinPrice = prices[0]
		report.MaxPrice = prices[len(prices)-1]
		report.AvgPrice = mean(prices)
		report.MedianPrice = median(prices)
	}
	report.AvgPricePerSqft = mean(ratios)
	report.AvgArea = mean(areas)

	report.Coverage = coverage(records)

	return report
}

// coverage computes, per tracked field, the share of records carrying a
// value, in percent.
func coverage(records []*models.PropertyRecord) map[string]float64 {
	present := map[string]int{}
	for _, r := range records {
		if r.Price > 0 {
			present["price"]++
		}
		if r.AreaSqft > 0 {
			present["area_sqft"]++
		}
		if r.BHK > 0 {
			present["bhk"]++
		}
		if r.Bathrooms > 0 {
			present["bathrooms"]++
		}
		if r.Floor > 0 {
			present["floor"]++
		}
		if r.Parking > 0 {
			present["parking"]++
		}
		if r.Location != "" {
			present["location"]++
		}
		if r.Age != "" {
			present["age"]++
		}
	}

	out := make(map[string]float64, len(present))
	for field, n := range present {
		out[field] = float64(n) / float64(len(records)) * 100
	}
	return out
}

func (s *InsightService) Print(r *models.RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 HOUSING DATASET STATISTICS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total properties   : \033[1m%d\033[0m\n", r.TotalRecords)
	fmt.Printf("  Cities covered     : \033[1m%d\033[0m\n", r.Cities)
	fmt.Printf("  Unique locations   : \033[1m%d\033[0m\n", r.UniqueLocations)
	fmt.Println()

	// Price stats
	fmt.Printf("\033[1;33m  Price Statistics\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.AvgPrice > 0 {
		fmt.Printf("  Average price  : \033[1;32m₹%.0f\033[0m\n", r.AvgPrice)
		fmt.Printf("  Median price   : \033[1;32m₹%.0f\033[0m\n", r.MedianPrice)
		fmt.Printf("  Price range    : \033[1;32m₹%.0f – ₹%.0f\033[0m\n", r.MinPrice, r.MaxPrice)
		fmt.Printf("  Average ₹/sqft : \033[1;32m%.0f\033[0m\n", r.AvgPricePerSqft)
		fmt.Printf("  Average area   : \033[1;32m%.0f sqft\033[0m\n", r.AvgArea)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	// BHK distribution
	fmt.Printf("\033[1;33m  BHK Distribution\033[0m\n")
	fmt.Printf("  %s\n", thin)
	var bhks []int
	for bhk := range r.BHKDistribution {
		bhks = append(bhks, bhk)
	}
	sort.Ints(bhks)
	for _, bhk := range bhks {
		fmt.Printf("  %d BHK : %d\n", bhk, r.BHKDistribution[bhk])
	}
	fmt.Println()

	printCountMap("Property Types", thin, r.PropertyTypes)
	printCountMap("Furnishing", thin, r.FurnishingDistribution)
	printCountMap("City Distribution", thin, r.CityDistribution)
	printCountMap("Market Segments", thin, r.SegmentDistribution)

	// Field coverage
	fmt.Printf("\033[1;33m  Field Coverage\033[0m\n")
	fmt.Printf("  %s\n", thin)
	var fields []string
	for field := range r.Coverage {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool { return r.Coverage[fields[i]] > r.Coverage[fields[j]] })
	for _, field := range fields {
		fmt.Printf("  %-12s %5.1f%%\n", field, r.Coverage[field])
	}
	fmt.Println()

	// Cleaning accounting
	fmt.Printf("\033[1;33m  Cleaning Stages\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.StageCounts) == 0 {
		fmt.Printf("  No cleaning accounting recorded\n")
	} else {
		for _, sc := range r.StageCounts {
			fmt.Printf("  %-46s -%d\n", truncate(sc.Stage, 44), sc.Dropped)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCountMap(title, thin string, counts map[string]int) {
	fmt.Printf("\033[1;33m  %s\033[0m\n", title)
	fmt.Printf("  %s\n", thin)
	if len(counts) == 0 {
		fmt.Printf("  No data\n\n")
		return
	}

	type kv struct {
		key   string
		count int
	}
	var entries []kv
	for k, v := range counts {
		entries = append(entries, kv{k, v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].count > entries[j].count })
	for _, e := range entries {
		bar := strings.Repeat("█", barLen(e.count))
		fmt.Printf("  %-24s %s (%d)\n", truncate(e.key, 22), bar, e.count)
	}
	fmt.Println()
}

// barLen caps histogram bars so large runs stay readable.
func barLen(count int) int {
	if count > 40 {
		return 40
	}
	return count
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var total float64
	for _, v := range vals {
		total += v
	}
	return total / float64(len(vals))
}

// median expects an ascending-sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
