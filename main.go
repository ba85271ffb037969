package main

import (
	"fmt"
	"os"

	"housing-scraper/config"
	"housing-scraper/extract"
	"housing-scraper/scraper/housing"
	"housing-scraper/services"
	"housing-scraper/storage"
	"housing-scraper/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetVerbose(cfg.Verbose)

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		logger.Error("Failed to load policy file: %v", err)
		os.Exit(1)
	}

	logger.Info("=== Housing Scraping System starting ===")
	logger.Info("Config — target: %d | pages/city: %d | locations: %d | save interval: %d",
		cfg.TargetProperties, cfg.MaxPagesPerCity, len(cfg.Locations), cfg.SaveInterval)

	checkpoint, err := storage.NewCSVWriter(cfg.CheckpointPath)
	if err != nil {
		logger.Error("Failed to create checkpoint writer: %v", err)
		os.Exit(1)
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer pgWriter.Close()

	engine := extract.NewEngine(logger)
	harvester := housing.NewHarvester(engine, checkpoint, cfg.SaveInterval, cfg.MaxConcurrency, logger)
	housingScraper := housing.New(cfg, harvester, logger)

	rawRecords, err := housingScraper.Scrape()
	if err != nil {
		// Accumulated records were already flushed; report and keep going
		// with whatever we have.
		logger.Error("Housing scrape failed: %v", err)
	}

	if len(rawRecords) == 0 {
		logger.Error("No properties were scraped. Exiting.")
		os.Exit(1)
	}

	logger.Info("Scraped %d raw properties — cleaning...", len(rawRecords))

	cleaner := services.NewCleaner(&policy.Cleaning, logger)
	cleanRecords, stageCounts := cleaner.Clean(rawRecords)

	if len(cleanRecords) == 0 {
		logger.Error("All properties were dropped during cleaning. Exiting.")
		os.Exit(1)
	}

	engineer := services.NewFeatureEngineer(&policy.Features, logger)
	featured := engineer.Enrich(cleanRecords)

	if err := csvWriter.Write(featured); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Featured dataset saved to %s", cfg.CSVOutputPath)
	}

	if err := pgWriter.Write(featured); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
	} else {
		logger.Info("Featured dataset stored in PostgreSQL (table: properties)")
	}

	dbRecords, err := pgWriter.FetchAll()
	if err != nil {
		logger.Error("Failed to fetch properties from DB for insights: %v", err)
		dbRecords = featured
	}

	insightSvc := services.NewInsightService(logger)
	report := insightSvc.Generate(dbRecords, stageCounts)
	insightSvc.Print(report)

	fmt.Printf("  Done. Featured CSV → %s | Featured data → PostgreSQL (properties table)\n\n",
		cfg.CSVOutputPath)
}
