package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration loaded from environment variables.
// Cleaning bounds and feature parameters live in the yaml policy file instead
// (see policy.go) — they are tuning knobs, not deployment settings.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	TargetProperties   int
	MaxPagesPerCity    int
	MaxPerCity         int
	MaxRetries         int
	SaveInterval       int
	MaxConcurrency     int
	MinPageDelayMs     int
	MaxPageDelayMs     int
	PageTimeoutSeconds int

	// Locations are housing.com buy-listing slugs, e.g. "new_delhi/new_delhi".
	Locations []string

	CSVOutputPath  string
	CheckpointPath string
	PolicyPath     string
	ChromeBin      string
	Verbose        bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "housing_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		TargetProperties:   getEnvInt("TARGET_PROPERTIES", 10000),
		MaxPagesPerCity:    getEnvInt("MAX_PAGES_PER_CITY", 100),
		MaxPerCity:         getEnvInt("MAX_PER_CITY", 2000),
		MaxRetries:         getEnvInt("MAX_RETRIES", 3),
		SaveInterval:       getEnvInt("SAVE_INTERVAL", 500),
		MaxConcurrency:     getEnvInt("MAX_CONCURRENCY", 3),
		MinPageDelayMs:     getEnvInt("MIN_PAGE_DELAY_MS", 2000),
		MaxPageDelayMs:     getEnvInt("MAX_PAGE_DELAY_MS", 5000),
		PageTimeoutSeconds: getEnvInt("PAGE_TIMEOUT_SECONDS", 20),

		Locations: getEnvList("LOCATIONS", []string{
			"new_delhi/new_delhi",
			"gurgaon/gurgaon",
			"noida/noida",
			"greater_noida/greater_noida",
			"faridabad/faridabad",
			"ghaziabad/ghaziabad",
		}),

		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", "./output/housing_data.csv"),
		CheckpointPath: getEnv("CHECKPOINT_PATH", "./output/housing_data_backup.csv"),
		PolicyPath:     getEnv("POLICY_PATH", "./configs/policy.yaml"),
		ChromeBin:      getEnv("CHROME_BIN", ""),
		Verbose:        getEnvBool("VERBOSE", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
