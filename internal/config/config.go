package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	DataDir   string
	OutputDir string

	RequiredStartYear int
	RequiredEndYear   int

	BLSAPIBaseURL   string
	BLSAPIKey       string
	BLSRateLimitRPS int
	BLSTimeoutMs    int
	BLSRegionCode   string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		DataDir:   getEnv("DATA_DIR", filepath.Join(cwd, "data")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "analysis", "outputs")),

		RequiredStartYear: getEnvInt("REQUIRED_START_YEAR", 2019),
		RequiredEndYear:   getEnvInt("REQUIRED_END_YEAR", 2025),

		BLSAPIBaseURL:   getEnv("BLS_API_BASE_URL", "https://api.bls.gov/publicAPI/v2"),
		BLSAPIKey:       getEnv("BLS_API_KEY", ""),
		BLSRateLimitRPS: getEnvInt("BLS_RATE_LIMIT_RPS", 2),
		BLSTimeoutMs:    getEnvInt("BLS_TIMEOUT_MS", 30000),
		BLSRegionCode:   getEnv("BLS_REGION_CODE", "0300"),
	}

	if cfg.RequiredStartYear > cfg.RequiredEndYear {
		return Config{}, fmt.Errorf("invalid year range: %d..%d", cfg.RequiredStartYear, cfg.RequiredEndYear)
	}

	return cfg, nil
}

// RequiredYears lists every year of the required range, ascending.
func (c Config) RequiredYears() []int {
	out := make([]int, 0, c.RequiredEndYear-c.RequiredStartYear+1)
	for y := c.RequiredStartYear; y <= c.RequiredEndYear; y++ {
		out = append(out, y)
	}
	return out
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
