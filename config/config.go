// Package config reads the nexus configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/nexus"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	LedgerFile     string
	MonthlyCeiling nexus.Money
	FallbackPrice  nexus.Money
	LogLevel       string
	LogPretty      bool
	ListenAddr     string
	AllowedOrigins []string
	GeminiAPIKey   string
	GeminiModel    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	ceiling, err := getEnvAsMoney("NEXUS_MONTHLY_CEILING", nexus.DefaultMonthlyCeiling)
	if err != nil {
		return nil, err
	}
	fallback, err := getEnvAsMoney("NEXUS_FALLBACK_PRICE", nexus.DefaultReferencePrice)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LedgerFile:     getEnv("NEXUS_LEDGER_FILE", "nexus.json"),
		MonthlyCeiling: ceiling,
		FallbackPrice:  fallback,
		LogLevel:       getEnv("NEXUS_LOG_LEVEL", "info"),
		LogPretty:      getEnvAsBool("NEXUS_LOG_PRETTY", true),
		ListenAddr:     getEnv("NEXUS_LISTEN_ADDR", ":8080"),
		AllowedOrigins: getEnvAsList("NEXUS_ALLOWED_ORIGINS", []string{"*"}),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("NEXUS_GEMINI_MODEL", "gemini-2.5-flash"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.LedgerFile == "" {
		return fmt.Errorf("NEXUS_LEDGER_FILE is required")
	}
	if c.MonthlyCeiling.IsNegative() {
		return fmt.Errorf("NEXUS_MONTHLY_CEILING must not be negative")
	}
	if !c.FallbackPrice.IsPositive() {
		return fmt.Errorf("NEXUS_FALLBACK_PRICE must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var res []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			res = append(res, item)
		}
	}
	return res
}

func getEnvAsMoney(key string, defaultValue nexus.Money) (nexus.Money, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return nexus.Money{}, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return nexus.M(d), nil
}
