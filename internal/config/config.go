// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir               string // Base directory for all databases (always absolute)
	Port                  int
	LogLevel              string
	DevMode               bool
	SnapshotRetentionDays int // Report snapshots older than this are pruned
	Risk                  RiskParams
}

// RiskParams holds the empirically chosen constants of the risk model.
// They are deliberately configurable rather than derived: the tier
// thresholds and the inner watch boundary have no documented statistical
// justification beyond policy choice.
type RiskParams struct {
	VaRPercentile     float64 // Lower-tail percentile for historical VaR (default 5 => 95% confidence)
	TierBMultiplier   float64 // Tier B upper bound as a multiple of the risk budget
	TierBInnerDivisor float64 // Divisor defining the tier-B watch threshold
	DaysPerMonth      int     // Calendar days assumed per term month
}

// DefaultRiskParams returns the standard risk model parameters.
func DefaultRiskParams() RiskParams {
	return RiskParams{
		VaRPercentile:     5,
		TierBMultiplier:   1.2,
		TierBInnerDivisor: 1.15,
		DaysPerMonth:      30,
	}
}

// Load reads configuration from environment variables (and a .env file when
// present).
func Load() (*Config, error) {
	// .env is optional; environment variables win
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:               getEnv("DATA_DIR", "./data"),
		Port:                  getEnvInt("PORT", 8090),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		DevMode:               getEnvBool("DEV_MODE", false),
		SnapshotRetentionDays: getEnvInt("SNAPSHOT_RETENTION_DAYS", 90),
		Risk: RiskParams{
			VaRPercentile:     getEnvFloat("RISK_VAR_PERCENTILE", 5),
			TierBMultiplier:   getEnvFloat("RISK_TIER_B_MULTIPLIER", 1.2),
			TierBInnerDivisor: getEnvFloat("RISK_TIER_B_INNER_DIVISOR", 1.15),
			DaysPerMonth:      getEnvInt("RISK_DAYS_PER_MONTH", 30),
		},
	}

	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	cfg.DataDir = absDataDir

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Risk.VaRPercentile <= 0 || c.Risk.VaRPercentile >= 50 {
		return fmt.Errorf("invalid VaR percentile: %g", c.Risk.VaRPercentile)
	}
	if c.Risk.TierBMultiplier <= 1 {
		return fmt.Errorf("tier B multiplier must exceed 1, got %g", c.Risk.TierBMultiplier)
	}
	if c.Risk.TierBInnerDivisor <= 1 {
		return fmt.Errorf("tier B inner divisor must exceed 1, got %g", c.Risk.TierBInnerDivisor)
	}
	if c.Risk.DaysPerMonth <= 0 {
		return fmt.Errorf("days per month must be positive, got %d", c.Risk.DaysPerMonth)
	}
	return nil
}

// DatabasePath returns the path for a named database file under DataDir.
func (c *Config) DatabasePath(name string) string {
	return filepath.Join(c.DataDir, name+".db")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
