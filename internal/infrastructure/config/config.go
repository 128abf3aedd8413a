// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	tolerance := cfg.Matching.ValueTolerance
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/matcher"
)

// Config represents the entire application configuration.
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Matching      MatchingConfig      `yaml:"matching"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig holds database configuration.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// MatchingConfig holds matching-engine policy knobs.
type MatchingConfig struct {
	// ValueTolerance is the acceptable settlement rounding, in currency
	// units, as a decimal string ("0.10").
	ValueTolerance string `yaml:"value_tolerance"`
	// SimilarityThreshold is the text-match rigor, 0-100.
	SimilarityThreshold int `yaml:"similarity_threshold"`
	// SingleCandidatePolicy: "accept" or "require_threshold".
	SingleCandidatePolicy string `yaml:"single_candidate_policy"`
	// DocumentDowngrade: "preserve" or "honor_incoming".
	DocumentDowngrade string `yaml:"document_downgrade"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${RECONCILE_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			DatabasePath: getEnv("RECONCILE_DB_PATH", "reconcile.db"),
		},
		Matching: MatchingConfig{
			ValueTolerance:        getEnv("RECONCILE_VALUE_TOLERANCE", "0.10"),
			SimilarityThreshold:   getEnvInt("RECONCILE_SIMILARITY_THRESHOLD", 70),
			SingleCandidatePolicy: getEnv("RECONCILE_SINGLE_CANDIDATE_POLICY", "accept"),
			DocumentDowngrade:     getEnv("RECONCILE_DOCUMENT_DOWNGRADE", "preserve"),
		},
		API: APIConfig{
			Port: getEnvInt("PORT", 8080),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment
// variables.
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from the specified path, falls back to
// environment variables.
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "reconcile.db"
	}
	if c.Matching.ValueTolerance == "" {
		c.Matching.ValueTolerance = "0.10"
	}
	if c.Matching.SimilarityThreshold == 0 {
		c.Matching.SimilarityThreshold = 70
	}
	if c.Matching.SingleCandidatePolicy == "" {
		c.Matching.SingleCandidatePolicy = "accept"
	}
	if c.Matching.DocumentDowngrade == "" {
		c.Matching.DocumentDowngrade = "preserve"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if len(c.API.AllowedOrigins) == 0 {
		c.API.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// Validate checks enum-valued fields, returning a descriptive error for
// values that would otherwise silently fall back at use sites.
func (c *Config) Validate() error {
	switch c.Matching.SingleCandidatePolicy {
	case "accept", "require_threshold":
	default:
		return fmt.Errorf("invalid single_candidate_policy %q", c.Matching.SingleCandidatePolicy)
	}
	switch c.Matching.DocumentDowngrade {
	case "preserve", "honor_incoming":
	default:
		return fmt.Errorf("invalid document_downgrade %q", c.Matching.DocumentDowngrade)
	}
	if c.Matching.SimilarityThreshold < 0 || c.Matching.SimilarityThreshold > 100 {
		return fmt.Errorf("similarity_threshold must be 0-100, got %d", c.Matching.SimilarityThreshold)
	}
	return nil
}

// EngineConfig converts the matching section to engine configuration.
// Call Validate first; unparseable values fall back to the defaults.
func (m MatchingConfig) EngineConfig() matcher.Config {
	cfg := matcher.DefaultConfig()
	if tol, err := decimal.NewFromString(m.ValueTolerance); err == nil {
		cfg.ValueTolerance = tol
	}
	cfg.SimilarityThreshold = m.SimilarityThreshold
	if m.SingleCandidatePolicy == "require_threshold" {
		cfg.SingleCandidate = matcher.RequireThreshold
	}
	return cfg
}

// DowngradePolicy converts the document_downgrade setting.
func (m MatchingConfig) DowngradePolicy() benner.DowngradePolicy {
	if m.DocumentDowngrade == "honor_incoming" {
		return benner.DowngradeHonorIncoming
	}
	return benner.DowngradePreserve
}

// getEnv retrieves an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback
// default.
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
