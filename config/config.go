package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"nexatel-customer-analytics/metrics"
)

// Config is the complete CLI configuration.
type Config struct {
	Report   ReportConfig   `yaml:"report"`
	Export   ExportConfig   `yaml:"export"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ReportConfig holds dashboard report settings
type ReportConfig struct {
	TrendMonths        int     `yaml:"trend_months"`
	TopCustomers       int     `yaml:"top_customers"`
	HighValueThreshold float64 `yaml:"high_value_threshold"`
	HighValueLimit     int     `yaml:"high_value_limit"`
}

// ExportConfig holds CSV export settings
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// DatabaseConfig holds the optional archive connection
type DatabaseConfig struct {
	URL    string `yaml:"url"`
	Schema string `yaml:"schema"`
	Tag    string `yaml:"tag"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			TrendMonths:        metrics.DefaultTrendMonths,
			TopCustomers:       metrics.DefaultTopCustomers,
			HighValueThreshold: metrics.DefaultHighValueThreshold,
			HighValueLimit:     metrics.DefaultHighValueLimit,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Database: DatabaseConfig{
			Schema: "nexatel_analytics",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in increasing precedence. A .env file in the working
// directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Println(".env not loaded:", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvironmentOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnvironmentOverrides(cfg *Config) {
	if url := getEnvOrDefault("NEXATEL_DB_URL", getEnvOrDefault("DATABASE_URL", "")); url != "" {
		cfg.Database.URL = url
	}
	if schema := getEnvOrDefault("NEXATEL_DB_SCHEMA", ""); schema != "" {
		cfg.Database.Schema = schema
	}
	if months := getEnvOrDefault("NEXATEL_TREND_MONTHS", ""); months != "" {
		if n, err := strconv.Atoi(months); err == nil {
			cfg.Report.TrendMonths = n
		}
	}
	if dir := getEnvOrDefault("NEXATEL_EXPORT_DIR", ""); dir != "" {
		cfg.Export.Dir = dir
	}
	if level := getEnvOrDefault("NEXATEL_LOG_LEVEL", ""); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Report.TrendMonths < 1 || c.Report.TrendMonths > 24 {
		errs = append(errs, fmt.Errorf("report.trend_months must be between 1 and 24, got %d", c.Report.TrendMonths))
	}
	if c.Report.TopCustomers < 0 {
		errs = append(errs, errors.New("report.top_customers must not be negative"))
	}
	if c.Report.HighValueThreshold < 0 {
		errs = append(errs, errors.New("report.high_value_threshold must not be negative"))
	}
	if c.Report.HighValueLimit < 0 {
		errs = append(errs, errors.New("report.high_value_limit must not be negative"))
	}
	if strings.TrimSpace(c.Database.Schema) == "" {
		errs = append(errs, errors.New("database.schema is required"))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}
