// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mwiater/benchlens/internal/chart"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is a bare config.json in the working directory.
	legacyConfigPath = "config.json"
	// DefaultBackendURL is the analytics API root used when none is configured.
	DefaultBackendURL = "http://localhost:8000/api/v1"
	// defaultRequestTimeout is the default timeout for HTTP requests.
	defaultRequestTimeout = 60 * time.Second
	// defaultQueryLimit caps the rows returned by an explore query.
	defaultQueryLimit = 500
	// defaultOutputDir receives rendered charts and exports.
	defaultOutputDir = "output"
)

// Config represents the top-level application configuration.
type Config struct {
	BackendURL     string        `json:"backendUrl,omitempty" mapstructure:"backendUrl"`
	Debug          bool          `json:"debug" mapstructure:"debug"`
	TimeoutSeconds int           `json:"timeout,omitempty" mapstructure:"timeout"`
	LogFile        string        `json:"logFile,omitempty" mapstructure:"logFile"`
	OutputDir      string        `json:"outputDir,omitempty" mapstructure:"outputDir"`
	Query          QueryDefaults `json:"query" mapstructure:"query"`
	Chart          ChartDefaults `json:"chart" mapstructure:"chart"`
	ConfigPath     string        `json:"-" mapstructure:"-"`
}

// QueryDefaults are applied to every explore request unless overridden.
type QueryDefaults struct {
	Limit       int    `json:"limit,omitempty" mapstructure:"limit"`
	SortBy      string `json:"sortBy,omitempty" mapstructure:"sortBy"`
	SortOrder   string `json:"sortOrder,omitempty" mapstructure:"sortOrder"`
	Aggregation string `json:"aggregation,omitempty" mapstructure:"aggregation"`
}

// ChartDefaults select the initial chart type and display toggles. Nil
// toggles fall back to chart.DefaultConfig.
type ChartDefaults struct {
	Type           string `json:"type,omitempty" mapstructure:"type"`
	ShowDataLabels *bool  `json:"showDataLabels,omitempty" mapstructure:"showDataLabels"`
	ShowLegend     *bool  `json:"showLegend,omitempty" mapstructure:"showLegend"`
	ShowGrid       *bool  `json:"showGrid,omitempty" mapstructure:"showGrid"`
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BaseURL returns the analytics API root without a trailing slash.
func (c Config) BaseURL() string {
	if u := strings.TrimSpace(c.BackendURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return DefaultBackendURL
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "benchlens.log"
}

// OutputPath returns the directory for rendered files.
func (c Config) OutputPath() string {
	if dir := strings.TrimSpace(c.OutputDir); dir != "" {
		return dir
	}
	return defaultOutputDir
}

// QueryLimit returns the configured row limit for explore queries.
func (c Config) QueryLimit() int {
	if c.Query.Limit <= 0 {
		return defaultQueryLimit
	}
	return c.Query.Limit
}

// SortBy returns the default sort column for explore queries.
func (c Config) SortBy() string {
	if s := strings.TrimSpace(c.Query.SortBy); s != "" {
		return s
	}
	return "value"
}

// SortOrder returns asc or desc, defaulting to desc.
func (c Config) SortOrder() string {
	if strings.EqualFold(strings.TrimSpace(c.Query.SortOrder), "asc") {
		return "asc"
	}
	return "desc"
}

// Aggregation returns the default aggregation name.
func (c Config) Aggregation() string {
	if a := strings.TrimSpace(c.Query.Aggregation); a != "" {
		return strings.ToLower(a)
	}
	return "sum"
}

// DefaultChartType returns the configured chart type; unknown names fall
// back to a bar chart.
func (c Config) DefaultChartType() chart.Type {
	return chart.MustParseType(c.Chart.Type)
}

// ChartConfig merges the configured toggles over chart.DefaultConfig.
func (c Config) ChartConfig() chart.Config {
	cfg := chart.DefaultConfig()
	if c.Chart.ShowDataLabels != nil {
		cfg.ShowDataLabels = *c.Chart.ShowDataLabels
	}
	if c.Chart.ShowLegend != nil {
		cfg.ShowLegend = *c.Chart.ShowLegend
	}
	if c.Chart.ShowGrid != nil {
		cfg.ShowGrid = *c.Chart.ShowGrid
	}
	return cfg
}

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				config.ConfigPath = legacyConfigPath
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("no configuration file found (searched %q and %q): %w", DefaultConfigPath, legacyConfigPath, os.ErrNotExist)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q: %w", path, os.ErrNotExist)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate rejects values that would otherwise be silently replaced by
// defaults.
func (c Config) Validate() error {
	if _, ok := chart.ParseType(c.Chart.Type); c.Chart.Type != "" && !ok {
		return fmt.Errorf("unknown chart type %q", c.Chart.Type)
	}
	if o := strings.ToLower(c.Query.SortOrder); o != "" && o != "asc" && o != "desc" {
		return fmt.Errorf("unknown sort order %q", c.Query.SortOrder)
	}
	return nil
}
