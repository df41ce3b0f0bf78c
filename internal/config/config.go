package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DateFormat is the layout used for start_date / end_date.
const DateFormat = "2006-01-02"

// MissingPolicy controls how undefined log returns (missing or
// non-positive prices) are handled.
type MissingPolicy string

const (
	// PolicyFail aborts the run, naming the offending date and ticker.
	PolicyFail MissingPolicy = "fail"
	// PolicyZero substitutes 0.0, the behavior of the reference analysis.
	PolicyZero MissingPolicy = "zero"
	// PolicyDrop removes the affected return row entirely.
	PolicyDrop MissingPolicy = "drop"
)

// Config holds all application configuration.
type Config struct {
	Tickers      []string `yaml:"tickers"`
	StartDate    string   `yaml:"start_date"`
	EndDate      string   `yaml:"end_date"`
	WindowLength int      `yaml:"window_length"`
	MaxDimension int      `yaml:"max_dimension"`

	MissingPolicy MissingPolicy `yaml:"missing_policy"`

	DataSource struct {
		Provider string `yaml:"provider"` // "yahoo", "stooq" or "mock"
		Retries  int    `yaml:"retries"`
	} `yaml:"data_source"`

	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`

	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TOPO_TICKERS"); v != "" {
		cfg.Tickers = splitTickers(v)
	}
	if v := os.Getenv("TOPO_START"); v != "" {
		cfg.StartDate = v
	}
	if v := os.Getenv("TOPO_END"); v != "" {
		cfg.EndDate = v
	}
	if v := os.Getenv("TOPO_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WindowLength = n
		}
	}
	if v := os.Getenv("TOPO_DATA_SOURCE"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.WindowLength == 0 {
		cfg.WindowLength = 21
	}
	if cfg.MaxDimension == 0 {
		cfg.MaxDimension = 2
	}
	if cfg.MissingPolicy == "" {
		cfg.MissingPolicy = PolicyZero
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Retries == 0 {
		cfg.DataSource.Retries = 3
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "out"
	}

	return cfg, nil
}

func splitTickers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if len(c.Tickers) < 2 {
		return fmt.Errorf("tickers: at least 2 required, got %d", len(c.Tickers))
	}
	start, err := c.Start()
	if err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	end, err := c.End()
	if err != nil {
		return fmt.Errorf("end_date: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("end_date %s must be after start_date %s", c.EndDate, c.StartDate)
	}
	if c.WindowLength < 1 {
		return fmt.Errorf("window_length must be positive, got %d", c.WindowLength)
	}
	if c.MaxDimension < 0 || c.MaxDimension > 3 {
		return fmt.Errorf("max_dimension must be in [0,3], got %d", c.MaxDimension)
	}
	switch c.MissingPolicy {
	case PolicyFail, PolicyZero, PolicyDrop:
	default:
		return fmt.Errorf("missing_policy must be fail, zero or drop, got %q", c.MissingPolicy)
	}
	switch c.DataSource.Provider {
	case "yahoo", "stooq", "mock":
	default:
		return fmt.Errorf("data_source.provider must be yahoo, stooq or mock, got %q", c.DataSource.Provider)
	}
	return nil
}

// Start parses the configured start date.
func (c *Config) Start() (time.Time, error) {
	return time.Parse(DateFormat, c.StartDate)
}

// End parses the configured end date.
func (c *Config) End() (time.Time, error) {
	return time.Parse(DateFormat, c.EndDate)
}
