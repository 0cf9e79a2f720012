// Package config defines the configuration model for the ingestion CLI.
// Configuration is loaded from a TOML file, then overridden by NYCETL_*
// environment variables so credentials can stay out of the file. Validation
// reports all problems at once, graded by severity, instead of failing on
// the first.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level configuration object.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Data    DataConfig    `toml:"data"`
	Metrics MetricsConfig `toml:"metrics"`
}

// StorageConfig selects and parameterizes the database backend. Either DSN is
// given directly, or (for MySQL) it is assembled from the discrete fields.
type StorageConfig struct {
	// Kind selects the storage backend. Defaults to "mysql".
	Kind string `toml:"kind"`

	// DSN, when set, is passed to the backend verbatim and wins over the
	// discrete fields below.
	DSN string `toml:"dsn"`

	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// DataConfig locates the extracts on disk.
type DataConfig struct {
	// Dir is the base directory resolved against each dataset's default
	// source path.
	Dir string `toml:"dir"`

	// Paths overrides the source path per dataset name.
	Paths map[string]string `toml:"paths"`
}

// MetricsConfig selects an optional metrics backend. An empty Backend leaves
// metrics off.
type MetricsConfig struct {
	// Backend is "pushgateway", "datadog", or empty.
	Backend string `toml:"backend"`

	// Address is the Pushgateway base URL or the DogStatsD address.
	Address string `toml:"address"`
}

// Severity grades a validation finding.
type Severity int

const (
	// Warn findings are reported but do not block a run.
	Warn Severity = iota
	// Fatal findings abort before anything touches the network.
	Fatal
)

func (s Severity) String() string {
	if s == Fatal {
		return "fatal"
	}
	return "warn"
}

// Issue is one validation finding.
type Issue struct {
	Severity Severity
	Field    string
	Msg      string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Field, i.Msg)
}

// Default returns the baseline configuration before file and environment
// overrides.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Kind: "mysql",
			Host: "127.0.0.1",
			Port: 3306,
		},
		Data: DataConfig{Dir: "data"},
	}
}

// Load reads the TOML file at path (if it exists), applies NYCETL_*
// environment overrides, and returns the merged configuration. A missing
// file is not an error; the environment alone can carry a full config.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		body, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(body, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to env
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv folds NYCETL_* variables over the file values.
func (c *Config) applyEnv() {
	set := func(target *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*target = v
		}
	}
	set(&c.Storage.Kind, "NYCETL_DB_KIND")
	set(&c.Storage.DSN, "NYCETL_DB_DSN")
	set(&c.Storage.Host, "NYCETL_DB_HOST")
	set(&c.Storage.User, "NYCETL_DB_USER")
	set(&c.Storage.Password, "NYCETL_DB_PASSWORD")
	set(&c.Storage.Database, "NYCETL_DB_DATABASE")
	set(&c.Data.Dir, "NYCETL_DATA_DIR")
	set(&c.Metrics.Backend, "NYCETL_METRICS_BACKEND")
	set(&c.Metrics.Address, "NYCETL_METRICS_ADDRESS")
	if v, ok := os.LookupEnv("NYCETL_DB_PORT"); ok {
		if p, err := strconv.Atoi(v); err == nil {
			c.Storage.Port = p
		}
	}
}

// ResolveDSN returns the effective connection string. MySQL configs may be
// assembled from the discrete fields; every other backend needs an explicit
// DSN.
func (s *StorageConfig) ResolveDSN() string {
	if s.DSN != "" {
		return s.DSN
	}
	if s.Kind != "mysql" {
		return ""
	}
	// parseTime so DATE columns scan cleanly; utf8mb4 to match the tables.
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		s.User, s.Password, s.Host, s.Port, s.Database)
}

// Validate reports all configuration findings, fatal and advisory.
func (c *Config) Validate() []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Storage.Kind) == "" {
		issues = append(issues, Issue{Fatal, "storage.kind", "backend kind must be set"})
	}
	if c.Storage.DSN == "" {
		if c.Storage.Kind == "mysql" {
			if c.Storage.User == "" {
				issues = append(issues, Issue{Fatal, "storage.user", "user must be set when no dsn is given"})
			}
			if c.Storage.Database == "" {
				issues = append(issues, Issue{Fatal, "storage.database", "database must be set when no dsn is given"})
			}
			if c.Storage.Port <= 0 || c.Storage.Port > 65535 {
				issues = append(issues, Issue{Fatal, "storage.port", fmt.Sprintf("port %d out of range", c.Storage.Port)})
			}
			if c.Storage.Password == "" {
				issues = append(issues, Issue{Warn, "storage.password", "empty password"})
			}
		} else {
			issues = append(issues, Issue{Fatal, "storage.dsn", fmt.Sprintf("backend %q needs an explicit dsn", c.Storage.Kind)})
		}
	}
	switch c.Metrics.Backend {
	case "", "pushgateway", "datadog":
		if c.Metrics.Backend != "" && c.Metrics.Address == "" {
			issues = append(issues, Issue{Fatal, "metrics.address", fmt.Sprintf("backend %q needs an address", c.Metrics.Backend)})
		}
	default:
		issues = append(issues, Issue{Fatal, "metrics.backend", fmt.Sprintf("unknown metrics backend %q", c.Metrics.Backend)})
	}
	if strings.TrimSpace(c.Data.Dir) == "" && len(c.Data.Paths) == 0 {
		issues = append(issues, Issue{Warn, "data.dir", "no data directory configured; dataset paths resolve relative to the working directory"})
	}
	return issues
}

// FatalIssues filters the findings down to the blocking ones.
func FatalIssues(issues []Issue) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Severity == Fatal {
			out = append(out, i)
		}
	}
	return out
}
