// Package config loads the mdaform runtime configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Environment variables that override file settings.
const (
	EnvSchema   = "MDAFORM_SCHEMA"
	EnvDataDir  = "MDAFORM_DATA_DIR"
	EnvBackend  = "MDAFORM_BACKEND"
	EnvLogLevel = "MDAFORM_LOG_LEVEL"
	EnvAddr     = "MDAFORM_ADDR"
	EnvTheme    = "MDAFORM_THEME"
)

// Config holds all mdaform configuration.
type Config struct {
	// Schema is the path or URL of the form metadata document.
	Schema string `yaml:"schema"`

	// Record storage
	DataDir          string `yaml:"data_dir"`
	Backend          string `yaml:"backend"` // json, sqlite
	SQLitePath       string `yaml:"sqlite_path"`
	IDStrategy       string `yaml:"id_strategy"` // timestamp, uuid
	CreatedBy        string `yaml:"created_by"`
	InsertUnknownIDs bool   `yaml:"insert_unknown_ids"`

	// Validation
	Locale        string `yaml:"locale"` // en, zh-Hans
	StrictOptions bool   `yaml:"strict_options"`
	Sanitize      bool   `yaml:"sanitize"`

	Theme   ThemeConfig   `yaml:"theme"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ThemeConfig points the HTML renderer at a theme manifest directory. The
// manifest's template paths resolve inside Dir.
type ThemeConfig struct {
	Dir     string `yaml:"dir"`
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

// ServerConfig configures the HTTP records component.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	BasePath string `yaml:"base_path"`
	Watch    bool   `yaml:"watch"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Schema:     "erp_form_metadata.xml",
		DataDir:    "data",
		Backend:    BackendJSON,
		SQLitePath: filepath.Join("data", "records.db"),
		IDStrategy: "timestamp",
		Locale:     "en",
		Server: ServerConfig{
			Addr:     ":8080",
			BasePath: "/api",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvSchema); v != "" {
		c.Schema = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		c.Theme.Name = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Schema) == "" {
		return fmt.Errorf("config: schema is required")
	}
	switch c.Backend {
	case BackendJSON:
		if c.DataDir == "" {
			return fmt.Errorf("config: data_dir is required for the json backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("config: sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("config: invalid backend %q (valid: %s, %s)", c.Backend, BackendJSON, BackendSQLite)
	}
	switch c.IDStrategy {
	case "", "timestamp", "uuid":
	default:
		return fmt.Errorf("config: invalid id_strategy %q (valid: timestamp, uuid)", c.IDStrategy)
	}
	if c.Theme.Dir == "" && (c.Theme.Name != "" || c.Theme.Variant != "") {
		return fmt.Errorf("config: theme.dir is required to select a theme")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid logging level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: invalid logging format %q", c.Logging.Format)
	}
	return nil
}
