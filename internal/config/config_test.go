package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvSchema, EnvDataDir, EnvBackend, EnvLogLevel, EnvAddr, EnvTheme} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, BackendJSON, cfg.Backend)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "/api", cfg.Server.BasePath)
	assert.False(t, cfg.Sanitize, "submitted values are stored verbatim unless sanitize is enabled")
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "mdaform.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schema: forms.xml
backend: sqlite
locale: zh-Hans
logging:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "forms.xml", cfg.Schema)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "zh-Hans", cfg.Locale)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format, "unset keys keep defaults")
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSchema, "/etc/forms.xml")
	t.Setenv(EnvBackend, BackendSQLite)
	t.Setenv(EnvAddr, ":9090")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/etc/forms.xml", cfg.Schema)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadThemeSection(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "mdaform.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
theme:
  dir: themes/acme
  name: acme
  variant: dark
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ThemeConfig{Dir: "themes/acme", Name: "acme", Variant: "dark"}, cfg.Theme)
	assert.NoError(t, cfg.Validate())

	t.Setenv(EnvTheme, "corporate")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "corporate", cfg.Theme.Name)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "mdaform.yaml")
	cfg := DefaultConfig()
	cfg.CreatedBy = "alice"
	cfg.IDStrategy = "uuid"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty schema":   func(c *Config) { c.Schema = " " },
		"bad backend":    func(c *Config) { c.Backend = "mongo" },
		"no data dir":    func(c *Config) { c.DataDir = "" },
		"no sqlite path": func(c *Config) { c.Backend = BackendSQLite; c.SQLitePath = "" },
		"bad ids":        func(c *Config) { c.IDStrategy = "serial" },
		"bad level":      func(c *Config) { c.Logging.Level = "trace" },
		"bad format":     func(c *Config) { c.Logging.Format = "xml" },
		"theme no dir":   func(c *Config) { c.Theme.Name = "acme" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
