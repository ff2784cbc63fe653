package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, DefaultListenPort, cfg.Web.ListenPort)
	assert.Equal(t, "database.db", cfg.Database.MainDB)
	assert.Equal(t, DefaultBusyTimeout, cfg.Database.BusyTimeout.Std())
	assert.Equal(t, ".", cfg.Site.PrimaryRoot)
	assert.Equal(t, "templates", cfg.Site.SecondaryRoot)
	assert.Equal(t, "index.html", cfg.Site.IndexDocument)
	assert.Equal(t, ".html", cfg.Site.DocSuffix)
	assert.Equal(t, DefaultHiddenPatterns, cfg.Site.HiddenPatterns)
	assert.False(t, cfg.Web.Debug)
	require.NoError(t, cfg.Validate())
}

func TestDefaultHiddenPatternsNotShared(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Site.HiddenPatterns[0] = "changed"
	assert.Equal(t, "*.db", DefaultHiddenPatterns[0])
}

func TestLoadFileJSON(t *testing.T) {
	path := writeFile(t, "site.json", `{
		"web": {"listen_port": 8080, "debug": true},
		"database": {"main_db": "/var/lib/site/site.db", "busy_timeout": "2s"},
		"site": {"secondary_root": "pages"}
	}`)

	cfg := NewDefaultConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, 8080, cfg.Web.ListenPort)
	assert.True(t, cfg.Web.Debug)
	assert.Equal(t, "/var/lib/site/site.db", cfg.Database.MainDB)
	assert.Equal(t, 2*time.Second, cfg.Database.BusyTimeout.Std())
	assert.Equal(t, "pages", cfg.Site.SecondaryRoot)
	// untouched fields keep their defaults
	assert.Equal(t, ".", cfg.Site.PrimaryRoot)
	assert.Equal(t, DefaultMaxOpenConns, cfg.Database.MaxOpenConns)
}

func TestLoadFileJSONNumericDuration(t *testing.T) {
	path := writeFile(t, "site.json", `{"database": {"busy_timeout": 1000000000}}`)

	cfg := NewDefaultConfig()
	require.NoError(t, cfg.LoadFile(path))
	assert.Equal(t, time.Second, cfg.Database.BusyTimeout.Std())
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "site.yaml", `
web:
  listen_port: 9090
  behind_proxy: true
database:
  busy_timeout: 750ms
site:
  primary_root: /srv/site
  hidden_patterns: ["*.db", "*.bak"]
`)

	cfg := NewDefaultConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, 9090, cfg.Web.ListenPort)
	assert.True(t, cfg.Web.BehindProxy)
	assert.Equal(t, 750*time.Millisecond, cfg.Database.BusyTimeout.Std())
	assert.Equal(t, "/srv/site", cfg.Site.PrimaryRoot)
	assert.Equal(t, []string{"*.db", "*.bak"}, cfg.Site.HiddenPatterns)
	assert.Equal(t, "database.db", cfg.Database.MainDB)
}

func TestLoadFileErrors(t *testing.T) {
	cfg := NewDefaultConfig()

	err := cfg.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	err = cfg.LoadFile(writeFile(t, "site.toml", "a = 1"))
	assert.ErrorContains(t, err, "unsupported config file extension")

	err = cfg.LoadFile(writeFile(t, "bad.json", "{"))
	assert.ErrorContains(t, err, "failed to parse JSON config")

	err = cfg.LoadFile(writeFile(t, "bad.yaml", "database:\n  busy_timeout: soon\n"))
	assert.ErrorContains(t, err, "invalid duration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MainConfig)
		wantErr string
	}{
		{"port too low", func(c *MainConfig) { c.Web.ListenPort = 80 }, "invalid port number"},
		{"port too high", func(c *MainConfig) { c.Web.ListenPort = 70000 }, "invalid port number"},
		{"ssl without cert", func(c *MainConfig) { c.Web.SSL = true }, "cert_file or key_file"},
		{"no database", func(c *MainConfig) { c.Database.MainDB = "" }, "main_db"},
		{"negative busy timeout", func(c *MainConfig) { c.Database.BusyTimeout = -1 }, "busy_timeout"},
		{"no secondary root", func(c *MainConfig) { c.Site.SecondaryRoot = "" }, "secondary_root"},
		{"no index", func(c *MainConfig) { c.Site.IndexDocument = "" }, "index_document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}
