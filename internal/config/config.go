// Package config provides configuration management for go-pugsite.
package config

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var AppVersion = "-unset-" // will be set at build time

const (
	DefaultListenPort   = 5000
	DefaultBusyTimeout  = 5 * time.Second
	DefaultMaxOpenConns = 16

	DefaultIndexDocument = "index.html"
	DefaultDocSuffix     = ".html"
)

// DefaultHiddenPatterns are file name patterns the site never serves.
// The primary root is the project root and holds the database file too.
var DefaultHiddenPatterns = []string{"*.db", "*.db-journal", "*.db-wal", "*.db-shm", "*.sq3"}

// MainConfig holds the main configuration for go-pugsite
type MainConfig struct {
	// Mutex for thread-safe access
	mux sync.Mutex `json:"-" yaml:"-"`

	// Web interface settings
	Web WebConfig `json:"web" yaml:"web"`

	// Database settings
	Database DatabaseConfig `json:"database" yaml:"database"`

	// Site tree settings
	Site SiteConfig `json:"site" yaml:"site"`

	AppVersion string `json:"app_version" yaml:"app_version"` // Application version, set at build time
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenPort  int    `json:"listen_port" yaml:"listen_port"`
	SSL         bool   `json:"ssl" yaml:"ssl"`
	CertFile    string `json:"cert_file,omitempty" yaml:"cert_file,omitempty"`
	KeyFile     string `json:"key_file,omitempty" yaml:"key_file,omitempty"`
	BehindProxy bool   `json:"behind_proxy" yaml:"behind_proxy"` // honour X-Forwarded-* headers
	AccessLog   bool   `json:"access_log" yaml:"access_log"`
	Debug       bool   `json:"debug" yaml:"debug"` // expose internal error text in 500 responses
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	MainDB       string   `json:"main_db" yaml:"main_db"` // Path to the sqlite3 file
	BusyTimeout  Duration `json:"busy_timeout" yaml:"busy_timeout"`
	MaxOpenConns int      `json:"max_open_conns" yaml:"max_open_conns"`
}

// SiteConfig describes the two directory roots the resolver searches.
type SiteConfig struct {
	PrimaryRoot    string   `json:"primary_root" yaml:"primary_root"`     // project root: assets and nested subsites
	SecondaryRoot  string   `json:"secondary_root" yaml:"secondary_root"` // relocated HTML documents
	IndexDocument  string   `json:"index_document" yaml:"index_document"`
	DocSuffix      string   `json:"doc_suffix" yaml:"doc_suffix"`
	HiddenPatterns []string `json:"hidden_patterns" yaml:"hidden_patterns"`
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *MainConfig {
	maincfg := &MainConfig{
		AppVersion: AppVersion,
		Web: WebConfig{
			ListenPort: DefaultListenPort,
			AccessLog:  true,
		},
		Database: DatabaseConfig{
			MainDB:       "database.db",
			BusyTimeout:  Duration(DefaultBusyTimeout),
			MaxOpenConns: DefaultMaxOpenConns,
		},
		Site: SiteConfig{
			PrimaryRoot:    ".",
			SecondaryRoot:  "templates",
			IndexDocument:  DefaultIndexDocument,
			DocSuffix:      DefaultDocSuffix,
			HiddenPatterns: append([]string(nil), DefaultHiddenPatterns...),
		},
	}

	maincfg.mux.Lock()
	log.Printf("MainConfig initialized (version %s)", maincfg.AppVersion)
	maincfg.mux.Unlock()
	return maincfg
}

// Validate checks the configuration for values the server cannot run with.
func (c *MainConfig) Validate() error {
	c.mux.Lock()
	defer c.mux.Unlock()

	var errs []error
	if c.Web.ListenPort < 1024 || c.Web.ListenPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid port number: %d (must be between 1024 and 65535)", c.Web.ListenPort))
	}
	if c.Web.SSL && (c.Web.CertFile == "" || c.Web.KeyFile == "") {
		errs = append(errs, errors.New("SSL enabled but cert_file or key_file not specified"))
	}
	if c.Database.MainDB == "" {
		errs = append(errs, errors.New("database main_db must be set"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = append(errs, fmt.Errorf("database busy_timeout must not be negative: %s", c.Database.BusyTimeout.Std()))
	}
	if c.Site.PrimaryRoot == "" || c.Site.SecondaryRoot == "" {
		errs = append(errs, errors.New("site primary_root and secondary_root must be set"))
	}
	if c.Site.IndexDocument == "" {
		errs = append(errs, errors.New("site index_document must be set"))
	}
	return errors.Join(errs...)
}
