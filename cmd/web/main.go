// Web server for go-pugsite: serves the site tree and the form APIs
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	prof "github.com/go-while/go-cpu-mem-profiler"

	"github.com/go-while/go-pugsite/internal/config"
	"github.com/go-while/go-pugsite/internal/database"
	"github.com/go-while/go-pugsite/internal/web"
)

var Prof *prof.Profiler

var (
	// command-line flags
	configFile    string
	webport       int
	webssl        bool
	webcertFile   string
	webkeyFile    string
	behindProxy   bool
	debug         bool
	dbPath        string
	primaryRoot   string
	secondaryRoot string
	pprofAddr     string
)

var appVersion = "-unset-"

const shutdownTimeout = 10 * time.Second

func main() {
	config.AppVersion = appVersion

	flag.StringVar(&configFile, "config", "", "Config file (.json, .yaml or .yml), applied before the flags below")
	flag.IntVar(&webport, "webport", 0, "Web server port (default: 5000)")
	flag.BoolVar(&webssl, "webssl", false, "Enable SSL")
	flag.StringVar(&webcertFile, "websslcert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flag.StringVar(&webkeyFile, "websslkey", "", "SSL key file (/path/to/privkey.pem)")
	flag.BoolVar(&behindProxy, "behind-proxy", false, "Trust X-Forwarded-* headers from a local reverse proxy")
	flag.BoolVar(&debug, "debug", false, "Return internal error text in 500 responses")
	flag.StringVar(&dbPath, "db", "", "Path to the sqlite3 database file (default: database.db)")
	flag.StringVar(&primaryRoot, "root", "", "Primary site root with assets and subsites (default: .)")
	flag.StringVar(&secondaryRoot, "templates", "", "Secondary root with HTML documents (default: templates)")
	flag.StringVar(&pprofAddr, "pprof", "", "Serve pprof on this address, e.g. 127.0.0.1:51111 (default: off)")
	flag.Parse()

	log.Printf("Starting go-pugsite: Web Server (version: %s)", appVersion)

	mainConfig := config.NewDefaultConfig()
	if configFile != "" {
		if err := mainConfig.LoadFile(configFile); err != nil {
			log.Fatalf("[WEB]: Failed to load config: %v", err)
		}
		log.Printf("[WEB]: Loaded config file %s", configFile)
	}

	// Override config with command-line flags if provided
	if webport > 0 {
		mainConfig.Web.ListenPort = webport
		log.Printf("[WEB]: Overriding listen port with command-line flag: %d", webport)
	}
	if webssl {
		mainConfig.Web.SSL = true
		log.Printf("[WEB]: SSL enabled via command-line flag")
	}
	if webcertFile != "" {
		mainConfig.Web.CertFile = webcertFile
	}
	if webkeyFile != "" {
		mainConfig.Web.KeyFile = webkeyFile
	}
	if behindProxy {
		mainConfig.Web.BehindProxy = true
	}
	if debug {
		mainConfig.Web.Debug = true
		log.Printf("[WEB]: Debug mode: internal errors are returned to clients")
	}
	if dbPath != "" {
		mainConfig.Database.MainDB = dbPath
	}
	if primaryRoot != "" {
		mainConfig.Site.PrimaryRoot = primaryRoot
	}
	if secondaryRoot != "" {
		mainConfig.Site.SecondaryRoot = secondaryRoot
	}

	if err := mainConfig.Validate(); err != nil {
		log.Fatalf("[WEB]: Invalid configuration: %v", err)
	}
	log.Printf("[WEB]: Using WEB configuration: %#v", mainConfig.Web)
	log.Printf("[WEB]: Serving primary root %q, secondary root %q", mainConfig.Site.PrimaryRoot, mainConfig.Site.SecondaryRoot)

	if pprofAddr != "" {
		Prof = prof.NewProf()
		go Prof.PprofWeb(pprofAddr)
		log.Printf("[WEB]: pprof listening on %s", pprofAddr)
	}

	dbConfig := database.DefaultDBConfig()
	dbConfig.Path = mainConfig.Database.MainDB
	dbConfig.BusyTimeout = mainConfig.Database.BusyTimeout.Std()
	dbConfig.MaxOpenConns = mainConfig.Database.MaxOpenConns

	ctx := context.Background()
	db, err := database.OpenDatabase(ctx, dbConfig)
	if err != nil {
		log.Fatalf("[WEB]: Failed to initialize database: %v", err)
	}

	server := web.NewServer(db, mainConfig)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigChan:
		log.Printf("[WEB]: Received %s, shutting down...", sig)
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WEB]: %v", err)
			exitCode = 1
		}
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Printf("[WEB]: Web server error: %v", err)
			exitCode = 1
		}
	}

	stats := db.Stats()
	log.Printf("[WEB]: Closing database %s (open=%d in_use=%d waited=%d)",
		db.GetPath(), stats.OpenConnections, stats.InUse, stats.WaitCount)
	if err := db.Shutdown(); err != nil {
		log.Printf("[WEB]: Failed to shutdown database: %v", err)
		exitCode = 1
	}
	log.Printf("[WEB]: Shutdown complete")
	os.Exit(exitCode)
}
