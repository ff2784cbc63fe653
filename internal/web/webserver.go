// Package web provides the HTTP server for go-pugsite
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"github.com/go-while/go-pugsite/internal/config"
	"github.com/go-while/go-pugsite/internal/models"
	"github.com/go-while/go-pugsite/internal/resolver"
)

// Store is the persistence the API handlers write to
type Store interface {
	InsertMessage(ctx context.Context, name, email, subject, message string) (*models.ContactMessage, error)
	InsertUser(ctx context.Context, name, email, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)
	InsertSubscriber(ctx context.Context, email string) (bool, error)
}

// WebServer represents the web server
type WebServer struct {
	DB        Store
	Router    *gin.Engine
	Config    *config.WebConfig
	Resolver  *resolver.Resolver
	StartTime time.Time // set by NewServer

	httpServer *http.Server
	proxies    []netip.Prefix // peers whose X-Forwarded-* headers are honoured
}

// trustedProxies are the peers allowed to set forwarding headers when
// running behind a reverse proxy
var trustedProxies = []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}

// NewServer creates a new web server instance
func NewServer(db Store, maincfg *config.MainConfig) *WebServer {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	webconfig := maincfg.Web
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 1 << 20

	server := &WebServer{
		DB:        db,
		Router:    router,
		Config:    &webconfig,
		Resolver:  resolver.New(maincfg.Site),
		StartTime: time.Now(),
	}
	server.httpServer = &http.Server{
		Addr:              ":" + strconv.Itoa(webconfig.ListenPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if webconfig.AccessLog {
		router.Use(server.ApacheLogFormat())
	}
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())

	if webconfig.BehindProxy {
		// Configure Gin to trust reverse proxy headers
		if err := router.SetTrustedProxies(trustedProxies); err != nil {
			log.Printf("[WEB]: Failed to set trusted proxies: %v", err)
		}
		server.proxies = parseProxies(trustedProxies)
		router.Use(server.ReverseProxyMiddleware())
	} else {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("[WEB]: Failed to clear trusted proxies: %v", err)
		}
	}

	secureConfig := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
	// Only add SSL-specific headers if SSL is enabled on the application itself
	// (not when running behind a reverse proxy like nginx with SSL)
	if webconfig.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}
	router.Use(secure.New(secureConfig))

	server.setupRoutes()
	return server
}

// Start serves until Shutdown is called. It returns nil after a clean shutdown.
func (s *WebServer) Start() error {
	addr := s.httpServer.Addr

	var err error
	if s.Config.SSL {
		if s.Config.CertFile == "" || s.Config.KeyFile == "" {
			return errors.New("SSL enabled but cert_file or key_file not specified in config")
		}
		log.Printf("[WEB]: Starting HTTPS server on %s", addr)
		err = s.httpServer.ListenAndServeTLS(s.Config.CertFile, s.Config.KeyFile)
	} else {
		log.Printf("[WEB]: Starting HTTP server on %s", addr)
		err = s.httpServer.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for running requests
func (s *WebServer) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	log.Printf("[WEB]: Server stopped after %s", time.Since(s.StartTime).Round(time.Second))
	return nil
}
