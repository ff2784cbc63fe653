package web

import (
	"fmt"
	"net/http"
	"net/netip"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	s.Router.GET("/", s.indexPage)
	s.Router.HEAD("/", s.indexPage)
	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	api := s.Router.Group("/api")
	{
		api.POST("/contact", s.contactSubmit)
		api.POST("/register", s.registerSubmit)
		api.POST("/login", s.loginSubmit)
		api.POST("/update_profile", s.updateProfile)
		api.POST("/subscribe", s.subscribe)
		api.POST("/newsletter", s.newsletterSubmit)
	}

	s.Router.NoMethod(func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, "Método não permitido")
	})

	// every other path is looked up in the site tree
	s.Router.NoRoute(s.sitePage)
}

// RequestIDMiddleware tags every request with an X-Request-ID. A valid UUID
// sent by the client or a proxy is kept.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestID returns the id set by RequestIDMiddleware
func requestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// ReverseProxyMiddleware honours X-Forwarded-Proto and X-Forwarded-Host
// when the direct peer is a trusted proxy. The client address is left to
// gin, whose ClientIP() applies the same trusted proxy list.
func (s *WebServer) ReverseProxyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.fromTrustedProxy(c) {
			c.Next()
			return
		}

		// Handle X-Forwarded-Proto to detect if the original request was HTTPS
		if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
			c.Request.URL.Scheme = "https"
		}

		// Handle X-Forwarded-Host to get the original host
		if host := c.GetHeader("X-Forwarded-Host"); host != "" {
			c.Request.Host = host
		}

		c.Next()
	}
}

// fromTrustedProxy reports whether the TCP peer of the request is a trusted proxy
func (s *WebServer) fromTrustedProxy(c *gin.Context) bool {
	addr, err := netip.ParseAddr(c.RemoteIP())
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range s.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// parseProxies turns addresses and CIDRs into prefixes, skipping invalid entries
func parseProxies(list []string) []netip.Prefix {
	var out []netip.Prefix
	for _, entry := range list {
		if p, err := netip.ParsePrefix(entry); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(entry); err == nil {
			out = append(out, netip.PrefixFrom(a, a.BitLen()))
		}
	}
	return out
}

// ApacheLogFormat writes the access log in Apache combined format
func (s *WebServer) ApacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		rid, _ := param.Keys["request_id"].(string)
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s" %s`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
			rid,
		)
	})
}
