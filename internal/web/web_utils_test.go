package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-while/go-pugsite/internal/database"
	"github.com/go-while/go-pugsite/internal/resolver"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{database.ErrValidation, http.StatusBadRequest},
		{fmt.Errorf("%w: missing name", database.ErrValidation), http.StatusBadRequest},
		{database.ErrAlreadyExists, http.StatusBadRequest},
		{database.ErrInvalidCredentials, http.StatusUnauthorized},
		{database.ErrNotFound, http.StatusNotFound},
		{resolver.ErrNotFound, http.StatusNotFound},
		{resolver.ErrForbidden, http.StatusNotFound},
		{database.ErrStorage, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%v", tt.err)
	}
}

func echoRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, "%s|%s|%s|%s", requestID(c), c.Request.RemoteAddr, c.Request.Host, c.Request.URL.Scheme)
	})
	return r
}

func TestRequestIDMiddleware(t *testing.T) {
	r := echoRouter(RequestIDMiddleware())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/echo", nil))
	id := w.Header().Get(requestIDHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Contains(t, w.Body.String(), id)

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set(requestIDHeader, incoming)
	w = serve(r, req)
	assert.Equal(t, incoming, w.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set(requestIDHeader, "<script>")
	w = serve(r, req)
	assert.NotEqual(t, "<script>", w.Header().Get(requestIDHeader))
}

func TestReverseProxyMiddleware(t *testing.T) {
	s := &WebServer{proxies: parseProxies(trustedProxies)}
	r := echoRouter(s.ReverseProxyMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.RemoteAddr = "10.0.0.5:4000"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("X-Forwarded-Host", "site.example.com")
	req.Header.Set("X-Forwarded-Proto", "https")
	w := serve(r, req)
	assert.Equal(t, "|10.0.0.5:4000|site.example.com|https", w.Body.String())

	// headers from a peer outside the trusted list are ignored
	req = httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.RemoteAddr = "198.51.100.9:4000"
	req.Header.Set("X-Real-IP", "10.0.0.1")
	req.Header.Set("X-Forwarded-Host", "evil.example.com")
	req.Header.Set("X-Forwarded-Proto", "https")
	w = serve(r, req)
	assert.Equal(t, "|198.51.100.9:4000|example.com|", w.Body.String())
}

func TestBehindProxy_ClientIP(t *testing.T) {
	cfg := newTestConfig(t.TempDir())
	cfg.Web.BehindProxy = true
	s := NewServer(nil, cfg)
	s.Router.GET("/client-ip", func(c *gin.Context) {
		c.String(http.StatusOK, c.ClientIP())
	})

	req := httptest.NewRequest(http.MethodGet, "/client-ip", nil)
	req.RemoteAddr = "10.0.0.5:4000"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", serve(s.Router, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/client-ip", nil)
	req.RemoteAddr = "198.51.100.9:4000"
	req.Header.Set("X-Real-IP", "203.0.113.7")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "198.51.100.9", serve(s.Router, req).Body.String())
}

func TestParseProxies(t *testing.T) {
	prefixes := parseProxies([]string{"127.0.0.1", "::1", "10.1.2.3/8", "bogus"})
	require.Len(t, prefixes, 3)
	assert.Equal(t, "127.0.0.1/32", prefixes[0].String())
	assert.Equal(t, "::1/128", prefixes[1].String())
	assert.Equal(t, "10.0.0.0/8", prefixes[2].String())
}
