package web

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-pugsite/internal/resolver"
)

const notFoundText = "Arquivo não encontrado"

// indexPage serves the entry document for "/"
func (s *WebServer) indexPage(c *gin.Context) {
	res, err := s.Resolver.ResolveIndex()
	if err != nil {
		s.resourceError(c, "/", err)
		return
	}
	s.sendResource(c, res)
}

// sitePage answers every path without an explicit route from the site tree
func (s *WebServer) sitePage(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Header("Allow", "GET, HEAD")
		c.String(http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	path := c.Request.URL.Path
	res, err := s.Resolver.Resolve(path)
	if err != nil {
		s.resourceError(c, path, err)
		return
	}
	s.sendResource(c, res)
}

func (s *WebServer) resourceError(c *gin.Context, path string, err error) {
	switch {
	case errors.Is(err, resolver.ErrForbidden):
		log.Printf("[WEB]: [404] Rejected path outside site root: %q from %s (%s)", path, c.ClientIP(), requestID(c))
		c.String(http.StatusNotFound, notFoundText)
	case errors.Is(err, resolver.ErrNotFound):
		log.Printf("[WEB]: [404] File not found: %s", path)
		c.String(http.StatusNotFound, notFoundText)
	default:
		s.internalError(c, err, false)
	}
}

// sendResource streams the resolved file. http.ServeContent handles HEAD,
// Range and conditional requests.
func (s *WebServer) sendResource(c *gin.Context, res *resolver.Resource) {
	f, err := os.Open(res.Path)
	if err != nil {
		// removed between stat and open
		if errors.Is(err, os.ErrNotExist) {
			s.resourceError(c, res.Name, resolver.ErrNotFound)
			return
		}
		s.internalError(c, err, false)
		return
	}
	defer f.Close()

	c.Header("Content-Type", res.ContentType)
	http.ServeContent(c.Writer, c.Request, res.Name, res.Info.ModTime(), f)
}
