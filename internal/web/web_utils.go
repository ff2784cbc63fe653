package web

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/unicode/norm"

	"github.com/go-while/go-pugsite/internal/database"
	"github.com/go-while/go-pugsite/internal/resolver"
)

const internalErrorText = "Erro interno do servidor."

// apiResponse is the JSON body of the /api endpoints that answer in JSON
type apiResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, database.ErrValidation),
		errors.Is(err, database.ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, resolver.ErrNotFound),
		errors.Is(err, resolver.ErrForbidden):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorText is what a client sees for an internal error. The error itself
// is only exposed in debug mode.
func (s *WebServer) errorText(err error) string {
	if s.Config.Debug {
		return err.Error()
	}
	return internalErrorText
}

// internalError logs err and answers 500 as JSON or plain text
func (s *WebServer) internalError(c *gin.Context, err error, asJSON bool) {
	log.Printf("[WEB]: [500] %s %s (%s): %v", c.Request.Method, c.Request.URL.Path, requestID(c), err)
	if asJSON {
		c.JSON(http.StatusInternalServerError, apiResponse{Success: false, Message: s.errorText(err)})
		return
	}
	c.String(http.StatusInternalServerError, s.errorText(err))
}

// formValue returns a trimmed, NFC normalized form field
func formValue(c *gin.Context, key string) string {
	return strings.TrimSpace(norm.NFC.String(c.PostForm(key)))
}

// formSecret returns a form field exactly as sent. Passwords are compared
// byte for byte, so they are neither trimmed nor normalized.
func formSecret(c *gin.Context, key string) string {
	return c.PostForm(key)
}
