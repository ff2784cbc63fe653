package web

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-pugsite/internal/database"
)

const (
	msgFieldsRequired     = "Todos os campos são obrigatórios."
	msgPasswordTooLong    = "A senha deve ter no máximo 72 bytes."
	msgRegistered         = "Cadastro realizado com sucesso!"
	msgAlreadyRegistered  = "Email ou usuário já cadastrado."
	msgInvalidCredentials = "Credenciais inválidas."
	msgProfileUpdated     = "Dados atualizados! (Simulação)"
	msgPaymentConfirmed   = "Pagamento confirmado!"
)

// storeContext detaches store calls from the client connection: once a
// write has started it runs to completion even if the client goes away.
func storeContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// contactSubmit stores a contact form message. The front end expects the
// literal body "OK" on success. A missing field answers 400; the earlier
// deployment let the insert fail and answered 500.
func (s *WebServer) contactSubmit(c *gin.Context) {
	_, err := s.DB.InsertMessage(storeContext(c),
		formValue(c, "name"),
		formValue(c, "email"),
		formValue(c, "subject"),
		formValue(c, "message"),
	)
	if err != nil {
		if errors.Is(err, database.ErrValidation) {
			c.String(http.StatusBadRequest, msgFieldsRequired)
			return
		}
		s.internalError(c, err, false)
		return
	}
	c.String(http.StatusOK, "OK")
}

// registerSubmit creates a user from the nome/email/usuario/senha fields
func (s *WebServer) registerSubmit(c *gin.Context) {
	user, err := s.DB.InsertUser(storeContext(c),
		formValue(c, "nome"),
		formValue(c, "email"),
		formValue(c, "usuario"),
		formSecret(c, "senha"),
	)
	switch {
	case err == nil:
		log.Printf("[WEB]: Registered user %q (id %d)", user.Username, user.ID)
		c.JSON(http.StatusOK, apiResponse{Success: true, Message: msgRegistered})
	case errors.Is(err, database.ErrPasswordTooLong):
		c.JSON(statusFor(err), apiResponse{Success: false, Message: msgPasswordTooLong})
	case errors.Is(err, database.ErrValidation):
		c.JSON(statusFor(err), apiResponse{Success: false, Message: msgFieldsRequired})
	case errors.Is(err, database.ErrAlreadyExists):
		c.JSON(statusFor(err), apiResponse{Success: false, Message: msgAlreadyRegistered})
	default:
		s.internalError(c, err, true)
	}
}

// loginSubmit checks the credentials. The identifier comes from the email
// field, or from usuario when email is empty.
func (s *WebServer) loginSubmit(c *gin.Context) {
	identifier := formValue(c, "email")
	if identifier == "" {
		identifier = formValue(c, "usuario")
	}

	user, err := s.DB.Authenticate(storeContext(c), identifier, formSecret(c, "senha"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, apiResponse{Success: true, Username: user.Username, Email: user.Email})
	case errors.Is(err, database.ErrInvalidCredentials):
		log.Printf("[WEB]: Failed login for %q from %s", identifier, c.ClientIP())
		c.JSON(statusFor(err), apiResponse{Success: false, Message: msgInvalidCredentials})
	default:
		s.internalError(c, err, true)
	}
}

// updateProfile acknowledges without changing anything; there are no sessions
// to tell which user is asking.
func (s *WebServer) updateProfile(c *gin.Context) {
	c.JSON(http.StatusOK, apiResponse{Success: true, Message: msgProfileUpdated})
}

// subscribe acknowledges a paid subscription. No payment provider is wired.
func (s *WebServer) subscribe(c *gin.Context) {
	log.Printf("[WEB]: New subscription processed (%s)", requestID(c))
	c.JSON(http.StatusOK, apiResponse{Success: true, Message: msgPaymentConfirmed})
}

// newsletterSubmit signs an email up for the newsletter. Repeated sign-ups
// answer "OK" as well. A missing email answers 400, where the earlier
// deployment swallowed the constraint error and answered "OK".
func (s *WebServer) newsletterSubmit(c *gin.Context) {
	created, err := s.DB.InsertSubscriber(storeContext(c), formValue(c, "email"))
	if err != nil {
		if errors.Is(err, database.ErrValidation) {
			c.String(http.StatusBadRequest, msgFieldsRequired)
			return
		}
		s.internalError(c, err, false)
		return
	}
	if !created {
		log.Printf("[WEB]: Newsletter address already subscribed")
	}
	c.String(http.StatusOK, "OK")
}
