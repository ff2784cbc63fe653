// Package models defines core data structures for go-pugsite
package models

import (
	"time"
)

// User represents a registered site account
type User struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	Username string `json:"username" db:"username"`
	// Password holds a bcrypt hash. Rows written before hashing was
	// introduced hold the plaintext value.
	Password string `json:"-" db:"password"`
}

// ContactMessage is a message submitted through the contact form
type ContactMessage struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Subject   string    `json:"subject" db:"subject"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewsletterSubscriber is an email address signed up for the newsletter
type NewsletterSubscriber struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
