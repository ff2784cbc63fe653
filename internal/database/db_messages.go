package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-while/go-pugsite/internal/models"
)

const query_InsertMessage = `INSERT INTO messages (name, email, subject, message, created_at) VALUES (?, ?, ?, ?, ?)`

// InsertMessage stores a contact form submission. There is no uniqueness
// constraint: with all fields present it only fails for storage reasons.
func (db *Database) InsertMessage(ctx context.Context, name, email, subject, message string) (*models.ContactMessage, error) {
	if err := requireFields(
		field{"name", name},
		field{"email", email},
		field{"subject", subject},
		field{"message", message},
	); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
	}

	err := db.withConn(ctx, func(conn *sql.Conn) error {
		msg.CreatedAt = db.stamps.Next()
		res, err := retryableExec(ctx, conn, query_InsertMessage, msg.Name, msg.Email, msg.Subject, msg.Message, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("%w: failed to insert message: %w", ErrStorage, err)
		}
		msg.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("%w: failed to read message id: %w", ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

const query_GetMessages = `SELECT id, name, email, subject, message, created_at FROM messages ORDER BY id DESC LIMIT ?`

// ListMessages returns up to limit messages, newest first
func (db *Database) ListMessages(ctx context.Context, limit int) ([]*models.ContactMessage, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	var out []*models.ContactMessage
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := retryableQuery(ctx, conn, query_GetMessages, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var m models.ContactMessage
			if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
				return err
			}
			out = append(out, &m)
		}
		return rows.Err()
	})
	if err != nil {
		if errors.Is(err, ErrStorage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to list messages: %w", ErrStorage, err)
	}
	return out, nil
}
