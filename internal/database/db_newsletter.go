package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-while/go-pugsite/internal/models"
)

const query_InsertSubscriber = `INSERT INTO newsletter (email, created_at) VALUES (?, ?)`

// InsertSubscriber signs email up for the newsletter. An address that is
// already subscribed is not an error: created is false and no row is added.
func (db *Database) InsertSubscriber(ctx context.Context, email string) (created bool, err error) {
	if err := requireFields(field{"email", email}); err != nil {
		return false, err
	}

	err = db.withConn(ctx, func(conn *sql.Conn) error {
		_, err := retryableExec(ctx, conn, query_InsertSubscriber, email, db.stamps.Next())
		if err != nil {
			if isUniqueViolation(err) {
				return nil
			}
			return fmt.Errorf("%w: failed to insert subscriber: %w", ErrStorage, err)
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

const query_GetSubscribers = `SELECT id, email, created_at FROM newsletter ORDER BY id`

// ListSubscribers returns all newsletter subscribers ordered by id
func (db *Database) ListSubscribers(ctx context.Context) ([]*models.NewsletterSubscriber, error) {
	var out []*models.NewsletterSubscriber
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := retryableQuery(ctx, conn, query_GetSubscribers)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var s models.NewsletterSubscriber
			if err := rows.Scan(&s.ID, &s.Email, &s.CreatedAt); err != nil {
				return err
			}
			out = append(out, &s)
		}
		return rows.Err()
	})
	if err != nil {
		if errors.Is(err, ErrStorage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to list subscribers: %w", ErrStorage, err)
	}
	return out, nil
}

const query_CountSubscribers = `SELECT COUNT(*) FROM newsletter WHERE email = ? OR ? = ''`

// CountSubscribers counts rows for email, or all rows when email is empty
func (db *Database) CountSubscribers(ctx context.Context, email string) (int64, error) {
	var count int64
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		return retryableQueryRowScan(ctx, conn, query_CountSubscribers, []any{email, email}, &count)
	})
	if err != nil {
		if errors.Is(err, ErrStorage) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: failed to count subscribers: %w", ErrStorage, err)
	}
	return count, nil
}
