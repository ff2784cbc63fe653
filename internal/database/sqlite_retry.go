package database

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

const (
	maxRetries = 20
	baseDelay  = 10 * time.Millisecond
	maxDelay   = 50 * time.Millisecond
)

// queryer is the subset of database/sql shared by *sql.DB, *sql.Conn and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// isRetryableError checks if the error is a retryable SQLite error
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}

// backoff sleeps before the next attempt. Returns false if ctx ended first.
func backoff(ctx context.Context, attempt int) bool {
	// Exponential backoff with jitter
	delay := time.Duration(attempt+1) * baseDelay
	if delay > maxDelay {
		delay = maxDelay
	}

	// Add random jitter (up to 50% of delay)
	jitter := time.Duration(rand.Int63n(int64(delay) / 2))

	timer := time.NewTimer(delay + jitter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// retryableExec executes a SQL statement with retry logic for lock conflicts
func retryableExec(ctx context.Context, q queryer, query string, args ...any) (sql.Result, error) {
	var result sql.Result
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		result, err = q.ExecContext(ctx, query, args...)

		if !isRetryableError(err) {
			return result, err
		}

		if attempt < maxRetries-1 {
			log.Printf("[WARN] SQLite retry attempt %d/%d for query (first 50 chars): %s... Error: %v",
				attempt+1, maxRetries, truncateString(query, 50), err)
			if !backoff(ctx, attempt) {
				return result, errors.Join(err, ctx.Err())
			}
		}
	}

	return result, err
}

// retryableQueryRowScan executes a QueryRow and Scan with retry logic
func retryableQueryRowScan(ctx context.Context, q queryer, query string, args []any, dest ...any) error {
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err = q.QueryRowContext(ctx, query, args...).Scan(dest...)

		if !isRetryableError(err) {
			return err
		}

		if attempt < maxRetries-1 {
			log.Printf("[WARN] SQLite retry attempt %d/%d for QueryRow scan (first 50 chars): %s... Error: %v",
				attempt+1, maxRetries, truncateString(query, 50), err)
			if !backoff(ctx, attempt) {
				return errors.Join(err, ctx.Err())
			}
		}
	}

	return err
}

// retryableQuery executes a query that returns multiple rows with retry logic
func retryableQuery(ctx context.Context, q queryer, query string, args ...any) (*sql.Rows, error) {
	var rows *sql.Rows
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		rows, err = q.QueryContext(ctx, query, args...)

		if !isRetryableError(err) {
			return rows, err
		}

		if attempt < maxRetries-1 {
			log.Printf("[WARN] SQLite retry attempt %d/%d for query (first 50 chars): %s... Error: %v",
				attempt+1, maxRetries, truncateString(query, 50), err)
			if !backoff(ctx, attempt) {
				return rows, errors.Join(err, ctx.Err())
			}
		}
	}

	return rows, err
}

// truncateString truncates a string to the specified length
func truncateString(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length]
}
