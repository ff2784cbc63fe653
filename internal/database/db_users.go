package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-while/go-pugsite/internal/models"
)

const query_InsertUser = `INSERT INTO users (name, email, username, password) VALUES (?, ?, ?, ?)`

// InsertUser registers a new user. All four fields are mandatory; a missing
// one yields ErrValidation before anything is written. An email or username
// that is already taken yields ErrAlreadyExists without telling which.
func (db *Database) InsertUser(ctx context.Context, name, email, username, password string) (*models.User, error) {
	if err := requireFields(
		field{"name", name},
		field{"email", email},
		field{"username", username},
		field{"password", password},
	); err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Username: username,
		Password: passwordHash,
	}

	err = db.withConn(ctx, func(conn *sql.Conn) error {
		res, err := retryableExec(ctx, conn, query_InsertUser, user.Name, user.Email, user.Username, user.Password)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("%w: failed to insert user: %w", ErrStorage, err)
		}
		user.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("%w: failed to read user id: %w", ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

const query_GetUserByIdentifier = `SELECT id, name, email, username, password FROM users WHERE email = ? OR username = ? ORDER BY id LIMIT 1`

// FindUserByIdentifier looks up the user whose email or username equals identifier
func (db *Database) FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var u models.User
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		return retryableQueryRowScan(ctx, conn, query_GetUserByIdentifier, []any{identifier, identifier},
			&u.ID, &u.Name, &u.Email, &u.Username, &u.Password)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if errors.Is(err, ErrStorage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to look up user: %w", ErrStorage, err)
	}
	return &u, nil
}

// Authenticate returns the user matching identifier (email or username) if
// password matches the stored one. Unknown identifiers and wrong passwords
// both yield ErrInvalidCredentials.
func (db *Database) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := db.FindUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

const query_GetAllUsers = `SELECT id, name, email, username, password FROM users ORDER BY id`

// ListUsers returns all users ordered by id
func (db *Database) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := retryableQuery(ctx, conn, query_GetAllUsers)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u models.User
			if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &u.Password); err != nil {
				return err
			}
			users = append(users, &u)
		}
		return rows.Err()
	})
	if err != nil {
		if errors.Is(err, ErrStorage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to list users: %w", ErrStorage, err)
	}
	return users, nil
}
