package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite3 "modernc.org/sqlite/lib"
)

// User is an account. Passwords are stored and compared as entered.
type User struct {
	ID        int64
	Email     string
	Password  string
	CreatedAt time.Time
}

// UserRepository provides access to accounts.
type UserRepository struct {
	db *sql.DB
}

// Users returns the user repository for this store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

// Create inserts a new account. It returns ErrDuplicate if the email is taken.
func (r *UserRepository) Create(email, password string) (*User, error) {
	u := &User{
		Email:     strings.TrimSpace(email),
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}

	result, err := r.db.Exec(
		`INSERT INTO users (email, password, created_at) VALUES (?, ?, ?)`,
		u.Email, u.Password, u.CreatedAt,
	)
	if err != nil {
		if constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return nil, fmt.Errorf("user %q: %w", u.Email, ErrDuplicate)
		}
		return nil, err
	}

	if u.ID, err = result.LastInsertId(); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail retrieves an account by email.
func (r *UserRepository) GetByEmail(email string) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(
		`SELECT id, email, password, created_at FROM users WHERE email = ?`,
		strings.TrimSpace(email),
	).Scan(&u.ID, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// Verify reports whether an account with exactly this email and password exists.
func (r *UserRepository) Verify(email, password string) (bool, error) {
	var id int64
	err := r.db.QueryRow(
		`SELECT id FROM users WHERE email = ? AND password = ?`,
		strings.TrimSpace(email), password,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateUser signs up a new account. It returns false, with no error, when
// the email is already registered.
func (s *Store) CreateUser(email, password string) (bool, error) {
	if _, err := s.Users().Create(email, password); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// VerifyUser checks a login.
func (s *Store) VerifyUser(email, password string) (bool, error) {
	return s.Users().Verify(email, password)
}
