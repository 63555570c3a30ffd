// Package user is the credential store: signup and login against the
// users table. Passwords are bcrypt-hashed before they reach the
// database; plaintext is never stored or logged.
package user

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"chathub/pkg/models"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
	bcryptCost     = 10
)

var (
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrNotFound         = errors.New("user not found")
	ErrBadCredentials   = errors.New("incorrect password")
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create validates, hashes and inserts a new user. Duplicate usernames are
// rejected by the UNIQUE constraint, so concurrent signups for the same
// name cannot both win.
func (s *Store) Create(username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen {
		return models.User{}, ErrUsernameTooShort
	}
	if len(password) < minPasswordLen {
		return models.User{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	_, err = sq.Insert("users").
		Columns("id", "username", "password_hash", "created_at").
		Values(u.ID, u.Username, string(hash), u.CreatedAt).
		RunWith(s.db).
		Exec()
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Verify looks up the user by exact username and compares the password
// against the stored hash. The returned user never carries the hash.
func (s *Store) Verify(username, password string) (models.User, error) {
	var u models.User
	err := sq.Select("id", "username", "password_hash", "created_at").
		From("users").
		Where(sq.Eq{"username": username}).
		RunWith(s.db).
		QueryRow().
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("select user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrBadCredentials
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *Store) Count() (int, error) {
	var n int
	err := sq.Select("COUNT(*)").From("users").RunWith(s.db).QueryRow().Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
