package user

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"chathub/pkg/database"
)

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return NewStore(db), db
}

func TestCreateValidation(t *testing.T) {
	s, _ := newTestStore(t)

	cases := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"short username", "ab", "secret1", ErrUsernameTooShort},
		{"whitespace-padded short username", "  a  ", "secret1", ErrUsernameTooShort},
		{"short password", "alice123", "12345", ErrPasswordTooShort},
		{"empty password", "alice123", "", ErrPasswordTooShort},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Create(tc.username, tc.password); !errors.Is(err, tc.want) {
				t.Fatalf("Create(%q, %q) = %v, want %v", tc.username, tc.password, err, tc.want)
			}
		})
	}
}

func TestCreateAndVerify(t *testing.T) {
	s, _ := newTestStore(t)

	created, err := s.Create("alice123", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.Username != "alice123" {
		t.Fatalf("unexpected user: %+v", created)
	}

	got, err := s.Verify("alice123", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != created.ID || got.Username != "alice123" {
		t.Fatalf("verify returned %+v, created %+v", got, created)
	}
	if got.PasswordHash != "" {
		t.Fatal("verified user carries the password hash")
	}
}

func TestCreateDuplicateUsername(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.Create("alice123", "secret1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create("alice123", "other-password"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("second signup = %v, want ErrUsernameTaken", err)
	}

	n, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("user count = %d, want 1", n)
	}
}

func TestVerifyErrors(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.Create("alice123", "secret1"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Verify("nobody", "secret1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user = %v, want ErrNotFound", err)
	}
	if _, err := s.Verify("alice123", "wrong-password"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("wrong password = %v, want ErrBadCredentials", err)
	}
}

func TestPasswordStoredHashed(t *testing.T) {
	s, db := newTestStore(t)
	if _, err := s.Create("alice123", "secret1"); err != nil {
		t.Fatal(err)
	}

	var hash string
	if err := db.QueryRow(`SELECT password_hash FROM users WHERE username = ?`, "alice123").Scan(&hash); err != nil {
		t.Fatal(err)
	}
	if hash == "secret1" || strings.Contains(hash, "secret1") {
		t.Fatal("plaintext password reached the database")
	}
	if !strings.HasPrefix(hash, "$2a$10$") {
		t.Fatalf("hash %q is not bcrypt cost 10", hash)
	}
}
