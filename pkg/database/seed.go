package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedFile is the shape of an optional demo-data JSON file. Passwords are
// plaintext in the file and hashed on insert; seeding is meant for local
// development only.
type SeedFile struct {
	Users    []SeedUser    `json:"users"`
	Messages []SeedMessage `json:"messages"`
}

type SeedUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SeedMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

func LoadSeedFile(jsonPath string) (SeedFile, error) {
	b, err := os.ReadFile(jsonPath)
	if err != nil {
		return SeedFile{}, fmt.Errorf("read seed json: %w", err)
	}

	var sf SeedFile
	if err := json.Unmarshal(b, &sf); err != nil {
		return SeedFile{}, fmt.Errorf("unmarshal seed json: %w", err)
	}
	return sf, nil
}

// Seed inserts demo users and messages, skipping users that already exist.
// Returns the number of rows inserted.
func Seed(db *sql.DB, sf SeedFile) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	userStmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert user: %w", err)
	}
	defer userStmt.Close()

	inserted := 0
	now := time.Now().UTC()
	for _, u := range sf.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), 10)
		if err != nil {
			return 0, fmt.Errorf("hash password for %s: %w", u.Username, err)
		}
		res, err := userStmt.Exec(uuid.NewString(), u.Username, string(hash), now)
		if err != nil {
			return 0, fmt.Errorf("insert user %s: %w", u.Username, err)
		}
		aff, _ := res.RowsAffected()
		if aff > 0 {
			inserted++
		}
	}

	msgStmt, err := tx.Prepare(`
		INSERT INTO messages (username, message, created_at)
		VALUES (?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert message: %w", err)
	}
	defer msgStmt.Close()

	for _, m := range sf.Messages {
		if _, err := msgStmt.Exec(m.Sender, m.Text, now); err != nil {
			return 0, fmt.Errorf("insert message from %s: %w", m.Sender, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}
