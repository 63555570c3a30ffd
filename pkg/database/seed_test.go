package database

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatal(err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestSeed(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := Migrate(db); err != nil {
		t.Fatal(err)
	}

	sf := SeedFile{
		Users: []SeedUser{
			{Username: "alice123", Password: "secret1"},
			{Username: "bob", Password: "secret2"},
		},
		Messages: []SeedMessage{
			{Sender: "alice123", Text: "hello"},
		},
	}

	n, err := Seed(db, sf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("inserted %d rows, want 3", n)
	}

	var users, messages int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&messages); err != nil {
		t.Fatal(err)
	}
	if users != 2 || messages != 1 {
		t.Fatalf("counts = %d users, %d messages", users, messages)
	}

	var hash string
	if err := db.QueryRow(`SELECT password_hash FROM users WHERE username = ?`, "alice123").Scan(&hash); err != nil {
		t.Fatal(err)
	}
	if hash == "secret1" {
		t.Fatal("seed stored a plaintext password")
	}

	// existing users are skipped on a second run; messages append
	n, err = Seed(db, SeedFile{Users: sf.Users})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("re-seed inserted %d rows, want 0", n)
	}
}

func TestLoadSeedFile(t *testing.T) {
	sf := SeedFile{
		Users:    []SeedUser{{Username: "alice123", Password: "secret1"}},
		Messages: []SeedMessage{{Sender: "alice123", Text: "hello"}},
	}
	b, err := json.Marshal(sf)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, b, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadSeedFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Users) != 1 || got.Users[0].Username != "alice123" {
		t.Fatalf("users = %+v", got.Users)
	}
	if len(got.Messages) != 1 || got.Messages[0].Text != "hello" {
		t.Fatalf("messages = %+v", got.Messages)
	}

	if _, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("missing file did not error")
	}
}
