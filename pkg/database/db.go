package database

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// Open returns a sqlite handle limited to a single connection. The chat
// workload is tiny, and a single connection keeps :memory: databases
// usable across queries.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
