// Package message is the append-only chat history backed by the messages
// table.
package message

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"chathub/pkg/models"
)

var ErrEmptyText = errors.New("message text is empty")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append stores one message, stamped with server time. Empty or
// whitespace-only text is rejected.
func (s *Store) Append(sender, text string) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, ErrEmptyText
	}

	now := time.Now().UTC()
	res, err := sq.Insert("messages").
		Columns("username", "message", "created_at").
		Values(sender, text, now).
		RunWith(s.db).
		Exec()
	if err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Message{}, fmt.Errorf("message id: %w", err)
	}

	return models.Message{ID: id, Text: text, Sender: sender, Timestamp: now}, nil
}

// List returns the full history in insertion order, which keeps the
// timestamps non-decreasing.
func (s *Store) List() ([]models.Message, error) {
	rows, err := sq.Select("id", "username", "message", "created_at").
		From("messages").
		OrderBy("id ASC").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	// non-nil so the API serializes an empty list, not null
	out := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Count() (int, error) {
	var n int
	err := sq.Select("COUNT(*)").From("messages").RunWith(s.db).QueryRow().Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}
