package store

import (
	"fmt"
	"time"
)

// RecordMessage adds m to the chat ledger. It reports false when a message
// with the same ID was already recorded.
func (s *Store) RecordMessage(m ChatMessage) (bool, error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO chat_messages (id, author, message, published_at, kind, received_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Author, m.Message, m.PublishedAt.UTC().Format(time.RFC3339), m.Kind,
		s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("record message %s: %w", m.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// HasMessage reports whether a message with id is already in the ledger.
func (s *Store) HasMessage(id string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM chat_messages WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check message %s: %w", id, err)
	}
	return n > 0, nil
}
