package store

import "time"

type Viewer struct {
	Name            string
	ProfileImageURL string
	FirstSeen       time.Time
	LastSeen        time.Time
}

type Session struct {
	ID        string
	Viewer    string
	StartTime time.Time
	EndTime   *time.Time
	Duration  int64 // seconds
	CreatedAt time.Time
}

// ChatMessage is one processed entry of the chat ledger.
type ChatMessage struct {
	ID          string
	Author      string
	Message     string
	PublishedAt time.Time
	Kind        string
}

type Setting struct {
	Key   string
	Value string
}

// SessionFilter is used to filter sessions in queries.
type SessionFilter struct {
	Viewer *string
	From   *time.Time
	To     *time.Time
	Limit  int
}
