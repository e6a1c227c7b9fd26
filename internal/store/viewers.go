package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrViewerNotFound = errors.New("viewer not found")

// UpsertViewer records a viewer seen at seenAt. An empty imageURL keeps the stored one.
func (s *Store) UpsertViewer(name, imageURL string, seenAt time.Time) error {
	ts := seenAt.UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
		INSERT INTO viewers (name, profile_image_url, first_seen, last_seen) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			profile_image_url = CASE WHEN excluded.profile_image_url != '' THEN excluded.profile_image_url ELSE viewers.profile_image_url END,
			last_seen = excluded.last_seen`,
		name, imageURL, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("upsert viewer %q: %w", name, err)
	}
	return nil
}

func (s *Store) GetViewer(name string) (*Viewer, error) {
	v := &Viewer{}
	var firstSeen, lastSeen string
	err := s.db.QueryRow(
		`SELECT name, profile_image_url, first_seen, last_seen FROM viewers WHERE name = ?`, name,
	).Scan(&v.Name, &v.ProfileImageURL, &firstSeen, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get viewer %q: %w", name, ErrViewerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get viewer %q: %w", name, err)
	}
	v.FirstSeen, _ = time.Parse(time.RFC3339, firstSeen)
	v.LastSeen, _ = time.Parse(time.RFC3339, lastSeen)
	return v, nil
}

// ListViewers returns every viewer in the order they were first seen.
func (s *Store) ListViewers() ([]Viewer, error) {
	return listViewers(s.db)
}

func listViewers(q querier) ([]Viewer, error) {
	rows, err := q.Query(
		`SELECT name, profile_image_url, first_seen, last_seen FROM viewers ORDER BY first_seen, rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("list viewers: %w", err)
	}
	defer rows.Close()

	var viewers []Viewer
	for rows.Next() {
		var v Viewer
		var firstSeen, lastSeen string
		if err := rows.Scan(&v.Name, &v.ProfileImageURL, &firstSeen, &lastSeen); err != nil {
			return nil, err
		}
		v.FirstSeen, _ = time.Parse(time.RFC3339, firstSeen)
		v.LastSeen, _ = time.Parse(time.RFC3339, lastSeen)
		viewers = append(viewers, v)
	}
	return viewers, rows.Err()
}
