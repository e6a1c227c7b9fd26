package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/studyboard/internal/weekly"
)

var (
	ErrSessionOpen   = errors.New("session already open")
	ErrNoOpenSession = errors.New("no open session")
)

const sessionColumns = `id, viewer, start_time, end_time, duration, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var startTime, createdAt string
	var endTime sql.NullString
	if err := row.Scan(&sess.ID, &sess.Viewer, &startTime, &endTime, &sess.Duration, &createdAt); err != nil {
		return nil, err
	}
	sess.StartTime, _ = time.Parse(time.RFC3339, startTime)
	if endTime.Valid {
		t, _ := time.Parse(time.RFC3339, endTime.String)
		sess.EndTime = &t
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return sess, nil
}

// StartSession opens a session for viewer at the given instant. A viewer has
// at most one open session; starting another fails with ErrSessionOpen.
func (s *Store) StartSession(viewer string, at time.Time) (*Session, error) {
	open, err := s.GetOpenSession(viewer)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, fmt.Errorf("start session for %q: %w", viewer, ErrSessionOpen)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO study_sessions (id, viewer, start_time, created_at) VALUES (?, ?, ?, ?)`,
		id, viewer, at.UTC().Format(time.RFC3339), s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return s.GetSession(id)
}

// StopSession closes the viewer's open session at the given instant and
// stores its time split into local calendar days. An end before the start
// closes the session with zero duration.
func (s *Store) StopSession(viewer string, at time.Time) (*Session, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin stop session: %w", err)
	}
	defer tx.Rollback()

	var id, startStr string
	err = tx.QueryRow(
		`SELECT id, start_time FROM study_sessions WHERE viewer = ? AND end_time IS NULL`, viewer,
	).Scan(&id, &startStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("stop session for %q: %w", viewer, ErrNoOpenSession)
	}
	if err != nil {
		return nil, fmt.Errorf("get open session: %w", err)
	}

	start, _ := time.Parse(time.RFC3339, startStr)
	end := at.UTC().Truncate(time.Second)
	if end.Before(start) {
		end = start
	}

	var duration int64
	for _, seg := range weekly.SplitDays(start, end, s.loc) {
		_, err := tx.Exec(
			`INSERT INTO study_segments (session_id, viewer, date, seconds) VALUES (?, ?, ?, ?)`,
			id, viewer, seg.Date, seg.StudyTimeSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("insert segment %s: %w", seg.Date, err)
		}
		duration += seg.StudyTimeSeconds
	}

	_, err = tx.Exec(
		`UPDATE study_sessions SET end_time = ?, duration = ? WHERE id = ?`,
		end.Format(time.RFC3339), duration, id,
	)
	if err != nil {
		return nil, fmt.Errorf("stop session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit stop session: %w", err)
	}
	return s.GetSession(id)
}

func (s *Store) GetSession(id string) (*Session, error) {
	sess, err := scanSession(s.db.QueryRow(
		`SELECT `+sessionColumns+` FROM study_sessions WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// GetOpenSession returns the viewer's open session, or nil when there is none.
func (s *Store) GetOpenSession(viewer string) (*Session, error) {
	sess, err := scanSession(s.db.QueryRow(
		`SELECT `+sessionColumns+` FROM study_sessions WHERE viewer = ? AND end_time IS NULL`, viewer,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open session: %w", err)
	}
	return sess, nil
}

func (s *Store) ListOpenSessions() ([]Session, error) {
	return listOpenSessions(s.db)
}

func listOpenSessions(q querier) ([]Session, error) {
	rows, err := q.Query(
		`SELECT ` + sessionColumns + ` FROM study_sessions WHERE end_time IS NULL ORDER BY start_time`,
	)
	if err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func (s *Store) ListSessions(f SessionFilter) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE 1=1`
	var args []any

	if f.Viewer != nil {
		query += ` AND viewer = ?`
		args = append(args, *f.Viewer)
	}
	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY start_time DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}
