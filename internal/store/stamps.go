package store

import "fmt"

// AddVisitStamp stamps viewer on date (YYYY-MM-DD). It reports false when the
// stamp already existed.
func (s *Store) AddVisitStamp(viewer, date string) (bool, error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO visit_stamps (viewer, date) VALUES (?, ?)`, viewer, date,
	)
	if err != nil {
		return false, fmt.Errorf("add visit stamp: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) ListVisitStamps(viewer string) ([]string, error) {
	rows, err := s.db.Query(`SELECT date FROM visit_stamps WHERE viewer = ? ORDER BY date`, viewer)
	if err != nil {
		return nil, fmt.Errorf("list visit stamps: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
