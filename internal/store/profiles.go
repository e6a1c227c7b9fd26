package store

import (
	"fmt"
	"time"

	"github.com/sadopc/studyboard/internal/weekly"
)

// ListProfiles builds a weekly.Profile for every viewer. Closed sessions come
// from their stored day segments. Open sessions are counted up to the store
// clock, split at local midnights. All reads share one transaction so a
// session closing mid-read is seen either open or closed, never neither.
func (s *Store) ListProfiles() ([]weekly.Profile, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin list profiles: %w", err)
	}
	defer tx.Rollback()

	viewers, err := listViewers(tx)
	if err != nil {
		return nil, err
	}
	if len(viewers) == 0 {
		return []weekly.Profile{}, nil
	}

	records := make(map[string][]weekly.DailyRecord, len(viewers))
	rows, err := tx.Query(
		`SELECT viewer, date, SUM(seconds) FROM study_segments GROUP BY viewer, date ORDER BY viewer, date`,
	)
	if err != nil {
		return nil, fmt.Errorf("sum segments: %w", err)
	}
	for rows.Next() {
		var viewer string
		var r weekly.DailyRecord
		if err := rows.Scan(&viewer, &r.Date, &r.StudyTimeSeconds); err != nil {
			rows.Close()
			return nil, err
		}
		records[viewer] = append(records[viewer], r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	open, err := listOpenSessions(tx)
	if err != nil {
		return nil, err
	}
	since := make(map[string]time.Time, len(open))
	now := s.now().UTC().Truncate(time.Second)
	for _, sess := range open {
		since[sess.Viewer] = sess.StartTime
		records[sess.Viewer] = append(records[sess.Viewer], weekly.SplitDays(sess.StartTime, now, s.loc)...)
	}

	stamps := make(map[string]map[string]bool)
	rows, err = tx.Query(`SELECT viewer, date FROM visit_stamps`)
	if err != nil {
		return nil, fmt.Errorf("list visit stamps: %w", err)
	}
	for rows.Next() {
		var viewer, date string
		if err := rows.Scan(&viewer, &date); err != nil {
			rows.Close()
			return nil, err
		}
		if stamps[viewer] == nil {
			stamps[viewer] = make(map[string]bool)
		}
		stamps[viewer][date] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	profiles := make([]weekly.Profile, 0, len(viewers))
	for _, v := range viewers {
		p := weekly.Profile{
			Name:            v.Name,
			ProfileImageURL: v.ProfileImageURL,
			DailyRecords:    weekly.SumByDate(records[v.Name]),
			VisitStamps:     stamps[v.Name],
		}
		if p.VisitStamps == nil {
			p.VisitStamps = map[string]bool{}
		}
		if t, ok := since[v.Name]; ok {
			p.Studying = true
			p.StudyingSince = &t
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
