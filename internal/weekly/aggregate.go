package weekly

import (
	"sort"
	"time"
)

// DailyRecord is the summed study time of one user on one calendar date.
type DailyRecord struct {
	Date             string `json:"date"`
	StudyTimeSeconds int64  `json:"studyTime"`
}

// Profile is everything the boards know about one viewer.
type Profile struct {
	Name            string
	ProfileImageURL string
	DailyRecords    []DailyRecord   // ordered by date, one per date
	VisitStamps     map[string]bool // keyed by YYYY-MM-DD

	Studying      bool
	StudyingSince *time.Time
}

// Lister supplies the current profiles. The store implements it.
type Lister interface {
	ListProfiles() ([]Profile, error)
}

// DayTotal is one slot of a weekly breakdown.
type DayTotal struct {
	Date             string `json:"date"`
	StudyTimeSeconds int64  `json:"studyTime"`
}

// Breakdown is one user's week, Monday through Sunday.
type Breakdown struct {
	Name            string      `json:"name"`
	ProfileImageURL string      `json:"profileImageUrl"`
	TotalSeconds    int64       `json:"totalStudyTime"`
	Daily           [7]DayTotal `json:"dailyStudyTime"`
}

// Result is the weekly aggregate for every user.
type Result struct {
	WeekStart string      `json:"weekStart"`
	WeekEnd   string      `json:"weekEnd"`
	Users     []Breakdown `json:"users"`
}

// Aggregate builds the week containing ref for every user, sorted by weekly
// total descending. Users with equal totals keep their input order.
func Aggregate(users []Profile, ref time.Time) Result {
	start := WeekStart(ref)
	dates := WeekDates(start)

	out := make([]Breakdown, 0, len(users))
	for _, u := range users {
		byDate := indexRecords(u.DailyRecords)
		b := Breakdown{Name: u.Name, ProfileImageURL: u.ProfileImageURL}
		for i, date := range dates {
			secs := byDate[date]
			b.Daily[i] = DayTotal{Date: date, StudyTimeSeconds: secs}
			b.TotalSeconds += secs
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSeconds > out[j].TotalSeconds
	})

	return Result{
		WeekStart: DateString(start),
		WeekEnd:   DateString(start.AddDate(0, 0, 6)),
		Users:     out,
	}
}

// indexRecords maps date to seconds. When a date repeats, the first record wins.
func indexRecords(records []DailyRecord) map[string]int64 {
	idx := make(map[string]int64, len(records))
	for _, r := range records {
		if _, seen := idx[r.Date]; seen {
			continue
		}
		idx[r.Date] = r.StudyTimeSeconds
	}
	return idx
}

// VisitStamps reports, for each of the seven days from weekStart, whether any
// user has a visit stamp on that date.
func VisitStamps(users []Profile, weekStart time.Time) [7]bool {
	var stamps [7]bool
	for i, date := range WeekDates(weekStart) {
		for _, u := range users {
			if u.VisitStamps[date] {
				stamps[i] = true
				break
			}
		}
	}
	return stamps
}

// DailyTotals sums every user's seconds per weekday slot.
func (r Result) DailyTotals() [7]int64 {
	var totals [7]int64
	for _, u := range r.Users {
		for i, d := range u.Daily {
			totals[i] += d.StudyTimeSeconds
		}
	}
	return totals
}
