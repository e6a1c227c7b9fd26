package weekly

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for every date exchanged by this package.
const DateLayout = "2006-01-02"

// civil drops the clock and zone of t, keeping its calendar date as midnight UTC.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CivilDate returns the calendar date of the instant t as observed in loc.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return civil(t.In(loc))
}

// WeekStart returns the Monday on or before date. A Sunday belongs to the
// week that started six days earlier.
func WeekStart(date time.Time) time.Time {
	d := civil(date)
	offset := int(d.Weekday()) - 1
	if d.Weekday() == time.Sunday {
		offset = 6
	}
	return d.AddDate(0, 0, -offset)
}

// WeekEnd returns the Sunday that closes the week containing date.
func WeekEnd(date time.Time) time.Time {
	return WeekStart(date).AddDate(0, 0, 6)
}

// ShiftWeek moves date by the given number of weeks. Negative values move backwards.
func ShiftWeek(date time.Time, weeks int) time.Time {
	return date.AddDate(0, 0, 7*weeks)
}

// WeekDates lists the seven dates starting at weekStart.
func WeekDates(weekStart time.Time) [7]string {
	start := civil(weekStart)
	var dates [7]string
	for i := range dates {
		dates[i] = DateString(start.AddDate(0, 0, i))
	}
	return dates
}

// FormatRange renders the week starting at weekStart as "M/D - M/D".
func FormatRange(weekStart time.Time) string {
	start := civil(weekStart)
	end := start.AddDate(0, 0, 6)
	return fmt.Sprintf("%d/%d - %d/%d", int(start.Month()), start.Day(), int(end.Month()), end.Day())
}

// DateString formats the calendar date of t as YYYY-MM-DD.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
