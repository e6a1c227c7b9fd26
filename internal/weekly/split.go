package weekly

import (
	"sort"
	"time"
)

// SplitDays cuts the interval [start, end) at every midnight of loc and
// returns the whole seconds spent on each local date. The pieces always sum
// to the floor of the full interval. An empty or inverted interval yields nil.
func SplitDays(start, end time.Time, loc *time.Location) []DailyRecord {
	if loc == nil {
		loc = time.Local
	}
	if !end.After(start) {
		return nil
	}

	var out []DailyRecord
	cur := start.In(loc)
	end = end.In(loc)
	var counted int64
	for cur.Before(end) {
		y, m, d := cur.Date()
		next := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
		if next.After(end) {
			next = end
		}
		upTo := int64(next.Sub(start) / time.Second)
		if secs := upTo - counted; secs > 0 {
			out = append(out, DailyRecord{Date: cur.Format(DateLayout), StudyTimeSeconds: secs})
		}
		counted = upTo
		cur = next
	}
	return out
}

// SumByDate merges records that share a date and returns them ordered by date.
func SumByDate(records []DailyRecord) []DailyRecord {
	if len(records) == 0 {
		return nil
	}
	sums := make(map[string]int64, len(records))
	for _, r := range records {
		sums[r.Date] += r.StudyTimeSeconds
	}
	out := make([]DailyRecord, 0, len(sums))
	for date, secs := range sums {
		out = append(out, DailyRecord{Date: date, StudyTimeSeconds: secs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
