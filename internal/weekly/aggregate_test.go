package weekly

import (
	"testing"
)

// ============================================================
// Aggregate
// ============================================================

func TestAggregateSingleRecord(t *testing.T) {
	alice := Profile{
		Name:         "Alice",
		DailyRecords: []DailyRecord{{Date: "2024-01-09", StudyTimeSeconds: 3600}},
	}
	res := Aggregate([]Profile{alice}, mustDate(t, "2024-01-10"))

	if res.WeekStart != "2024-01-08" || res.WeekEnd != "2024-01-14" {
		t.Fatalf("window = %s..%s", res.WeekStart, res.WeekEnd)
	}
	if len(res.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(res.Users))
	}
	want := [7]DayTotal{
		{"2024-01-08", 0},
		{"2024-01-09", 3600},
		{"2024-01-10", 0},
		{"2024-01-11", 0},
		{"2024-01-12", 0},
		{"2024-01-13", 0},
		{"2024-01-14", 0},
	}
	if res.Users[0].Daily != want {
		t.Fatalf("daily = %v, want %v", res.Users[0].Daily, want)
	}
	if res.Users[0].TotalSeconds != 3600 {
		t.Fatalf("total = %d, want 3600", res.Users[0].TotalSeconds)
	}
}

func TestAggregateEmpty(t *testing.T) {
	res := Aggregate(nil, mustDate(t, "2024-01-10"))
	if res.Users == nil || len(res.Users) != 0 {
		t.Fatalf("expected empty non-nil users, got %v", res.Users)
	}
	if res.WeekStart != "2024-01-08" || res.WeekEnd != "2024-01-14" {
		t.Fatalf("window = %s..%s", res.WeekStart, res.WeekEnd)
	}
}

func TestAggregateNoRecords(t *testing.T) {
	res := Aggregate([]Profile{{Name: "Empty"}}, mustDate(t, "2024-01-10"))
	u := res.Users[0]
	if u.TotalSeconds != 0 {
		t.Fatalf("total = %d", u.TotalSeconds)
	}
	for i, d := range u.Daily {
		if d.StudyTimeSeconds != 0 {
			t.Fatalf("slot %d = %d, want 0", i, d.StudyTimeSeconds)
		}
		if d.Date == "" {
			t.Fatalf("slot %d has no date", i)
		}
	}
}

func TestAggregateIgnoresOtherWeeks(t *testing.T) {
	u := Profile{Name: "Bob", DailyRecords: []DailyRecord{
		{Date: "2024-01-07", StudyTimeSeconds: 100}, // previous Sunday
		{Date: "2024-01-08", StudyTimeSeconds: 200},
		{Date: "2024-01-14", StudyTimeSeconds: 300},
		{Date: "2024-01-15", StudyTimeSeconds: 400}, // next Monday
	}}
	res := Aggregate([]Profile{u}, mustDate(t, "2024-01-14"))
	if res.Users[0].TotalSeconds != 500 {
		t.Fatalf("total = %d, want 500", res.Users[0].TotalSeconds)
	}
	if res.Users[0].Daily[0].StudyTimeSeconds != 200 || res.Users[0].Daily[6].StudyTimeSeconds != 300 {
		t.Fatalf("unexpected daily: %v", res.Users[0].Daily)
	}
}

func TestAggregateStableTies(t *testing.T) {
	bob := Profile{Name: "Bob", DailyRecords: []DailyRecord{{Date: "2024-01-08", StudyTimeSeconds: 3600}}}
	alice := Profile{Name: "Alice", DailyRecords: []DailyRecord{{Date: "2024-01-09", StudyTimeSeconds: 3600}}}
	res := Aggregate([]Profile{bob, alice}, mustDate(t, "2024-01-10"))
	if res.Users[0].Name != "Bob" || res.Users[1].Name != "Alice" {
		t.Fatalf("order = %s, %s; want Bob, Alice", res.Users[0].Name, res.Users[1].Name)
	}
}

func TestAggregateSortedDescending(t *testing.T) {
	users := []Profile{
		{Name: "a", DailyRecords: []DailyRecord{{Date: "2024-01-08", StudyTimeSeconds: 10}}},
		{Name: "b", DailyRecords: []DailyRecord{{Date: "2024-01-09", StudyTimeSeconds: 50}}},
		{Name: "c"},
		{Name: "d", DailyRecords: []DailyRecord{{Date: "2024-01-10", StudyTimeSeconds: 50}, {Date: "2024-01-11", StudyTimeSeconds: 1}}},
		{Name: "e", DailyRecords: []DailyRecord{{Date: "2024-01-12", StudyTimeSeconds: 10}}},
	}
	res := Aggregate(users, mustDate(t, "2024-01-10"))

	order := ""
	for i, u := range res.Users {
		order += u.Name
		if i+1 < len(res.Users) && u.TotalSeconds < res.Users[i+1].TotalSeconds {
			t.Fatalf("not descending at %d", i)
		}
		var sum int64
		for _, d := range u.Daily {
			sum += d.StudyTimeSeconds
		}
		if sum != u.TotalSeconds {
			t.Fatalf("%s: total %d != sum %d", u.Name, u.TotalSeconds, sum)
		}
	}
	if order != "dbaec" {
		t.Fatalf("order = %s, want dbaec", order)
	}
}

func TestAggregateDuplicateDateFirstWins(t *testing.T) {
	u := Profile{Name: "Dup", DailyRecords: []DailyRecord{
		{Date: "2024-01-09", StudyTimeSeconds: 60},
		{Date: "2024-01-09", StudyTimeSeconds: 999},
	}}
	res := Aggregate([]Profile{u}, mustDate(t, "2024-01-10"))
	if got := res.Users[0].Daily[1].StudyTimeSeconds; got != 60 {
		t.Fatalf("duplicate date slot = %d, want first record 60", got)
	}
}

func TestAggregateConsecutiveDates(t *testing.T) {
	res := Aggregate([]Profile{{Name: "x"}}, mustDate(t, "2024-02-29"))
	prev := mustDate(t, res.WeekStart).AddDate(0, 0, -1)
	for _, d := range res.Users[0].Daily {
		cur := mustDate(t, d.Date)
		if !cur.Equal(prev.AddDate(0, 0, 1)) {
			t.Fatalf("dates not consecutive: %s after %s", d.Date, DateString(prev))
		}
		prev = cur
	}
}

func TestDailyTotals(t *testing.T) {
	users := []Profile{
		{Name: "a", DailyRecords: []DailyRecord{{Date: "2024-01-08", StudyTimeSeconds: 10}}},
		{Name: "b", DailyRecords: []DailyRecord{{Date: "2024-01-08", StudyTimeSeconds: 5}, {Date: "2024-01-14", StudyTimeSeconds: 7}}},
	}
	totals := Aggregate(users, mustDate(t, "2024-01-10")).DailyTotals()
	if totals[0] != 15 || totals[6] != 7 {
		t.Fatalf("totals = %v", totals)
	}
}

// ============================================================
// Visit stamps
// ============================================================

func TestVisitStampsSingleUser(t *testing.T) {
	alice := Profile{Name: "Alice", VisitStamps: map[string]bool{"2024-01-09": true}}
	got := VisitStamps([]Profile{alice}, mustDate(t, "2024-01-08"))
	want := [7]bool{false, true, false, false, false, false, false}
	if got != want {
		t.Fatalf("stamps = %v, want %v", got, want)
	}
}

func TestVisitStampsAnyUser(t *testing.T) {
	users := []Profile{
		{Name: "a", VisitStamps: map[string]bool{"2024-01-08": true, "2024-01-20": true}},
		{Name: "b", VisitStamps: map[string]bool{"2024-01-14": true}},
		{Name: "c"},
	}
	got := VisitStamps(users, mustDate(t, "2024-01-08"))
	want := [7]bool{true, false, false, false, false, false, true}
	if got != want {
		t.Fatalf("stamps = %v, want %v", got, want)
	}
}

func TestVisitStampsNoUsers(t *testing.T) {
	if got := VisitStamps(nil, mustDate(t, "2024-01-08")); got != [7]bool{} {
		t.Fatalf("stamps = %v, want all false", got)
	}
}

// ============================================================
// Rank
// ============================================================

func TestRank(t *testing.T) {
	users := []Profile{
		{Name: "low", DailyRecords: []DailyRecord{{Date: "2024-01-01", StudyTimeSeconds: 60}}},
		{Name: "high", Studying: true, DailyRecords: []DailyRecord{
			{Date: "2024-01-01", StudyTimeSeconds: 3600},
			{Date: "2023-12-01", StudyTimeSeconds: 3600},
		}},
		{Name: "tie", DailyRecords: []DailyRecord{{Date: "2024-01-02", StudyTimeSeconds: 60}}},
	}
	got := Rank(users)
	if got[0].Name != "high" || got[0].TotalSeconds != 7200 || !got[0].Studying {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].Name != "low" || got[2].Name != "tie" {
		t.Fatalf("tie order = %s, %s", got[1].Name, got[2].Name)
	}
}

// ============================================================
// Formatting
// ============================================================

func TestFormatClock(t *testing.T) {
	cases := map[int64]string{
		0:      "00:00",
		60:     "00:01",
		90:     "00:01",
		3600:   "01:00",
		3665:   "01:01",
		3900:   "01:05",
		7200:   "02:00",
		359999: "99:59",
		360000: "100:00",
	}
	for in, want := range cases {
		if got := FormatClock(in); got != want {
			t.Errorf("FormatClock(%d) = %q, want %q", in, got, want)
		}
	}
}
