package weekly

import (
	"testing"
	"time"
)

func TestSplitDaysSameDay(t *testing.T) {
	start := time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC)
	got := SplitDays(start, start.Add(90*time.Minute), time.UTC)
	if len(got) != 1 || got[0] != (DailyRecord{"2024-01-09", 5400}) {
		t.Fatalf("split = %v", got)
	}
}

func TestSplitDaysAcrossMidnight(t *testing.T) {
	start := time.Date(2024, 1, 9, 23, 30, 0, 0, time.UTC)
	end := time.Date(2024, 1, 10, 0, 45, 0, 0, time.UTC)
	got := SplitDays(start, end, time.UTC)
	want := []DailyRecord{{"2024-01-09", 1800}, {"2024-01-10", 2700}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("split = %v, want %v", got, want)
	}
}

func TestSplitDaysUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 14:30-15:30 UTC is 23:30-00:30 in Tokyo.
	start := time.Date(2024, 1, 9, 14, 30, 0, 0, time.UTC)
	got := SplitDays(start, start.Add(time.Hour), tokyo)
	want := []DailyRecord{{"2024-01-09", 1800}, {"2024-01-10", 1800}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("split = %v, want %v", got, want)
	}
	if got := SplitDays(start, start.Add(time.Hour), time.UTC); len(got) != 1 {
		t.Fatalf("UTC split should be one day, got %v", got)
	}
}

func TestSplitDaysMultipleDays(t *testing.T) {
	start := time.Date(2024, 1, 13, 12, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC)
	got := SplitDays(start, end, time.UTC)
	if len(got) != 3 {
		t.Fatalf("expected 3 pieces, got %v", got)
	}
	if got[1] != (DailyRecord{"2024-01-14", 86400}) {
		t.Fatalf("middle day = %v", got[1])
	}
	var sum int64
	for _, r := range got {
		sum += r.StudyTimeSeconds
	}
	if sum != int64(end.Sub(start).Seconds()) {
		t.Fatalf("sum %d != interval", sum)
	}
}

func TestSplitDaysFractionalSecondsSumToFloor(t *testing.T) {
	start := time.Date(2024, 1, 9, 23, 59, 59, 600_000_000, time.UTC)
	end := time.Date(2024, 1, 10, 0, 0, 1, 500_000_000, time.UTC)
	var sum int64
	for _, r := range SplitDays(start, end, time.UTC) {
		sum += r.StudyTimeSeconds
	}
	if sum != 1 {
		t.Fatalf("sum = %d, want floor(1.9s) = 1", sum)
	}
}

func TestSplitDaysEmptyOrInverted(t *testing.T) {
	at := time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC)
	if got := SplitDays(at, at, time.UTC); got != nil {
		t.Fatalf("empty interval = %v", got)
	}
	if got := SplitDays(at, at.Add(-time.Hour), time.UTC); got != nil {
		t.Fatalf("inverted interval = %v", got)
	}
}

func TestSumByDate(t *testing.T) {
	got := SumByDate([]DailyRecord{
		{"2024-01-10", 5},
		{"2024-01-09", 1},
		{"2024-01-10", 7},
	})
	if len(got) != 2 || got[0] != (DailyRecord{"2024-01-09", 1}) || got[1] != (DailyRecord{"2024-01-10", 12}) {
		t.Fatalf("sum = %v", got)
	}
	if SumByDate(nil) != nil {
		t.Fatal("expected nil for no records")
	}
}
