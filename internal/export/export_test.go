package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/studyboard/internal/weekly"
)

func sampleResult() weekly.Result {
	users := []weekly.Profile{
		{
			Name:            "Alice",
			ProfileImageURL: "https://img/alice",
			DailyRecords: []weekly.DailyRecord{
				{Date: "2024-01-08", StudyTimeSeconds: 3600},
				{Date: "2024-01-10", StudyTimeSeconds: 1800},
			},
		},
		{
			Name: `Bob "the builder", jr`,
			DailyRecords: []weekly.DailyRecord{
				{Date: "2024-01-14", StudyTimeSeconds: 61},
			},
		},
	}
	return weekly.Aggregate(users, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "week.csv")
	if err := ToCSV(sampleResult(), path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("expected 3 rows (1 header + 2 data), got %d", len(records))
	}

	header := records[0]
	if len(header) != 10 || header[0] != "Name" || header[1] != "2024-01-08" || header[7] != "2024-01-14" {
		t.Fatalf("header = %v", header)
	}

	alice := records[1]
	if alice[0] != "Alice" || alice[1] != "3600" || alice[3] != "1800" || alice[2] != "0" {
		t.Fatalf("Alice row = %v", alice)
	}
	if alice[8] != "5400" || alice[9] != "01:30:00" {
		t.Fatalf("Alice totals = %v", alice[8:])
	}

	bob := records[2]
	if bob[0] != `Bob "the builder", jr` {
		t.Fatalf("name mangled: %q", bob[0])
	}
	if bob[7] != "61" || bob[9] != "00:01:01" {
		t.Fatalf("Bob row = %v", bob)
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	result := weekly.Aggregate(nil, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	if err := ToCSV(result, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadWeekStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := ToCSV(weekly.Result{}, path); err == nil {
		t.Fatal("expected error for missing week start")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("no file should be created")
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(sampleResult(), "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "week.json")
	if err := ToJSON(sampleResult(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 2 || len(result.Users) != 2 {
		t.Fatalf("count = %d, users = %d", result.Count, len(result.Users))
	}
	if result.WeekStart != "2024-01-08" || result.WeekEnd != "2024-01-14" {
		t.Fatalf("week = %s..%s", result.WeekStart, result.WeekEnd)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	alice := result.Users[0]
	if alice.Name != "Alice" || alice.TotalSeconds != 5400 || alice.Total != "01:30:00" {
		t.Fatalf("Alice = %+v", alice)
	}
	if len(alice.Daily) != 7 || alice.Daily[2].Date != "2024-01-10" || alice.Daily[2].Seconds != 1800 {
		t.Fatalf("Alice daily = %+v", alice.Daily)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(weekly.Result{}, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"users": []`) {
		t.Fatalf("users should be an empty list: %s", data)
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(sampleResult(), "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(sampleResult(), path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be indented")
	}
}

// ============================================================
// formatDuration (internal helper)
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{60, "00:01:00"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{90061, "25:01:01"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.secs)
		if got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
