package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/studyboard/internal/weekly"
)

// ToCSV writes one row per user: name, seconds for each day Monday to Sunday,
// and the weekly total.
func ToCSV(result weekly.Result, path string) error {
	start, err := weekly.ParseDate(result.WeekStart)
	if err != nil {
		return fmt.Errorf("week start: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"Name"}
	for _, d := range weekly.WeekDates(start) {
		header = append(header, d)
	}
	header = append(header, "Total (s)", "Total")
	if err := w.Write(header); err != nil {
		return err
	}

	for _, u := range result.Users {
		row := []string{u.Name}
		for _, d := range u.Daily {
			row = append(row, strconv.FormatInt(d.StudyTimeSeconds, 10))
		}
		row = append(row, strconv.FormatInt(u.TotalSeconds, 10), formatDuration(u.TotalSeconds))
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
