package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studyboard/internal/weekly"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	WeekStart  string     `json:"week_start"`
	WeekEnd    string     `json:"week_end"`
	Count      int        `json:"count"`
	Users      []jsonUser `json:"users"`
}

type jsonUser struct {
	Name            string    `json:"name"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	TotalSeconds    int64     `json:"total_seconds"`
	Total           string    `json:"total"`
	Daily           []jsonDay `json:"daily"`
}

type jsonDay struct {
	Date    string `json:"date"`
	Seconds int64  `json:"seconds"`
}

func ToJSON(result weekly.Result, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		WeekStart:  result.WeekStart,
		WeekEnd:    result.WeekEnd,
		Count:      len(result.Users),
		Users:      make([]jsonUser, 0, len(result.Users)),
	}

	for _, u := range result.Users {
		ju := jsonUser{
			Name:            u.Name,
			ProfileImageURL: u.ProfileImageURL,
			TotalSeconds:    u.TotalSeconds,
			Total:           formatDuration(u.TotalSeconds),
			Daily:           make([]jsonDay, 0, len(u.Daily)),
		}
		for _, d := range u.Daily {
			ju.Daily = append(ju.Daily, jsonDay{Date: d.Date, Seconds: d.StudyTimeSeconds})
		}
		export.Users = append(export.Users, ju)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
