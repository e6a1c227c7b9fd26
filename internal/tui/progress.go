package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// progress is the streamer's own study report, shown between board rotations.
type progress struct {
	Title      string
	UpdateDate string
	TotalTime  string
	ExamDate   string
	TestScore  string
}

func progressFromSettings(settings map[string]string) progress {
	return progress{
		Title:      strings.TrimSpace(settings["progress_title"]),
		UpdateDate: settings["progress_update_date"],
		TotalTime:  settings["progress_total_time"],
		ExamDate:   settings["progress_exam_date"],
		TestScore:  settings["progress_test_score"],
	}
}

// configured reports whether there is anything to show.
func (p progress) configured() bool {
	return p.Title != ""
}

func (p progress) view(width int) string {
	w := width - 4
	if w < 20 {
		w = 20
	}
	inner := w - 6

	rows := []string{
		boardTitleStyle.Width(inner).Render(p.Title),
		"",
	}
	if p.UpdateDate != "" {
		rows = append(rows, mutedStyle.Width(inner).Align(lipgloss.Center).Render("Update Date: "+p.UpdateDate), "")
	}

	label := lipgloss.NewStyle().Width(14).Bold(true).Foreground(colorFg)
	for _, line := range []struct{ k, v string }{
		{"Total Time:", p.TotalTime},
		{"Exam Date:", p.ExamDate},
		{"Test Score:", p.TestScore},
	} {
		if line.v == "" {
			continue
		}
		rows = append(rows, "  "+label.Render(line.k)+highlightStyle.Render(line.v))
	}

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
