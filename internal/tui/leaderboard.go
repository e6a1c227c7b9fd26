package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyboard/internal/weekly"
)

type leaderboardModel struct {
	width  int
	height int

	standings []weekly.Standing
	updated   time.Time
}

func newLeaderboardModel() leaderboardModel {
	return leaderboardModel{}
}

func (l *leaderboardModel) setSize(w, h int) {
	l.width = w
	l.height = h
}

func (l *leaderboardModel) setData(profiles []weekly.Profile, at time.Time) {
	l.standings = weekly.Rank(profiles)
	l.updated = at
}

func (l leaderboardModel) count() int { return len(l.standings) }

func (l leaderboardModel) view(page, perPage int) string {
	if l.width < 20 {
		return "Terminal too small"
	}
	w := l.width - 4

	title := boardTitleStyle.Width(w - 6).Render("Study Time Tracker")
	updated := mutedStyle.Width(w - 6).Align(lipgloss.Center).Render(updatedLine(l.updated))

	rows := []string{title, updated, ""}
	if len(l.standings) == 0 {
		rows = append(rows, mutedStyle.Width(w-6).Align(lipgloss.Center).Render("Waiting for comments..."))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	start, end := pageSlice(len(l.standings), perPage, page)
	for i, s := range l.standings[start:end] {
		rows = append(rows, l.renderRow(start+i+1, s, w-6))
	}

	if pages := pageCount(len(l.standings), perPage); pages > 1 {
		rows = append(rows, "", mutedStyle.Width(w-6).Align(lipgloss.Center).Render(fmt.Sprintf("%d / %d", page+1, pages)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (l leaderboardModel) renderRow(rank int, s weekly.Standing, w int) string {
	badge := studyBadge(s.Studying, s.TotalSeconds)
	clock := clockStyle.Render(weekly.FormatClock(s.TotalSeconds))

	nameWidth := w - 4 - 10 - 8
	if nameWidth < 4 {
		nameWidth = 4
	}
	name := normalItemStyle.Width(nameWidth).Render(truncate(s.Name, nameWidth))
	return fmt.Sprintf("%2d. %s %s %s",
		rank,
		name,
		lipgloss.NewStyle().Width(10).Render(badge),
		clock,
	)
}

// studyBadge marks a viewer who is studying now, or who studied and stopped.
func studyBadge(studying bool, total int64) string {
	switch {
	case studying:
		return studyingBadgeStyle.Render("Studying")
	case total > 0:
		return finishedBadgeStyle.Render("Finished")
	}
	return ""
}

func updatedLine(t time.Time) string {
	if t.IsZero() {
		return "Updated: --:--"
	}
	return "Updated: " + weekly.FormatUpdated(t)
}
