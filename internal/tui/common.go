package tui

import (
	"time"

	"github.com/sadopc/studyboard/internal/weekly"
)

// viewState represents the currently active view.
type viewState int

const (
	viewLeaderboard viewState = iota
	viewWeekly
	viewSettings
)

var viewNames = []string{"Leaderboard", "Weekly", "Settings"}

// --- Messages ---

// ChatStatusMsg reports the live chat connection state to the overlay.
type ChatStatusMsg struct {
	Text string
	OK   bool
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

// boardPrefs are the numeric overlay settings, already validated.
type boardPrefs struct {
	perPage       int
	pageEvery     time.Duration
	progressEvery time.Duration
	refreshEvery  time.Duration
}

type boardDataMsg struct {
	profiles []weekly.Profile
	prefs    boardPrefs
	settings map[string]string
	at       time.Time
	err      error
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// pageCount is the number of pages needed to show n users, at least one.
func pageCount(n, perPage int) int {
	if perPage <= 0 {
		perPage = 1
	}
	if n <= perPage {
		return 1
	}
	return (n + perPage - 1) / perPage
}

// pageSlice returns the bounds of page within n items.
func pageSlice(n, perPage, page int) (int, int) {
	if perPage <= 0 {
		perPage = 1
	}
	start := page * perPage
	if start > n {
		start = n
	}
	end := start + perPage
	if end > n {
		end = n
	}
	return start, end
}

func truncate(s string, w int) string {
	r := []rune(s)
	if w <= 0 || len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}
