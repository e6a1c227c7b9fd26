package tui

import "time"

type rotationStep int

const (
	stepNone rotationStep = iota
	stepPage
	stepProgress
	stepSwitch
)

// rotation pages through the board on a fixed cadence. Wrapping back to the
// first page shows the progress panel (when there is one) and then hands over
// to the other board.
type rotation struct {
	pageEvery     time.Duration
	progressEvery time.Duration
	hasProgress   bool
	paused        bool

	page  int
	pages int

	showingProgress bool
	progressUntil   time.Time
	nextAt          time.Time
}

func newRotation(pageEvery, progressEvery time.Duration) rotation {
	return rotation{pageEvery: pageEvery, progressEvery: progressEvery, pages: 1}
}

func (r *rotation) setPages(n int) {
	if n < 1 {
		n = 1
	}
	r.pages = n
	if r.page >= n {
		r.page = 0
	}
}

// reset starts the board over from its first page.
func (r *rotation) reset(now time.Time) {
	r.page = 0
	r.showingProgress = false
	r.nextAt = now.Add(r.pageEvery)
}

func (r *rotation) tick(now time.Time) rotationStep {
	if r.paused {
		return stepNone
	}
	if r.nextAt.IsZero() {
		r.nextAt = now.Add(r.pageEvery)
		return stepNone
	}

	if r.showingProgress {
		if now.Before(r.progressUntil) {
			return stepNone
		}
		r.reset(now)
		return stepSwitch
	}

	if now.Before(r.nextAt) {
		return stepNone
	}
	r.nextAt = now.Add(r.pageEvery)
	r.page = (r.page + 1) % r.pages
	if r.page != 0 {
		return stepPage
	}
	if r.hasProgress {
		r.showingProgress = true
		r.progressUntil = now.Add(r.progressEvery)
		return stepProgress
	}
	r.reset(now)
	return stepSwitch
}

func (r *rotation) toggle(now time.Time) {
	r.paused = !r.paused
	if !r.paused {
		r.nextAt = now.Add(r.pageEvery)
	}
}
