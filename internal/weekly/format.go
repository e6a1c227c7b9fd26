package weekly

import (
	"fmt"
	"time"
)

// FormatClock renders seconds as zero-padded HH:MM, dropping leftover seconds.
func FormatClock(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// FormatUpdated renders the wall-clock time of t as HH:MM.
func FormatUpdated(t time.Time) string {
	return t.Format("15:04")
}
