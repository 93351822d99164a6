// Package timewindow holds the start/end-time rules that gate
// attendance marking for an event.
package timewindow

import (
	"fmt"
	"time"

	"github.com/pearldata/pearlctl/internal/app/models"
)

// IsCompleted reports whether the event is over: its end time has
// passed, or the server already marked it COMPLETED or CANCELLED.
func IsCompleted(e models.Event, now time.Time) bool {
	if e.Status == models.EventCompleted || e.Status == models.EventCancelled {
		return true
	}
	return now.After(e.EndTime)
}

// CanMarkAttendance reports whether attendance may be saved: the event
// has started (the start instant itself counts) and is not completed.
func CanMarkAttendance(e models.Event, now time.Time) bool {
	if now.Before(e.StartTime) {
		return false
	}
	return !IsCompleted(e, now)
}

// StartsIn returns the wait until the event becomes markable, or zero
// when it already has started.
func StartsIn(e models.Event, now time.Time) time.Duration {
	if !now.Before(e.StartTime) {
		return 0
	}
	return e.StartTime.Sub(now)
}

// StartsInMessage renders the explanatory countdown shown while the
// save action is disabled, e.g. "starts in 12 minutes".
func StartsInMessage(e models.Event, now time.Time) string {
	wait := StartsIn(e, now)
	if wait <= 0 {
		return ""
	}
	minutes := int(wait.Minutes())
	if wait%time.Minute != 0 {
		minutes++ // round up so "starts in 0 minutes" never shows
	}
	if minutes == 1 {
		return "starts in 1 minute"
	}
	return fmt.Sprintf("starts in %d minutes", minutes)
}
