package analytics

import (
	"math"
	"time"

	"sprintlens/internal/tracker"
)

// Window is a resolved [Start, End] date range for a report. Filters carrying
// optional sprint/time-range fields are collapsed into a Window once at the
// entry of each generator; internal logic never sees the raw filter.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CeilDays returns the number of days between from and to, rounding any
// partial day up. Negative spans are returned as negative counts; callers
// that need a floor of zero clamp the result themselves.
func CeilDays(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24.0))
}

// FloorDays returns the number of whole days between from and to.
func FloorDays(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24.0))
}

// EndOfDay snaps t to the last millisecond of its calendar day (23:59:59.999
// local), the cutoff instant used for daily burndown points.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// LookbackWindow resolves a time-range enum into a fixed look-back window
// ending at now.
func LookbackWindow(r tracker.TimeRange, now time.Time) Window {
	return Window{Start: now.AddDate(0, 0, -r.Days()), End: now}
}

// SprintWindow resolves a sprint's dates into a window. A missing end date
// means the sprint is still running, so the window is open through now. A
// sprint with no start date cannot anchor a window; fall back to a 14-day
// look-back.
func SprintWindow(sprint tracker.Sprint, now time.Time) Window {
	if sprint.StartDate == nil {
		return Window{Start: now.AddDate(0, 0, -14), End: now}
	}
	return Window{Start: *sprint.StartDate, End: orNow(sprint.EndDate, now)}
}

func orNow(t *time.Time, now time.Time) time.Time {
	if t == nil {
		return now
	}
	return *t
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
