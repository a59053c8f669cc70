package eventlog

import (
	"time"

	"sprintlens/internal/tracker"
)

// ReachedStatusBy reports whether the issue had transitioned into target at or
// before cutoff, given its audit entries in stored (timestamp) order.
//
// The scan returns on the first entry whose payload records a status change to
// target with a timestamp at or before the cutoff. An issue that was reopened
// and re-completed before the same cutoff therefore matches on the earliest
// occurrence; this is not a full state-machine replay.
func ReachedStatusBy(entries []tracker.AuditLogEntry, target tracker.IssueStatus, cutoff time.Time) bool {
	for _, entry := range entries {
		if entry.CreatedAt.After(cutoff) {
			continue
		}

		changes, ok := ParsePayload(entry.Changes)
		if !ok {
			// Malformed historical data is non-matching, never fatal.
			continue
		}

		if newStatus, ok := changes.NewString("status"); ok && tracker.IssueStatus(newStatus) == target {
			return true
		}
	}
	return false
}
