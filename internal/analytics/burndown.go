package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"sprintlens/internal/eventlog"
	"sprintlens/internal/tracker"
)

// BurndownPoint is one day of ideal-vs-actual remaining work.
type BurndownPoint struct {
	Date            time.Time `json:"date"`
	IdealRemaining  float64   `json:"idealRemaining"`
	ActualRemaining float64   `json:"actualRemaining"`
	AddedIssues     int       `json:"addedIssues"`
	RemovedIssues   int       `json:"removedIssues"`
}

// BurndownReport is the full day-by-day reconstruction for one sprint.
type BurndownReport struct {
	SprintID             string          `json:"sprintId"`
	SprintName           string          `json:"sprintName"`
	StartDate            time.Time       `json:"startDate"`
	EndDate              *time.Time      `json:"endDate,omitempty"`
	TotalStoryPoints     float64         `json:"totalStoryPoints"`
	CompletedStoryPoints float64         `json:"completedStoryPoints"`
	RemainingStoryPoints float64         `json:"remainingStoryPoints"`
	CompletionPercentage int             `json:"completionPercentage"`
	Velocity             float64         `json:"velocity"`
	DaysRemaining        int             `json:"daysRemaining"`
	OnTrack              bool            `json:"onTrack"`
	DataPoints           []BurndownPoint `json:"dataPoints"`
}

// Burndown reconstructs the sprint's daily remaining work from the issues'
// audit logs. The sprint must exist and have started.
func (s *Service) Burndown(ctx context.Context, sprintID string) (*BurndownReport, error) {
	sprint, err := s.store.GetSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if sprint.StartDate == nil {
		return nil, fmt.Errorf("sprint %s has not started: %w", sprintID, tracker.ErrPrecondition)
	}

	now := s.now()
	start := *sprint.StartDate
	end := orNow(sprint.EndDate, now)
	effectiveEnd := minTime(now, end)
	totalDays := CeilDays(start, end)

	var totalPoints, completedPoints float64
	addedAfterStart := 0
	for _, issue := range sprint.Issues {
		totalPoints += issue.Points()
		if issue.Status == tracker.StatusDone {
			completedPoints += issue.Points()
		}
		if issue.CreatedAt.After(start) {
			addedAfterStart++
		}
	}

	// Daily points from sprint start through the last elapsed day, each taken
	// at that day's end-of-day cutoff. A sprint scheduled to start in the
	// future has no elapsed days yet and carries only the day-0 point.
	elapsedDays := max(0, CeilDays(start, effectiveEnd))
	points := make([]BurndownPoint, 0, elapsedDays+1)
	for d := 0; d <= elapsedDays; d++ {
		cutoff := EndOfDay(start.AddDate(0, 0, d))

		// Linear ideal burn. A zero-length sprint is treated as fully due.
		ideal := 0.0
		if totalDays > 0 {
			ideal = math.Max(0, totalPoints-(totalPoints/float64(totalDays))*float64(d))
		}

		var doneByCutoff float64
		for _, issue := range sprint.Issues {
			if issue.Status != tracker.StatusDone {
				continue
			}
			if eventlog.ReachedStatusBy(issue.AuditLog, tracker.StatusDone, cutoff) {
				doneByCutoff += issue.Points()
			}
		}

		points = append(points, BurndownPoint{
			Date:            cutoff,
			IdealRemaining:  ideal,
			ActualRemaining: math.Max(0, totalPoints-doneByCutoff),
			AddedIssues:     addedAfterStart,
			// No removal tracking exists upstream; always 0.
			RemovedIssues: 0,
		})
	}

	daysRemaining := 0
	if sprint.EndDate != nil {
		daysRemaining = max(0, CeilDays(now, *sprint.EndDate))
	}

	s.log.Debug().
		Str("sprintId", sprint.ID).
		Int("issues", len(sprint.Issues)).
		Int("dataPoints", len(points)).
		Msg("Burndown reconstructed")

	last := points[len(points)-1]
	return &BurndownReport{
		SprintID:             sprint.ID,
		SprintName:           sprint.Name,
		StartDate:            start,
		EndDate:              sprint.EndDate,
		TotalStoryPoints:     totalPoints,
		CompletedStoryPoints: completedPoints,
		RemainingStoryPoints: totalPoints - completedPoints,
		CompletionPercentage: roundPct(completedPoints, totalPoints),
		Velocity:             safeDiv(completedPoints, float64(elapsedDays)),
		DaysRemaining:        daysRemaining,
		OnTrack:              last.ActualRemaining <= last.IdealRemaining*1.1,
		DataPoints:           points,
	}, nil
}
