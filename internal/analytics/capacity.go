package analytics

import (
	"context"
	"fmt"
	"time"

	"sprintlens/internal/tracker"
)

// CapacityFilter selects the analysis window for a capacity report. SprintID
// wins when set; otherwise TimeRange resolves a fixed look-back from now.
type CapacityFilter struct {
	SprintID  string
	TimeRange tracker.TimeRange
}

// MemberCapacity is one roster member's workload over the window.
type MemberCapacity struct {
	UserID                    string  `json:"userId"`
	Name                      string  `json:"name"`
	AssignedIssues            int     `json:"assignedIssues"`
	AssignedPoints            float64 `json:"assignedPoints"`
	CompletedIssues           int     `json:"completedIssues"`
	CompletedPoints           float64 `json:"completedPoints"`
	InProgressIssues          int     `json:"inProgressIssues"`
	InProgressPoints          float64 `json:"inProgressPoints"`
	TimeLoggedMinutes         int     `json:"timeLoggedMinutes"`
	UtilizationPercentage     int     `json:"utilizationPercentage"`
	AverageCompletionTimeDays float64 `json:"averageCompletionTimeDays"`
}

// CapacityReport is the team-wide workload aggregate.
type CapacityReport struct {
	TeamID                 string           `json:"teamId"`
	TeamName               string           `json:"teamName"`
	Window                 Window           `json:"window"`
	Members                []MemberCapacity `json:"members"`
	TotalAssignedPoints    float64          `json:"totalAssignedPoints"`
	TotalCompletedPoints   float64          `json:"totalCompletedPoints"`
	TotalInProgressPoints  float64          `json:"totalInProgressPoints"`
	TotalTimeLoggedMinutes int              `json:"totalTimeLoggedMinutes"`
	TeamUtilization        int              `json:"teamUtilization"`
}

// TeamCapacity computes per-member and team-aggregate workload over the window
// resolved from filter. Issues are selected by creation date within the
// window; their logged time is summed in full, not clipped to the window.
func (s *Service) TeamCapacity(ctx context.Context, teamID string, filter CapacityFilter) (*CapacityReport, error) {
	if teamID == "" {
		return nil, fmt.Errorf("teamId is required: %w", tracker.ErrPrecondition)
	}

	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	window, err := s.resolveCapacityWindow(ctx, filter, now)
	if err != nil {
		return nil, err
	}

	report := &CapacityReport{
		TeamID:   team.ID,
		TeamName: team.Name,
		Window:   window,
	}

	for _, member := range team.Members {
		issues, err := s.store.ListIssuesByAssignee(ctx, member.UserID, window.Start, window.End)
		if err != nil {
			return nil, err
		}

		row := MemberCapacity{
			UserID:         member.UserID,
			Name:           member.User.DisplayName,
			AssignedIssues: len(issues),
		}

		var completionDaysSum float64
		for _, issue := range issues {
			row.AssignedPoints += issue.Points()
			switch issue.Status {
			case tracker.StatusDone:
				row.CompletedIssues++
				row.CompletedPoints += issue.Points()
				completionDaysSum += issue.UpdatedAt.Sub(issue.CreatedAt).Hours() / 24.0
			case tracker.StatusInProgress:
				row.InProgressIssues++
				row.InProgressPoints += issue.Points()
			}
			for _, wl := range issue.WorkLogs {
				row.TimeLoggedMinutes += wl.TimeSpentMinutes
			}
		}

		row.UtilizationPercentage = roundPct(row.CompletedPoints, row.AssignedPoints)
		if row.CompletedIssues > 0 {
			row.AverageCompletionTimeDays = round1(completionDaysSum / float64(row.CompletedIssues))
		}

		report.Members = append(report.Members, row)
		report.TotalAssignedPoints += row.AssignedPoints
		report.TotalCompletedPoints += row.CompletedPoints
		report.TotalInProgressPoints += row.InProgressPoints
		report.TotalTimeLoggedMinutes += row.TimeLoggedMinutes
	}

	report.TeamUtilization = roundPct(report.TotalCompletedPoints, report.TotalAssignedPoints)

	return report, nil
}

func (s *Service) resolveCapacityWindow(ctx context.Context, filter CapacityFilter, now time.Time) (Window, error) {
	if filter.SprintID == "" {
		return LookbackWindow(filter.TimeRange, now), nil
	}
	sprint, err := s.store.GetSprint(ctx, filter.SprintID)
	if err != nil {
		return Window{}, err
	}
	return SprintWindow(sprint.Sprint, now), nil
}
