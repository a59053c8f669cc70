package analytics

import (
	"context"
	"sort"
	"time"

	"sprintlens/internal/tracker"
)

// topContributorLimit caps the contributors list on a sprint report.
const topContributorLimit = 5

// BreakdownEntry is the count/share/points triple for one status, type, or
// priority value.
type BreakdownEntry struct {
	Count       int     `json:"count"`
	Percentage  int     `json:"percentage"`
	StoryPoints float64 `json:"storyPoints"`
}

// Contributor is one assignee's completed work within the sprint.
type Contributor struct {
	UserID          string  `json:"userId"`
	Name            string  `json:"name"`
	CompletedIssues int     `json:"completedIssues"`
	CompletedPoints float64 `json:"completedPoints"`
}

// SprintReport is the composite single-sprint summary.
type SprintReport struct {
	SprintID               string                                 `json:"sprintId"`
	SprintName             string                                 `json:"sprintName"`
	Goal                   string                                 `json:"goal,omitempty"`
	Status                 tracker.SprintStatus                   `json:"status"`
	StartDate              *time.Time                             `json:"startDate,omitempty"`
	EndDate                *time.Time                             `json:"endDate,omitempty"`
	TotalIssues            int                                    `json:"totalIssues"`
	CompletedIssues        int                                    `json:"completedIssues"`
	InProgressIssues       int                                    `json:"inProgressIssues"`
	NotStartedIssues       int                                    `json:"notStartedIssues"`
	TotalStoryPoints       float64                                `json:"totalStoryPoints"`
	CompletedStoryPoints   float64                                `json:"completedStoryPoints"`
	CompletionPercentage   int                                    `json:"completionPercentage"`
	AddedDuringSprint      int                                    `json:"addedDuringSprint"`
	RemovedDuringSprint    int                                    `json:"removedDuringSprint"`
	TotalTimeLoggedMinutes int                                    `json:"totalTimeLoggedMinutes"`
	ByStatus               map[tracker.IssueStatus]BreakdownEntry `json:"byStatus"`
	ByType                 map[tracker.IssueType]BreakdownEntry   `json:"byType"`
	ByPriority             map[tracker.Priority]BreakdownEntry    `json:"byPriority"`
	TopContributors        []Contributor                          `json:"topContributors"`
	Velocity               float64                                `json:"velocity"`
	DaysRemaining          int                                    `json:"daysRemaining"`
}

// SprintReportFor aggregates summary counts, breakdowns, and top contributors
// for one sprint.
func (s *Service) SprintReportFor(ctx context.Context, sprintID string) (*SprintReport, error) {
	sprint, err := s.store.GetSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	report := &SprintReport{
		SprintID:   sprint.ID,
		SprintName: sprint.Name,
		Goal:       sprint.Goal,
		Status:     sprint.Status,
		StartDate:  sprint.StartDate,
		EndDate:    sprint.EndDate,
		ByStatus:   make(map[tracker.IssueStatus]BreakdownEntry),
		ByType:     make(map[tracker.IssueType]BreakdownEntry),
		ByPriority: make(map[tracker.Priority]BreakdownEntry),
	}

	// Every enumerated status appears in the breakdown, including empty ones;
	// type and priority only list values actually present.
	for _, status := range tracker.AllIssueStatuses() {
		report.ByStatus[status] = BreakdownEntry{}
	}

	total := len(sprint.Issues)
	report.TotalIssues = total

	// Contributor rows keyed by assignee, in first-encounter order so that
	// equal-point ties sort stably.
	contributorIdx := make(map[string]int)
	var contributors []Contributor

	for _, issue := range sprint.Issues {
		points := issue.Points()
		report.TotalStoryPoints += points

		switch issue.Status {
		case tracker.StatusDone:
			report.CompletedIssues++
			report.CompletedStoryPoints += points
		case tracker.StatusInProgress:
			report.InProgressIssues++
		case tracker.StatusBacklog, tracker.StatusTodo:
			report.NotStartedIssues++
		}

		if sprint.StartDate != nil && issue.CreatedAt.After(*sprint.StartDate) {
			report.AddedDuringSprint++
		}
		for _, wl := range issue.WorkLogs {
			report.TotalTimeLoggedMinutes += wl.TimeSpentMinutes
		}

		bumpBreakdown(report.ByStatus, issue.Status, points)
		bumpBreakdown(report.ByType, issue.Type, points)
		bumpBreakdown(report.ByPriority, issue.Priority, points)

		if issue.Status == tracker.StatusDone && issue.Assignee != nil {
			idx, ok := contributorIdx[issue.Assignee.ID]
			if !ok {
				idx = len(contributors)
				contributorIdx[issue.Assignee.ID] = idx
				contributors = append(contributors, Contributor{
					UserID: issue.Assignee.ID,
					Name:   issue.Assignee.DisplayName,
				})
			}
			contributors[idx].CompletedIssues++
			contributors[idx].CompletedPoints += points
		}
	}

	for status, entry := range report.ByStatus {
		entry.Percentage = roundPct(float64(entry.Count), float64(total))
		report.ByStatus[status] = entry
	}
	for typ, entry := range report.ByType {
		entry.Percentage = roundPct(float64(entry.Count), float64(total))
		report.ByType[typ] = entry
	}
	for priority, entry := range report.ByPriority {
		entry.Percentage = roundPct(float64(entry.Count), float64(total))
		report.ByPriority[priority] = entry
	}

	sort.SliceStable(contributors, func(i, j int) bool {
		return contributors[i].CompletedPoints > contributors[j].CompletedPoints
	})
	if len(contributors) > topContributorLimit {
		contributors = contributors[:topContributorLimit]
	}
	report.TopContributors = contributors

	report.CompletionPercentage = roundPct(report.CompletedStoryPoints, report.TotalStoryPoints)

	if sprint.StartDate != nil {
		elapsed := max(0, CeilDays(*sprint.StartDate, now))
		report.Velocity = safeDiv(report.CompletedStoryPoints, float64(elapsed))
	}
	if sprint.EndDate != nil {
		report.DaysRemaining = max(0, CeilDays(now, *sprint.EndDate))
	}

	// No removal tracking exists upstream.
	report.RemovedDuringSprint = 0

	return report, nil
}

func bumpBreakdown[K comparable](m map[K]BreakdownEntry, key K, points float64) {
	entry := m[key]
	entry.Count++
	entry.StoryPoints += points
	m[key] = entry
}
