package analytics

import (
	"context"
	"fmt"
	"time"

	"sprintlens/internal/tracker"
)

// staleAfterDays is the no-update threshold beyond which an open issue counts
// as stale.
const staleAfterDays = 30

// AgedIssue is one open issue annotated with its age.
type AgedIssue struct {
	ID              string              `json:"id"`
	Key             string              `json:"key"`
	Status          tracker.IssueStatus `json:"status"`
	Priority        tracker.Priority    `json:"priority"`
	Assignee        string              `json:"assignee,omitempty"`
	CommentCount    int                 `json:"commentCount"`
	AgeDays         int                 `json:"ageDays"`
	DaysSinceUpdate int                 `json:"daysSinceUpdate"`
}

// AgingReport buckets a project's open issues by age. The four buckets
// partition the issue set exactly.
type AgingReport struct {
	ProjectID        string      `json:"projectId"`
	Aged0to7         []AgedIssue `json:"aged0to7"`
	Aged8to14        []AgedIssue `json:"aged8to14"`
	Aged15to30       []AgedIssue `json:"aged15to30"`
	Aged30Plus       []AgedIssue `json:"aged30Plus"`
	TotalIssues      int         `json:"totalIssues"`
	AverageAgeDays   float64     `json:"averageAgeDays"`
	MedianAgeDays    int         `json:"medianAgeDays"`
	StaleIssuesCount int         `json:"staleIssuesCount"`
}

// IssueAging buckets the project's open (not DONE) issues by age in days and
// counts the stale ones.
func (s *Service) IssueAging(ctx context.Context, projectID string) (*AgingReport, error) {
	return s.issueAging(ctx, projectID, s.now())
}

func (s *Service) issueAging(ctx context.Context, projectID string, now time.Time) (*AgingReport, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectId is required: %w", tracker.ErrPrecondition)
	}

	issues, err := s.store.ListOpenIssues(ctx, projectID)
	if err != nil {
		return nil, err
	}

	report := &AgingReport{
		ProjectID:   projectID,
		TotalIssues: len(issues),
	}

	ages := make([]int, 0, len(issues))
	ageSum := 0
	for _, issue := range issues {
		aged := AgedIssue{
			ID:              issue.ID,
			Key:             issue.Key,
			Status:          issue.Status,
			Priority:        issue.Priority,
			CommentCount:    issue.CommentCount,
			AgeDays:         FloorDays(issue.CreatedAt, now),
			DaysSinceUpdate: FloorDays(issue.UpdatedAt, now),
		}
		if issue.Assignee != nil {
			aged.Assignee = issue.Assignee.DisplayName
		}

		switch {
		case aged.AgeDays <= 7:
			report.Aged0to7 = append(report.Aged0to7, aged)
		case aged.AgeDays <= 14:
			report.Aged8to14 = append(report.Aged8to14, aged)
		case aged.AgeDays <= 30:
			report.Aged15to30 = append(report.Aged15to30, aged)
		default:
			report.Aged30Plus = append(report.Aged30Plus, aged)
		}

		if aged.DaysSinceUpdate >= staleAfterDays {
			report.StaleIssuesCount++
		}

		ages = append(ages, aged.AgeDays)
		ageSum += aged.AgeDays
	}

	if len(ages) > 0 {
		report.AverageAgeDays = float64(ageSum) / float64(len(ages))
	}
	report.MedianAgeDays = MedianUpper(ages)

	return report, nil
}
