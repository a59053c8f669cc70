package analytics

import (
	"context"
	"fmt"
	"time"

	"sprintlens/internal/tracker"
)

// fakeStore is an in-memory tracker.Store for engine tests.
type fakeStore struct {
	sprints          map[string]*tracker.SprintDetail
	projects         map[string]*tracker.ProjectSprints
	openIssues       map[string][]tracker.Issue
	teams            map[string]*tracker.Team
	issuesByAssignee map[string][]tracker.Issue
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sprints:          make(map[string]*tracker.SprintDetail),
		projects:         make(map[string]*tracker.ProjectSprints),
		openIssues:       make(map[string][]tracker.Issue),
		teams:            make(map[string]*tracker.Team),
		issuesByAssignee: make(map[string][]tracker.Issue),
	}
}

func (f *fakeStore) GetSprint(_ context.Context, sprintID string) (*tracker.SprintDetail, error) {
	sprint, ok := f.sprints[sprintID]
	if !ok {
		return nil, fmt.Errorf("sprint %s: %w", sprintID, tracker.ErrNotFound)
	}
	return sprint, nil
}

func (f *fakeStore) GetProjectSprints(_ context.Context, projectID string, statuses []tracker.SprintStatus) (*tracker.ProjectSprints, error) {
	project, ok := f.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, tracker.ErrNotFound)
	}
	allowed := make(map[tracker.SprintStatus]bool)
	for _, st := range statuses {
		allowed[st] = true
	}
	filtered := &tracker.ProjectSprints{Project: project.Project}
	for _, sprint := range project.Sprints {
		if allowed[sprint.Status] {
			filtered.Sprints = append(filtered.Sprints, sprint)
		}
	}
	return filtered, nil
}

func (f *fakeStore) ListOpenIssues(_ context.Context, projectID string) ([]tracker.Issue, error) {
	issues, ok := f.openIssues[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, tracker.ErrNotFound)
	}
	return issues, nil
}

func (f *fakeStore) GetTeam(_ context.Context, teamID string) (*tracker.Team, error) {
	team, ok := f.teams[teamID]
	if !ok {
		return nil, fmt.Errorf("team %s: %w", teamID, tracker.ErrNotFound)
	}
	return team, nil
}

func (f *fakeStore) ListIssuesByAssignee(_ context.Context, userID string, from, to time.Time) ([]tracker.Issue, error) {
	var out []tracker.Issue
	for _, issue := range f.issuesByAssignee[userID] {
		if issue.CreatedAt.Before(from) || issue.CreatedAt.After(to) {
			continue
		}
		out = append(out, issue)
	}
	return out, nil
}

func (f *fakeStore) ListProjectIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.projects))
	for id := range f.projects {
		ids = append(ids, id)
	}
	return ids, nil
}

func pts(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

// statusChange builds an audit entry recording a transition into status at ts.
func statusChange(issueID string, status tracker.IssueStatus, ts time.Time) tracker.AuditLogEntry {
	return tracker.AuditLogEntry{
		IssueID:   issueID,
		Action:    tracker.ActionUpdate,
		Changes:   []byte(fmt.Sprintf(`{"status": {"old": "IN_PROGRESS", "new": %q}}`, status)),
		CreatedAt: ts,
	}
}

// fixedClock pins the service clock for deterministic reports.
func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}
