package tracker

import (
	"context"
	"time"
)

// Store is the read boundary to the persistence collaborator. Implementations
// must distinguish "id does not resolve" (ErrNotFound) from "found with zero
// children" (empty slices), and must not retry internally on behalf of callers.
type Store interface {
	// GetSprint returns the sprint with its issues. Each issue carries its
	// CREATE/UPDATE audit entries in timestamp order and its work logs.
	GetSprint(ctx context.Context, sprintID string) (*SprintDetail, error)

	// GetProjectSprints returns the project with its sprints matching any of
	// the given statuses, each sprint with its issues.
	GetProjectSprints(ctx context.Context, projectID string, statuses []SprintStatus) (*ProjectSprints, error)

	// ListOpenIssues returns the project's issues whose status is not DONE,
	// with assignee and comment count populated.
	ListOpenIssues(ctx context.Context, projectID string) ([]Issue, error)

	// GetTeam returns the team with its member roster and user records.
	GetTeam(ctx context.Context, teamID string) (*Team, error)

	// ListIssuesByAssignee returns issues assigned to the user whose CreatedAt
	// falls inside [from, to], with work logs populated.
	ListIssuesByAssignee(ctx context.Context, userID string, from, to time.Time) ([]Issue, error)

	// ListProjectIDs returns the ids of all projects.
	ListProjectIDs(ctx context.Context) ([]string, error)
}
