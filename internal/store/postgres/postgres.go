// Package postgres implements the tracker.Store read boundary against the
// primary PostgreSQL database. It is strictly read-only: the tracked entities
// are owned and mutated by the tracker's write path, not by analytics.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sprintlens/internal/tracker"
)

// Store is the pgx-backed implementation of tracker.Store.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Open connects to the database and verifies the connection with a ping.
func Open(ctx context.Context, dsn string, connectTimeout time.Duration) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return pool, nil
}

// NewStore creates a Store over an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, log: log.Logger}
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

const sprintColumns = `id, project_id, name, COALESCE(goal, ''), status, start_date, end_date`

func scanSprint(row pgx.Row, sprint *tracker.Sprint) error {
	return row.Scan(&sprint.ID, &sprint.ProjectID, &sprint.Name, &sprint.Goal, &sprint.Status, &sprint.StartDate, &sprint.EndDate)
}

// GetSprint loads the sprint, its issues, and per issue the ordered
// CREATE/UPDATE audit entries and work logs.
func (s *Store) GetSprint(ctx context.Context, sprintID string) (*tracker.SprintDetail, error) {
	detail := &tracker.SprintDetail{}
	row := s.pool.QueryRow(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE id = $1`, sprintID)
	if err := scanSprint(row, &detail.Sprint); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sprint %s: %w", sprintID, tracker.ErrNotFound)
		}
		return nil, err
	}

	issues, err := s.queryIssues(ctx, `WHERE i.sprint_id = $1`, sprintID)
	if err != nil {
		return nil, err
	}

	ids := issueIDs(issues)
	if err := s.attachAuditLog(ctx, issues, ids); err != nil {
		return nil, err
	}
	if err := s.attachWorkLogs(ctx, issues, ids); err != nil {
		return nil, err
	}

	detail.Issues = issues
	return detail, nil
}

// GetProjectSprints loads the project and its sprints matching any of the
// given statuses, each with its issues.
func (s *Store) GetProjectSprints(ctx context.Context, projectID string, statuses []tracker.SprintStatus) (*tracker.ProjectSprints, error) {
	result := &tracker.ProjectSprints{}
	row := s.pool.QueryRow(ctx, `SELECT id, key, name FROM projects WHERE id = $1`, projectID)
	if err := row.Scan(&result.ID, &result.Key, &result.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", projectID, tracker.ErrNotFound)
		}
		return nil, err
	}

	filter := make([]string, 0, len(statuses))
	for _, st := range statuses {
		filter = append(filter, string(st))
	}

	rows, err := s.pool.Query(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE project_id = $1 AND status = ANY($2) ORDER BY start_date NULLS LAST`, projectID, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]int)
	for rows.Next() {
		var detail tracker.SprintDetail
		if err := scanSprint(rows, &detail.Sprint); err != nil {
			return nil, err
		}
		byID[detail.ID] = len(result.Sprints)
		result.Sprints = append(result.Sprints, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(result.Sprints) == 0 {
		return result, nil
	}

	sprintIDs := make([]string, 0, len(result.Sprints))
	for _, sprint := range result.Sprints {
		sprintIDs = append(sprintIDs, sprint.ID)
	}
	issues, err := s.queryIssues(ctx, `WHERE i.sprint_id = ANY($1)`, sprintIDs)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		if issue.SprintID == nil {
			continue
		}
		if idx, ok := byID[*issue.SprintID]; ok {
			result.Sprints[idx].Issues = append(result.Sprints[idx].Issues, issue)
		}
	}

	return result, nil
}

// ListOpenIssues returns the project's not-DONE issues with assignee and
// comment count.
func (s *Store) ListOpenIssues(ctx context.Context, projectID string) ([]tracker.Issue, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, projectID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("project %s: %w", projectID, tracker.ErrNotFound)
	}

	return s.queryIssues(ctx, `WHERE i.project_id = $1 AND i.status <> 'DONE'`, projectID)
}

// GetTeam loads the team with its member roster.
func (s *Store) GetTeam(ctx context.Context, teamID string) (*tracker.Team, error) {
	team := &tracker.Team{}
	row := s.pool.QueryRow(ctx, `SELECT id, name FROM teams WHERE id = $1`, teamID)
	if err := row.Scan(&team.ID, &team.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("team %s: %w", teamID, tracker.ErrNotFound)
		}
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT tm.user_id, COALESCE(tm.role, ''), u.username, u.display_name
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = $1
		ORDER BY u.display_name`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var member tracker.TeamMember
		if err := rows.Scan(&member.UserID, &member.Role, &member.User.Username, &member.User.DisplayName); err != nil {
			return nil, err
		}
		member.User.ID = member.UserID
		team.Members = append(team.Members, member)
	}
	return team, rows.Err()
}

// ListIssuesByAssignee returns the user's issues created inside [from, to],
// with work logs.
func (s *Store) ListIssuesByAssignee(ctx context.Context, userID string, from, to time.Time) ([]tracker.Issue, error) {
	issues, err := s.queryIssues(ctx, `WHERE i.assignee_id = $1 AND i.created_at >= $2 AND i.created_at <= $3`, userID, from, to)
	if err != nil {
		return nil, err
	}
	if err := s.attachWorkLogs(ctx, issues, issueIDs(issues)); err != nil {
		return nil, err
	}
	return issues, nil
}

// ListProjectIDs returns all project ids.
func (s *Store) ListProjectIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM projects ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// queryIssues runs the shared issue select with the given WHERE clause. The
// clause placeholders start at $1.
func (s *Store) queryIssues(ctx context.Context, where string, args ...any) ([]tracker.Issue, error) {
	q := `
		SELECT i.id, i.key, i.project_id, i.sprint_id, i.parent_id, i.status, i.priority, i.type,
		       i.story_points, i.assignee_id, i.creator_id, i.created_at, i.updated_at,
		       COALESCE(i.labels, '{}'),
		       (SELECT COUNT(*) FROM comments c WHERE c.issue_id = i.id),
		       u.username, u.display_name
		FROM issues i
		LEFT JOIN users u ON u.id = i.assignee_id
		` + where + `
		ORDER BY i.created_at`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []tracker.Issue
	for rows.Next() {
		var issue tracker.Issue
		var username, displayName *string
		if err := rows.Scan(&issue.ID, &issue.Key, &issue.ProjectID, &issue.SprintID, &issue.ParentID,
			&issue.Status, &issue.Priority, &issue.Type, &issue.StoryPoints, &issue.AssigneeID,
			&issue.CreatorID, &issue.CreatedAt, &issue.UpdatedAt, &issue.Labels,
			&issue.CommentCount, &username, &displayName); err != nil {
			return nil, err
		}
		if issue.AssigneeID != nil && username != nil {
			issue.Assignee = &tracker.User{ID: *issue.AssigneeID, Username: *username, DisplayName: *displayName}
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

func issueIDs(issues []tracker.Issue) []string {
	ids := make([]string, 0, len(issues))
	for _, issue := range issues {
		ids = append(ids, issue.ID)
	}
	return ids
}

// attachAuditLog loads CREATE/UPDATE audit entries for the issues in timestamp
// order and distributes them onto the matching issue.
func (s *Store) attachAuditLog(ctx context.Context, issues []tracker.Issue, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, issue_id, action, changes, created_at
		FROM audit_log
		WHERE issue_id = ANY($1) AND action IN ('CREATE', 'UPDATE')
		ORDER BY created_at, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	byIssue := indexByID(issues)
	for rows.Next() {
		var entry tracker.AuditLogEntry
		if err := rows.Scan(&entry.ID, &entry.IssueID, &entry.Action, &entry.Changes, &entry.CreatedAt); err != nil {
			return err
		}
		if idx, ok := byIssue[entry.IssueID]; ok {
			issues[idx].AuditLog = append(issues[idx].AuditLog, entry)
		}
	}
	return rows.Err()
}

func (s *Store) attachWorkLogs(ctx context.Context, issues []tracker.Issue, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, issue_id, user_id, time_spent_minutes, log_date
		FROM work_logs
		WHERE issue_id = ANY($1)
		ORDER BY log_date`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	byIssue := indexByID(issues)
	for rows.Next() {
		var wl tracker.WorkLog
		if err := rows.Scan(&wl.ID, &wl.IssueID, &wl.UserID, &wl.TimeSpentMinutes, &wl.LogDate); err != nil {
			return err
		}
		if idx, ok := byIssue[wl.IssueID]; ok {
			issues[idx].WorkLogs = append(issues[idx].WorkLogs, wl)
		}
	}
	return rows.Err()
}

func indexByID(issues []tracker.Issue) map[string]int {
	byID := make(map[string]int, len(issues))
	for i, issue := range issues {
		byID[issue.ID] = i
	}
	return byID
}
