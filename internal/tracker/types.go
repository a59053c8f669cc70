package tracker

import (
	"encoding/json"
	"time"
)

// IssueStatus is the workflow state of an issue.
type IssueStatus string

const (
	StatusBacklog    IssueStatus = "BACKLOG"
	StatusTodo       IssueStatus = "TODO"
	StatusInProgress IssueStatus = "IN_PROGRESS"
	StatusInReview   IssueStatus = "IN_REVIEW"
	StatusBlocked    IssueStatus = "BLOCKED"
	StatusDone       IssueStatus = "DONE"
	StatusClosed     IssueStatus = "CLOSED"
)

// AllIssueStatuses returns the workflow states in board order.
func AllIssueStatuses() []IssueStatus {
	return []IssueStatus{
		StatusBacklog,
		StatusTodo,
		StatusInProgress,
		StatusInReview,
		StatusBlocked,
		StatusDone,
		StatusClosed,
	}
}

// Priority is the urgency classification of an issue.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// IssueType is the kind of work an issue represents.
type IssueType string

const (
	TypeStory IssueType = "STORY"
	TypeTask  IssueType = "TASK"
	TypeBug   IssueType = "BUG"
	TypeEpic  IssueType = "EPIC"
	TypeSpike IssueType = "SPIKE"
)

// SprintStatus is the lifecycle state of a sprint.
type SprintStatus string

const (
	SprintPlanned   SprintStatus = "PLANNED"
	SprintActive    SprintStatus = "ACTIVE"
	SprintCompleted SprintStatus = "COMPLETED"
	SprintCancelled SprintStatus = "CANCELLED"
)

// AuditAction is the kind of change an audit log entry records.
type AuditAction string

const (
	ActionCreate AuditAction = "CREATE"
	ActionUpdate AuditAction = "UPDATE"
)

// TimeRange is a closed enumeration of look-back windows for capacity queries.
type TimeRange string

const (
	RangeLast7Days  TimeRange = "LAST_7_DAYS"
	RangeLast30Days TimeRange = "LAST_30_DAYS"
	RangeLast90Days TimeRange = "LAST_90_DAYS"
)

// Days returns the look-back length of the range. Unknown or empty values
// fall back to 30 days.
func (r TimeRange) Days() int {
	switch r {
	case RangeLast7Days:
		return 7
	case RangeLast90Days:
		return 90
	default:
		return 30
	}
}

// User is a member of the workspace.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// Issue is the current snapshot of a tracked work item. Historical state is
// only recoverable from its audit log.
type Issue struct {
	ID            string      `json:"id"`
	Key           string      `json:"key"`
	ProjectID     string      `json:"projectId"`
	SprintID      *string     `json:"sprintId,omitempty"`
	ParentID      *string     `json:"parentId,omitempty"`
	Status        IssueStatus `json:"status"`
	Priority      Priority    `json:"priority"`
	Type          IssueType   `json:"type"`
	StoryPoints   *float64    `json:"storyPoints,omitempty"`
	AssigneeID    *string     `json:"assigneeId,omitempty"`
	Assignee      *User       `json:"assignee,omitempty"`
	CreatorID     string      `json:"creatorId"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	Labels        []string    `json:"labels,omitempty"`
	CommentCount  int         `json:"commentCount"`

	AuditLog []AuditLogEntry `json:"auditLog,omitempty"`
	WorkLogs []WorkLog       `json:"workLogs,omitempty"`
}

// Points returns the story point estimate, treating a missing estimate as zero.
func (i Issue) Points() float64 {
	if i.StoryPoints == nil {
		return 0
	}
	return *i.StoryPoints
}

// AuditLogEntry is one immutable record of a change to an issue. Changes is an
// opaque payload whose shape has drifted over the product's lifetime; consumers
// must treat parsing it as fallible.
type AuditLogEntry struct {
	ID        string          `json:"id"`
	IssueID   string          `json:"issueId"`
	Action    AuditAction     `json:"action"`
	Changes   json.RawMessage `json:"changes"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Sprint is a time-boxed iteration. A sprint with no StartDate has not begun.
type Sprint struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"projectId"`
	Name      string       `json:"name"`
	Goal      string       `json:"goal,omitempty"`
	Status    SprintStatus `json:"status"`
	StartDate *time.Time   `json:"startDate,omitempty"`
	EndDate   *time.Time   `json:"endDate,omitempty"`
}

// SprintDetail is a sprint together with its issues. Each issue carries its
// ordered CREATE/UPDATE audit entries and its work logs.
type SprintDetail struct {
	Sprint
	Issues []Issue `json:"issues"`
}

// Project is an issue container.
type Project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ProjectSprints is a project together with a status-filtered set of its
// sprints, each with its issues.
type ProjectSprints struct {
	Project
	Sprints []SprintDetail `json:"sprints"`
}

// WorkLog records time spent on an issue by a user.
type WorkLog struct {
	ID               string    `json:"id"`
	IssueID          string    `json:"issueId"`
	UserID           string    `json:"userId"`
	TimeSpentMinutes int       `json:"timeSpentMinutes"`
	LogDate          time.Time `json:"logDate"`
}

// TeamMember associates a user with a team.
type TeamMember struct {
	UserID string `json:"userId"`
	User   User   `json:"user"`
	Role   string `json:"role,omitempty"`
}

// Team holds a roster of members.
type Team struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Members []TeamMember `json:"members"`
}
