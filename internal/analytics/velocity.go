package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"sprintlens/internal/tracker"
)

// Trend classifies the direction of velocity change across recent sprints.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// SprintVelocity is one sprint's throughput row.
type SprintVelocity struct {
	SprintID           string     `json:"sprintId"`
	SprintName         string     `json:"sprintName"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            *time.Time `json:"endDate,omitempty"`
	CommittedPoints    float64    `json:"committedPoints"`
	CompletedPoints    float64    `json:"completedPoints"`
	DurationDays       int        `json:"durationDays"`
	Velocity           float64    `json:"velocity"`
	CommitmentAccuracy int        `json:"commitmentAccuracy"`
}

// VelocityReport aggregates per-sprint velocity for a project.
type VelocityReport struct {
	ProjectID                 string           `json:"projectId"`
	TeamName                  string           `json:"teamName,omitempty"`
	Sprints                   []SprintVelocity `json:"sprints"`
	AverageVelocity           float64          `json:"averageVelocity"`
	AverageCompletedPoints    float64          `json:"averageCompletedPoints"`
	AverageCommitmentAccuracy float64          `json:"averageCommitmentAccuracy"`
	Trend                     Trend            `json:"trend"`
}

// VelocityReportFor computes per-sprint velocity and a trend classification
// for the project's active and completed sprints. teamID, when given, only
// resolves a display name; it does not scope which sprints or issues are
// included (no team linkage exists on sprints upstream).
func (s *Service) VelocityReportFor(ctx context.Context, projectID, teamID string) (*VelocityReport, error) {
	return s.velocityReport(ctx, projectID, teamID, s.now())
}

func (s *Service) velocityReport(ctx context.Context, projectID, teamID string, now time.Time) (*VelocityReport, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectId is required: %w", tracker.ErrPrecondition)
	}

	project, err := s.store.GetProjectSprints(ctx, projectID, []tracker.SprintStatus{tracker.SprintActive, tracker.SprintCompleted})
	if err != nil {
		return nil, err
	}

	teamName := ""
	if teamID != "" {
		team, err := s.store.GetTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		teamName = team.Name
	}

	// Only sprints that have actually started can have a velocity.
	var started []tracker.SprintDetail
	for _, sprint := range project.Sprints {
		if sprint.StartDate != nil {
			started = append(started, sprint)
		}
	}
	sort.Slice(started, func(i, j int) bool {
		return started[i].StartDate.Before(*started[j].StartDate)
	})

	report := &VelocityReport{
		ProjectID: project.ID,
		TeamName:  teamName,
		Trend:     TrendStable,
	}

	var sumVelocity, sumCompleted, sumAccuracy float64
	for _, sprint := range started {
		var committed, completed float64
		for _, issue := range sprint.Issues {
			committed += issue.Points()
			if issue.Status == tracker.StatusDone {
				completed += issue.Points()
			}
		}

		duration := CeilDays(*sprint.StartDate, orNow(sprint.EndDate, now))
		row := SprintVelocity{
			SprintID:           sprint.ID,
			SprintName:         sprint.Name,
			StartDate:          *sprint.StartDate,
			EndDate:            sprint.EndDate,
			CommittedPoints:    committed,
			CompletedPoints:    completed,
			DurationDays:       duration,
			Velocity:           safeDiv(completed, float64(duration)),
			CommitmentAccuracy: roundPct(completed, committed),
		}
		report.Sprints = append(report.Sprints, row)

		sumVelocity += row.Velocity
		sumCompleted += row.CompletedPoints
		sumAccuracy += float64(row.CommitmentAccuracy)
	}

	if n := float64(len(report.Sprints)); n > 0 {
		report.AverageVelocity = sumVelocity / n
		report.AverageCompletedPoints = sumCompleted / n
		report.AverageCommitmentAccuracy = sumAccuracy / n
	}
	report.Trend = classifyTrend(report.Sprints)

	s.log.Debug().
		Str("projectId", projectID).
		Int("sprints", len(report.Sprints)).
		Str("trend", string(report.Trend)).
		Msg("Velocity report computed")

	return report, nil
}

// classifyTrend compares the first and last of the most recent three sprints.
// The threshold is linear in the first velocity, so a cold start (first == 0)
// registers any positive movement as increasing.
func classifyTrend(sprints []SprintVelocity) Trend {
	if len(sprints) < 3 {
		return TrendStable
	}

	recent := sprints[len(sprints)-3:]
	first := recent[0].Velocity
	last := recent[2].Velocity
	diff := last - first
	threshold := 0.1 * first

	switch {
	case diff > threshold:
		return TrendIncreasing
	case diff < -threshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
