package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// ProjectSummary pairs the velocity and aging views of one project.
type ProjectSummary struct {
	ProjectID   string          `json:"projectId"`
	Velocity    *VelocityReport `json:"velocity"`
	Aging       *AgingReport    `json:"aging"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// ProjectSummaryFor computes the velocity report and the aging report for a
// project concurrently and merges them. Both sub-reports share one captured
// timestamp so the summary cannot be internally inconsistent.
func (s *Service) ProjectSummaryFor(ctx context.Context, projectID string) (*ProjectSummary, error) {
	now := s.now()
	summary := &ProjectSummary{
		ProjectID:   projectID,
		GeneratedAt: now,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		velocity, err := s.velocityReport(ctx, projectID, "", now)
		if err != nil {
			return err
		}
		summary.Velocity = velocity
		return nil
	})
	g.Go(func() error {
		aging, err := s.issueAging(ctx, projectID, now)
		if err != nil {
			return err
		}
		summary.Aging = aging
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}
