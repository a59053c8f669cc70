// Package jobs schedules the recurring velocity digest. Reports are never
// persisted; the digest recomputes them and emits the result to the log.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"sprintlens/internal/analytics"
	"sprintlens/internal/tracker"
)

// Digest runs the weekly velocity digest on a cron schedule.
type Digest struct {
	log   zerolog.Logger
	svc   *analytics.Service
	store tracker.Store
	cron  *cron.Cron
}

// NewDigest schedules the digest from a standard 5-field cron expression,
// evaluated in the given location.
func NewDigest(log zerolog.Logger, svc *analytics.Service, store tracker.Store, schedule string, loc *time.Location) (*Digest, error) {
	c := cron.New(cron.WithLocation(loc))
	d := &Digest{log: log, svc: svc, store: store, cron: c}
	if _, err := c.AddFunc(schedule, d.run); err != nil {
		return nil, err
	}
	return d, nil
}

// Start begins the schedule.
func (d *Digest) Start() { d.cron.Start() }

// Stop halts the schedule and waits for a running digest to finish.
func (d *Digest) Stop() {
	<-d.cron.Stop().Done()
}

func (d *Digest) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	projectIDs, err := d.store.ListProjectIDs(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("digest: list projects failed")
		return
	}

	for _, projectID := range projectIDs {
		report, err := d.svc.VelocityReportFor(ctx, projectID, "")
		if err != nil {
			d.log.Error().Err(err).Str("projectId", projectID).Msg("digest: velocity report failed")
			continue
		}
		d.log.Info().
			Str("projectId", projectID).
			Int("sprints", len(report.Sprints)).
			Float64("averageVelocity", report.AverageVelocity).
			Str("trend", string(report.Trend)).
			Msg("digest: project velocity")
	}
}
