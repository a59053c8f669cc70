// Package analytics computes derived sprint and issue reports: burndown
// charts, velocity trends, aging distributions, team capacity, and composite
// sprint reports. It holds no state between calls; every report is recomputed
// from a fresh read against the store, with a single timestamp captured at the
// start of the computation so that no report is internally inconsistent.
package analytics

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sprintlens/internal/tracker"
)

// Service generates reports against a Store. Safe for concurrent use.
type Service struct {
	store tracker.Store
	now   func() time.Time
	log   zerolog.Logger
}

// NewService creates a Service reading from store and using the wall clock.
func NewService(store tracker.Store) *Service {
	return NewServiceWithClock(store, time.Now)
}

// NewServiceWithClock creates a Service with an injectable clock. Each report
// calls now exactly once and threads the captured instant through its whole
// computation.
func NewServiceWithClock(store tracker.Store, now func() time.Time) *Service {
	return &Service{
		store: store,
		now:   now,
		log:   log.Logger,
	}
}
