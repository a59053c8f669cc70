package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"sprintlens/internal/tracker"
)

func TestBurndown_TwoIssueSprint(t *testing.T) {
	// 14-day sprint that started 10 days ago: one 5-point issue finished on
	// day 3, one 3-point issue still open.
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -10)
	end := now.AddDate(0, 0, 4)

	done := tracker.Issue{
		ID:          "i1",
		Key:         "PROJ-1",
		Status:      tracker.StatusDone,
		StoryPoints: pts(5),
		CreatedAt:   start.AddDate(0, 0, -2),
		AuditLog: []tracker.AuditLogEntry{
			statusChange("i1", tracker.StatusDone, start.AddDate(0, 0, 3)),
		},
	}
	todo := tracker.Issue{
		ID:          "i2",
		Key:         "PROJ-2",
		Status:      tracker.StatusTodo,
		StoryPoints: pts(3),
		CreatedAt:   start.AddDate(0, 0, -2),
	}

	store := newFakeStore()
	store.sprints["s1"] = &tracker.SprintDetail{
		Sprint: tracker.Sprint{
			ID:        "s1",
			Name:      "Sprint 1",
			Status:    tracker.SprintActive,
			StartDate: timePtr(start),
			EndDate:   timePtr(end),
		},
		Issues: []tracker.Issue{done, todo},
	}

	svc := NewServiceWithClock(store, fixedClock(now))
	report, err := svc.Burndown(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Burndown returned error: %v", err)
	}

	if report.TotalStoryPoints != 8 {
		t.Errorf("TotalStoryPoints = %v, want 8", report.TotalStoryPoints)
	}
	if report.CompletedStoryPoints != 5 {
		t.Errorf("CompletedStoryPoints = %v, want 5", report.CompletedStoryPoints)
	}
	if report.RemainingStoryPoints != 3 {
		t.Errorf("RemainingStoryPoints = %v, want 3", report.RemainingStoryPoints)
	}
	if report.CompletionPercentage != 63 {
		t.Errorf("CompletionPercentage = %d, want 63", report.CompletionPercentage)
	}
	if report.DaysRemaining != 4 {
		t.Errorf("DaysRemaining = %d, want 4", report.DaysRemaining)
	}

	// Day 0 through day 10 inclusive.
	if len(report.DataPoints) != 11 {
		t.Fatalf("len(DataPoints) = %d, want 11", len(report.DataPoints))
	}

	first := report.DataPoints[0]
	if first.IdealRemaining != 8 {
		t.Errorf("day 0 IdealRemaining = %v, want 8", first.IdealRemaining)
	}

	last := report.DataPoints[10]
	wantIdeal := 8.0 - (8.0/14.0)*10
	if diff := last.IdealRemaining - wantIdeal; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("day 10 IdealRemaining = %v, want %v", last.IdealRemaining, wantIdeal)
	}

	// The 5-point issue was done on day 3: remaining drops from 8 to 3.
	if report.DataPoints[2].ActualRemaining != 8 {
		t.Errorf("day 2 ActualRemaining = %v, want 8", report.DataPoints[2].ActualRemaining)
	}
	if report.DataPoints[3].ActualRemaining != 3 {
		t.Errorf("day 3 ActualRemaining = %v, want 3", report.DataPoints[3].ActualRemaining)
	}
	if last.ActualRemaining != 3 {
		t.Errorf("day 10 ActualRemaining = %v, want 3", last.ActualRemaining)
	}
}

func TestBurndown_IdealIsMonotonicNonIncreasing(t *testing.T) {
	now := time.Date(2026, 3, 20, 8, 30, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -21)

	store := newFakeStore()
	store.sprints["s1"] = &tracker.SprintDetail{
		Sprint: tracker.Sprint{
			ID:        "s1",
			Name:      "Long sprint",
			StartDate: timePtr(start),
			EndDate:   timePtr(now.AddDate(0, 0, -7)),
		},
		Issues: []tracker.Issue{
			{ID: "i1", Status: tracker.StatusTodo, StoryPoints: pts(13), CreatedAt: start},
			{ID: "i2", Status: tracker.StatusTodo, StoryPoints: pts(8), CreatedAt: start},
		},
	}

	svc := NewServiceWithClock(store, fixedClock(now))
	report, err := svc.Burndown(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Burndown returned error: %v", err)
	}

	for i := 1; i < len(report.DataPoints); i++ {
		prev, curr := report.DataPoints[i-1], report.DataPoints[i]
		if curr.IdealRemaining > prev.IdealRemaining {
			t.Fatalf("IdealRemaining increased at point %d: %v -> %v", i, prev.IdealRemaining, curr.IdealRemaining)
		}
		if curr.ActualRemaining < 0 {
			t.Fatalf("ActualRemaining negative at point %d: %v", i, curr.ActualRemaining)
		}
	}
}

func TestBurndown_SprintNotStarted(t *testing.T) {
	store := newFakeStore()
	store.sprints["s1"] = &tracker.SprintDetail{
		Sprint: tracker.Sprint{ID: "s1", Name: "Unplanned", Status: tracker.SprintPlanned},
	}

	svc := NewServiceWithClock(store, fixedClock(time.Now()))
	_, err := svc.Burndown(context.Background(), "s1")
	if !errors.Is(err, tracker.ErrPrecondition) {
		t.Errorf("expected ErrPrecondition, got %v", err)
	}
}

func TestBurndown_SprintNotFound(t *testing.T) {
	svc := NewServiceWithClock(newFakeStore(), fixedClock(time.Now()))
	_, err := svc.Burndown(context.Background(), "missing")
	if !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBurndown_EmptySprintHasNoNaNs(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -3)

	store := newFakeStore()
	store.sprints["s1"] = &tracker.SprintDetail{
		Sprint: tracker.Sprint{
			ID:        "s1",
			Name:      "Empty",
			StartDate: timePtr(start),
			EndDate:   timePtr(now.AddDate(0, 0, 4)),
		},
	}

	svc := NewServiceWithClock(store, fixedClock(now))
	report, err := svc.Burndown(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Burndown returned error: %v", err)
	}
	if report.CompletionPercentage != 0 {
		t.Errorf("CompletionPercentage = %d, want 0", report.CompletionPercentage)
	}
	if report.Velocity != 0 {
		t.Errorf("Velocity = %v, want 0", report.Velocity)
	}
	for i, p := range report.DataPoints {
		if p.IdealRemaining != 0 || p.ActualRemaining != 0 {
			t.Errorf("point %d: ideal=%v actual=%v, want 0/0", i, p.IdealRemaining, p.ActualRemaining)
		}
	}
}

func TestBurndown_ZeroLengthSprint(t *testing.T) {
	// Start == end: the linear burn degenerates, everything is already due.
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	store := newFakeStore()
	store.sprints["s1"] = &tracker.SprintDetail{
		Sprint: tracker.Sprint{
			ID:        "s1",
			Name:      "Degenerate",
			StartDate: timePtr(now),
			EndDate:   timePtr(now),
		},
		Issues: []tracker.Issue{
			{ID: "i1", Status: tracker.StatusTodo, StoryPoints: pts(5), CreatedAt: now},
		},
	}

	svc := NewServiceWithClock(store, fixedClock(now))
	report, err := svc.Burndown(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Burndown returned error: %v", err)
	}
	if len(report.DataPoints) != 1 {
		t.Fatalf("len(DataPoints) = %d, want 1", len(report.DataPoints))
	}
	if report.DataPoints[0].IdealRemaining != 0 {
		t.Errorf("IdealRemaining = %v, want 0 for zero-length sprint", report.DataPoints[0].IdealRemaining)
	}
}

func TestBurndown_MissingPointsCountAsZero(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -2)

	store := newFakeStore()
	store.sprints["s1"] = &tracker.SprintDetail{
		Sprint: tracker.Sprint{
			ID:        "s1",
			Name:      "Unestimated",
			StartDate: timePtr(start),
			EndDate:   timePtr(now.AddDate(0, 0, 5)),
		},
		Issues: []tracker.Issue{
			{ID: "i1", Status: tracker.StatusDone, CreatedAt: start,
				AuditLog: []tracker.AuditLogEntry{statusChange("i1", tracker.StatusDone, start.AddDate(0, 0, 1))}},
			{ID: "i2", Status: tracker.StatusTodo, StoryPoints: pts(2), CreatedAt: start},
		},
	}

	svc := NewServiceWithClock(store, fixedClock(now))
	report, err := svc.Burndown(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Burndown returned error: %v", err)
	}
	if report.TotalStoryPoints != 2 {
		t.Errorf("TotalStoryPoints = %v, want 2 (nil estimate counts as 0)", report.TotalStoryPoints)
	}
	if report.CompletedStoryPoints != 0 {
		t.Errorf("CompletedStoryPoints = %v, want 0", report.CompletedStoryPoints)
	}
}

func TestBurndown_AddedMidSprint(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -5)

	store := newFakeStore()
	store.sprints["s1"] = &tracker.SprintDetail{
		Sprint: tracker.Sprint{
			ID:        "s1",
			Name:      "Scope creep",
			StartDate: timePtr(start),
			EndDate:   timePtr(now.AddDate(0, 0, 2)),
		},
		Issues: []tracker.Issue{
			{ID: "i1", Status: tracker.StatusTodo, StoryPoints: pts(3), CreatedAt: start.AddDate(0, 0, -1)},
			{ID: "i2", Status: tracker.StatusTodo, StoryPoints: pts(2), CreatedAt: start.AddDate(0, 0, 2)},
			{ID: "i3", Status: tracker.StatusTodo, StoryPoints: pts(1), CreatedAt: start.AddDate(0, 0, 4)},
		},
	}

	svc := NewServiceWithClock(store, fixedClock(now))
	report, err := svc.Burndown(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Burndown returned error: %v", err)
	}
	for i, p := range report.DataPoints {
		if p.AddedIssues != 2 {
			t.Errorf("point %d AddedIssues = %d, want 2", i, p.AddedIssues)
		}
		if p.RemovedIssues != 0 {
			t.Errorf("point %d RemovedIssues = %d, want 0", i, p.RemovedIssues)
		}
	}
}

func TestBurndown_ScheduledFutureSprint(t *testing.T) {
	// A planned sprint with dates set but not yet begun: zero elapsed days,
	// so the report carries exactly the day-0 point.
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, 3)
	end := now.AddDate(0, 0, 17)

	store := newFakeStore()
	store.sprints["s1"] = &tracker.SprintDetail{
		Sprint: tracker.Sprint{
			ID:        "s1",
			Name:      "Sprint 2",
			Status:    tracker.SprintPlanned,
			StartDate: timePtr(start),
			EndDate:   timePtr(end),
		},
		Issues: []tracker.Issue{
			{ID: "i1", Status: tracker.StatusTodo, StoryPoints: pts(5), CreatedAt: now},
		},
	}

	svc := NewServiceWithClock(store, fixedClock(now))
	report, err := svc.Burndown(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Burndown returned error: %v", err)
	}

	if len(report.DataPoints) != 1 {
		t.Fatalf("len(DataPoints) = %d, want 1", len(report.DataPoints))
	}
	day0 := report.DataPoints[0]
	if day0.IdealRemaining != 5 || day0.ActualRemaining != 5 {
		t.Errorf("day 0 = %v/%v remaining, want 5/5", day0.IdealRemaining, day0.ActualRemaining)
	}
	if report.Velocity != 0 {
		t.Errorf("Velocity = %v, want 0", report.Velocity)
	}
	if report.DaysRemaining != 17 {
		t.Errorf("DaysRemaining = %d, want 17", report.DaysRemaining)
	}
}
