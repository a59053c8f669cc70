package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sprintlens/internal/analytics"
	"sprintlens/internal/tracker"
)

// Handlers binds the report endpoints to the analytics service.
type Handlers struct {
	log zerolog.Logger
	svc *analytics.Service
}

// NewHandlers creates the handler set.
func NewHandlers(log zerolog.Logger, svc *analytics.Service) *Handlers {
	return &Handlers{log: log, svc: svc}
}

// Healthz reports process liveness.
func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Burndown serves the day-by-day burndown chart for a sprint.
func (h *Handlers) Burndown(c *gin.Context) {
	report, err := h.svc.Burndown(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// SprintReport serves the composite single-sprint report.
func (h *Handlers) SprintReport(c *gin.Context) {
	report, err := h.svc.SprintReportFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Velocity serves the per-sprint velocity report for a project. The optional
// teamId query only resolves a display name.
func (h *Handlers) Velocity(c *gin.Context) {
	report, err := h.svc.VelocityReportFor(c.Request.Context(), c.Param("id"), c.Query("teamId"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Aging serves the open-issue age distribution for a project.
func (h *Handlers) Aging(c *gin.Context) {
	report, err := h.svc.IssueAging(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ProjectSummary serves the merged velocity + aging view of a project.
func (h *Handlers) ProjectSummary(c *gin.Context) {
	summary, err := h.svc.ProjectSummaryFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// TeamCapacity serves per-member workload for a team over a sprint window or a
// fixed look-back range.
func (h *Handlers) TeamCapacity(c *gin.Context) {
	filter := analytics.CapacityFilter{
		SprintID:  c.Query("sprintId"),
		TimeRange: tracker.TimeRange(c.Query("timeRange")),
	}
	report, err := h.svc.TeamCapacity(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handlers) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, tracker.ErrPrecondition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("report generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
