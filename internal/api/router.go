package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sprintlens/internal/analytics"
)

// NewRouter assembles the HTTP surface over the analytics service. The caller
// is expected to have authenticated and authorized the request upstream;
// report endpoints enforce no access control themselves.
func NewRouter(appEnv string, log zerolog.Logger, svc *analytics.Service) *gin.Engine {
	if appEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Msg("http")
	})

	h := NewHandlers(log, svc)

	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/api/v1")
	v1.GET("/sprints/:id/burndown", h.Burndown)
	v1.GET("/sprints/:id/report", h.SprintReport)
	v1.GET("/projects/:id/velocity", h.Velocity)
	v1.GET("/projects/:id/aging", h.Aging)
	v1.GET("/projects/:id/summary", h.ProjectSummary)
	v1.GET("/teams/:id/capacity", h.TeamCapacity)

	return r
}
