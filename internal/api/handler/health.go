package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cedhtools/etl/internal/etl"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	jobs etl.JobStore
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(jobs etl.JobStore) *HealthHandler {
	return &HealthHandler{jobs: jobs}
}

// Health handles GET /health. It reports the completion time of the most
// recent successful job so external monitors can judge pipeline staleness.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status": "ok",
	}

	last, err := h.jobs.LastCompleted(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  "failed to query job history",
		})
		return
	}
	if last != nil && last.CompletedAt != nil {
		resp["lastCompletedJobAt"] = last.CompletedAt.UTC().Format(time.RFC3339)
		resp["lastCompletedJobId"] = last.ID
	}

	c.JSON(http.StatusOK, resp)
}
