package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cedhtools/etl/internal/repository"
)

// CountsReader reads aggregate table sizes. Implemented by
// repository.StatsRepository.
type CountsReader interface {
	GetCounts(ctx context.Context) (*repository.Counts, error)
}

// StatsHandler handles read-only aggregate endpoints.
type StatsHandler struct {
	stats CountsReader
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(stats CountsReader) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetStats handles GET /api/v1/stats.
func (h *StatsHandler) GetStats(c *gin.Context) {
	counts, err := h.stats.GetCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get stats: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, counts)
}
