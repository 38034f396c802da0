package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cedhtools/etl/internal/api/middleware"
	"github.com/cedhtools/etl/internal/domain"
	"github.com/cedhtools/etl/internal/etl"
	"github.com/cedhtools/etl/internal/logger"
)

const defaultListLimit = 20

// EtlHandler handles job submission and inspection endpoints.
type EtlHandler struct {
	jobs   etl.JobStore
	apiKey string
}

// NewEtlHandler creates a new ETL job handler.
func NewEtlHandler(jobs etl.JobStore, apiKey string) *EtlHandler {
	return &EtlHandler{jobs: jobs, apiKey: apiKey}
}

// jobResponse is the wire shape of a job.
type jobResponse struct {
	ID                uint                 `json:"id"`
	JobType           domain.JobType       `json:"jobType"`
	Status            domain.JobStatus     `json:"status"`
	Parameters        domain.JobParameters `json:"parameters"`
	Priority          int                  `json:"priority"`
	MaxRuntimeSeconds int                  `json:"maxRuntimeSeconds"`
	RetryCount        int                  `json:"retryCount"`
	NextCursor        string               `json:"nextCursor,omitempty"`
	RecordsProcessed  int                  `json:"recordsProcessed"`
	Error             string               `json:"error,omitempty"`
	CreatedAt         string               `json:"createdAt"`
	StartedAt         string               `json:"startedAt,omitempty"`
	CompletedAt       string               `json:"completedAt,omitempty"`
}

func toJobResponse(job *domain.EtlJob) jobResponse {
	resp := jobResponse{
		ID:                job.ID,
		JobType:           job.JobType,
		Status:            job.Status,
		Parameters:        job.Parameters,
		Priority:          job.Priority,
		MaxRuntimeSeconds: job.MaxRuntimeSeconds,
		RetryCount:        job.RetryCount,
		NextCursor:        job.NextCursor,
		RecordsProcessed:  job.RecordsProcessed,
		Error:             job.Error,
		CreatedAt:         job.CreatedAt.UTC().Format(time.RFC3339),
	}
	if job.StartedAt != nil {
		resp.StartedAt = job.StartedAt.UTC().Format(time.RFC3339)
	}
	if job.CompletedAt != nil {
		resp.CompletedAt = job.CompletedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// Get handles GET /api/v1/etl. Without query parameters it answers a bare
// liveness message with no auth; ?jobId= and ?list=true require the bearer
// key.
func (h *EtlHandler) Get(c *gin.Context) {
	jobID := c.Query("jobId")
	list := c.Query("list")

	if jobID == "" && list == "" {
		c.JSON(http.StatusOK, gin.H{
			"message": "ETL service is running",
		})
		return
	}

	if !middleware.ValidBearer(c, h.apiKey) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Unauthorized",
		})
		return
	}

	if jobID != "" {
		id, err := strconv.ParseUint(jobID, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid jobId: " + jobID,
			})
			return
		}

		job, err := h.jobs.GetByID(c.Request.Context(), uint(id))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}
		c.JSON(http.StatusOK, toJobResponse(job))
		return
	}

	jobs, err := h.jobs.ListRecent(c.Request.Context(), defaultListLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs: " + err.Error(),
		})
		return
	}

	responses := make([]jobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, toJobResponse(&jobs[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"jobs":  responses,
		"total": len(responses),
	})
}

// Submit handles POST /api/v1/etl: validates the request and enqueues a
// PENDING job for the worker to pick up.
func (h *EtlHandler) Submit(c *gin.Context) {
	var req etl.NewJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	job, err := etl.BuildJob(req)
	if err != nil {
		var vErr *etl.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": vErr.Error(),
				"field": vErr.Field,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build job: " + err.Error(),
		})
		return
	}

	if err := h.jobs.Create(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue job: " + err.Error(),
		})
		return
	}

	logger.With(logger.Fields{logger.FieldJobID: job.ID}).
		Info(c.Request.Context(), "job enqueued: type=%s", job.JobType)

	c.JSON(http.StatusCreated, toJobResponse(job))
}
