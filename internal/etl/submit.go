package etl

import (
	"time"

	"github.com/cedhtools/etl/internal/domain"
)

// dateLayout is the wire format for job date parameters.
const dateLayout = "2006-01-02"

// Submission defaults, applied when the request leaves fields empty.
const (
	DefaultBatchSize         = 50
	DefaultMaxRuntimeSeconds = 600
	DefaultSeedMonths        = 6
	defaultUpdateMonths      = 1
)

// NewJobRequest is a job submission before validation.
type NewJobRequest struct {
	JobType           string `json:"jobType"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	BatchSize         int    `json:"batchSize"`
	Priority          int    `json:"priority"`
	MaxRuntimeSeconds int    `json:"maxRuntimeSeconds"`
}

// BuildJob validates a submission and materializes a PENDING job. The job
// type enum is closed; unknown types and malformed dates return a
// ValidationError and no job is created.
func BuildJob(req NewJobRequest) (*domain.EtlJob, error) {
	jobType := domain.JobType(req.JobType)
	if req.JobType == "" {
		jobType = domain.JobTypeBatchProcess
	}
	if !jobType.Valid() {
		return nil, &ValidationError{
			Field:  "jobType",
			Reason: "must be one of SEED, DAILY_UPDATE, BATCH_PROCESS",
		}
	}

	if req.StartDate != "" {
		if _, err := time.Parse(dateLayout, req.StartDate); err != nil {
			return nil, &ValidationError{Field: "startDate", Reason: "expected YYYY-MM-DD"}
		}
	}
	if req.EndDate != "" {
		if _, err := time.Parse(dateLayout, req.EndDate); err != nil {
			return nil, &ValidationError{Field: "endDate", Reason: "expected YYYY-MM-DD"}
		}
	}
	if req.BatchSize < 0 {
		return nil, &ValidationError{Field: "batchSize", Reason: "must not be negative"}
	}
	if req.MaxRuntimeSeconds < 0 {
		return nil, &ValidationError{Field: "maxRuntimeSeconds", Reason: "must not be negative"}
	}

	now := time.Now().UTC()
	startDate := req.StartDate
	if startDate == "" {
		months := defaultUpdateMonths
		if jobType == domain.JobTypeSeed {
			months = DefaultSeedMonths
		}
		startDate = now.AddDate(0, -months, 0).Format(dateLayout)
	}
	endDate := req.EndDate
	if endDate == "" {
		endDate = now.Format(dateLayout)
	}

	batchSize := req.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	maxRuntime := req.MaxRuntimeSeconds
	if maxRuntime == 0 {
		maxRuntime = DefaultMaxRuntimeSeconds
	}

	return &domain.EtlJob{
		JobType: jobType,
		Status:  domain.JobStatusPending,
		Parameters: domain.JobParameters{
			StartDate: startDate,
			EndDate:   endDate,
			BatchSize: batchSize,
		},
		Priority:          req.Priority,
		MaxRuntimeSeconds: maxRuntime,
	}, nil
}
