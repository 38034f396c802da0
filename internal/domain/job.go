package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JobType represents the kind of ETL run a job requests.
// The set is closed; submissions with any other value are rejected.
type JobType string

const (
	// JobTypeSeed populates the database from historical data (months of weeks).
	JobTypeSeed JobType = "SEED"
	// JobTypeDailyUpdate incrementally processes from the last processed date.
	JobTypeDailyUpdate JobType = "DAILY_UPDATE"
	// JobTypeBatchProcess processes a bounded batch and checkpoints a cursor.
	JobTypeBatchProcess JobType = "BATCH_PROCESS"
)

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeSeed, JobTypeDailyUpdate, JobTypeBatchProcess:
		return true
	}
	return false
}

// JobStatus represents the lifecycle state of an ETL job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// JobParameters is stored as JSON in the database.
type JobParameters struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	BatchSize int    `json:"batchSize,omitempty"`
	Cursor    string `json:"cursor,omitempty"`
}

// Value implements the driver.Valuer interface for database serialization.
func (p JobParameters) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *JobParameters) Scan(value interface{}) error {
	if value == nil {
		*p = JobParameters{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JobParameters")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, p)
}

// EtlJob represents a queued ETL run and its progress metadata.
//
// Jobs are selected for execution by priority (higher first), then creation
// time (older first). A RUNNING job that exceeds MaxRuntimeSeconds without
// completing is considered stuck and reset to PENDING by the worker.
type EtlJob struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	JobType           JobType       `gorm:"type:text;not null;index" json:"job_type"`
	Status            JobStatus     `gorm:"type:text;not null;index;default:PENDING" json:"status"`
	Parameters        JobParameters `gorm:"type:text" json:"parameters"`
	Priority          int           `gorm:"default:0;index" json:"priority"`
	MaxRuntimeSeconds int           `gorm:"default:600" json:"max_runtime_seconds"`
	RetryCount        int           `gorm:"default:0" json:"retry_count"`
	NextCursor        string        `gorm:"type:text" json:"next_cursor,omitempty"`
	RecordsProcessed  int           `gorm:"default:0" json:"records_processed"`
	Error             string        `gorm:"type:text" json:"error,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	StartedAt         *time.Time    `json:"started_at,omitempty"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// TableName returns the database table name for EtlJob.
func (EtlJob) TableName() string {
	return "etl_jobs"
}
