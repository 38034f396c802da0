package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cedhtools/etl/internal/domain"
	"github.com/cedhtools/etl/internal/logger"
)

// JobRepository handles ETL job queue operations.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create enqueues a new job.
func (r *JobRepository) Create(ctx context.Context, job *domain.EtlJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by its ID.
func (r *JobRepository) GetByID(ctx context.Context, id uint) (*domain.EtlJob, error) {
	var job domain.EtlJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ListRecent returns the most recently created jobs.
func (r *JobRepository) ListRecent(ctx context.Context, limit int) ([]domain.EtlJob, error) {
	var jobs []domain.EtlJob
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// ClaimNext atomically moves the next PENDING job to RUNNING and returns
// it. Selection order is priority descending, then creation time ascending.
// The transition is a conditional single-row update guarded on the PENDING
// status, so two workers can never claim the same job; the loser of the
// race simply moves on to the next candidate. Returns (nil, nil) when the
// queue is empty.
func (r *JobRepository) ClaimNext(ctx context.Context) (*domain.EtlJob, error) {
	for {
		var job domain.EtlJob
		err := r.db.WithContext(ctx).
			Where("status = ?", domain.JobStatusPending).
			Order("priority DESC, created_at ASC").
			First(&job).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		res := r.db.WithContext(ctx).
			Model(&domain.EtlJob{}).
			Where("id = ? AND status = ?", job.ID, domain.JobStatusPending).
			Updates(map[string]interface{}{
				"status":     domain.JobStatusRunning,
				"started_at": now,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			// Another worker claimed it between the select and the update.
			continue
		}

		job.Status = domain.JobStatusRunning
		job.StartedAt = &now
		return &job, nil
	}
}

// Checkpoint records resumable progress for a running job.
func (r *JobRepository) Checkpoint(ctx context.Context, id uint, cursor string, recordsProcessed int) error {
	return r.db.WithContext(ctx).
		Model(&domain.EtlJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"next_cursor":       cursor,
			"records_processed": recordsProcessed,
		}).Error
}

// MarkCompleted finalizes a successful job.
func (r *JobRepository) MarkCompleted(ctx context.Context, id uint, cursor string, recordsProcessed int) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&domain.EtlJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            domain.JobStatusCompleted,
			"completed_at":      now,
			"next_cursor":       cursor,
			"records_processed": recordsProcessed,
		}).Error
}

// MarkFailed finalizes a failed job, preserving the error message.
func (r *JobRepository) MarkFailed(ctx context.Context, id uint, jobErr error) error {
	now := time.Now().UTC()
	msg := ""
	if jobErr != nil {
		msg = jobErr.Error()
	}
	return r.db.WithContext(ctx).
		Model(&domain.EtlJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusFailed,
			"completed_at": now,
			"error":        msg,
		}).Error
}

// ResetStuck requeues RUNNING jobs whose runtime exceeded their
// max_runtime_seconds. Each reset increments retry_count; a job past
// maxRetries fails terminally instead of being requeued. Returns the
// number of jobs touched.
func (r *JobRepository) ResetStuck(ctx context.Context, maxRetries int) (int, error) {
	var running []domain.EtlJob
	if err := r.db.WithContext(ctx).
		Where("status = ?", domain.JobStatusRunning).
		Find(&running).Error; err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	touched := 0
	for _, job := range running {
		if job.StartedAt == nil {
			continue
		}
		// A checkpoint touches updated_at, so an actively progressing job
		// is never considered stuck no matter how long it has run.
		lastProgress := *job.StartedAt
		if job.UpdatedAt.After(lastProgress) {
			lastProgress = job.UpdatedAt
		}
		deadline := lastProgress.Add(time.Duration(job.MaxRuntimeSeconds) * time.Second)
		if now.Before(deadline) {
			continue
		}

		updates := map[string]interface{}{
			"retry_count": job.RetryCount + 1,
		}
		if job.RetryCount+1 >= maxRetries {
			updates["status"] = domain.JobStatusFailed
			updates["completed_at"] = now
			updates["error"] = fmt.Sprintf("job exceeded max runtime %d times", job.RetryCount+1)
			logger.CtxWarn(ctx, "job %d failed terminally after %d stuck resets", job.ID, job.RetryCount+1)
		} else {
			updates["status"] = domain.JobStatusPending
			updates["started_at"] = nil
			logger.CtxWarn(ctx, "resetting stuck job %d (retry %d)", job.ID, job.RetryCount+1)
		}

		res := r.db.WithContext(ctx).
			Model(&domain.EtlJob{}).
			Where("id = ? AND status = ?", job.ID, domain.JobStatusRunning).
			Updates(updates)
		if res.Error != nil {
			return touched, res.Error
		}
		if res.RowsAffected > 0 {
			touched++
		}
	}
	return touched, nil
}

// LastCompleted returns the most recently completed job, or (nil, nil)
// when none has completed yet.
func (r *JobRepository) LastCompleted(ctx context.Context) (*domain.EtlJob, error) {
	var job domain.EtlJob
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.JobStatusCompleted).
		Order("completed_at DESC").
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}
