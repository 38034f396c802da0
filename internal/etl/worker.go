package etl

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cedhtools/etl/internal/domain"
	"github.com/cedhtools/etl/internal/logger"
)

// Worker defaults.
const (
	DefaultIdlePoll     = time.Minute
	DefaultErrorBackoff = 30 * time.Second
	DefaultMaxRetries   = 3
)

// Worker drains the job queue: reset stuck jobs, claim the next pending
// one, run the processor, record the outcome. A job failure is recorded on
// the job and never crashes the loop.
type Worker struct {
	jobs      JobStore
	processor *Processor

	id           string
	idlePoll     time.Duration
	errorBackoff time.Duration
	maxRetries   int
}

// WorkerOptions tunes the loop. Zero values take the defaults.
type WorkerOptions struct {
	IdlePoll     time.Duration
	ErrorBackoff time.Duration
	MaxRetries   int
}

// NewWorker creates a worker with a fresh instance id.
func NewWorker(jobs JobStore, processor *Processor, opts WorkerOptions) *Worker {
	if opts.IdlePoll <= 0 {
		opts.IdlePoll = DefaultIdlePoll
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = DefaultErrorBackoff
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	return &Worker{
		jobs:         jobs,
		processor:    processor,
		id:           uuid.New().String(),
		idlePoll:     opts.IdlePoll,
		errorBackoff: opts.ErrorBackoff,
		maxRetries:   opts.MaxRetries,
	}
}

// ID returns the worker instance id.
func (w *Worker) ID() string {
	return w.id
}

// Run polls the queue until the context is cancelled. A processed job is
// followed immediately by another poll; an empty queue waits the idle
// interval, a loop error waits the backoff interval.
func (w *Worker) Run(ctx context.Context) error {
	ctx = logger.SetWorkerID(ctx, w.id)
	logger.CtxInfo(ctx, "worker started")

	for {
		if err := ctx.Err(); err != nil {
			logger.CtxInfo(ctx, "worker stopping")
			return err
		}

		processed, err := w.ProcessNext(ctx)
		switch {
		case err != nil:
			logger.FromContext(ctx).WithError(err).Error("worker loop error")
			if !sleepCtx(ctx, w.errorBackoff) {
				return ctx.Err()
			}
		case !processed:
			if !sleepCtx(ctx, w.idlePoll) {
				return ctx.Err()
			}
		}
	}
}

// ProcessNext resets stuck jobs, then claims and runs at most one job.
// Returns whether a job was run. Job-level failures are recorded on the
// job and reported as processed, not as loop errors.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	if _, err := w.jobs.ResetStuck(ctx, w.maxRetries); err != nil {
		return false, err
	}

	job, err := w.jobs.ClaimNext(ctx)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	jctx := logger.WithFields(ctx, logger.Fields{
		logger.FieldJobID:   job.ID,
		logger.FieldJobType: string(job.JobType),
	})
	logger.CtxInfo(jctx, "processing job")
	started := time.Now()

	result, runErr := w.processor.Run(jctx, job)
	if runErr != nil {
		logger.FromContext(jctx).WithError(runErr).Error("job failed")
		if err := w.jobs.MarkFailed(jctx, job.ID, runErr); err != nil {
			logger.FromContext(jctx).WithError(err).Error("failed to record job failure")
		}
		return true, nil
	}

	if err := w.jobs.MarkCompleted(jctx, job.ID, result.NextCursor, result.RecordsProcessed); err != nil {
		logger.FromContext(jctx).WithError(err).Error("failed to record job completion")
		return true, nil
	}

	// An interrupted batch job hands its cursor to a follow-up so progress
	// continues across invocations.
	if !result.Complete && job.JobType == domain.JobTypeBatchProcess && result.NextCursor != "" {
		followUp := &domain.EtlJob{
			JobType: domain.JobTypeBatchProcess,
			Status:  domain.JobStatusPending,
			Parameters: domain.JobParameters{
				StartDate: job.Parameters.StartDate,
				EndDate:   job.Parameters.EndDate,
				BatchSize: job.Parameters.BatchSize,
				Cursor:    result.NextCursor,
			},
			Priority:          job.Priority,
			MaxRuntimeSeconds: job.MaxRuntimeSeconds,
		}
		if err := w.jobs.Create(jctx, followUp); err != nil {
			logger.FromContext(jctx).WithError(err).Error("failed to create follow-up job")
		} else {
			logger.CtxInfo(jctx, "created follow-up job %d at cursor %s", followUp.ID, result.NextCursor)
		}
	}

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(started).Milliseconds(),
		logger.FieldCount:      result.RecordsProcessed,
	}).Info(jctx, "job completed")
	return true, nil
}

// sleepCtx waits d unless the context ends first. Reports whether the
// full wait elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
