package etl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedhtools/etl/internal/domain"
	"github.com/cedhtools/etl/internal/topdeck"
)

func newTestWorker(source *fakeSource, stats *fakeStats, jobs *fakeJobs) *Worker {
	processor := NewProcessor(source, stats, jobs, DefaultSeedMonths)
	return NewWorker(jobs, processor, WorkerOptions{
		IdlePoll:     time.Millisecond,
		ErrorBackoff: time.Millisecond,
	})
}

func pendingJob(jobType domain.JobType) *domain.EtlJob {
	job := rangeJob(jobType)
	job.Status = domain.JobStatusPending
	return job
}

func TestWorkerProcessNextEmptyQueue(t *testing.T) {
	worker := newTestWorker(&fakeSource{}, newFakeStats(), newFakeJobs())

	processed, err := worker.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestWorkerProcessNextCompletesJob(t *testing.T) {
	source := &fakeSource{
		weeks: map[int64][]topdeck.Tournament{
			week1Start.Unix(): {weekTournament("t1", week1Start)},
		},
	}
	stats := newFakeStats()
	jobs := newFakeJobs()

	job := pendingJob(domain.JobTypeDailyUpdate)
	require.NoError(t, jobs.Create(context.Background(), job))

	worker := newTestWorker(source, stats, jobs)
	processed, err := worker.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	stored, err := jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
	assert.Equal(t, 1, stored.RecordsProcessed)
	assert.Equal(t, []string{"t1"}, stats.applied)
}

func TestWorkerProcessNextRecordsFailure(t *testing.T) {
	source := &fakeSource{
		errs: map[int64]error{week1Start.Unix(): errors.New("upstream down")},
	}
	jobs := newFakeJobs()

	// A seed job aborts on the first week error.
	job := pendingJob(domain.JobTypeSeed)
	require.NoError(t, jobs.Create(context.Background(), job))

	worker := newTestWorker(source, newFakeStats(), jobs)
	processed, err := worker.ProcessNext(context.Background())

	// Job failures are recorded, not surfaced as loop errors.
	require.NoError(t, err)
	assert.True(t, processed)

	stored, getErr := jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.JobStatusFailed, stored.Status)
	assert.Contains(t, stored.Error, "upstream down")
}

func TestWorkerCreatesFollowUpForIncompleteBatch(t *testing.T) {
	source := &fakeSource{
		weeks: map[int64][]topdeck.Tournament{
			week1Start.Unix(): {
				weekTournament("t1", week1Start),
				weekTournament("t2", week1Start),
			},
		},
	}
	jobs := newFakeJobs()

	job := pendingJob(domain.JobTypeBatchProcess)
	job.Parameters.BatchSize = 1
	job.Priority = 2
	require.NoError(t, jobs.Create(context.Background(), job))

	worker := newTestWorker(source, newFakeStats(), jobs)
	processed, err := worker.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	recent, err := jobs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	var followUp *domain.EtlJob
	for i := range recent {
		if recent[i].ID != job.ID {
			followUp = &recent[i]
		}
	}
	require.NotNil(t, followUp)
	assert.Equal(t, domain.JobTypeBatchProcess, followUp.JobType)
	assert.Equal(t, domain.JobStatusPending, followUp.Status)
	assert.Equal(t, FormatCursor(week1Start.Unix()), followUp.Parameters.Cursor)
	assert.Equal(t, 1, followUp.Parameters.BatchSize)
	assert.Equal(t, 2, followUp.Priority)
}

func TestWorkerNoFollowUpForCompleteBatch(t *testing.T) {
	source := &fakeSource{
		weeks: map[int64][]topdeck.Tournament{
			week1Start.Unix(): {weekTournament("t1", week1Start)},
		},
	}
	jobs := newFakeJobs()

	job := pendingJob(domain.JobTypeBatchProcess)
	require.NoError(t, jobs.Create(context.Background(), job))

	worker := newTestWorker(source, newFakeStats(), jobs)
	processed, err := worker.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	recent, err := jobs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	worker := newTestWorker(&fakeSource{}, newFakeStats(), newFakeJobs())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
