package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cedhtools/etl/internal/etl"
	"github.com/cedhtools/etl/internal/logger"
	"github.com/cedhtools/etl/internal/repository"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Args:  cobra.ExactArgs(0),
	Short: "Submit an ETL job to the queue",
}

var resetStuckCmd = &cobra.Command{
	Use:   "reset-stuck",
	Args:  cobra.ExactArgs(0),
	Short: "Requeue jobs abandoned by crashed workers",
}

func init() {
	p := enqueueCmd.Flags()
	jobType := p.String("type", "BATCH_PROCESS", "job type: SEED, DAILY_UPDATE or BATCH_PROCESS")
	startDate := p.String("start", "", "range start (YYYY-MM-DD)")
	endDate := p.String("end", "", "range end (YYYY-MM-DD)")
	batchSize := p.Int("batch-size", 0, "tournaments per batch run (0 = default)")
	priority := p.Int("priority", 0, "queue priority, higher runs first")
	maxRuntime := p.Int("max-runtime", 0, "soft runtime limit in seconds (0 = default)")

	enqueueCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}

		job, err := etl.BuildJob(etl.NewJobRequest{
			JobType:           *jobType,
			StartDate:         *startDate,
			EndDate:           *endDate,
			BatchSize:         *batchSize,
			Priority:          *priority,
			MaxRuntimeSeconds: *maxRuntime,
		})
		if err != nil {
			return err
		}

		jobRepo := repository.NewJobRepository(db)
		if err := jobRepo.Create(context.Background(), job); err != nil {
			return err
		}

		log.WithFields(logger.Fields{
			logger.FieldJobID:   job.ID,
			logger.FieldJobType: string(job.JobType),
		}).Info("Job enqueued")
		fmt.Printf("enqueued job %d (%s) for %s to %s\n",
			job.ID, job.JobType, job.Parameters.StartDate, job.Parameters.EndDate)
		return nil
	}

	resetStuckCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, _, db, err := bootstrap()
		if err != nil {
			return err
		}

		jobRepo := repository.NewJobRepository(db)
		touched, err := jobRepo.ResetStuck(context.Background(), cfg.ETL.MaxRetries)
		if err != nil {
			return err
		}
		fmt.Printf("reset %d stuck job(s)\n", touched)
		return nil
	}
}
