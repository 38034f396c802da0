package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cedhtools/etl/internal/etl"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Args:  cobra.ExactArgs(0),
	Short: "Run the job queue worker",
	Long: "Polls the job queue and executes pending ETL jobs until\n" +
		"interrupted. Stuck jobs from crashed workers are reset before\n" +
		"each claim.",
}

func init() {
	workerCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}

		processor, jobRepo := newProcessor(cfg, db)
		worker := etl.NewWorker(jobRepo, processor, etl.WorkerOptions{
			IdlePoll:     time.Duration(cfg.Worker.IdlePollSeconds) * time.Second,
			ErrorBackoff: time.Duration(cfg.Worker.ErrorBackoffSeconds) * time.Second,
			MaxRetries:   cfg.ETL.MaxRetries,
		})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log.WithField("worker_id", worker.ID()).Info("Starting worker")

		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Info("Worker exited")
		return nil
	}
}
