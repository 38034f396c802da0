package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/cedhtools/etl/internal/config"
	"github.com/cedhtools/etl/internal/etl"
	"github.com/cedhtools/etl/internal/logger"
	"github.com/cedhtools/etl/internal/repository"
	"github.com/cedhtools/etl/internal/topdeck"
)

var rootCmd = &cobra.Command{
	Use:   "cedhtools",
	Short: "cEDH tournament statistics pipeline",
	Long: "Ingests TopDeck.gg tournament results and maintains incremental\n" +
		"commander and card statistics. Runs as an API server, a queue\n" +
		"worker, or a one-shot job submission tool.",
	SilenceUsage: true,
}

var configPath string

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(enqueueCmd)
	rootCmd.AddCommand(resetStuckCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads config, installs the process logger, and opens the
// database. Shared by every subcommand.
func bootstrap() (*config.Config, *logger.Logger, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	log := logger.NewFromEnv(nil)
	logger.SetDefaultLogger(log)

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

// newProcessor wires the full ingestion pipeline on top of an open
// database handle.
func newProcessor(cfg *config.Config, db *gorm.DB) (*etl.Processor, *repository.JobRepository) {
	jobRepo := repository.NewJobRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	client := topdeck.NewClient(&topdeck.Config{
		BaseURL:     cfg.TopDeck.BaseURL,
		APIKey:      cfg.TopDeck.APIKey,
		Timeout:     time.Duration(cfg.TopDeck.TimeoutSeconds) * time.Second,
		MinInterval: time.Duration(cfg.TopDeck.MinIntervalMs) * time.Millisecond,
	})

	return etl.NewProcessor(client, statsRepo, jobRepo, cfg.ETL.SeedMonths), jobRepo
}
