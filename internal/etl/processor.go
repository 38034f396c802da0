// Package etl contains the pipeline core: the per-job processor state
// machine, the queue worker, job submission validation, and the store
// interfaces persistence implements.
package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/cedhtools/etl/internal/domain"
	"github.com/cedhtools/etl/internal/logger"
	"github.com/cedhtools/etl/internal/topdeck"
)

// Processor executes one ETL job: it resolves the date range, walks it in
// weekly batches, folds each tournament into a transactional delta, and
// checkpoints a resumable cursor after every week.
type Processor struct {
	source TournamentSource
	stats  StatisticsStore
	jobs   JobStore

	seedMonths int
	now        func() time.Time
}

// NewProcessor wires a processor. seedMonths bounds how far back a SEED
// job reaches when no start date is given.
func NewProcessor(source TournamentSource, stats StatisticsStore, jobs JobStore, seedMonths int) *Processor {
	if seedMonths <= 0 {
		seedMonths = DefaultSeedMonths
	}
	return &Processor{
		source:     source,
		stats:      stats,
		jobs:       jobs,
		seedMonths: seedMonths,
		now:        time.Now,
	}
}

// RunResult reports what a processor run accomplished. Complete is false
// when the run stopped early at its soft deadline or batch limit; the
// cursor then points at the first unprocessed week.
type RunResult struct {
	RecordsProcessed int
	NextCursor       string
	Complete         bool
}

// Run executes the job until its range is exhausted, its soft deadline
// passes, or its batch budget is spent. Week-level failures abort SEED
// jobs outright; incremental jobs log and skip the week so a later run
// backfills it.
func (p *Processor) Run(ctx context.Context, job *domain.EtlJob) (*RunResult, error) {
	start, end, err := p.resolveRange(ctx, job)
	if err != nil {
		return nil, err
	}

	weeks := topdeck.WeeklyRanges(start, end)
	if len(weeks) == 0 {
		logger.CtxInfo(ctx, "nothing to process in range %s to %s",
			start.Format(dateLayout), end.Format(dateLayout))
		return &RunResult{RecordsProcessed: job.RecordsProcessed, Complete: true}, nil
	}

	startedAt := p.now()
	if job.StartedAt != nil {
		startedAt = *job.StartedAt
	}
	deadline := startedAt.Add(time.Duration(job.MaxRuntimeSeconds) * time.Second)

	batchLimit := 0
	if job.JobType == domain.JobTypeBatchProcess {
		batchLimit = job.Parameters.BatchSize
		if batchLimit <= 0 {
			batchLimit = DefaultBatchSize
		}
	}

	records := job.RecordsProcessed
	processedThisRun := 0

	for _, week := range weeks {
		if p.now().After(deadline) {
			logger.CtxInfo(ctx, "soft deadline reached before week %s, checkpointing", week.Label)
			return p.pause(ctx, job, week.Start, records)
		}

		weekStarted := p.now()
		tournaments, err := p.source.FetchWeek(ctx, week.Start, week.End)
		if err != nil {
			if job.JobType == domain.JobTypeSeed {
				// Seeding is all-or-nothing: a gap in historical data would
				// silently skew every aggregate built on top of it.
				return nil, fmt.Errorf("fetch week %s: %w", week.Label, err)
			}
			logger.FromContext(ctx).WithError(err).
				Warnf("skipping week %s, next run backfills it", week.Label)
			continue
		}

		for i := range tournaments {
			if p.now().After(deadline) {
				logger.CtxInfo(ctx, "soft deadline reached mid-week %s, checkpointing", week.Label)
				return p.pause(ctx, job, week.Start, records)
			}
			if batchLimit > 0 && processedThisRun >= batchLimit {
				logger.CtxInfo(ctx, "batch budget of %d spent, checkpointing", batchLimit)
				return p.pause(ctx, job, week.Start, records)
			}

			t := &tournaments[i]
			done, err := p.processTournament(ctx, t)
			if err != nil {
				return nil, err
			}
			if done {
				records++
				processedThisRun++
			}
		}

		cursor := FormatCursor(week.End)
		if err := p.jobs.Checkpoint(ctx, job.ID, cursor, records); err != nil {
			return nil, fmt.Errorf("checkpoint after week %s: %w", week.Label, err)
		}

		p.enrichPlayers(ctx, tournaments)

		logger.With(logger.Fields{
			logger.FieldWeekStart:  week.Start,
			logger.FieldDurationMs: p.now().Sub(weekStarted).Milliseconds(),
			logger.FieldCount:      len(tournaments),
		}).Info(ctx, "week %s processed", week.Label)
	}

	return &RunResult{
		RecordsProcessed: records,
		NextCursor:       FormatCursor(weeks[len(weeks)-1].End),
		Complete:         true,
	}, nil
}

// processTournament folds one tournament into the aggregates. Returns
// false when the tournament was already ingested.
func (p *Processor) processTournament(ctx context.Context, t *topdeck.Tournament) (bool, error) {
	tctx := logger.WithField(ctx, logger.FieldTournamentID, t.TID)

	processed, err := p.stats.IsProcessed(tctx, t.TID)
	if err != nil {
		return false, fmt.Errorf("check tournament %s: %w", t.TID, err)
	}
	if processed {
		logger.CtxDebug(tctx, "already processed, skipping")
		return false, nil
	}

	delta, warnings := BuildTournamentDelta(t)
	for _, w := range warnings {
		logger.CtxWarn(tctx, "data quality: %s", w)
	}

	if err := p.stats.ApplyTournament(tctx, delta); err != nil {
		return false, fmt.Errorf("apply tournament %s: %w", t.TID, err)
	}
	return true, nil
}

// pause checkpoints a resumable cursor and reports an incomplete run.
func (p *Processor) pause(ctx context.Context, job *domain.EtlJob, weekStart int64, records int) (*RunResult, error) {
	cursor := FormatCursor(weekStart)
	if err := p.jobs.Checkpoint(ctx, job.ID, cursor, records); err != nil {
		return nil, fmt.Errorf("checkpoint at pause: %w", err)
	}
	return &RunResult{RecordsProcessed: records, NextCursor: cursor, Complete: false}, nil
}

// enrichPlayers refreshes profiles for the players seen in a week.
// Best-effort: failures are logged and never fail the job.
func (p *Processor) enrichPlayers(ctx context.Context, tournaments []topdeck.Tournament) {
	ids := PlayerIDs(tournaments)
	if len(ids) == 0 {
		return
	}

	fetched, err := p.source.FetchPlayersBatch(ctx, ids)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("player enrichment fetch failed")
		return
	}

	players := make([]domain.Player, 0, len(fetched))
	for _, f := range fetched {
		players = append(players, domain.Player{TopdeckID: f.ID, Name: f.Name, Elo: f.Elo})
	}
	if err := p.stats.UpsertPlayers(ctx, players); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("player enrichment upsert failed")
		return
	}
	logger.With(logger.Fields{logger.FieldCount: len(players)}).
		Debug(ctx, "player profiles refreshed")
}

// resolveRange determines the [start, end) window for a job. A cursor,
// whether checkpointed on the job or passed in its parameters, wins over
// everything; DAILY_UPDATE otherwise resumes from the latest processed
// tournament.
func (p *Processor) resolveRange(ctx context.Context, job *domain.EtlJob) (time.Time, time.Time, error) {
	now := p.now().UTC()

	end := now
	if job.Parameters.EndDate != "" {
		parsed, err := time.Parse(dateLayout, job.Parameters.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, &ValidationError{Field: "endDate", Reason: "expected YYYY-MM-DD"}
		}
		end = parsed
	}

	cursor := job.NextCursor
	if cursor == "" {
		cursor = job.Parameters.Cursor
	}
	if cursor != "" {
		start, err := ParseCursor(cursor)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, end, nil
	}

	if job.JobType == domain.JobTypeDailyUpdate {
		latest, err := p.stats.LatestTournamentDate(ctx)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("resolve start date: %w", err)
		}
		if !latest.IsZero() {
			return latest, end, nil
		}
	}

	if job.Parameters.StartDate != "" {
		start, err := time.Parse(dateLayout, job.Parameters.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, &ValidationError{Field: "startDate", Reason: "expected YYYY-MM-DD"}
		}
		return start, end, nil
	}

	months := 1
	if job.JobType == domain.JobTypeSeed {
		months = p.seedMonths
	}
	return now.AddDate(0, -months, 0), end, nil
}
