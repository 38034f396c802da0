package etl

import (
	"context"
	"time"

	"github.com/cedhtools/etl/internal/domain"
	"github.com/cedhtools/etl/internal/topdeck"
)

// JobStore is the job queue persistence surface the worker and processor
// depend on. Implemented by repository.JobRepository.
type JobStore interface {
	Create(ctx context.Context, job *domain.EtlJob) error
	GetByID(ctx context.Context, id uint) (*domain.EtlJob, error)
	ListRecent(ctx context.Context, limit int) ([]domain.EtlJob, error)
	ClaimNext(ctx context.Context) (*domain.EtlJob, error)
	Checkpoint(ctx context.Context, id uint, cursor string, recordsProcessed int) error
	MarkCompleted(ctx context.Context, id uint, cursor string, recordsProcessed int) error
	MarkFailed(ctx context.Context, id uint, jobErr error) error
	ResetStuck(ctx context.Context, maxRetries int) (int, error)
	LastCompleted(ctx context.Context) (*domain.EtlJob, error)
}

// StatisticsStore is the aggregate persistence surface. Implemented by
// repository.StatsRepository.
type StatisticsStore interface {
	IsProcessed(ctx context.Context, tournamentID string) (bool, error)
	ApplyTournament(ctx context.Context, delta *domain.TournamentDelta) error
	UpsertPlayers(ctx context.Context, players []domain.Player) error
	LatestTournamentDate(ctx context.Context) (time.Time, error)
}

// TournamentSource fetches tournament data. Implemented by topdeck.Client.
type TournamentSource interface {
	FetchWeek(ctx context.Context, start, end int64) ([]topdeck.Tournament, error)
	FetchPlayersBatch(ctx context.Context, ids []string) ([]topdeck.Player, error)
}
