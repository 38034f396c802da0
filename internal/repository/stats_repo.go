package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cedhtools/etl/internal/domain"
)

// StatsRepository persists tournament aggregates.
type StatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// IsProcessed reports whether a tournament has already been ingested.
func (r *StatsRepository) IsProcessed(ctx context.Context, tournamentID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.ProcessedTournament{}).
		Where("tournament_id = ?", tournamentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ApplyTournament applies everything one tournament contributes in a
// single transaction: commander counters, the card catalog, per-card
// statistics, weekly buckets, and the processed marker. Re-applying a
// tournament whose marker already exists is a no-op, so the operation is
// idempotent even across crashes.
func (r *StatsRepository) ApplyTournament(ctx context.Context, delta *domain.TournamentDelta) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.ProcessedTournament{}).
			Where("tournament_id = ?", delta.Processed.TournamentID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		marker := delta.Processed
		marker.ProcessedAt = time.Now().UTC()
		if err := tx.Create(&marker).Error; err != nil {
			return err
		}

		for _, d := range delta.Commanders {
			row := domain.Commander{
				ID:              d.ID,
				Name:            d.Name,
				Wins:            d.Wins,
				Losses:          d.Losses,
				Draws:           d.Draws,
				Entries:         d.Entries,
				TopCuts:         d.TopCuts,
				ExpectedTopCuts: d.ExpectedTopCuts,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"wins":              gorm.Expr("commanders.wins + excluded.wins"),
					"losses":            gorm.Expr("commanders.losses + excluded.losses"),
					"draws":             gorm.Expr("commanders.draws + excluded.draws"),
					"entries":           gorm.Expr("commanders.entries + excluded.entries"),
					"top_cuts":          gorm.Expr("commanders.top_cuts + excluded.top_cuts"),
					"expected_top_cuts": gorm.Expr("commanders.expected_top_cuts + excluded.expected_top_cuts"),
					"updated_at":        time.Now().UTC(),
				}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}

		for _, card := range delta.Cards {
			c := card
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "unique_card_id"}},
				DoNothing: true,
			}).Create(&c).Error; err != nil {
				return err
			}
		}

		for _, d := range delta.Statistics {
			row := domain.Statistic{
				CommanderID: d.CommanderID,
				CardID:      d.CardID,
				Wins:        d.Wins,
				Losses:      d.Losses,
				Draws:       d.Draws,
				Entries:     d.Entries,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "commander_id"}, {Name: "card_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"wins":       gorm.Expr("statistics.wins + excluded.wins"),
					"losses":     gorm.Expr("statistics.losses + excluded.losses"),
					"draws":      gorm.Expr("statistics.draws + excluded.draws"),
					"entries":    gorm.Expr("statistics.entries + excluded.entries"),
					"updated_at": time.Now().UTC(),
				}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}

		for _, d := range delta.CommanderWeekly {
			row := d.CommanderWeeklyStat
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "commander_id"}, {Name: "week_start"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"wins":       gorm.Expr("commander_weekly_stats.wins + excluded.wins"),
					"losses":     gorm.Expr("commander_weekly_stats.losses + excluded.losses"),
					"draws":      gorm.Expr("commander_weekly_stats.draws + excluded.draws"),
					"entries":           gorm.Expr("commander_weekly_stats.entries + excluded.entries"),
					"top_cuts":          gorm.Expr("commander_weekly_stats.top_cuts + excluded.top_cuts"),
					"expected_top_cuts": gorm.Expr("commander_weekly_stats.expected_top_cuts + excluded.expected_top_cuts"),
					"updated_at":        time.Now().UTC(),
				}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}

		for _, d := range delta.CardWeekly {
			row := d.CardCommanderWeeklyStat
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "commander_id"}, {Name: "card_id"}, {Name: "week_start"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"wins":       gorm.Expr("card_commander_weekly_stats.wins + excluded.wins"),
					"losses":     gorm.Expr("card_commander_weekly_stats.losses + excluded.losses"),
					"draws":      gorm.Expr("card_commander_weekly_stats.draws + excluded.draws"),
					"entries":    gorm.Expr("card_commander_weekly_stats.entries + excluded.entries"),
					"updated_at": time.Now().UTC(),
				}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// UpsertPlayers refreshes player profiles. Runs outside the tournament
// transaction: enrichment is best-effort and never blocks ingestion.
func (r *StatsRepository) UpsertPlayers(ctx context.Context, players []domain.Player) error {
	for _, p := range players {
		row := p
		if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "topdeck_id"}},
			UpdateAll: true,
		}).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// LatestTournamentDate returns the date of the most recent processed
// tournament, or the zero time when nothing has been processed.
func (r *StatsRepository) LatestTournamentDate(ctx context.Context) (time.Time, error) {
	var t domain.ProcessedTournament
	err := r.db.WithContext(ctx).
		Order("tournament_date DESC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return t.TournamentDate, nil
}

// Counts summarizes aggregate table sizes for the stats endpoint.
type Counts struct {
	Commanders           int64 `json:"commanders"`
	Cards                int64 `json:"cards"`
	Statistics           int64 `json:"statistics"`
	Players              int64 `json:"players"`
	ProcessedTournaments int64 `json:"processed_tournaments"`
}

// GetCounts returns row counts for each aggregate table.
func (r *StatsRepository) GetCounts(ctx context.Context) (*Counts, error) {
	var c Counts
	models := []struct {
		model interface{}
		dst   *int64
	}{
		{&domain.Commander{}, &c.Commanders},
		{&domain.Card{}, &c.Cards},
		{&domain.Statistic{}, &c.Statistics},
		{&domain.Player{}, &c.Players},
		{&domain.ProcessedTournament{}, &c.ProcessedTournaments},
	}
	for _, m := range models {
		if err := r.db.WithContext(ctx).Model(m.model).Count(m.dst).Error; err != nil {
			return nil, err
		}
	}
	return &c, nil
}
