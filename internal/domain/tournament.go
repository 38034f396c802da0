package domain

import "time"

// ProcessedTournament marks a tournament as ingested.
//
// The marker row is written in the same transaction as the tournament's
// statistic deltas, so reprocessing an already-processed tournament is a
// no-op and a crash mid-tournament leaves it safely reprocessable.
type ProcessedTournament struct {
	TournamentID   string    `gorm:"type:text;primaryKey" json:"tournament_id"`
	Name           string    `gorm:"type:text" json:"name"`
	TournamentDate time.Time `gorm:"index" json:"tournament_date"`
	RecordCount    int       `gorm:"default:0" json:"record_count"`
	ProcessedAt    time.Time `json:"processed_at"`
}

// TableName returns the database table name for ProcessedTournament.
func (ProcessedTournament) TableName() string {
	return "processed_tournaments"
}

// Player is a TopDeck player profile, enriched after ingestion.
type Player struct {
	TopdeckID string    `gorm:"type:text;primaryKey" json:"topdeck_id"`
	Name      string    `gorm:"type:text" json:"name"`
	Elo       float64   `gorm:"default:0" json:"elo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Player.
func (Player) TableName() string {
	return "players"
}
