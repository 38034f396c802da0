package domain

// CommanderDelta carries the counter increments one tournament contributes
// to a commander row.
type CommanderDelta struct {
	ID              string
	Name            string
	Wins            int
	Losses          int
	Draws           int
	Entries         int
	TopCuts         int
	ExpectedTopCuts float64
}

// StatisticDelta carries the counter increments one tournament contributes
// to a card-within-commander row.
type StatisticDelta struct {
	CommanderID string
	CardID      string
	Wins        int
	Losses      int
	Draws       int
	Entries     int
}

// CommanderWeeklyDelta carries weekly bucket increments for a commander.
type CommanderWeeklyDelta struct {
	CommanderWeeklyStat
}

// CardWeeklyDelta carries weekly bucket increments for a card within a
// commander.
type CardWeeklyDelta struct {
	CardCommanderWeeklyStat
}

// TournamentDelta is everything a single tournament contributes, computed
// in memory and applied in one transaction together with the processed
// marker. A crash before commit leaves the tournament safely reprocessable.
type TournamentDelta struct {
	Processed       ProcessedTournament
	Commanders      []CommanderDelta
	Cards           []Card
	Statistics      []StatisticDelta
	CommanderWeekly []CommanderWeeklyDelta
	CardWeekly      []CardWeeklyDelta
}
