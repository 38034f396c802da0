package domain

import "time"

// Commander represents a commander or partner pair and its accumulated
// performance counters.
//
// The ID is the underscore-joined, lexicographically sorted set of card IDs,
// so the same pair of partners always resolves to the same row regardless of
// decklist order. Name keeps the display order the decklist used.
type Commander struct {
	ID               string    `gorm:"type:text;primaryKey" json:"id"`
	Name             string    `gorm:"type:text;not null" json:"name"`
	Wins             int       `gorm:"default:0" json:"wins"`
	Losses           int       `gorm:"default:0" json:"losses"`
	Draws            int       `gorm:"default:0" json:"draws"`
	Entries          int       `gorm:"default:0" json:"entries"`
	TopCuts          int       `gorm:"default:0" json:"top_cuts"`
	ExpectedTopCuts  float64   `gorm:"default:0" json:"expected_top_cuts"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName returns the database table name for Commander.
func (Commander) TableName() string {
	return "commanders"
}

// Card is a catalog row for a single card seen in any decklist.
type Card struct {
	UniqueCardID string    `gorm:"type:text;primaryKey" json:"unique_card_id"`
	Name         string    `gorm:"type:text;not null" json:"name"`
	ScryfallID   string    `gorm:"type:text" json:"scryfall_id,omitempty"`
	Type         int       `gorm:"default:0" json:"type"`
	TypeLine     string    `gorm:"type:text" json:"type_line,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Card.
func (Card) TableName() string {
	return "cards"
}

// Statistic accumulates per-card performance within a commander's decks.
type Statistic struct {
	CommanderID string    `gorm:"type:text;primaryKey" json:"commander_id"`
	CardID      string    `gorm:"type:text;primaryKey" json:"card_id"`
	Wins        int       `gorm:"default:0" json:"wins"`
	Losses      int       `gorm:"default:0" json:"losses"`
	Draws       int       `gorm:"default:0" json:"draws"`
	Entries     int       `gorm:"default:0" json:"entries"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Statistic.
func (Statistic) TableName() string {
	return "statistics"
}
