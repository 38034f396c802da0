package domain

import "time"

// CommanderWeeklyStat buckets commander counters by UTC Monday week start.
type CommanderWeeklyStat struct {
	CommanderID     string    `gorm:"type:text;primaryKey" json:"commander_id"`
	WeekStart       time.Time `gorm:"primaryKey" json:"week_start"`
	Wins            int       `gorm:"default:0" json:"wins"`
	Losses          int       `gorm:"default:0" json:"losses"`
	Draws           int       `gorm:"default:0" json:"draws"`
	Entries         int       `gorm:"default:0" json:"entries"`
	TopCuts         int       `gorm:"default:0" json:"top_cuts"`
	ExpectedTopCuts float64   `gorm:"default:0" json:"expected_top_cuts"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for CommanderWeeklyStat.
func (CommanderWeeklyStat) TableName() string {
	return "commander_weekly_stats"
}

// CardCommanderWeeklyStat buckets per-card counters within a commander by
// UTC Monday week start.
type CardCommanderWeeklyStat struct {
	CommanderID string    `gorm:"type:text;primaryKey" json:"commander_id"`
	CardID      string    `gorm:"type:text;primaryKey" json:"card_id"`
	WeekStart   time.Time `gorm:"primaryKey" json:"week_start"`
	Wins        int       `gorm:"default:0" json:"wins"`
	Losses      int       `gorm:"default:0" json:"losses"`
	Draws       int       `gorm:"default:0" json:"draws"`
	Entries     int       `gorm:"default:0" json:"entries"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for CardCommanderWeeklyStat.
func (CardCommanderWeeklyStat) TableName() string {
	return "card_commander_weekly_stats"
}
