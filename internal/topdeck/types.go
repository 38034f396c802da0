package topdeck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DeckCard is a card entry in a deck object, keyed by card name.
type DeckCard struct {
	ID    string `json:"id"` // Scryfall oracle ID
	Count int    `json:"count"`
}

// NamedCard pairs a card name with its oracle ID and copy count.
type NamedCard struct {
	Name     string
	OracleID string
	Count    int
}

// CardList decodes a JSON object of name -> card while preserving key
// order. Order matters for commanders: the display name keeps the decklist
// order even though the canonical ID sorts.
type CardList []NamedCard

// UnmarshalJSON implements order-preserving decoding via the token stream.
func (l *CardList) UnmarshalJSON(data []byte) error {
	*l = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("card list: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := keyTok.(string)

		var card DeckCard
		if err := dec.Decode(&card); err != nil {
			return err
		}
		*l = append(*l, NamedCard{Name: name, OracleID: card.ID, Count: card.Count})
	}

	_, err = dec.Token() // closing brace
	return err
}

// DeckObj is the structured decklist attached to players: commanders and
// mainboard in decklist order.
type DeckObj struct {
	Commanders CardList `json:"Commanders"`
	Mainboard  CardList `json:"Mainboard"`
}

// RoundPlayer is a seat at a table.
type RoundPlayer struct {
	Name     string   `json:"name"`
	ID       string   `json:"id"`
	Decklist string   `json:"decklist"`
	DeckObj  *DeckObj `json:"deckObj"`
}

// RoundTable is one pod within a round. Winner holds the winning player's
// name, or "Draw" when the pod drew.
type RoundTable struct {
	Table    int           `json:"table"`
	Players  []RoundPlayer `json:"players"`
	Winner   string        `json:"winner"`
	WinnerID string        `json:"winner_id,omitempty"`
	Status   string        `json:"status,omitempty"`
}

// Round is a swiss or bracket round. The round field is a number for swiss
// rounds and a label like "Top 4" for bracket rounds, so it decodes loosely.
type Round struct {
	Round  interface{}  `json:"round"`
	Tables []RoundTable `json:"tables"`
}

// Standing is a player's final tournament result.
type Standing struct {
	Name     string   `json:"name"`
	ID       string   `json:"id"`
	Decklist string   `json:"decklist"`
	DeckObj  *DeckObj `json:"deckObj"`
	Wins     int      `json:"wins"`
	Draws    int      `json:"draws"`
	Losses   int      `json:"losses"`
	Byes     int      `json:"byes"`
}

// Tournament is the full tournament payload. The list endpoint with
// rounds=true returns the same shape as the single-tournament endpoint.
type Tournament struct {
	TID            string     `json:"TID"`
	TournamentName string     `json:"tournamentName"`
	SwissNum       int        `json:"swissNum"`
	StartDate      int64      `json:"startDate"` // unix seconds
	Game           string     `json:"game"`
	Format         string     `json:"format"`
	TopCut         int        `json:"topCut"`
	Rounds         []Round    `json:"rounds"`
	Standings      []Standing `json:"standings"`
}

// Date returns the tournament start as UTC time.
func (t *Tournament) Date() time.Time {
	return time.Unix(t.StartDate, 0).UTC()
}

// Validate checks the fields every downstream consumer relies on. Unknown
// fields in the payload are ignored by the decoder; missing required ones
// are an upstream contract violation.
func (t *Tournament) Validate() error {
	if t.TID == "" {
		return &ExternalServiceError{Service: serviceName, Body: "tournament missing TID"}
	}
	if t.StartDate == 0 {
		return &ExternalServiceError{Service: serviceName, Body: "tournament " + t.TID + " missing startDate"}
	}
	return nil
}

// Player is a player profile from the player endpoint.
type Player struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Elo  float64 `json:"elo,omitempty"`
}

// tournamentListRequest is the POST /tournaments body.
type tournamentListRequest struct {
	Game    string   `json:"game"`
	Format  string   `json:"format"`
	Start   int64    `json:"start"`
	End     int64    `json:"end"`
	Columns []string `json:"columns"`
	Rounds  bool     `json:"rounds"`
	Tables  []string `json:"tables"`
	Players []string `json:"players"`
}
