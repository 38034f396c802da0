package etl

import (
	"fmt"
	"sort"

	"github.com/cedhtools/etl/internal/domain"
	"github.com/cedhtools/etl/internal/identity"
	"github.com/cedhtools/etl/internal/topdeck"
)

// drawWinner is the sentinel the API uses for a pod that drew.
const drawWinner = "Draw"

type outcome struct {
	wins, losses, draws int
}

// seatKey identifies a player across rounds and standings. Registered
// players have a stable ID; guests fall back to their display name.
func seatKey(id, name string) string {
	if id != "" {
		return id
	}
	return name
}

// BuildTournamentDelta turns one tournament payload into the counter
// increments it contributes. Pure computation, no I/O; persistence applies
// the whole delta in one transaction.
//
// Game outcomes come from the round tables: a "Draw" winner is a draw for
// every seat, a name match is a win, anything else at the table is a loss.
// Players absent from every table fall back to their standing's counters.
// Decks without command-zone data are skipped and reported as warnings,
// never as errors.
func BuildTournamentDelta(t *topdeck.Tournament) (*domain.TournamentDelta, []string) {
	var warnings []string

	outcomes := make(map[string]*outcome)
	for _, round := range t.Rounds {
		for _, table := range round.Tables {
			if table.Winner == "" {
				continue
			}
			for _, p := range table.Players {
				key := seatKey(p.ID, p.Name)
				o := outcomes[key]
				if o == nil {
					o = &outcome{}
					outcomes[key] = o
				}
				switch {
				case table.Winner == drawWinner:
					o.draws++
				case table.Winner == p.Name:
					o.wins++
				default:
					o.losses++
				}
			}
		}
	}

	size := len(t.Standings)
	weekStart := topdeck.WeekStart(t.Date())

	commanders := make(map[string]*domain.CommanderDelta)
	cards := make(map[string]domain.Card)
	statistics := make(map[string]*domain.StatisticDelta)
	cardWeekly := make(map[string]*domain.CardWeeklyDelta)

	processed := 0
	for i, s := range t.Standings {
		if s.DeckObj == nil || len(s.DeckObj.Commanders) == 0 {
			warnings = append(warnings,
				fmt.Sprintf("standing %d (%s): no command zone data, skipped", i+1, s.Name))
			continue
		}

		commanderCards := make([]identity.CommanderCard, 0, len(s.DeckObj.Commanders))
		for _, c := range s.DeckObj.Commanders {
			if c.OracleID == "" {
				warnings = append(warnings,
					fmt.Sprintf("standing %d (%s): commander %q missing oracle id", i+1, s.Name, c.Name))
			}
			commanderCards = append(commanderCards, identity.CommanderCard{ID: c.OracleID, Name: c.Name})
		}
		cmdID := identity.CommanderID(commanderCards)
		if cmdID == "" {
			warnings = append(warnings,
				fmt.Sprintf("standing %d (%s): empty commander identity, skipped", i+1, s.Name))
			continue
		}
		cmdName := identity.CommanderName(commanderCards)

		wins, losses, draws := s.Wins, s.Losses, s.Draws
		if o, ok := outcomes[seatKey(s.ID, s.Name)]; ok {
			wins, losses, draws = o.wins, o.losses, o.draws
		}

		standing := i + 1
		topCutHit := 0
		if t.TopCut > 0 && standing <= t.TopCut {
			topCutHit = 1
		}
		expected := 0.0
		if size > 0 && t.TopCut > 0 {
			expected = float64(t.TopCut) / float64(size)
		}

		cmd := commanders[cmdID]
		if cmd == nil {
			cmd = &domain.CommanderDelta{ID: cmdID, Name: cmdName}
			commanders[cmdID] = cmd
		}
		cmd.Wins += wins
		cmd.Losses += losses
		cmd.Draws += draws
		cmd.Entries++
		cmd.TopCuts += topCutHit
		cmd.ExpectedTopCuts += expected

		for _, c := range s.DeckObj.Commanders {
			if c.OracleID == "" {
				continue
			}
			if _, ok := cards[c.OracleID]; !ok {
				cards[c.OracleID] = domain.Card{UniqueCardID: c.OracleID, Name: c.Name, Type: 1}
			}
		}

		for _, c := range s.DeckObj.Mainboard {
			if c.OracleID == "" {
				warnings = append(warnings,
					fmt.Sprintf("standing %d (%s): card %q missing oracle id, skipped", i+1, s.Name, c.Name))
				continue
			}
			if _, ok := cards[c.OracleID]; !ok {
				cards[c.OracleID] = domain.Card{UniqueCardID: c.OracleID, Name: c.Name}
			}

			statKey := cmdID + "\x00" + c.OracleID
			stat := statistics[statKey]
			if stat == nil {
				stat = &domain.StatisticDelta{CommanderID: cmdID, CardID: c.OracleID}
				statistics[statKey] = stat
			}
			stat.Wins += wins
			stat.Losses += losses
			stat.Draws += draws
			stat.Entries++

			cw := cardWeekly[statKey]
			if cw == nil {
				cw = &domain.CardWeeklyDelta{CardCommanderWeeklyStat: domain.CardCommanderWeeklyStat{
					CommanderID: cmdID,
					CardID:      c.OracleID,
					WeekStart:   weekStart,
				}}
				cardWeekly[statKey] = cw
			}
			cw.Wins += wins
			cw.Losses += losses
			cw.Draws += draws
			cw.Entries++
		}

		processed++
	}

	delta := &domain.TournamentDelta{
		Processed: domain.ProcessedTournament{
			TournamentID:   t.TID,
			Name:           t.TournamentName,
			TournamentDate: t.Date(),
			RecordCount:    processed,
		},
	}

	for _, id := range sortedKeys(commanders) {
		cmd := commanders[id]
		delta.Commanders = append(delta.Commanders, *cmd)
		delta.CommanderWeekly = append(delta.CommanderWeekly, domain.CommanderWeeklyDelta{
			CommanderWeeklyStat: domain.CommanderWeeklyStat{
				CommanderID:     cmd.ID,
				WeekStart:       weekStart,
				Wins:            cmd.Wins,
				Losses:          cmd.Losses,
				Draws:           cmd.Draws,
				Entries:         cmd.Entries,
				TopCuts:         cmd.TopCuts,
				ExpectedTopCuts: cmd.ExpectedTopCuts,
			},
		})
	}
	for _, id := range sortedKeys(cards) {
		delta.Cards = append(delta.Cards, cards[id])
	}
	for _, key := range sortedKeys(statistics) {
		delta.Statistics = append(delta.Statistics, *statistics[key])
	}
	for _, key := range sortedKeys(cardWeekly) {
		delta.CardWeekly = append(delta.CardWeekly, *cardWeekly[key])
	}

	return delta, warnings
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PlayerIDs collects the registered player ids seen in a batch of
// tournaments, in first-seen order.
func PlayerIDs(tournaments []topdeck.Tournament) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, t := range tournaments {
		for _, s := range t.Standings {
			if s.ID == "" {
				continue
			}
			if _, dup := seen[s.ID]; dup {
				continue
			}
			seen[s.ID] = struct{}{}
			ids = append(ids, s.ID)
		}
	}
	return ids
}
