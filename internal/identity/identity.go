// Package identity resolves commander and card identities.
//
// A deck's command zone may hold one commander or a partner pair. The
// canonical commander ID is order-independent so the same pair always maps
// to the same aggregate row, while the display name preserves the order the
// decklist used.
package identity

import (
	"sort"
	"strings"
)

// CommanderCard is the minimal card shape needed to resolve identity.
type CommanderCard struct {
	ID   string
	Name string
}

// Separator joins the card IDs of a partner pair into one commander ID.
const Separator = "_"

// CommanderID returns the canonical ID for a set of command-zone cards:
// unique card IDs sorted ascending and joined with "_". Permutations of the
// same cards yield the same ID. A card with an empty ID contributes an empty
// component; the result stays deterministic and the caller is expected to
// log the data-quality problem.
func CommanderID(cards []CommanderCard) string {
	if len(cards) == 0 {
		return ""
	}
	seen := make(map[string]struct{}, len(cards))
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	return strings.Join(ids, Separator)
}

// CommanderName returns the display name: card names joined with " + " in
// the order they appear in the decklist. Display order intentionally
// diverges from the sorted ID.
func CommanderName(cards []CommanderCard) string {
	names := make([]string, 0, len(cards))
	for _, c := range cards {
		names = append(names, c.Name)
	}
	return strings.Join(names, " + ")
}

// IsPartnerPair reports whether a commander ID refers to a partner pair.
func IsPartnerPair(id string) bool {
	return strings.Contains(id, Separator)
}

// IndividualIDs splits a commander ID into its component card IDs.
func IndividualIDs(id string) []string {
	if id == "" {
		return nil
	}
	return strings.Split(id, Separator)
}
