// Package ranking converts final per-player aggregates into a dense,
// sorted ranking with an activity gate.
package ranking

import (
	"sort"

	"github.com/humatwin/BCR/internal/models"
)

// ActivityThreshold is the minimum number of distinct tournaments in
// the evaluation window for a player to receive a numeric rank.
const ActivityThreshold = 3

// Compose partitions the entries into active and inactive players,
// sorts the actives descending by (average delta per match, rating) and
// assigns dense ranks 1..N to them. Inactive players follow in their
// given relative order carrying the unranked sentinel 0.
func Compose(entries []models.EloEntry) []models.EloEntry {
	var active, inactive []models.EloEntry
	for _, e := range entries {
		e.Active = e.Tournaments >= ActivityThreshold
		e.Rank = 0
		if e.Active {
			active = append(active, e)
		} else {
			inactive = append(inactive, e)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].AvgDeltaPerMatch != active[j].AvgDeltaPerMatch {
			return active[i].AvgDeltaPerMatch > active[j].AvgDeltaPerMatch
		}
		return active[i].Rating > active[j].Rating
	})
	for i := range active {
		active[i].Rank = i + 1
	}

	return append(active, inactive...)
}
