package models

import "time"

// EloEntry is one player's line in a computed Elo ranking. Inactive
// players keep Rank 0 and are listed after all active ones.
type EloEntry struct {
	Rank             int     `json:"rank"`
	PlayerID         string  `json:"player_id"`
	PlayerName       string  `json:"player_name"`
	Rating           float64 `json:"rating"`
	AvgDeltaPerMatch float64 `json:"avg_points_per_match"`
	Matches          int     `json:"matches"`
	Tournaments      int     `json:"tournaments"`
	Active           bool    `json:"active"`
}

// EloRanking is the full result of a ranking computation.
type EloRanking struct {
	Category    Category     `json:"category"`
	Scope       string       `json:"scope"`
	LastUpdated time.Time    `json:"last_updated"`
	Items       []EloEntry   `json:"items"`
	TotalCount  int          `json:"total_count"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}

// Diagnostics records how a computation went without affecting its
// result: universe size, match provenance, and per-unit fetch failures
// that degraded but did not abort the run.
type Diagnostics struct {
	SourcePlayers     int      `json:"source_players"`
	SeenMatches       int      `json:"seen_matches"`
	SimulatedMatches  int      `json:"simulated_matches"`
	FetchFailures     []string `json:"fetch_failures,omitempty"`
	UpcomingConsulted []string `json:"upcoming_consulted,omitempty"`
}

// AddFailure appends a degraded-unit note, e.g. "player 12345: timeout".
func (d *Diagnostics) AddFailure(note string) {
	d.FetchFailures = append(d.FetchFailures, note)
}
