package models

import "time"

// PredictionMatchup is an advisory head-to-head forecast for one pair.
// The four deltas describe both outcomes for both sides under the
// tournament's K-factor; they are never applied to persistent ratings.
type PredictionMatchup struct {
	PlayerAID      string  `json:"player_a_id,omitempty"`
	PlayerAName    string  `json:"player_a_name"`
	PlayerBID      string  `json:"player_b_id,omitempty"`
	PlayerBName    string  `json:"player_b_name"`
	ExpectedA      float64 `json:"expected_a"`
	ExpectedB      float64 `json:"expected_b"`
	DeltaAWin      float64 `json:"delta_a_win"`
	DeltaALoss     float64 `json:"delta_a_loss"`
	DeltaBWin      float64 `json:"delta_b_win"`
	DeltaBLoss     float64 `json:"delta_b_loss"`
	K              float64 `json:"k"`
	Source         string  `json:"source"`
	TournamentName string  `json:"tournament_name,omitempty"`
}

// Involves reports whether the matchup features the given player id or
// normalized name key (either may be empty).
func (m PredictionMatchup) Involves(playerID, nameKey string, normalize func(string) string) bool {
	if playerID != "" && (m.PlayerAID == playerID || m.PlayerBID == playerID) {
		return true
	}
	if nameKey == "" || normalize == nil {
		return false
	}
	return normalize(m.PlayerAName) == nameKey || normalize(m.PlayerBName) == nameKey
}

// PredictionSet is the full result of a prediction request for one
// target (tournament id or player id).
type PredictionSet struct {
	Target      string              `json:"target"`
	Category    Category            `json:"category"`
	LastUpdated time.Time           `json:"last_updated"`
	Matchups    []PredictionMatchup `json:"matchups"`
	TotalCount  int                 `json:"total_count"`
	Diagnostics *Diagnostics        `json:"diagnostics,omitempty"`
}
