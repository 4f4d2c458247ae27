package models

import "time"

// RankingSnapshot is a persisted ranking computation. Payload holds the
// full EloRanking as JSON so historical rankings can be replayed
// without refetching source data.
type RankingSnapshot struct {
	ID               int64     `json:"id"`
	Category         string    `json:"category"`
	Scope            string    `json:"scope"`
	ComputedAt       time.Time `json:"computed_at"`
	RealMatches      int       `json:"real_matches"`
	SimulatedMatches int       `json:"simulated_matches"`
	Payload          []byte    `json:"payload"`
	CreatedAt        time.Time `json:"created_at"`
}

// PredictionSnapshot is a persisted prediction set.
type PredictionSnapshot struct {
	ID         int64     `json:"id"`
	Target     string    `json:"target"`
	Category   string    `json:"category"`
	ComputedAt time.Time `json:"computed_at"`
	Matchups   int       `json:"matchups"`
	Payload    []byte    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}
