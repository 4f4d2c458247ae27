// Package elo maintains Elo-style skill ratings and per-player
// aggregates over a window of head-to-head results. State is rebuilt
// from scratch on every computation and never persisted.
package elo

import (
	"math"
	"strings"
)

// InitialRating is the neutral prior every player starts from.
const InitialRating = 1500.0

// K-factor tiers by tournament level.
const (
	KChampionship = 100.0
	KNational     = 75.0
	KProvincial   = 50.0
)

// Expected returns the expected score of the first player:
// E_a = 1 / (1 + 10^((R_b - R_a)/400)).
func Expected(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// KFactor picks the rating-swing scalar from the tournament name.
// Matching is a case-insensitive substring test; anything outside the
// championship and national tiers is treated as provincial level.
func KFactor(tournamentName string) float64 {
	t := strings.ToLower(tournamentName)
	switch {
	case strings.Contains(t, "championship") || strings.Contains(t, "championnat"):
		return KChampionship
	case strings.Contains(t, "national") || strings.Contains(t, "nationaux") || strings.Contains(t, "canadian"):
		return KNational
	default:
		return KProvincial
	}
}
