// Package predict composes advisory head-to-head forecasts. A composer
// reads live ratings when a computation produced them and falls back to
// seed-derived priors; it never mutates rating state.
package predict

import (
	"github.com/humatwin/BCR/internal/elo"
	"github.com/humatwin/BCR/internal/models"
	"github.com/humatwin/BCR/internal/seeding"
)

// Ratings supplies live ratings for tracked players. A nil Ratings
// means no computation is available and every side uses its seed prior.
type Ratings interface {
	Rating(playerID string) (float64, bool)
}

// Composer builds matchup predictions for one tournament context.
type Composer struct {
	book    *seeding.Book
	ratings Ratings
}

// NewComposer wires a seed book and an optional live-ratings source.
func NewComposer(book *seeding.Book, ratings Ratings) *Composer {
	return &Composer{book: book, ratings: ratings}
}

// Compose predicts one matchup. Source records provenance: the draw
// name when the pair came from seeding, or the match-list origin when
// it was scheduled play.
func (c *Composer) Compose(a, b seeding.Entrant, tournamentName, source string) models.PredictionMatchup {
	ratingA := c.ratingFor(a)
	ratingB := c.ratingFor(b)

	expectedA := elo.Expected(ratingA, ratingB)
	k := elo.KFactor(tournamentName)

	deltaAWin := k * (1.0 - expectedA)
	deltaALoss := k * (0.0 - expectedA)

	return models.PredictionMatchup{
		PlayerAID:      a.PlayerID,
		PlayerAName:    a.PlayerName,
		PlayerBID:      b.PlayerID,
		PlayerBName:    b.PlayerName,
		ExpectedA:      expectedA,
		ExpectedB:      1.0 - expectedA,
		DeltaAWin:      deltaAWin,
		DeltaALoss:     deltaALoss,
		DeltaBWin:      -deltaALoss,
		DeltaBLoss:     -deltaAWin,
		K:              k,
		Source:         source,
		TournamentName: tournamentName,
	}
}

func (c *Composer) ratingFor(e seeding.Entrant) float64 {
	if c.ratings != nil && e.PlayerID != "" {
		if r, ok := c.ratings.Rating(e.PlayerID); ok {
			return r
		}
	}
	return c.book.SeedFor(e.PlayerID, e.PlayerName).Rating()
}
