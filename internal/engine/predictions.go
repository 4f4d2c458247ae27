package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/humatwin/BCR/internal/identity"
	"github.com/humatwin/BCR/internal/metrics"
	"github.com/humatwin/BCR/internal/models"
	"github.com/humatwin/BCR/internal/predict"
	"github.com/humatwin/BCR/internal/seeding"
)

// ratingsMap adapts a cached ranking's entries into a live-ratings
// source for the prediction composer.
type ratingsMap map[string]float64

func (r ratingsMap) Rating(playerID string) (float64, bool) {
	v, ok := r[playerID]
	return v, ok
}

// liveRatings loads the cached Elo ranking for a category, if any.
// Predictions work without one; the composer then falls back to seed
// priors for every side.
func (e *Engine) liveRatings(ctx context.Context, cat models.Category) predict.Ratings {
	raw, ok, err := e.store.Get(ctx, rankingCacheKey(cat))
	if err != nil || !ok {
		return nil
	}
	var cached models.EloRanking
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil
	}
	m := make(ratingsMap, len(cached.Items))
	for _, it := range cached.Items {
		m[it.PlayerID] = it.Rating
	}
	return m
}

// PredictTournament forecasts the matchups of one tournament. Scheduled
// matches from the tournament's match list take precedence; when none
// match the category, hypothetical first-round pairs are built from the
// category's draws by seed order.
func (e *Engine) PredictTournament(ctx context.Context, tournamentID, category string) (*models.PredictionSet, error) {
	cat, err := models.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	if !cat.IsSingles() {
		return nil, ErrNotSingles
	}

	start := time.Now()
	diag := &models.Diagnostics{}
	u := e.buildUniverse(ctx, cat, diag)
	diag.SourcePlayers = u.resolver.Size()
	composer := predict.NewComposer(u.book, e.liveRatings(ctx, cat))

	matchups := e.tournamentMatchups(ctx, tournamentID, cat, u, composer, diag)
	metrics.RecordCompute("predict_tournament", string(cat), time.Since(start).Seconds())
	log.Info().
		Str("tournament_id", tournamentID).
		Str("category", string(cat)).
		Int("matchups", len(matchups)).
		Msg("Composed tournament predictions")

	return &models.PredictionSet{
		Target:      tournamentID,
		Category:    cat,
		LastUpdated: e.now().UTC(),
		Matchups:    matchups,
		TotalCount:  len(matchups),
		Diagnostics: diag,
	}, nil
}

// PredictPlayer forecasts one player's matchups across the upcoming
// national and elite tournaments of the current season.
func (e *Engine) PredictPlayer(ctx context.Context, playerID, category string) (*models.PredictionSet, error) {
	cat, err := models.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	if !cat.IsSingles() {
		return nil, ErrNotSingles
	}

	start := time.Now()
	diag := &models.Diagnostics{}
	u := e.buildUniverse(ctx, cat, diag)
	diag.SourcePlayers = u.resolver.Size()
	composer := predict.NewComposer(u.book, e.liveRatings(ctx, cat))

	nameKey := ""
	if ident, ok := u.resolver.Lookup(playerID); ok {
		nameKey = identity.Normalize(ident.DisplayName)
	}

	var matchups []models.PredictionMatchup
	for _, t := range e.upcomingTournaments(ctx, diag) {
		diag.UpcomingConsulted = append(diag.UpcomingConsulted, t.Name)
		for _, m := range e.tournamentMatchups(ctx, t.TournamentID, cat, u, composer, diag) {
			if m.Involves(playerID, nameKey, identity.Normalize) {
				matchups = append(matchups, m)
			}
		}
	}
	metrics.RecordCompute("predict_player", string(cat), time.Since(start).Seconds())
	log.Info().
		Str("player_id", playerID).
		Str("category", string(cat)).
		Int("matchups", len(matchups)).
		Msg("Composed player predictions")

	return &models.PredictionSet{
		Target:      playerID,
		Category:    cat,
		LastUpdated: e.now().UTC(),
		Matchups:    matchups,
		TotalCount:  len(matchups),
		Diagnostics: diag,
	}, nil
}

// tournamentMatchups builds a tournament's matchups for one category:
// listed scheduled matches when the match list carries any for the
// category, seed-paired draw fields otherwise.
func (e *Engine) tournamentMatchups(ctx context.Context, tournamentID string, cat models.Category, u universe, composer *predict.Composer, diag *models.Diagnostics) []models.PredictionMatchup {
	name, listed, err := e.src.FetchTournamentMatches(ctx, tournamentID)
	if err != nil {
		diag.AddFailure(fmt.Sprintf("tournament %s matches: %v", tournamentID, err))
		metrics.RecordFetchFailure()
	}

	var matchups []models.PredictionMatchup
	for _, m := range listed {
		c, ok := identity.CategoryFromEvent(m.Event)
		if !ok || c != cat {
			continue
		}
		a := u.entrantForName(m.PlayerAName)
		b := u.entrantForName(m.PlayerBName)
		matchups = append(matchups, composer.Compose(a, b, name, m.Event))
	}
	if len(matchups) > 0 {
		return matchups
	}

	draws, err := e.src.FetchTournamentDraws(ctx, tournamentID)
	if err != nil {
		diag.AddFailure(fmt.Sprintf("tournament %s draws: %v", tournamentID, err))
		metrics.RecordFetchFailure()
		return nil
	}
	for _, d := range draws {
		if !identity.DrawMatchesCategory(d.Name, cat) {
			continue
		}
		participants, err := e.src.FetchDrawParticipants(ctx, d.URL)
		if err != nil {
			diag.AddFailure(fmt.Sprintf("draw %q of %s: %v", d.Name, tournamentID, err))
			metrics.RecordFetchFailure()
			continue
		}
		entrants := make([]seeding.Entrant, 0, len(participants))
		for _, p := range participants {
			entrants = append(entrants, u.entrant(p))
		}
		pairs, leftover := u.book.PairField(entrants)
		if leftover != nil {
			log.Debug().Str("player", leftover.PlayerName).Str("draw", d.Name).Msg("Odd draw size, middle entrant left unpaired")
		}
		tournamentName := name
		if tournamentName == "" {
			tournamentName = d.Name
		}
		for _, p := range pairs {
			matchups = append(matchups, composer.Compose(p.A, p.B, tournamentName, d.Name))
		}
	}
	return matchups
}
