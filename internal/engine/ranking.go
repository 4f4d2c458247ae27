package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/humatwin/BCR/internal/elo"
	"github.com/humatwin/BCR/internal/identity"
	"github.com/humatwin/BCR/internal/metrics"
	"github.com/humatwin/BCR/internal/models"
	"github.com/humatwin/BCR/internal/ranking"
	"github.com/humatwin/BCR/internal/seeding"
)

func rankingCacheKey(cat models.Category) string {
	return "elo:" + string(cat)
}

// ComputeRanking returns the Elo ranking for a singles category,
// serving a cached result when one is still fresh.
func (e *Engine) ComputeRanking(ctx context.Context, category string) (*models.EloRanking, error) {
	cat, err := models.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	if !cat.IsSingles() {
		return nil, ErrNotSingles
	}

	key := rankingCacheKey(cat)
	if raw, ok, err := e.store.Get(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed, recomputing")
	} else if ok {
		var cached models.EloRanking
		uerr := json.Unmarshal(raw, &cached)
		if uerr == nil {
			metrics.RecordCacheHit()
			return &cached, nil
		}
		log.Warn().Err(uerr).Str("key", key).Msg("Discarding unreadable cached ranking")
	} else {
		metrics.RecordCacheMiss()
	}

	return e.RefreshRanking(ctx, cat)
}

// RefreshRanking recomputes a category's ranking from source data,
// bypassing any cached result, and stores the fresh result.
func (e *Engine) RefreshRanking(ctx context.Context, cat models.Category) (*models.EloRanking, error) {
	if !cat.IsSingles() {
		return nil, ErrNotSingles
	}

	start := time.Now()
	result := e.computeRanking(ctx, cat)
	metrics.RecordCompute("ranking", string(cat), time.Since(start).Seconds())

	if raw, err := json.Marshal(result); err == nil {
		if err := e.store.Set(ctx, rankingCacheKey(cat), raw); err != nil {
			log.Warn().Err(err).Str("category", string(cat)).Msg("Failed to cache computed ranking")
		}
	}
	return result, nil
}

func (e *Engine) computeRanking(ctx context.Context, cat models.Category) *models.EloRanking {
	diag := &models.Diagnostics{}
	u := e.buildUniverse(ctx, cat, diag)

	ids := u.resolver.IDs()
	diag.SourcePlayers = len(ids)

	eng := elo.NewEngine(ids, e.now())
	if len(ids) > 0 {
		batch := e.fetchMatches(ctx, ids, u.resolver, diag)
		eng.ApplyAll(batch)
		if eng.Applied() == 0 {
			log.Info().Str("category", string(cat)).Msg("No rated matches in window, simulating from upcoming draws")
			e.simulateFromUpcoming(ctx, cat, eng, u, diag)
		}
	}
	diag.SeenMatches = eng.Applied()
	diag.SimulatedMatches = eng.Simulated()

	entries := make([]models.EloEntry, 0, len(ids))
	for _, id := range ids {
		agg, ok := eng.AggregateFor(id)
		if !ok {
			continue
		}
		avg := 0.0
		if agg.Matches > 0 {
			avg = agg.CumulativeDelta / float64(agg.Matches)
		}
		name := id
		if ident, ok := u.resolver.Lookup(id); ok {
			name = ident.DisplayName
		}
		entries = append(entries, models.EloEntry{
			PlayerID:         id,
			PlayerName:       name,
			Rating:           agg.Rating,
			AvgDeltaPerMatch: avg,
			Matches:          agg.Matches,
			Tournaments:      agg.Tournaments,
		})
	}

	items := ranking.Compose(entries)

	mode := "real"
	if eng.Applied() == 0 {
		mode = "neutral"
		if eng.Simulated() > 0 {
			mode = "simulated"
		}
	}
	metrics.RecordRanking(string(cat), mode, eng.Applied(), eng.Simulated())
	log.Info().
		Str("category", string(cat)).
		Int("players", len(items)).
		Int("real_matches", eng.Applied()).
		Int("simulated_matches", eng.Simulated()).
		Str("mode", mode).
		Msg("Computed Elo ranking")

	return &models.EloRanking{
		Category:    cat,
		Scope:       "elo",
		LastUpdated: e.now().UTC(),
		Items:       items,
		TotalCount:  len(items),
		Diagnostics: diag,
	}
}

// fetchMatches pulls every universe player's match history with bounded
// concurrency and converts the rows into rateable matches. Results are
// collected into index-ordered slots so the batch order stays the
// resolver's discovery order regardless of goroutine scheduling.
func (e *Engine) fetchMatches(ctx context.Context, ids []string, resolver *identity.Resolver, diag *models.Diagnostics) []elo.Match {
	results := make([][]models.MatchRow, len(ids))
	failures := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			rows, err := e.src.FetchPlayerMatches(gctx, id)
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = rows
			return nil
		})
	}
	_ = g.Wait()

	var batch []elo.Match
	for i, id := range ids {
		if failures[i] != nil {
			diag.AddFailure(fmt.Sprintf("player %s: %v", id, failures[i]))
			metrics.RecordFetchFailure()
			log.Warn().Err(failures[i]).Str("player_id", id).Msg("Match history fetch failed, skipping player")
			continue
		}
		for _, row := range results[i] {
			opp, ok := resolver.LookupName(row.OpponentName)
			if !ok || opp.PlayerID == id {
				continue
			}
			m := elo.Match{
				PlayerID:   id,
				OpponentID: opp.PlayerID,
				Won:        row.Won,
				Tournament: strings.TrimSpace(row.TournamentName),
				Score:      strings.TrimSpace(row.ScoreText),
			}
			if d, ok := row.When(); ok {
				m.Date, m.Dated = d, true
			}
			batch = append(batch, m)
		}
	}
	return batch
}

// simulateFromUpcoming seeds the rating pool from hypothetical draws of
// upcoming tournaments when no real match evidence exists. Each pair is
// decided in favor of the better seed and rated through the standard
// update with the tournament's own K factor.
func (e *Engine) simulateFromUpcoming(ctx context.Context, cat models.Category, eng *elo.Engine, u universe, diag *models.Diagnostics) {
	tournaments := e.upcomingTournaments(ctx, diag)
	for _, t := range tournaments {
		diag.UpcomingConsulted = append(diag.UpcomingConsulted, t.Name)
		draws, err := e.src.FetchTournamentDraws(ctx, t.TournamentID)
		if err != nil {
			diag.AddFailure(fmt.Sprintf("tournament %s draws: %v", t.TournamentID, err))
			metrics.RecordFetchFailure()
			continue
		}
		for _, d := range draws {
			if !identity.DrawMatchesCategory(d.Name, cat) {
				continue
			}
			participants, err := e.src.FetchDrawParticipants(ctx, d.URL)
			if err != nil {
				diag.AddFailure(fmt.Sprintf("draw %q of %s: %v", d.Name, t.TournamentID, err))
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
			for _, p := range pairs {
				if p.A.PlayerID == "" || p.B.PlayerID == "" {
					continue
				}
				aWins := u.book.SeedFor(p.A.PlayerID, p.A.PlayerName).
					BetterOrEqual(u.book.SeedFor(p.B.PlayerID, p.B.PlayerName))
				eng.Simulate(p.A.PlayerID, p.B.PlayerID, aWins, t.Name)
			}
		}
	}
}

// upcomingTournaments gathers the national and elite tournaments the
// fallback paths consult, tolerating per-tier failures.
func (e *Engine) upcomingTournaments(ctx context.Context, diag *models.Diagnostics) []models.TournamentRow {
	now := e.now()
	var out []models.TournamentRow

	national, err := e.src.FetchUpcomingNationalTournaments(ctx, now, e.upcoming)
	if err != nil {
		diag.AddFailure(fmt.Sprintf("upcoming national tournaments: %v", err))
		metrics.RecordFetchFailure()
	} else {
		out = append(out, national...)
	}

	elite, err := e.src.FetchUpcomingEliteTournaments(ctx, now, e.upcoming)
	if err != nil {
		diag.AddFailure(fmt.Sprintf("upcoming elite tournaments: %v", err))
		metrics.RecordFetchFailure()
	} else {
		out = append(out, elite...)
	}

	seen := make(map[string]bool, len(out))
	deduped := out[:0]
	for _, t := range out {
		if seen[t.TournamentID] {
			continue
		}
		seen[t.TournamentID] = true
		deduped = append(deduped, t)
	}
	return deduped
}
