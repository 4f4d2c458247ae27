// Package engine orchestrates the rating pipeline: it assembles the
// player universe from the ranking sources, rates real or simulated
// match evidence, and exposes the ranking, prediction and identity
// operations consumed by the API layer.
//
// The engine is a pure function of a snapshot of source data. No rating
// state survives between invocations other than through the injected
// TTL cache.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/humatwin/BCR/internal/cache"
	"github.com/humatwin/BCR/internal/identity"
	"github.com/humatwin/BCR/internal/models"
	"github.com/humatwin/BCR/internal/seeding"
)

// ErrNotSingles rejects Elo and prediction requests for doubles
// categories before any source fetch happens.
var ErrNotSingles = errors.New("elo rankings and predictions are only available for singles categories (MS, WS)")

// Elite tier consulted for the lower-tier half of the player universe.
const (
	eliteTier  = "A"
	eliteLimit = 200
)

// Source is the document-source surface the engine consumes. It is
// satisfied by *client.Client and faked in tests.
type Source interface {
	FetchRankings(ctx context.Context, category models.Category) ([]models.RankingRow, error)
	FetchEliteRankings(ctx context.Context, tier string, category models.Category, limit int) ([]models.RankingRow, error)
	FetchPlayerMatches(ctx context.Context, playerID string) ([]models.MatchRow, error)
	SearchPlayers(ctx context.Context, query string, limit int) ([]models.PlayerSearchRow, error)
	FetchUpcomingNationalTournaments(ctx context.Context, now time.Time, limit int) ([]models.TournamentRow, error)
	FetchUpcomingEliteTournaments(ctx context.Context, now time.Time, limit int) ([]models.TournamentRow, error)
	FetchTournamentDraws(ctx context.Context, tournamentID string) ([]models.DrawRow, error)
	FetchDrawParticipants(ctx context.Context, drawURL string) ([]models.ParticipantRow, error)
	FetchTournamentMatches(ctx context.Context, tournamentID string) (string, []models.ListedMatchRow, error)
}

// Options tunes the engine's fan-out and fallback breadth.
type Options struct {
	// FetchConcurrency bounds concurrent per-player history fetches.
	FetchConcurrency int
	// UpcomingLimit caps how many upcoming tournaments per tier the
	// fallback simulation and player predictions consult.
	UpcomingLimit int
}

// Engine implements the exposed operations.
type Engine struct {
	src         Source
	store       cache.Cache
	concurrency int
	upcoming    int
	now         func() time.Time
}

// New wires an engine. The cache is required; pass a Memory cache for
// single-process setups.
func New(src Source, store cache.Cache, opts Options) *Engine {
	concurrency := opts.FetchConcurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	upcoming := opts.UpcomingLimit
	if upcoming <= 0 {
		upcoming = 3
	}
	return &Engine{
		src:         src,
		store:       store,
		concurrency: concurrency,
		upcoming:    upcoming,
		now:         time.Now,
	}
}

// ClearCache drops every memoized result.
func (e *Engine) ClearCache(ctx context.Context) error {
	return e.store.Clear(ctx)
}

// universe is the per-request view of the known player population: the
// raw source rows, the identity index built from them, and the seed
// book layered on top.
type universe struct {
	national []models.RankingRow
	elite    []models.RankingRow
	resolver *identity.Resolver
	book     *seeding.Book
}

// buildUniverse fetches both ranking lists for the category. A failed
// list degrades the universe instead of aborting: the computation
// proceeds on whatever rows arrived.
func (e *Engine) buildUniverse(ctx context.Context, cat models.Category, diag *models.Diagnostics) universe {
	national, err := e.src.FetchRankings(ctx, cat)
	if err != nil {
		log.Warn().Err(err).Str("category", string(cat)).Msg("National ranking fetch failed, continuing without it")
		diag.AddFailure(fmt.Sprintf("national rankings: %v", err))
	}

	elite, err := e.src.FetchEliteRankings(ctx, eliteTier, cat, eliteLimit)
	if err != nil {
		log.Warn().Err(err).Str("category", string(cat)).Msg("Elite ranking fetch failed, continuing without it")
		diag.AddFailure(fmt.Sprintf("elite rankings: %v", err))
	}

	resolver := identity.NewResolver()
	for _, row := range national {
		resolver.Index(row)
	}
	for _, row := range elite {
		resolver.Index(row)
	}

	return universe{
		national: national,
		elite:    elite,
		resolver: resolver,
		book:     seeding.NewBook(national, elite, resolver),
	}
}

// entrant converts a draw participant into a seeding entrant, attaching
// the canonical id when the row resolves. Unresolved participants stay
// unseeded but remain usable in predictions.
func (u universe) entrant(row models.ParticipantRow) seeding.Entrant {
	ident, ok := u.resolver.Resolve(row.PlayerName, row.PlayerID)
	ent := seeding.Entrant{PlayerName: row.PlayerName}
	if ent.PlayerName == "" {
		ent.PlayerName = ident.DisplayName
	}
	if ok {
		ent.PlayerID = ident.PlayerID
	}
	return ent
}

// entrantForName is entrant for match-list rows, which carry no id.
func (u universe) entrantForName(name string) seeding.Entrant {
	ent := seeding.Entrant{PlayerName: name}
	if ident, ok := u.resolver.LookupName(name); ok {
		ent.PlayerID = ident.PlayerID
	}
	return ent
}
