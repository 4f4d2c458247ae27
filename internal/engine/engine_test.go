package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humatwin/BCR/internal/cache"
	"github.com/humatwin/BCR/internal/models"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// fakeSource serves canned source data and records per-endpoint call
// counts.
type fakeSource struct {
	national []models.RankingRow
	elite    []models.RankingRow

	matches  map[string][]models.MatchRow
	matchErr map[string]error

	upcomingNational []models.TournamentRow
	upcomingElite    []models.TournamentRow

	tournamentNames map[string]string
	listed          map[string][]models.ListedMatchRow
	draws           map[string][]models.DrawRow
	participants    map[string][]models.ParticipantRow

	search    map[string][]models.PlayerSearchRow
	searchErr error

	rankingCalls int
	searchCalls  int
}

func (f *fakeSource) FetchRankings(_ context.Context, _ models.Category) ([]models.RankingRow, error) {
	f.rankingCalls++
	return f.national, nil
}

func (f *fakeSource) FetchEliteRankings(_ context.Context, _ string, _ models.Category, _ int) ([]models.RankingRow, error) {
	return f.elite, nil
}

func (f *fakeSource) FetchPlayerMatches(_ context.Context, playerID string) ([]models.MatchRow, error) {
	if err, ok := f.matchErr[playerID]; ok {
		return nil, err
	}
	return f.matches[playerID], nil
}

func (f *fakeSource) SearchPlayers(_ context.Context, query string, _ int) ([]models.PlayerSearchRow, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.search[query], nil
}

func (f *fakeSource) FetchUpcomingNationalTournaments(_ context.Context, _ time.Time, _ int) ([]models.TournamentRow, error) {
	return f.upcomingNational, nil
}

func (f *fakeSource) FetchUpcomingEliteTournaments(_ context.Context, _ time.Time, _ int) ([]models.TournamentRow, error) {
	return f.upcomingElite, nil
}

func (f *fakeSource) FetchTournamentDraws(_ context.Context, tournamentID string) ([]models.DrawRow, error) {
	return f.draws[tournamentID], nil
}

func (f *fakeSource) FetchDrawParticipants(_ context.Context, drawURL string) ([]models.ParticipantRow, error) {
	return f.participants[drawURL], nil
}

func (f *fakeSource) FetchTournamentMatches(_ context.Context, tournamentID string) (string, []models.ListedMatchRow, error) {
	return f.tournamentNames[tournamentID], f.listed[tournamentID], nil
}

func newTestEngine(src Source) *Engine {
	e := New(src, cache.NewMemory(time.Hour), Options{FetchConcurrency: 2, UpcomingLimit: 3})
	e.now = func() time.Time { return testNow }
	return e
}

func singlesUniverse() *fakeSource {
	return &fakeSource{
		national: []models.RankingRow{
			{Rank: 1, PlayerID: "p1", PlayerName: "Lai, Victor"},
			{Rank: 2, PlayerID: "p2", PlayerName: "Tremblay, Marc"},
		},
		elite: []models.RankingRow{
			{Rank: 1, PlayerID: "p3", PlayerName: "Singh, Raj"},
		},
		matches:         map[string][]models.MatchRow{},
		matchErr:        map[string]error{},
		tournamentNames: map[string]string{},
		listed:          map[string][]models.ListedMatchRow{},
		draws:           map[string][]models.DrawRow{},
		participants:    map[string][]models.ParticipantRow{},
		search:          map[string][]models.PlayerSearchRow{},
	}
}

func TestComputeRankingRejectsDoubles(t *testing.T) {
	e := newTestEngine(singlesUniverse())

	_, err := e.ComputeRanking(context.Background(), "MD")
	assert.ErrorIs(t, err, ErrNotSingles)

	_, err = e.ComputeRanking(context.Background(), "nope")
	assert.Error(t, err)
}

func TestComputeRankingDeduplicatesMirroredReports(t *testing.T) {
	src := singlesUniverse()
	src.matches["p1"] = []models.MatchRow{
		{TournamentName: "Spring Provincial", OpponentName: "Marc Tremblay", ScoreText: "21-15 21-18", Won: true, Date: "2026-02-01"},
	}
	src.matches["p2"] = []models.MatchRow{
		{TournamentName: "Spring Provincial", OpponentName: "Victor Lai", ScoreText: "21-15 21-18", Won: false, Date: "2026-02-01"},
	}
	e := newTestEngine(src)

	result, err := e.ComputeRanking(context.Background(), "MS")
	require.NoError(t, err)

	require.NotNil(t, result.Diagnostics)
	assert.Equal(t, 1, result.Diagnostics.SeenMatches, "Both perspectives of one match rate once")
	assert.Equal(t, 0, result.Diagnostics.SimulatedMatches)
	assert.Equal(t, 3, result.Diagnostics.SourcePlayers)

	byID := make(map[string]models.EloEntry)
	for _, it := range result.Items {
		byID[it.PlayerID] = it
	}
	assert.InDelta(t, 1525.0, byID["p1"].Rating, 1e-9)
	assert.InDelta(t, 1475.0, byID["p2"].Rating, 1e-9)
	assert.InDelta(t, 1500.0, byID["p3"].Rating, 1e-9, "Players without matches stay at the prior")

	// One tournament each: everyone is below the activity threshold.
	for _, it := range result.Items {
		assert.False(t, it.Active)
		assert.Equal(t, 0, it.Rank)
	}
}

func TestComputeRankingServesCachedResult(t *testing.T) {
	src := singlesUniverse()
	e := newTestEngine(src)

	first, err := e.ComputeRanking(context.Background(), "MS")
	require.NoError(t, err)
	callsAfterFirst := src.rankingCalls

	second, err := e.ComputeRanking(context.Background(), "MS")
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, src.rankingCalls, "A cached ranking must not refetch")
	assert.Equal(t, first.TotalCount, second.TotalCount)
	assert.Equal(t, first.LastUpdated, second.LastUpdated)
}

func TestRefreshRankingBypassesCache(t *testing.T) {
	src := singlesUniverse()
	e := newTestEngine(src)

	_, err := e.ComputeRanking(context.Background(), "MS")
	require.NoError(t, err)
	callsAfterFirst := src.rankingCalls

	_, err = e.RefreshRanking(context.Background(), models.MensSingles)
	require.NoError(t, err)
	assert.Greater(t, src.rankingCalls, callsAfterFirst, "Refresh must hit the source again")
}

func TestComputeRankingDegradesOnPlayerFetchFailure(t *testing.T) {
	src := singlesUniverse()
	src.matches["p1"] = []models.MatchRow{
		{TournamentName: "Spring Provincial", OpponentName: "Marc Tremblay", ScoreText: "21-15 21-18", Won: true},
	}
	src.matchErr["p3"] = errors.New("timeout")
	e := newTestEngine(src)

	result, err := e.ComputeRanking(context.Background(), "MS")
	require.NoError(t, err, "A single failed player page must not abort the run")

	require.NotNil(t, result.Diagnostics)
	assert.Equal(t, 1, result.Diagnostics.SeenMatches, "Other players' matches are still rated")
	require.Len(t, result.Diagnostics.FetchFailures, 1)
	assert.Contains(t, result.Diagnostics.FetchFailures[0], "p3")
}

func TestComputeRankingFallsBackToSimulation(t *testing.T) {
	src := singlesUniverse()
	src.upcomingNational = []models.TournamentRow{
		{TournamentID: "t1", Name: "Upcoming National Open"},
	}
	src.draws["t1"] = []models.DrawRow{
		{Name: "MS Main Draw", URL: "draw-ms"},
		{Name: "WS Main Draw", URL: "draw-ws"},
	}
	src.participants["draw-ms"] = []models.ParticipantRow{
		{PlayerID: "p1", PlayerName: "Lai, Victor"},
		{PlayerID: "p2", PlayerName: "Tremblay, Marc"},
	}
	e := newTestEngine(src)

	result, err := e.ComputeRanking(context.Background(), "MS")
	require.NoError(t, err)

	require.NotNil(t, result.Diagnostics)
	assert.Equal(t, 0, result.Diagnostics.SeenMatches)
	assert.Equal(t, 1, result.Diagnostics.SimulatedMatches, "Only matching draws feed the simulation")
	assert.Contains(t, result.Diagnostics.UpcomingConsulted, "Upcoming National Open")

	byID := make(map[string]models.EloEntry)
	for _, it := range result.Items {
		byID[it.PlayerID] = it
	}
	assert.Greater(t, byID["p1"].Rating, byID["p2"].Rating,
		"The better seed wins the simulated pairing")
}

func TestPredictTournamentFromListedMatches(t *testing.T) {
	src := singlesUniverse()
	src.tournamentNames["t1"] = "Canadian Championship"
	src.listed["t1"] = []models.ListedMatchRow{
		{Event: "MSA", PlayerAName: "Victor Lai", PlayerBName: "Marc Tremblay"},
		{Event: "WSA", PlayerAName: "Someone Else", PlayerBName: "Another Player"},
	}
	e := newTestEngine(src)

	set, err := e.PredictTournament(context.Background(), "t1", "MS")
	require.NoError(t, err)

	require.Len(t, set.Matchups, 1, "Only the requested category's matches are composed")
	m := set.Matchups[0]
	assert.Equal(t, "p1", m.PlayerAID)
	assert.Equal(t, "p2", m.PlayerBID)
	assert.Equal(t, 100.0, m.K, "Championship tournaments carry the top K factor")
	assert.Equal(t, "MSA", m.Source)
	assert.InDelta(t, 1.0, m.ExpectedA+m.ExpectedB, 1e-9)
	assert.Greater(t, m.ExpectedA, 0.5, "Seed 1 is favored over seed 2")
}

func TestPredictTournamentFallsBackToDraws(t *testing.T) {
	src := singlesUniverse()
	src.tournamentNames["t1"] = "Fall Classic"
	src.draws["t1"] = []models.DrawRow{{Name: "MS - A", URL: "draw-a"}}
	src.participants["draw-a"] = []models.ParticipantRow{
		{PlayerID: "p1", PlayerName: "Lai, Victor"},
		{PlayerID: "p2", PlayerName: "Tremblay, Marc"},
		{PlayerID: "p3", PlayerName: "Singh, Raj"},
		{PlayerName: "Walk-on Wong"},
	}
	e := newTestEngine(src)

	set, err := e.PredictTournament(context.Background(), "t1", "MS")
	require.NoError(t, err)

	require.Len(t, set.Matchups, 2, "Four entrants pair into two matchups")
	// National seed 1 meets the unseeded walk-on; the elite seed 1 sits
	// ahead of national seed 2 and meets them in the second pair.
	assert.Equal(t, "p1", set.Matchups[0].PlayerAID)
	assert.Equal(t, "Walk-on Wong", set.Matchups[0].PlayerBName)
	assert.Empty(t, set.Matchups[0].PlayerBID, "Unresolved entrants keep an empty id")
	assert.Equal(t, "p3", set.Matchups[1].PlayerAID)
	assert.Equal(t, "p2", set.Matchups[1].PlayerBID)
}

func TestPredictPlayerFiltersMatchups(t *testing.T) {
	src := singlesUniverse()
	src.upcomingNational = []models.TournamentRow{{TournamentID: "t1", Name: "Upcoming National"}}
	src.tournamentNames["t1"] = "Upcoming National"
	src.listed["t1"] = []models.ListedMatchRow{
		{Event: "MS", PlayerAName: "Victor Lai", PlayerBName: "Marc Tremblay"},
		{Event: "MS", PlayerAName: "Singh, Raj", PlayerBName: "Marc Tremblay"},
	}
	e := newTestEngine(src)

	set, err := e.PredictPlayer(context.Background(), "p1", "MS")
	require.NoError(t, err)

	require.Len(t, set.Matchups, 1, "Only the player's own matchups are returned")
	assert.Equal(t, "p1", set.Matchups[0].PlayerAID)
	assert.Equal(t, "p1", set.Target)
}

func TestResolveIdentityCachesResults(t *testing.T) {
	src := singlesUniverse()
	src.search["Victor Lai"] = []models.PlayerSearchRow{
		{PlayerID: "p1", FullName: "Victor Lai", Province: "BC"},
	}
	e := newTestEngine(src)

	rows, err := e.ResolveIdentity(context.Background(), "Victor Lai")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].PlayerID)

	callsAfterFirst := src.searchCalls
	rows, err = e.ResolveIdentity(context.Background(), "  Victor Lai ")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, callsAfterFirst, src.searchCalls, "Equivalent queries share one cached result")
}

func TestResolveIdentitySplitsConcatenatedTeams(t *testing.T) {
	src := singlesUniverse()
	src.search["Daniel Leung"] = []models.PlayerSearchRow{{PlayerID: "d1", FullName: "Daniel Leung"}}
	src.search["Timothy Lock"] = []models.PlayerSearchRow{{PlayerID: "d2", FullName: "Timothy Lock"}}
	e := newTestEngine(src)

	rows, err := e.ResolveIdentity(context.Background(), "Daniel LeungTimothy Lock")
	require.NoError(t, err)
	require.Len(t, rows, 2, "Both halves of the team resolve")
	assert.Equal(t, "d1", rows[0].PlayerID)
	assert.Equal(t, "d2", rows[1].PlayerID)
}

func TestResolveIdentityEmptyQuery(t *testing.T) {
	e := newTestEngine(singlesUniverse())
	rows, err := e.ResolveIdentity(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
