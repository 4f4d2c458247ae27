package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humatwin/BCR/internal/models"
	"github.com/humatwin/BCR/internal/seeding"
)

type stubRatings map[string]float64

func (s stubRatings) Rating(playerID string) (float64, bool) {
	v, ok := s[playerID]
	return v, ok
}

func testComposerBook() *seeding.Book {
	national := []models.RankingRow{
		{Rank: 1, PlayerID: "p1", PlayerName: "Top Seed"},
		{Rank: 20, PlayerID: "p2", PlayerName: "Mid Seed"},
	}
	return seeding.NewBook(national, nil, nil)
}

func TestComposeExpectationsSumToOne(t *testing.T) {
	c := NewComposer(testComposerBook(), nil)

	m := c.Compose(
		seeding.Entrant{PlayerID: "p1", PlayerName: "Top Seed"},
		seeding.Entrant{PlayerID: "p2", PlayerName: "Mid Seed"},
		"Fall Provincial", "MS Draw",
	)

	assert.InDelta(t, 1.0, m.ExpectedA+m.ExpectedB, 1e-9)
	assert.Greater(t, m.ExpectedA, 0.5, "Seed 1 is favored over seed 20")
}

func TestComposeDeltasAreZeroSum(t *testing.T) {
	c := NewComposer(testComposerBook(), nil)

	m := c.Compose(
		seeding.Entrant{PlayerID: "p1", PlayerName: "Top Seed"},
		seeding.Entrant{PlayerID: "p2", PlayerName: "Mid Seed"},
		"Fall Provincial", "MS Draw",
	)

	assert.InDelta(t, 0.0, m.DeltaAWin+m.DeltaBLoss, 1e-9, "A winning mirrors B losing")
	assert.InDelta(t, 0.0, m.DeltaALoss+m.DeltaBWin, 1e-9, "A losing mirrors B winning")
	assert.Greater(t, m.DeltaAWin, 0.0)
	assert.Less(t, m.DeltaALoss, 0.0)
}

func TestComposeKFollowsTournamentName(t *testing.T) {
	c := NewComposer(testComposerBook(), nil)
	a := seeding.Entrant{PlayerID: "p1", PlayerName: "Top Seed"}
	b := seeding.Entrant{PlayerID: "p2", PlayerName: "Mid Seed"}

	assert.Equal(t, 100.0, c.Compose(a, b, "National Championship Finals", "").K)
	assert.Equal(t, 75.0, c.Compose(a, b, "Canadian Masters", "").K)
	assert.Equal(t, 50.0, c.Compose(a, b, "Club Night", "").K)
}

func TestComposePrefersLiveRatings(t *testing.T) {
	// Live ratings invert the seed order: p2 has overperformed.
	live := stubRatings{"p1": 1400, "p2": 1700}
	c := NewComposer(testComposerBook(), live)

	m := c.Compose(
		seeding.Entrant{PlayerID: "p1", PlayerName: "Top Seed"},
		seeding.Entrant{PlayerID: "p2", PlayerName: "Mid Seed"},
		"Fall Provincial", "",
	)
	assert.Less(t, m.ExpectedA, 0.5, "Live ratings override the seed prior")
}

func TestComposeFallsBackToSeedPrior(t *testing.T) {
	live := stubRatings{"p1": 1400} // p2 absent from the computation
	c := NewComposer(testComposerBook(), live)

	m := c.Compose(
		seeding.Entrant{PlayerID: "p1", PlayerName: "Top Seed"},
		seeding.Entrant{PlayerID: "p2", PlayerName: "Mid Seed"},
		"Fall Provincial", "",
	)
	// p2's prior is 2000 - 20*5 = 1900, well above p1's live 1400.
	assert.Less(t, m.ExpectedA, 0.5)

	m = c.Compose(
		seeding.Entrant{PlayerName: "Complete Unknown"},
		seeding.Entrant{PlayerName: "Another Unknown"},
		"Fall Provincial", "",
	)
	assert.InDelta(t, 0.5, m.ExpectedA, 1e-9, "Two unknowns meet at the neutral prior")
	require.Empty(t, m.PlayerAID)
}

func TestComposeRecordsProvenance(t *testing.T) {
	c := NewComposer(testComposerBook(), nil)

	m := c.Compose(
		seeding.Entrant{PlayerID: "p1", PlayerName: "Top Seed"},
		seeding.Entrant{PlayerID: "p2", PlayerName: "Mid Seed"},
		"Fall Provincial", "MS - Main Draw",
	)
	assert.Equal(t, "Fall Provincial", m.TournamentName)
	assert.Equal(t, "MS - Main Draw", m.Source)
}
