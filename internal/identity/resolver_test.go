package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humatwin/BCR/internal/models"
)

func newTestResolver() *Resolver {
	r := NewResolver()
	r.Index(models.RankingRow{Rank: 1, PlayerID: "p100", PlayerName: "Lai, Victor"})
	r.Index(models.RankingRow{Rank: 2, PlayerID: "p200", PlayerName: "Geneviève Côté"})
	r.Index(models.RankingRow{
		Rank: 3,
		PlayerID: "p300", PlayerName: "Daniel Leung",
		PartnerPlayerID: "p400", PartnerName: "Timothy Lock",
	})
	return r
}

func TestResolverLookupNameAcrossRenderings(t *testing.T) {
	r := newTestResolver()

	for _, name := range []string{"Victor Lai", "Lai, Victor", "lai victor", "LAI, VICTOR"} {
		ident, ok := r.LookupName(name)
		require.True(t, ok, "Should resolve %q", name)
		assert.Equal(t, "p100", ident.PlayerID)
		assert.Equal(t, "Lai, Victor", ident.DisplayName, "Display name stays as first indexed")
	}

	ident, ok := r.LookupName("Genevieve Cote")
	require.True(t, ok, "Accent-less rendering should resolve")
	assert.Equal(t, "p200", ident.PlayerID)
}

func TestResolverIndexesPartners(t *testing.T) {
	r := newTestResolver()

	ident, ok := r.LookupName("Timothy Lock")
	require.True(t, ok, "Doubles partners are indexed as their own players")
	assert.Equal(t, "p400", ident.PlayerID)
}

func TestResolverExplicitIDWins(t *testing.T) {
	r := newTestResolver()

	ident, ok := r.Resolve("Completely Different Name", "p100")
	require.True(t, ok)
	assert.Equal(t, "p100", ident.PlayerID, "An explicit id beats the name lookup")

	ident, ok = r.Resolve("Unknown Player", "p999")
	require.True(t, ok, "An explicit id is canonical even when unindexed")
	assert.Equal(t, "p999", ident.PlayerID)
	assert.Equal(t, "Unknown Player", ident.DisplayName)
}

func TestResolverUnknownName(t *testing.T) {
	r := newTestResolver()

	_, ok := r.Resolve("Nobody Here", "")
	assert.False(t, ok, "Unresolved participants are untracked, not errors")
}

func TestResolverDiscoveryOrder(t *testing.T) {
	r := newTestResolver()

	assert.Equal(t, []string{"p100", "p200", "p300", "p400"}, r.IDs(),
		"IDs must come back in discovery order")
	assert.Equal(t, 4, r.Size())

	// Re-indexing the same player must not duplicate or reorder.
	r.Index(models.RankingRow{Rank: 9, PlayerID: "p100", PlayerName: "Victor Lai"})
	assert.Equal(t, []string{"p100", "p200", "p300", "p400"}, r.IDs())
}

func TestResolverSkipsRowsWithoutID(t *testing.T) {
	r := NewResolver()
	r.Index(models.RankingRow{Rank: 1, PlayerName: "No Id Here"})
	assert.Equal(t, 0, r.Size())
}
