// Package seeding orders a player universe by known rank and produces
// bracket-style first-round pairings for draws without match history.
package seeding

import (
	"sort"

	"github.com/humatwin/BCR/internal/identity"
	"github.com/humatwin/BCR/internal/models"
)

// Seed rating bounds. Seed 1 maps to the ceiling and each further seed
// costs ratingPerSeed points, clamped to the floor; unseeded entrants
// get the neutral prior.
const (
	ratingCeiling = 2000.0
	ratingFloor   = 1200.0
	ratingPerSeed = 5.0
	neutralRating = 1500.0
)

// Seed is the presumed strength of an entrant: a known rank from one of
// the ranking lists, or explicitly unseeded. The tag prevents numeric
// comparisons against a sentinel from silently succeeding.
type Seed struct {
	rank   int
	seeded bool
}

// Seeded wraps a known 1-based ranking position.
func Seeded(rank int) Seed { return Seed{rank: rank, seeded: true} }

// Unseeded marks an entrant with no known position in either list.
func Unseeded() Seed { return Seed{} }

// Rank returns the position and whether the entrant is seeded at all.
func (s Seed) Rank() (int, bool) { return s.rank, s.seeded }

// Better reports whether s outranks o. Every seeded entrant outranks
// every unseeded one; between seeds, lower rank wins.
func (s Seed) Better(o Seed) bool {
	switch {
	case s.seeded && !o.seeded:
		return true
	case !s.seeded:
		return false
	default:
		return s.rank < o.rank
	}
}

// BetterOrEqual is Better with ties kept on the receiver's side, which
// is how the fallback simulation breaks equal seeds.
func (s Seed) BetterOrEqual(o Seed) bool {
	return !o.Better(s)
}

// Rating maps a seed onto a prior Elo rating.
func (s Seed) Rating() float64 {
	if !s.seeded || s.rank <= 0 {
		return neutralRating
	}
	r := ratingCeiling - float64(s.rank)*ratingPerSeed
	if r < ratingFloor {
		return ratingFloor
	}
	if r > ratingCeiling {
		return ratingCeiling
	}
	return r
}

// Entrant is one draw participant, possibly without a resolved id.
type Entrant struct {
	PlayerID   string
	PlayerName string
}

// Pair is a first-round matchup.
type Pair struct {
	A Entrant
	B Entrant
}

// Book resolves entrants to seeds. The higher-tier (national) list wins
// over the lower-tier elite list; a raw name is pushed through the
// resolver before giving up.
type Book struct {
	national map[string]int
	elite    map[string]int
	resolver *identity.Resolver
}

// NewBook indexes both ranking lists by player id.
func NewBook(national, elite []models.RankingRow, resolver *identity.Resolver) *Book {
	b := &Book{
		national: make(map[string]int, len(national)),
		elite:    make(map[string]int, len(elite)),
		resolver: resolver,
	}
	for _, r := range national {
		if r.PlayerID != "" {
			b.national[r.PlayerID] = r.Rank
		}
	}
	for _, r := range elite {
		if r.PlayerID != "" {
			b.elite[r.PlayerID] = r.Rank
		}
	}
	return b
}

// SeedFor resolves one entrant's seed: national position, then elite
// position, then the same chain after a name lookup, else unseeded.
func (b *Book) SeedFor(playerID, playerName string) Seed {
	if s, ok := b.seedByID(playerID); ok {
		return s
	}
	if b.resolver != nil {
		if ident, ok := b.resolver.LookupName(playerName); ok {
			if s, ok := b.seedByID(ident.PlayerID); ok {
				return s
			}
		}
	}
	return Unseeded()
}

func (b *Book) seedByID(playerID string) (Seed, bool) {
	if playerID == "" {
		return Unseeded(), false
	}
	if rank, ok := b.national[playerID]; ok {
		return Seeded(rank), true
	}
	if rank, ok := b.elite[playerID]; ok {
		return Seeded(rank), true
	}
	return Unseeded(), false
}

// PairField sorts the entrants by seed and pairs top against bottom:
// index i meets index n-1-i until the pointers cross. For an odd field
// the single middle entrant is returned as leftover rather than being
// silently dropped; no bye advance is modeled.
func (b *Book) PairField(entrants []Entrant) (pairs []Pair, leftover *Entrant) {
	ordered := make([]Entrant, len(entrants))
	copy(ordered, entrants)
	sort.SliceStable(ordered, func(i, j int) bool {
		return b.SeedFor(ordered[i].PlayerID, ordered[i].PlayerName).
			Better(b.SeedFor(ordered[j].PlayerID, ordered[j].PlayerName))
	})

	i, j := 0, len(ordered)-1
	for i < j {
		pairs = append(pairs, Pair{A: ordered[i], B: ordered[j]})
		i++
		j--
	}
	if i == j {
		mid := ordered[i]
		leftover = &mid
	}
	return pairs, leftover
}
