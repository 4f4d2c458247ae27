package elo

import (
	"sort"
	"strings"
	"time"
)

// Window is the trailing evaluation window for real matches.
const Window = 52 * 7 * 24 * time.Hour

// Match is one head-to-head result expressed from the reporting
// player's perspective. Dated is false when the source row carried no
// parseable date; such matches are treated as always in-window.
type Match struct {
	PlayerID   string
	OpponentID string
	Won        bool
	Tournament string
	Score      string
	Date       time.Time
	Dated      bool
}

// Aggregate is the per-player state after a computation.
type Aggregate struct {
	Rating          float64
	CumulativeDelta float64
	Matches         int
	Tournaments     int
}

// Engine accumulates zero-sum Elo updates over a fixed player universe.
// The same real match reported from either player's perspective is
// counted once, keyed by the sorted pair plus tournament, date and
// score.
type Engine struct {
	cutoff      time.Time
	ratings     map[string]float64
	deltas      map[string]float64
	matches     map[string]int
	tournaments map[string]map[string]struct{}
	seen        map[string]struct{}
	applied     int
	simulated   int
}

// NewEngine initializes every player in the universe at the neutral
// prior. The window cutoff is anchored at now.
func NewEngine(playerIDs []string, now time.Time) *Engine {
	e := &Engine{
		cutoff:      now.Add(-Window),
		ratings:     make(map[string]float64, len(playerIDs)),
		deltas:      make(map[string]float64, len(playerIDs)),
		matches:     make(map[string]int, len(playerIDs)),
		tournaments: make(map[string]map[string]struct{}, len(playerIDs)),
		seen:        make(map[string]struct{}),
	}
	for _, id := range playerIDs {
		if _, ok := e.ratings[id]; ok {
			continue
		}
		e.ratings[id] = InitialRating
		e.tournaments[id] = make(map[string]struct{})
	}
	return e
}

// Rating returns the live rating for a tracked player.
func (e *Engine) Rating(playerID string) (float64, bool) {
	r, ok := e.ratings[playerID]
	return r, ok
}

// Applied reports how many real matches updated the ratings.
func (e *Engine) Applied() int { return e.applied }

// Simulated reports how many synthetic results updated the ratings.
func (e *Engine) Simulated() int { return e.simulated }

// ApplyAll rates a batch of real matches. Updates are path-dependent,
// so the batch is ordered ascending by date first; undated matches keep
// their discovery position (stable sort). Returns the number applied.
func (e *Engine) ApplyAll(batch []Match) int {
	ordered := make([]Match, len(batch))
	copy(ordered, batch)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Dated || !ordered[j].Dated {
			return false
		}
		return ordered[i].Date.Before(ordered[j].Date)
	})

	n := 0
	for _, m := range ordered {
		if e.Apply(m) {
			n++
		}
	}
	return n
}

// Apply rates one real match. It returns false when the match is a
// duplicate, outside the window, or involves an untracked or identical
// pair.
func (e *Engine) Apply(m Match) bool {
	if m.PlayerID == m.OpponentID {
		return false
	}
	if _, ok := e.ratings[m.PlayerID]; !ok {
		return false
	}
	if _, ok := e.ratings[m.OpponentID]; !ok {
		return false
	}
	if m.Dated && m.Date.Before(e.cutoff) {
		return false
	}

	// Canonical ordering makes the dedupe key and the result direction
	// independent of which side reported the match.
	a, b := m.PlayerID, m.OpponentID
	aWon := m.Won
	if b < a {
		a, b = b, a
		aWon = !aWon
	}
	date := ""
	if m.Dated {
		date = m.Date.Format("2006-01-02")
	}
	key := strings.Join([]string{a, b, m.Tournament, date, m.Score}, "|")
	if _, dup := e.seen[key]; dup {
		return false
	}
	e.seen[key] = struct{}{}

	e.update(a, b, aWon, KFactor(m.Tournament), m.Tournament)
	e.applied++
	return true
}

// Simulate rates one synthetic result from the fallback pipeline. The
// winner is decided by seeding, not play, so no dedupe key applies; the
// caller is responsible for feeding each pairing once.
func (e *Engine) Simulate(playerA, playerB string, aWon bool, tournamentName string) bool {
	if playerA == playerB {
		return false
	}
	if _, ok := e.ratings[playerA]; !ok {
		return false
	}
	if _, ok := e.ratings[playerB]; !ok {
		return false
	}
	e.update(playerA, playerB, aWon, KFactor(tournamentName), tournamentName)
	e.simulated++
	return true
}

func (e *Engine) update(a, b string, aWon bool, k float64, tournament string) {
	expected := Expected(e.ratings[a], e.ratings[b])
	result := 0.0
	if aWon {
		result = 1.0
	}
	deltaA := k * (result - expected)

	e.ratings[a] += deltaA
	e.ratings[b] -= deltaA
	e.deltas[a] += deltaA
	e.deltas[b] -= deltaA
	e.matches[a]++
	e.matches[b]++
	if tournament != "" {
		e.tournaments[a][tournament] = struct{}{}
		e.tournaments[b][tournament] = struct{}{}
	}
}

// AggregateFor returns the accumulated state for one player.
func (e *Engine) AggregateFor(playerID string) (Aggregate, bool) {
	r, ok := e.ratings[playerID]
	if !ok {
		return Aggregate{}, false
	}
	return Aggregate{
		Rating:          r,
		CumulativeDelta: e.deltas[playerID],
		Matches:         e.matches[playerID],
		Tournaments:     len(e.tournaments[playerID]),
	}, true
}
