package identity

import (
	"github.com/humatwin/BCR/internal/models"
)

// Identity is the canonical representation of one player.
type Identity struct {
	PlayerID    string
	DisplayName string
}

// Resolver maps explicit source ids and raw name strings onto known
// identities. The reverse index is built from every ranking entry that
// carries an id; a failed lookup is not an error — the player is simply
// untracked and stays out of the rating graph.
type Resolver struct {
	byID  map[string]Identity
	byKey map[string]string // normalized name key -> player id
	order []string          // ids in discovery order
}

// NewResolver builds an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		byID:  make(map[string]Identity),
		byKey: make(map[string]string),
	}
}

// Index adds one ranking row to the reverse index. Rows without an id
// are skipped; partner columns on doubles rows are indexed as their own
// players when they carry an id.
func (r *Resolver) Index(row models.RankingRow) {
	r.add(row.PlayerID, row.PlayerName)
	r.add(row.PartnerPlayerID, row.PartnerName)
}

func (r *Resolver) add(id, name string) {
	if id == "" || name == "" {
		return
	}
	if _, ok := r.byID[id]; !ok {
		r.byID[id] = Identity{PlayerID: id, DisplayName: name}
		r.order = append(r.order, id)
	}
	if key := Normalize(name); key != "" {
		r.byKey[key] = id
	}
	if alt, ok := AlternateKey(name); ok {
		r.byKey[alt] = id
	}
}

// Resolve finds the identity for a participant. An explicit id wins;
// otherwise the normalized name key is looked up. The second return is
// false for an unresolved participant.
func (r *Resolver) Resolve(name, explicitID string) (Identity, bool) {
	if explicitID != "" {
		if id, ok := r.byID[explicitID]; ok {
			return id, true
		}
		// Known id but never seen in a ranking list: still canonical.
		return Identity{PlayerID: explicitID, DisplayName: name}, true
	}
	return r.LookupName(name)
}

// LookupName resolves a raw display name through the reverse index.
func (r *Resolver) LookupName(name string) (Identity, bool) {
	key := Normalize(name)
	if key == "" {
		return Identity{DisplayName: name}, false
	}
	if pid, ok := r.byKey[key]; ok {
		return r.byID[pid], true
	}
	return Identity{DisplayName: name}, false
}

// Lookup returns the identity for a known player id.
func (r *Resolver) Lookup(id string) (Identity, bool) {
	ident, ok := r.byID[id]
	return ident, ok
}

// IDs returns every indexed player id in discovery order. Rating
// updates are path-dependent, so iteration must be reproducible.
func (r *Resolver) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Size reports how many distinct identities are indexed.
func (r *Resolver) Size() int {
	return len(r.byID)
}
