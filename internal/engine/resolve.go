package engine

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/humatwin/BCR/internal/identity"
	"github.com/humatwin/BCR/internal/metrics"
	"github.com/humatwin/BCR/internal/models"
)

const searchLimit = 25

// ResolveIdentity searches the document source for players matching a
// free-form name and returns candidate identities. Concatenated doubles
// team names that return no direct hit are split and both halves
// searched. Results are memoized per normalized query.
func (e *Engine) ResolveIdentity(ctx context.Context, name string) ([]models.PlayerSearchRow, error) {
	query := strings.TrimSpace(name)
	if query == "" {
		return nil, nil
	}

	key := "search:" + identity.Normalize(query)
	if raw, ok, err := e.store.Get(ctx, key); err == nil && ok {
		var cached []models.PlayerSearchRow
		if err := json.Unmarshal(raw, &cached); err == nil {
			metrics.RecordCacheHit()
			return cached, nil
		}
	} else if err == nil {
		metrics.RecordCacheMiss()
	}

	rows, err := e.src.SearchPlayers(ctx, query, searchLimit)
	if err != nil {
		metrics.RecordFetchFailure()
		return nil, err
	}

	if len(rows) == 0 {
		if left, right, ok := identity.SplitConcatenated(query); ok {
			log.Debug().Str("query", query).Str("left", left).Str("right", right).Msg("No direct hits, searching split team name")
			rows = e.searchBoth(ctx, left, right)
		}
	}

	if raw, err := json.Marshal(rows); err == nil {
		if err := e.store.Set(ctx, key, raw); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to cache search result")
		}
	}
	return rows, nil
}

// searchBoth queries both halves of a split team name and merges the
// hits, deduplicating by player id. Per-half failures degrade to an
// empty half rather than failing the resolution.
func (e *Engine) searchBoth(ctx context.Context, left, right string) []models.PlayerSearchRow {
	var out []models.PlayerSearchRow
	seen := make(map[string]bool)
	for _, half := range []string{left, right} {
		rows, err := e.src.SearchPlayers(ctx, half, searchLimit)
		if err != nil {
			metrics.RecordFetchFailure()
			log.Warn().Err(err).Str("query", half).Msg("Split-name search failed")
			continue
		}
		for _, r := range rows {
			if seen[r.PlayerID] {
				continue
			}
			seen[r.PlayerID] = true
			out = append(out, r)
		}
	}
	return out
}
