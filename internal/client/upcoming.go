package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/humatwin/BCR/internal/models"
)

// SeasonRange returns the current badminton season bounds as YYYY-MM-DD
// strings. The season runs July 1 through June 30.
func SeasonRange(now time.Time) (start, end string) {
	startYear := now.Year()
	if now.Month() < time.July {
		startYear--
	}
	return fmt.Sprintf("%d-07-01", startYear), fmt.Sprintf("%d-06-30", startYear+1)
}

// nationalQueries and eliteQueries are the search terms that surface
// each tier's tournaments on the document source.
var (
	nationalQueries = []string{"National", "Nationaux", "Canadian", "Canada"}
	eliteQueries    = []string{"ABC Quebec", "ABC Québec", "ABC"}
)

// FetchUpcomingNationalTournaments returns the nearest upcoming
// national-tier tournaments, deduplicated across search terms.
func (c *Client) FetchUpcomingNationalTournaments(ctx context.Context, now time.Time, limit int) ([]models.TournamentRow, error) {
	return c.fetchUpcoming(ctx, now, limit, nationalQueries, nil)
}

// FetchUpcomingEliteTournaments returns the nearest upcoming
// provincial elite-circuit tournaments. The bare "ABC" term matches
// historical noise, so hits from it are kept only when the location
// looks like Quebec.
func (c *Client) FetchUpcomingEliteTournaments(ctx context.Context, now time.Time, limit int) ([]models.TournamentRow, error) {
	return c.fetchUpcoming(ctx, now, limit, eliteQueries, func(query string, t models.TournamentRow) bool {
		if query != "ABC" {
			return true
		}
		loc := strings.ToLower(t.Location)
		return strings.Contains(loc, "quebec") || strings.Contains(loc, "québec") || strings.Contains(loc, "qc")
	})
}

func (c *Client) fetchUpcoming(ctx context.Context, now time.Time, limit int, queries []string, keep func(string, models.TournamentRow) bool) ([]models.TournamentRow, error) {
	today := now.Format("2006-01-02")
	seasonStart, seasonEnd := SeasonRange(now)

	var out []models.TournamentRow
	seen := make(map[string]struct{})
	var lastErr error

	for _, q := range queries {
		rows, err := c.SearchTournaments(ctx, q, seasonStart, seasonEnd)
		if err != nil {
			// One failed term degrades the result, it does not abort it.
			lastErr = err
			continue
		}
		for _, t := range rows {
			if _, dup := seen[t.TournamentID]; dup {
				continue
			}
			start := t.StartDate
			if len(start) > 10 {
				start = start[:10]
			}
			if start == "" || start < today {
				continue
			}
			if keep != nil && !keep(q, t) {
				continue
			}
			seen[t.TournamentID] = struct{}{}
			out = append(out, t)
			if len(out) >= limit {
				return out, nil
			}
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}
