// Package client talks to the document-source collaborator: the service
// that fetches the remote ranking and tournament pages and converts them
// into structured JSON rows. This package does no HTML parsing itself.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/humatwin/BCR/internal/metrics"
	"github.com/humatwin/BCR/internal/models"
)

// Client is the document-source API client.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a document-source client with connection reuse,
// retries and a bounded request fan-out.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	// Bound concurrent requests so per-player fan-out cannot overload
	// the upstream document source.
	rateLimiter := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		rateLimiter <- struct{}{}
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		rateLimiter: rateLimiter,
		maxRetries:  3,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request with retry logic and rate limiting.
func (c *Client) get(ctx context.Context, path string, params map[string]string) (body []byte, err error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	// Label by the leading path segment so player and tournament ids
	// don't explode the metric cardinality.
	endpoint := path
	if i := strings.IndexByte(path, '/'); i >= 0 {
		endpoint = path[:i]
	}
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.RecordSourceFetch(endpoint, status, time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying source request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		// Rate limiting: acquire semaphore
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.rateLimiter:
		}

		body, status, err := c.doOnce(ctx, url, params)
		c.rateLimiter <- struct{}{}

		if err != nil {
			lastErr = err
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		switch status {
		case http.StatusOK:
			log.Debug().
				Str("url", url).
				Int("size", len(body)).
				Msg("Source request successful")
			return body, nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("source returned retryable status %d: %s", status, string(body))
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", url).
					Int("status", status).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr

		case http.StatusUnauthorized, http.StatusForbidden:
			// Don't retry auth errors
			return nil, fmt.Errorf("source authentication failed (status %d): %s", status, string(body))

		default:
			return nil, fmt.Errorf("source returned status %d: %s", status, string(body))
		}
	}

	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, url string, params map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "bcr-engine/1.0")

	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	log.Debug().
		Str("url", url).
		Str("method", req.Method).
		Msg("Making source request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("source request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// FetchRankings fetches the national ranking list for a category.
func (c *Client) FetchRankings(ctx context.Context, category models.Category) ([]models.RankingRow, error) {
	path := fmt.Sprintf("rankings/%s/national", category)
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch national rankings: %w", err)
	}

	var rows []models.RankingRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal national rankings: %w", err)
	}
	return rows, nil
}

// FetchEliteRankings fetches the provincial elite list for a tier (A, B
// or C) and category.
func (c *Client) FetchEliteRankings(ctx context.Context, tier string, category models.Category, limit int) ([]models.RankingRow, error) {
	path := fmt.Sprintf("rankings/%s/elite/%s", category, tier)
	body, err := c.get(ctx, path, map[string]string{"limit": fmt.Sprintf("%d", limit)})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch elite rankings: %w", err)
	}

	var rows []models.RankingRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal elite rankings: %w", err)
	}
	return rows, nil
}

// FetchPlayerMatches fetches a player's recent match rows.
func (c *Client) FetchPlayerMatches(ctx context.Context, playerID string) ([]models.MatchRow, error) {
	path := fmt.Sprintf("players/%s/matches", playerID)
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player matches: %w", err)
	}

	var rows []models.MatchRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player matches: %w", err)
	}
	return rows, nil
}

// SearchPlayers queries the source's player search.
func (c *Client) SearchPlayers(ctx context.Context, query string, limit int) ([]models.PlayerSearchRow, error) {
	body, err := c.get(ctx, "players/search", map[string]string{
		"q":     query,
		"limit": fmt.Sprintf("%d", limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search players: %w", err)
	}

	var rows []models.PlayerSearchRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player search: %w", err)
	}
	return rows, nil
}

// SearchTournaments queries tournaments by name within a date window.
func (c *Client) SearchTournaments(ctx context.Context, query, from, to string) ([]models.TournamentRow, error) {
	params := map[string]string{"q": query}
	if from != "" {
		params["from"] = from
	}
	if to != "" {
		params["to"] = to
	}
	body, err := c.get(ctx, "tournaments/search", params)
	if err != nil {
		return nil, fmt.Errorf("failed to search tournaments: %w", err)
	}

	var rows []models.TournamentRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tournament search: %w", err)
	}
	return rows, nil
}

// FetchTournamentDraws fetches the draw descriptors of a tournament.
func (c *Client) FetchTournamentDraws(ctx context.Context, tournamentID string) ([]models.DrawRow, error) {
	path := fmt.Sprintf("tournaments/%s/draws", tournamentID)
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tournament draws: %w", err)
	}

	var rows []models.DrawRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tournament draws: %w", err)
	}
	return rows, nil
}

// FetchDrawParticipants fetches the ordered participant list of a draw.
func (c *Client) FetchDrawParticipants(ctx context.Context, drawURL string) ([]models.ParticipantRow, error) {
	body, err := c.get(ctx, "draws/participants", map[string]string{"url": drawURL})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch draw participants: %w", err)
	}

	var rows []models.ParticipantRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draw participants: %w", err)
	}
	return rows, nil
}

// tournamentMatchesResponse mirrors the source's match-list payload.
type tournamentMatchesResponse struct {
	TournamentName string                  `json:"tournament_name"`
	Matches        []models.ListedMatchRow `json:"matches"`
}

// FetchTournamentMatches fetches a tournament's scheduled match list
// along with the tournament's display name.
func (c *Client) FetchTournamentMatches(ctx context.Context, tournamentID string) (string, []models.ListedMatchRow, error) {
	path := fmt.Sprintf("tournaments/%s/matches", tournamentID)
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch tournament matches: %w", err)
	}

	var resp tournamentMatchesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal tournament matches: %w", err)
	}
	return resp.TournamentName, resp.Matches, nil
}
