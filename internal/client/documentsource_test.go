package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	c := NewClient(baseURL, "test-key", 5*time.Second)
	c.retryDelay = time.Millisecond
	return c
}

func TestFetchRankingsSendsAuthHeaders(t *testing.T) {
	var gotPath, gotKey, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`[{"rank":1,"player_name":"Lai, Victor","points":1200,"player_id":"p1"}]`))
	}))
	defer srv.Close()

	rows, err := newTestClient(srv.URL).FetchRankings(context.Background(), "MS")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].PlayerID)
	assert.Equal(t, "/rankings/MS/national", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "application/json", gotAccept)
}

func TestGetRetriesRetryableStatuses(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchPlayerMatches(context.Background(), "p1")
	require.NoError(t, err, "Transient 503s should be retried away")
	assert.Equal(t, 3, attempts)
}

func TestGetDoesNotRetryAuthFailures(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchRankings(context.Background(), "MS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
	assert.Equal(t, 1, attempts, "Auth errors must not be retried")
}

func TestFetchTournamentMatchesUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tournaments/t1/matches", r.URL.Path)
		w.Write([]byte(`{
			"tournament_name": "Fall Classic",
			"matches": [{"event":"MSA","player_a_name":"A","player_b_name":"B"}]
		}`))
	}))
	defer srv.Close()

	name, matches, err := newTestClient(srv.URL).FetchTournamentMatches(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Fall Classic", name)
	require.Len(t, matches, 1)
	assert.Equal(t, "MSA", matches[0].Event)
}

func TestSearchPlayersQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/players/search", r.URL.Path)
		assert.Equal(t, "Victor Lai", r.URL.Query().Get("q"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"player_id":"p1","full_name":"Victor Lai"}]`))
	}))
	defer srv.Close()

	rows, err := newTestClient(srv.URL).SearchPlayers(context.Background(), "Victor Lai", 25)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestSeasonRange(t *testing.T) {
	start, end := SeasonRange(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-07-01", start, "Spring dates belong to the season that started last July")
	assert.Equal(t, "2026-06-30", end)

	start, end = SeasonRange(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-07-01", start)
	assert.Equal(t, "2027-06-30", end)
}

func TestFetchUpcomingFiltersAndDeduplicates(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tournaments/search", r.URL.Path)
		// Every search term sees the same three tournaments: one past,
		// two upcoming.
		w.Write([]byte(`[
			{"tournament_id":"past","name":"Old National","start_date":"2026-01-10"},
			{"tournament_id":"t1","name":"Spring Nationals","start_date":"2026-04-01"},
			{"tournament_id":"t2","name":"Canada Cup","start_date":"2026-05-12"}
		]`))
	}))
	defer srv.Close()

	rows, err := newTestClient(srv.URL).FetchUpcomingNationalTournaments(context.Background(), now, 5)
	require.NoError(t, err)
	require.Len(t, rows, 2, "Past tournaments are dropped, repeats deduplicated")
	assert.Equal(t, "t1", rows[0].TournamentID)
	assert.Equal(t, "t2", rows[1].TournamentID)
}

func TestFetchUpcomingEliteKeepsBareABCOnlyInQuebec(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "ABC" {
			w.Write([]byte(`[
				{"tournament_id":"qc","name":"ABC Etape 3","location":"Montréal, QC","start_date":"2026-04-20"},
				{"tournament_id":"on","name":"ABC Juniors","location":"Toronto, ON","start_date":"2026-04-22"}
			]`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	rows, err := newTestClient(srv.URL).FetchUpcomingEliteTournaments(context.Background(), now, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "qc", rows[0].TournamentID, "Bare ABC hits outside Quebec are noise")
}
