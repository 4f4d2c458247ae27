package models

import (
	"strings"
	"time"
)

// RankingRow is one ordered entry of a published ranking list as returned
// by the document source.
type RankingRow struct {
	Rank            int     `json:"rank"`
	PlayerName      string  `json:"player_name"`
	Points          float64 `json:"points"`
	Province        string  `json:"province,omitempty"`
	PlayerID        string  `json:"player_id,omitempty"`
	PartnerName     string  `json:"partner_name,omitempty"`
	PartnerPlayerID string  `json:"partner_player_id,omitempty"`
}

// MatchRow is one head-to-head result reported from a player's page,
// expressed from that player's perspective.
type MatchRow struct {
	TournamentName string `json:"tournament_name"`
	OpponentName   string `json:"opponent_name"`
	ScoreText      string `json:"score_text"`
	Won            bool   `json:"won"`
	Date           string `json:"date,omitempty"`
}

// matchDateFormats covers the date renderings seen on player pages.
var matchDateFormats = []string{"2006-01-02", "02/01/2006", "02-01-2006"}

// When parses the row's date field. The second return is false when the
// row carries no parseable date; such rows are still rated (they are
// treated as always inside the evaluation window).
func (m MatchRow) When() (time.Time, bool) {
	s := strings.TrimSpace(m.Date)
	if s == "" {
		return time.Time{}, false
	}
	if len(s) > 10 {
		s = s[:10]
	}
	for _, layout := range matchDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TournamentRow describes a tournament returned by a search.
type TournamentRow struct {
	TournamentID string   `json:"tournament_id"`
	Name         string   `json:"name"`
	Location     string   `json:"location,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// DrawRow describes one draw of a tournament.
type DrawRow struct {
	Name  string `json:"name"`
	Size  string `json:"size,omitempty"`
	Type  string `json:"type,omitempty"`
	Stage string `json:"stage,omitempty"`
	URL   string `json:"url"`
}

// ParticipantRow is one entrant of a draw. The id is absent when the
// source page carries no player link.
type ParticipantRow struct {
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name"`
}

// ListedMatchRow is an upcoming scheduled match extracted from a
// tournament's match list.
type ListedMatchRow struct {
	Event       string `json:"event"`
	PlayerAName string `json:"player_a_name"`
	PlayerBName string `json:"player_b_name"`
}

// PlayerSearchRow is one hit from the document source's player search.
type PlayerSearchRow struct {
	PlayerID string `json:"player_id"`
	FullName string `json:"full_name"`
	MemberID string `json:"member_id,omitempty"`
	Province string `json:"province,omitempty"`
}
