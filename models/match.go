package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusPlayed    MatchStatus = "played"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// Match is one fixture of the bracket. (Round, Slot) is the stable bracket
// coordinate; a side team is nil while the match waits for a feeder winner.
type Match struct {
	ID    int64 `json:"id"`
	Round Round `json:"round"`
	Slot  int   `json:"slot"`

	HomeTeamID *int64 `json:"home_team_id,omitempty"`
	AwayTeamID *int64 `json:"away_team_id,omitempty"`

	KickoffTime *time.Time `json:"kickoff_time,omitempty"`
	RefereeID   *int64     `json:"referee_id,omitempty"`

	HomeScore     *int `json:"home_score,omitempty"`
	AwayScore     *int `json:"away_score,omitempty"`
	HomePenalties *int `json:"home_penalties,omitempty"`
	AwayPenalties *int `json:"away_penalties,omitempty"`

	WinnerTeamID *int64      `json:"winner_team_id,omitempty"`
	Status       MatchStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// HasBothTeams reports whether the fixture is complete enough to be played.
func (m *Match) HasBothTeams() bool {
	return m.HomeTeamID != nil && m.AwayTeamID != nil
}

func (m *Match) IsPlayed() bool {
	return m.Status == MatchStatusPlayed
}
