package thesports

import "encoding/json"

// Team is a raw team record from the reference list endpoint.
type Team struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Logo      string `json:"logo"`
	CountryID string `json:"country_id"`
}

// Competition is a raw competition record.
type Competition struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Logo      string `json:"logo"`
	CountryID string `json:"country_id"`
}

// Country is a raw country record.
type Country struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Logo      string `json:"logo"`
}

// DiaryMatch is one row of the per-date match listing.
type DiaryMatch struct {
	ID            string `json:"id"`
	CompetitionID string `json:"competition_id"`
	HomeTeamID    string `json:"home_team_id"`
	AwayTeamID    string `json:"away_team_id"`
	StatusID      int    `json:"status_id"`
	MatchTime     int64  `json:"match_time"` // unix seconds
	HomeScores    []int  `json:"home_scores"`
	AwayScores    []int  `json:"away_scores"`
}

// CurrentHomeScore returns the current home score (first element of
// the score array; later elements carry per-period detail).
func (m *DiaryMatch) CurrentHomeScore() int {
	if len(m.HomeScores) > 0 {
		return m.HomeScores[0]
	}
	return 0
}

// CurrentAwayScore returns the current away score.
func (m *DiaryMatch) CurrentAwayScore() int {
	if len(m.AwayScores) > 0 {
		return m.AwayScores[0]
	}
	return 0
}

// PushUnit is one unit of a push-feed payload. The state fragment
// arrives either as the nested score array or as flat fields,
// depending on the message variant; incidents, when present, are
// always the match's complete current snapshot.
type PushUnit struct {
	ID    string          `json:"id"`
	Score json.RawMessage `json:"score,omitempty"`

	// Flat variant
	StatusID  *int            `json:"status_id,omitempty"`
	HomeScore *int            `json:"home_score,omitempty"`
	AwayScore *int            `json:"away_score,omitempty"`
	Minute    json.RawMessage `json:"minute,omitempty"`

	HomeTeamID    string `json:"home_team_id,omitempty"`
	AwayTeamID    string `json:"away_team_id,omitempty"`
	CompetitionID string `json:"competition_id,omitempty"`

	Incidents []PushIncident `json:"incidents,omitempty"`
}

// PushIncident is one raw sub-event entry of a push snapshot.
type PushIncident struct {
	Type          int    `json:"type"`
	Time          int    `json:"time"`
	Position      int    `json:"position"`
	PlayerID      string `json:"player_id"`
	PlayerName    string `json:"player_name"`
	Player2ID     string `json:"player2_id"`
	Player2Name   string `json:"player2_name"`
	InPlayerID    string `json:"in_player_id"`
	InPlayerName  string `json:"in_player_name"`
	OutPlayerID   string `json:"out_player_id"`
	OutPlayerName string `json:"out_player_name"`
	HomeScore     int    `json:"home_score"`
	AwayScore     int    `json:"away_score"`
}

// ScorePayload is the decoded nested score array:
// [matchId, statusCode, homeScores[], awayScores[], clockRaw, extra].
type ScorePayload struct {
	MatchID    string
	StatusID   int
	HomeScores []int
	AwayScores []int
	ClockRaw   json.RawMessage
}
