package models

import "time"

// MatchStatus is the canonical match state stored in the database.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "scheduled"
	StatusLive      MatchStatus = "live"
	StatusHalftime  MatchStatus = "halftime"
	StatusFinished  MatchStatus = "finished"
	StatusPostponed MatchStatus = "postponed"
	StatusSuspended MatchStatus = "suspended"
	StatusCancelled MatchStatus = "cancelled"
)

// Upstream numeric status codes (TheSports football status_id).
const (
	CodeNotStarted   = 1
	CodeFirstHalf    = 2
	CodeHalftime     = 3
	CodeSecondHalf   = 4
	CodeOvertime     = 5
	CodeOvertimeHalf = 6
	CodePenalty      = 7
	CodeEnded        = 8
	CodeDelayed      = 9
	CodeInterrupted  = 10
	CodeCutInHalf    = 11
	CodeCancelled    = 12
	CodeToBeDecided  = 13
)

// StatusFromCode maps an upstream status code to the canonical enum.
// Unknown codes are treated as in-play: the upstream keeps adding
// in-play sub-states and none of them should crash ingestion.
func StatusFromCode(code int) MatchStatus {
	switch code {
	case CodeNotStarted, CodeToBeDecided:
		return StatusScheduled
	case CodeFirstHalf, CodeSecondHalf, CodeOvertime, CodeOvertimeHalf, CodePenalty, CodeCutInHalf:
		return StatusLive
	case CodeHalftime:
		return StatusHalftime
	case CodeEnded:
		return StatusFinished
	case CodeDelayed:
		return StatusPostponed
	case CodeInterrupted:
		return StatusSuspended
	case CodeCancelled:
		return StatusCancelled
	default:
		return StatusLive
	}
}

// ClockOffset returns the per-period minute offset for a status code.
// The upstream clock restarts each period; second half values are
// offset by 45 and extra-time/penalty values by 90.
func ClockOffset(code int) int {
	switch code {
	case CodeSecondHalf:
		return 45
	case CodeOvertime, CodeOvertimeHalf, CodePenalty:
		return 90
	default:
		return 0
	}
}

// ClockRunning reports whether a match minute is meaningful for the
// given status code. Outside these codes the clock is stored as NULL.
func ClockRunning(code int) bool {
	switch code {
	case CodeFirstHalf, CodeSecondHalf, CodeOvertime, CodeOvertimeHalf, CodePenalty:
		return true
	}
	return false
}

// Sub-event type codes (TheSports incident types).
const (
	EventGoal          = 1
	EventYellowCard    = 3
	EventRedCard       = 4
	EventPenaltyGoal   = 8
	EventSubstitution  = 9
	EventPenaltyMissed = 16
	EventOwnGoal       = 17
	EventVARReview     = 28
)

// IsGoalEvent reports whether an event type changes the score.
func IsGoalEvent(eventType int) bool {
	switch eventType {
	case EventGoal, EventPenaltyGoal, EventOwnGoal:
		return true
	}
	return false
}

// StateFragment is a partial match-state update decoded from either
// the push feed or the polled diary. Nil pointers mean "not supplied";
// the store never overwrites a known value with an absent one.
type StateFragment struct {
	StatusCode    *int
	HomeScore     *int
	AwayScore     *int
	Clock         *int // already offset-adjusted match minute
	ClearClock    bool // explicitly null the clock (halftime, finished, ...)
	HomeTeamID    string
	AwayTeamID    string
	CompetitionID string
	StartTime     *time.Time
}

// SubEvent is one entry of a match's full event snapshot.
type SubEvent struct {
	Type          int    `json:"type"`
	Minute        int    `json:"time"`
	Position      int    `json:"position"`
	PlayerID      string `json:"player_id,omitempty"`
	PlayerName    string `json:"player_name,omitempty"`
	Player2ID     string `json:"player2_id,omitempty"`
	Player2Name   string `json:"player2_name,omitempty"`
	InPlayerID    string `json:"in_player_id,omitempty"`
	InPlayerName  string `json:"in_player_name,omitempty"`
	OutPlayerID   string `json:"out_player_id,omitempty"`
	OutPlayerName string `json:"out_player_name,omitempty"`
	HomeScore     int    `json:"home_score"`
	AwayScore     int    `json:"away_score"`
}
