package database

import (
	"time"

	"livescore-service/models"
)

// MatchRow is one row of the matches table.
type MatchRow struct {
	ID            string             `db:"id" json:"id"`
	Status        models.MatchStatus `db:"status" json:"status"`
	Clock         *int               `db:"clock" json:"clock,omitempty"`
	HomeScore     int                `db:"home_score" json:"home_score"`
	AwayScore     int                `db:"away_score" json:"away_score"`
	HomeTeamID    *string            `db:"home_team_id" json:"home_team_id,omitempty"`
	AwayTeamID    *string            `db:"away_team_id" json:"away_team_id,omitempty"`
	CompetitionID *string            `db:"competition_id" json:"competition_id,omitempty"`
	StartTime     *time.Time         `db:"start_time" json:"start_time,omitempty"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

// MatchEventRow is one row of the match_events table.
type MatchEventRow struct {
	MatchID string `db:"match_id" json:"match_id"`
	Ordinal int    `db:"ordinal" json:"ordinal"`
	models.SubEvent
}
