package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"livescore-service/models"
)

// MatchUpsert carries one merge-upsert against the matches table.
// Nil pointers are "not supplied": those columns are left untouched on
// conflict, so a partial update can never erase a known value.
type MatchUpsert struct {
	ID            string
	Status        *models.MatchStatus
	Clock         *int
	ClearClock    bool // write NULL: the clock is no longer meaningful
	HomeScore     *int
	AwayScore     *int
	HomeTeamID    *string
	AwayTeamID    *string
	CompetitionID *string
	StartTime     *time.Time
}

// MatchStore is the storage collaborator for canonical match state.
type MatchStore struct {
	db *sql.DB
}

func NewMatchStore(db *sql.DB) *MatchStore {
	return &MatchStore{db: db}
}

// UpsertMatch inserts or merges a match row keyed by external ID.
// Only supplied columns appear in the conflict update, which makes the
// call idempotent and safe against races between the push and poll
// paths. updated_at is bumped on every call.
func (s *MatchStore) UpsertMatch(u MatchUpsert) error {
	if u.ID == "" {
		return fmt.Errorf("match id is required")
	}

	cols := []string{"id"}
	vals := []interface{}{u.ID}
	set := []string{}

	add := func(col string, val interface{}) {
		cols = append(cols, col)
		vals = append(vals, val)
		set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	if u.Status != nil {
		add("status", string(*u.Status))
	}
	if u.Clock != nil {
		add("clock", *u.Clock)
	} else if u.ClearClock {
		cols = append(cols, "clock")
		vals = append(vals, nil)
		set = append(set, "clock = NULL")
	}
	if u.HomeScore != nil && *u.HomeScore >= 0 {
		add("home_score", *u.HomeScore)
	}
	if u.AwayScore != nil && *u.AwayScore >= 0 {
		add("away_score", *u.AwayScore)
	}
	if u.HomeTeamID != nil && *u.HomeTeamID != "" {
		add("home_team_id", *u.HomeTeamID)
	}
	if u.AwayTeamID != nil && *u.AwayTeamID != "" {
		add("away_team_id", *u.AwayTeamID)
	}
	if u.CompetitionID != nil && *u.CompetitionID != "" {
		add("competition_id", *u.CompetitionID)
	}
	if u.StartTime != nil && !u.StartTime.IsZero() {
		add("start_time", *u.StartTime)
	}

	placeholders := make([]string, len(vals))
	for i := range vals {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	set = append(set, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf(`
		INSERT INTO matches (%s, updated_at)
		VALUES (%s, CURRENT_TIMESTAMP)
		ON CONFLICT (id)
		DO UPDATE SET %s`,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(set, ", "),
	)

	if _, err := s.db.Exec(query, vals...); err != nil {
		return fmt.Errorf("failed to upsert match %s: %w", u.ID, err)
	}
	return nil
}

// ReplaceEvents atomically swaps the full sub-event snapshot of a
// match: delete-all then insert-all inside one transaction. The feed
// always sends complete snapshots, never deltas, so appending would
// accumulate duplicates. A failed replace rolls back and keeps the
// previous snapshot; the next snapshot repairs any staleness.
func (s *MatchStore) ReplaceEvents(matchID string, events []models.SubEvent) error {
	if matchID == "" {
		return fmt.Errorf("match id is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM match_events WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("failed to delete events for match %s: %w", matchID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO match_events (
			match_id, ordinal, type, time, position,
			player_id, player_name, player2_id, player2_name,
			in_player_id, in_player_name, out_player_id, out_player_name,
			home_score, away_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		if _, err := stmt.Exec(
			matchID, i, e.Type, e.Minute, e.Position,
			e.PlayerID, e.PlayerName, e.Player2ID, e.Player2Name,
			e.InPlayerID, e.InPlayerName, e.OutPlayerID, e.OutPlayerName,
			e.HomeScore, e.AwayScore,
		); err != nil {
			return fmt.Errorf("failed to insert event %d for match %s: %w", i, matchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event replace for match %s: %w", matchID, err)
	}
	return nil
}

// GetMatch loads one match row by ID. Returns (nil, nil) when absent.
func (s *MatchStore) GetMatch(id string) (*MatchRow, error) {
	row := s.db.QueryRow(`
		SELECT id, status, clock, home_score, away_score,
		       home_team_id, away_team_id, competition_id, start_time, updated_at
		FROM matches WHERE id = $1`, id)

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match %s: %w", id, err)
	}
	return m, nil
}

// ListMatchesByDate returns matches starting within the given UTC day.
func (s *MatchStore) ListMatchesByDate(day time.Time) ([]MatchRow, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	rows, err := s.db.Query(`
		SELECT id, status, clock, home_score, away_score,
		       home_team_id, away_team_id, competition_id, start_time, updated_at
		FROM matches
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time, id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []MatchRow
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// GetEvents returns a match's current event snapshot in ordinal order.
func (s *MatchStore) GetEvents(matchID string) ([]MatchEventRow, error) {
	rows, err := s.db.Query(`
		SELECT match_id, ordinal, type, time, position,
		       player_id, player_name, player2_id, player2_name,
		       in_player_id, in_player_name, out_player_id, out_player_name,
		       home_score, away_score
		FROM match_events
		WHERE match_id = $1
		ORDER BY ordinal`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for match %s: %w", matchID, err)
	}
	defer rows.Close()

	var events []MatchEventRow
	for rows.Next() {
		var (
			e MatchEventRow
			playerID, playerName, player2ID, player2Name         sql.NullString
			inPlayerID, inPlayerName, outPlayerID, outPlayerName sql.NullString
		)
		if err := rows.Scan(
			&e.MatchID, &e.Ordinal, &e.Type, &e.Minute, &e.Position,
			&playerID, &playerName, &player2ID, &player2Name,
			&inPlayerID, &inPlayerName, &outPlayerID, &outPlayerName,
			&e.HomeScore, &e.AwayScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.PlayerID = playerID.String
		e.PlayerName = playerName.String
		e.Player2ID = player2ID.String
		e.Player2Name = player2Name.String
		e.InPlayerID = inPlayerID.String
		e.InPlayerName = inPlayerName.String
		e.OutPlayerID = outPlayerID.String
		e.OutPlayerName = outPlayerName.String
		events = append(events, e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(r rowScanner) (*MatchRow, error) {
	var (
		m         MatchRow
		status    string
		clock     sql.NullInt64
		homeTeam  sql.NullString
		awayTeam  sql.NullString
		comp      sql.NullString
		startTime sql.NullTime
	)
	if err := r.Scan(&m.ID, &status, &clock, &m.HomeScore, &m.AwayScore,
		&homeTeam, &awayTeam, &comp, &startTime, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Status = models.MatchStatus(status)
	if clock.Valid {
		v := int(clock.Int64)
		m.Clock = &v
	}
	if homeTeam.Valid {
		m.HomeTeamID = &homeTeam.String
	}
	if awayTeam.Valid {
		m.AwayTeamID = &awayTeam.String
	}
	if comp.Valid {
		m.CompetitionID = &comp.String
	}
	if startTime.Valid {
		m.StartTime = &startTime.Time
	}
	return &m, nil
}
