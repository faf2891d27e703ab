package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect opens and verifies the Postgres connection.
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// Migrate creates the schema if it does not exist yet.
func Migrate(db *sql.DB) error {
	migrations := []string{
		// Canonical match state, one row per external match ID.
		// Both the push and poll paths merge-upsert into this table.
		`CREATE TABLE IF NOT EXISTS matches (
			id VARCHAR(100) PRIMARY KEY,
			status VARCHAR(20) NOT NULL DEFAULT 'scheduled',
			clock INTEGER,
			home_score INTEGER NOT NULL DEFAULT 0,
			away_score INTEGER NOT NULL DEFAULT 0,
			home_team_id VARCHAR(100),
			away_team_id VARCHAR(100),
			competition_id VARCHAR(100),
			start_time TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_competition_id ON matches(competition_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_start_time ON matches(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status)`,

		// Full sub-event snapshot per match, replaced wholesale on
		// every push update that carries events.
		`CREATE TABLE IF NOT EXISTS match_events (
			match_id VARCHAR(100) NOT NULL,
			ordinal INTEGER NOT NULL,
			type INTEGER NOT NULL,
			time INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL DEFAULT 0,
			player_id VARCHAR(100),
			player_name VARCHAR(255),
			player2_id VARCHAR(100),
			player2_name VARCHAR(255),
			in_player_id VARCHAR(100),
			in_player_name VARCHAR(255),
			out_player_id VARCHAR(100),
			out_player_name VARCHAR(255),
			home_score INTEGER NOT NULL DEFAULT 0,
			away_score INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (match_id, ordinal)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_match_events_match_id ON match_events(match_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
