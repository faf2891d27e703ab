package services

import (
	"time"

	"livescore-service/database"
	"livescore-service/models"
	"livescore-service/thesports"
)

// MatchStore is the storage contract the reconciliation engine needs.
// database.MatchStore is the production implementation; tests use an
// in-memory fake.
type MatchStore interface {
	UpsertMatch(u database.MatchUpsert) error
	ReplaceEvents(matchID string, events []models.SubEvent) error
	GetMatch(id string) (*database.MatchRow, error)
}

// ReferenceAPI is the paginated reference-list surface of the upstream
// REST source. A page is 1-based; an empty page ends the list.
type ReferenceAPI interface {
	GetTeams(page int) ([]thesports.Team, error)
	GetCompetitions(page int) ([]thesports.Competition, error)
	GetCountries(page int) ([]thesports.Country, error)
}

// DiaryAPI is the per-date match listing surface of the REST source.
type DiaryAPI interface {
	GetDiary(date time.Time) ([]thesports.DiaryMatch, error)
}

// Broadcaster pushes reconciled updates to connected clients.
type Broadcaster interface {
	Broadcast(update models.MatchUpdate)
}

// EventPublisher fans reconciled updates out to a downstream broker.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}
