package models

// RefKind identifies one of the cached reference entity kinds.
type RefKind string

const (
	KindTeam        RefKind = "team"
	KindCompetition RefKind = "competition"
	KindCountry     RefKind = "country"
)

// RefEntity is the unified reference record held by the cache.
// Countries have no CountryID back-reference.
type RefEntity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Logo      string `json:"logo"`
	CountryID string `json:"country_id,omitempty"`
}

// EnrichedEntity is the display-ready projection of a reference ID.
// Placeholder indicates the cache had no record for the ID.
type EnrichedEntity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Logo        string `json:"logo,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// MatchUpdate is the reconciled state pushed to WebSocket clients and
// the optional AMQP exchange after every successful write.
type MatchUpdate struct {
	MatchID     string          `json:"match_id"`
	Status      MatchStatus     `json:"status"`
	Clock       *int            `json:"clock,omitempty"`
	HomeScore   int             `json:"home_score"`
	AwayScore   int             `json:"away_score"`
	HomeTeam    *EnrichedEntity `json:"home_team,omitempty"`
	AwayTeam    *EnrichedEntity `json:"away_team,omitempty"`
	Competition *EnrichedEntity `json:"competition,omitempty"`
	EventCount  int             `json:"event_count,omitempty"`
	UpdatedAt   int64           `json:"updated_at"`
}
