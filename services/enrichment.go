package services

import (
	"fmt"
	"strings"

	"livescore-service/models"
)

// Enricher turns raw reference IDs into display-ready records using
// the reference cache. It never fetches: callers that care about
// freshness call EnsureLoaded on the cache first.
type Enricher struct {
	cache *ReferenceCache
}

func NewEnricher(cache *ReferenceCache) *Enricher {
	return &Enricher{cache: cache}
}

// Enrich maps one ID to its display record. A cache miss yields a
// deterministic placeholder derived from the ID instead of an error.
func (e *Enricher) Enrich(kind models.RefKind, id string) *models.EnrichedEntity {
	if id == "" {
		return nil
	}

	if ent, ok := e.cache.Get(kind, id); ok {
		short := ent.ShortName
		if short == "" {
			short = ent.Name
		}
		return &models.EnrichedEntity{
			ID:        id,
			Name:      ent.Name,
			ShortName: short,
			Logo:      ent.Logo,
		}
	}

	short := ShortLabel(id)
	return &models.EnrichedEntity{
		ID:          id,
		Name:        fmt.Sprintf("%s %s", kindLabel(kind), short),
		ShortName:   short,
		Placeholder: true,
	}
}

// ShortLabel derives a stable short display label from an entity ID:
// the last four characters, uppercased.
func ShortLabel(id string) string {
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	return strings.ToUpper(id)
}

func kindLabel(kind models.RefKind) string {
	switch kind {
	case models.KindTeam:
		return "Team"
	case models.KindCompetition:
		return "Competition"
	case models.KindCountry:
		return "Country"
	default:
		return "Entity"
	}
}
