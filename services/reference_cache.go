package services

import (
	"sync"
	"time"

	"livescore-service/logger"
	"livescore-service/models"
)

// DefaultCacheTTL bounds how long a loaded reference map is considered
// fresh before the next access triggers a reload.
const DefaultCacheTTL = time.Hour

type referenceFetcher func(page int) ([]models.RefEntity, error)

// entityCache holds one kind's ID→entity map. Loads are single-flight:
// the first caller owns the paginated fetch, concurrent callers block
// on the in-flight channel instead of starting a second one.
type entityCache struct {
	kind  models.RefKind
	fetch referenceFetcher

	mu       sync.RWMutex
	data     map[string]models.RefEntity
	loadedAt time.Time
	inflight chan struct{}
}

// ReferenceCache is the TTL-bounded in-memory store for the three
// reference entity kinds. Entries are advisory: a miss degrades
// enrichment to placeholders but never blocks reconciliation.
type ReferenceCache struct {
	ttl   time.Duration
	kinds map[models.RefKind]*entityCache
}

// CacheStats is the operator-facing cache snapshot.
type CacheStats struct {
	TeamCount        int   `json:"team_count"`
	CompetitionCount int   `json:"competition_count"`
	CountryCount     int   `json:"country_count"`
	TeamAgeMs        int64 `json:"team_age_ms"`
	CompetitionAgeMs int64 `json:"competition_age_ms"`
	CountryAgeMs     int64 `json:"country_age_ms"`
}

// NewReferenceCache creates the cache over the upstream reference API.
func NewReferenceCache(api ReferenceAPI, ttl time.Duration) *ReferenceCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	kinds := map[models.RefKind]*entityCache{
		models.KindTeam: newEntityCache(models.KindTeam, func(page int) ([]models.RefEntity, error) {
			rows, err := api.GetTeams(page)
			if err != nil {
				return nil, err
			}
			out := make([]models.RefEntity, 0, len(rows))
			for _, r := range rows {
				out = append(out, models.RefEntity{
					ID: r.ID, Name: r.Name, ShortName: r.ShortName,
					Logo: r.Logo, CountryID: r.CountryID,
				})
			}
			return out, nil
		}),
		models.KindCompetition: newEntityCache(models.KindCompetition, func(page int) ([]models.RefEntity, error) {
			rows, err := api.GetCompetitions(page)
			if err != nil {
				return nil, err
			}
			out := make([]models.RefEntity, 0, len(rows))
			for _, r := range rows {
				out = append(out, models.RefEntity{
					ID: r.ID, Name: r.Name, ShortName: r.ShortName,
					Logo: r.Logo, CountryID: r.CountryID,
				})
			}
			return out, nil
		}),
		models.KindCountry: newEntityCache(models.KindCountry, func(page int) ([]models.RefEntity, error) {
			rows, err := api.GetCountries(page)
			if err != nil {
				return nil, err
			}
			out := make([]models.RefEntity, 0, len(rows))
			for _, r := range rows {
				out = append(out, models.RefEntity{
					ID: r.ID, Name: r.Name, ShortName: r.ShortName, Logo: r.Logo,
				})
			}
			return out, nil
		}),
	}

	return &ReferenceCache{ttl: ttl, kinds: kinds}
}

func newEntityCache(kind models.RefKind, fetch referenceFetcher) *entityCache {
	return &entityCache{
		kind:  kind,
		fetch: fetch,
		data:  make(map[string]models.RefEntity),
	}
}

// Get returns a cached entity. Synchronous and non-blocking; never
// triggers a fetch.
func (rc *ReferenceCache) Get(kind models.RefKind, id string) (models.RefEntity, bool) {
	c, ok := rc.kinds[kind]
	if !ok {
		return models.RefEntity{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.data[id]
	return e, ok
}

// EnsureLoaded populates the kind's map when it is empty or older than
// the TTL, blocking until the load completes. Concurrent callers share
// a single in-flight load.
func (rc *ReferenceCache) EnsureLoaded(kind models.RefKind) {
	if c, ok := rc.kinds[kind]; ok {
		c.ensure(rc.ttl, false)
	}
}

// Reload forces an unconditional repopulate of one kind.
func (rc *ReferenceCache) Reload(kind models.RefKind) {
	if c, ok := rc.kinds[kind]; ok {
		c.ensure(rc.ttl, true)
	}
}

// ReloadAll force-reloads every kind.
func (rc *ReferenceCache) ReloadAll() {
	for kind := range rc.kinds {
		rc.Reload(kind)
	}
}

// ResetAll clears every kind's map and timestamp without refetching;
// the next EnsureLoaded triggers a full load.
func (rc *ReferenceCache) ResetAll() {
	for _, c := range rc.kinds {
		c.mu.Lock()
		c.data = make(map[string]models.RefEntity)
		c.loadedAt = time.Time{}
		c.mu.Unlock()
	}
	logger.Println("[Cache] Reference cache reset")
}

// Stats returns per-kind entry counts and ages in milliseconds.
func (rc *ReferenceCache) Stats() CacheStats {
	var stats CacheStats
	stats.TeamCount, stats.TeamAgeMs = rc.kinds[models.KindTeam].snapshot()
	stats.CompetitionCount, stats.CompetitionAgeMs = rc.kinds[models.KindCompetition].snapshot()
	stats.CountryCount, stats.CountryAgeMs = rc.kinds[models.KindCountry].snapshot()
	return stats
}

func (c *entityCache) snapshot() (count int, ageMs int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count = len(c.data)
	if !c.loadedAt.IsZero() {
		ageMs = time.Since(c.loadedAt).Milliseconds()
	}
	return count, ageMs
}

func (c *entityCache) ensure(ttl time.Duration, force bool) {
	c.mu.Lock()
	if !force && len(c.data) > 0 && time.Since(c.loadedAt) < ttl {
		c.mu.Unlock()
		return
	}
	if c.inflight != nil {
		// Another caller owns the load; await it.
		ch := c.inflight
		c.mu.Unlock()
		<-ch
		return
	}
	ch := make(chan struct{})
	c.inflight = ch
	c.mu.Unlock()

	loaded := c.load()

	c.mu.Lock()
	for id, e := range loaded {
		c.data[id] = e
	}
	c.loadedAt = time.Now()
	c.inflight = nil
	c.mu.Unlock()
	close(ch)
}

// load walks the paginated list until an empty page. A failed page
// stops pagination and keeps what was accumulated so far; the caller
// always gets some (possibly partial) map.
func (c *entityCache) load() map[string]models.RefEntity {
	loaded := make(map[string]models.RefEntity)
	for page := 1; ; page++ {
		rows, err := c.fetch(page)
		if err != nil {
			logger.Errorf("[Cache] ⚠️  %s page %d fetch failed, keeping %d rows: %v",
				c.kind, page, len(loaded), err)
			break
		}
		if len(rows) == 0 {
			break
		}
		for _, e := range rows {
			if e.ID != "" {
				loaded[e.ID] = e
			}
		}
	}
	logger.Printf("[Cache] Loaded %d %s entries", len(loaded), c.kind)
	return loaded
}
