package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"livescore-service/models"
	"livescore-service/thesports"
)

// fakeReferenceAPI serves canned paginated lists and counts fetches so
// tests can assert how often the upstream is actually hit.
type fakeReferenceAPI struct {
	mu    sync.Mutex
	teams [][]thesports.Team

	teamCalls        int
	competitionCalls int
	countryCalls     int

	failTeamPage int // fail this page (1-based), 0 = never
	fetchDelay   time.Duration
}

func (f *fakeReferenceAPI) GetTeams(page int) ([]thesports.Team, error) {
	f.mu.Lock()
	f.teamCalls++
	fail := f.failTeamPage != 0 && page == f.failTeamPage
	delay := f.fetchDelay
	var rows []thesports.Team
	if page <= len(f.teams) {
		rows = f.teams[page-1]
	}
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		return nil, fmt.Errorf("page %d unavailable", page)
	}
	return rows, nil
}

func (f *fakeReferenceAPI) GetCompetitions(page int) ([]thesports.Competition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.competitionCalls++
	if page == 1 {
		return []thesports.Competition{{ID: "c1", Name: "Premier League", ShortName: "EPL"}}, nil
	}
	return nil, nil
}

func (f *fakeReferenceAPI) GetCountries(page int) ([]thesports.Country, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countryCalls++
	if page == 1 {
		return []thesports.Country{{ID: "n1", Name: "England"}}, nil
	}
	return nil, nil
}

func (f *fakeReferenceAPI) calls() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.teamCalls, f.competitionCalls, f.countryCalls
}

func singlePageAPI() *fakeReferenceAPI {
	return &fakeReferenceAPI{
		teams: [][]thesports.Team{
			{{ID: "t1", Name: "Arsenal", ShortName: "ARS"}, {ID: "t2", Name: "Chelsea"}},
		},
	}
}

func TestEnsureLoadedWithinTTLDoesNotRefetch(t *testing.T) {
	api := singlePageAPI()
	cache := NewReferenceCache(api, time.Hour)

	cache.EnsureLoaded(models.KindTeam)
	first, _, _ := api.calls()

	cache.EnsureLoaded(models.KindTeam)
	cache.EnsureLoaded(models.KindTeam)
	again, _, _ := api.calls()

	if first == 0 {
		t.Fatal("expected the first EnsureLoaded to fetch")
	}
	if again != first {
		t.Errorf("fresh cache refetched: %d calls, then %d", first, again)
	}

	if e, ok := cache.Get(models.KindTeam, "t1"); !ok || e.Name != "Arsenal" {
		t.Errorf("expected t1 cached as Arsenal, got %+v ok=%v", e, ok)
	}
}

func TestEnsureLoadedRetriesEmptyCache(t *testing.T) {
	// All pages fail: the load ends with an empty map, so the next
	// EnsureLoaded must try again rather than treating empty as fresh.
	api := &fakeReferenceAPI{failTeamPage: 1}
	cache := NewReferenceCache(api, time.Hour)

	cache.EnsureLoaded(models.KindTeam)
	first, _, _ := api.calls()
	cache.EnsureLoaded(models.KindTeam)
	second, _, _ := api.calls()

	if second <= first {
		t.Errorf("empty cache did not retry: %d calls, then %d", first, second)
	}
}

func TestResetAllForcesReload(t *testing.T) {
	api := singlePageAPI()
	cache := NewReferenceCache(api, time.Hour)

	cache.EnsureLoaded(models.KindTeam)
	cache.ResetAll()

	if _, ok := cache.Get(models.KindTeam, "t1"); ok {
		t.Error("expected reset to clear entries")
	}

	before, _, _ := api.calls()
	cache.EnsureLoaded(models.KindTeam)
	after, _, _ := api.calls()
	if after <= before {
		t.Error("expected EnsureLoaded after reset to refetch")
	}
	if _, ok := cache.Get(models.KindTeam, "t1"); !ok {
		t.Error("expected t1 back after reload")
	}
}

func TestEnsureLoadedSingleFlight(t *testing.T) {
	api := singlePageAPI()
	api.fetchDelay = 20 * time.Millisecond
	cache := NewReferenceCache(api, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.EnsureLoaded(models.KindTeam)
		}()
	}
	wg.Wait()

	// One load walks two pages (data page + empty terminator).
	calls, _, _ := api.calls()
	if calls > 2 {
		t.Errorf("expected a single shared load (2 page fetches), got %d", calls)
	}
	if _, ok := cache.Get(models.KindTeam, "t1"); !ok {
		t.Error("expected all waiters to observe the loaded data")
	}
}

func TestPartialPageFailureKeepsAccumulated(t *testing.T) {
	api := &fakeReferenceAPI{
		teams: [][]thesports.Team{
			{{ID: "t1", Name: "Arsenal"}},
			{{ID: "t2", Name: "Chelsea"}},
		},
		failTeamPage: 2,
	}
	cache := NewReferenceCache(api, time.Hour)

	cache.EnsureLoaded(models.KindTeam)

	if _, ok := cache.Get(models.KindTeam, "t1"); !ok {
		t.Error("expected page 1 rows kept after page 2 failure")
	}
	if _, ok := cache.Get(models.KindTeam, "t2"); ok {
		t.Error("did not expect rows from the failed page")
	}
}

func TestStatsReportsCountsAndAges(t *testing.T) {
	api := singlePageAPI()
	cache := NewReferenceCache(api, time.Hour)

	stats := cache.Stats()
	if stats.TeamCount != 0 || stats.TeamAgeMs != 0 {
		t.Errorf("expected empty stats before load, got %+v", stats)
	}

	cache.EnsureLoaded(models.KindTeam)
	cache.EnsureLoaded(models.KindCompetition)
	cache.EnsureLoaded(models.KindCountry)

	stats = cache.Stats()
	if stats.TeamCount != 2 {
		t.Errorf("expected 2 teams, got %d", stats.TeamCount)
	}
	if stats.CompetitionCount != 1 || stats.CountryCount != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
}
