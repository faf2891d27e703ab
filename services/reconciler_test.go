package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"livescore-service/database"
	"livescore-service/models"
	"livescore-service/thesports"
)

// fakeStore mirrors the MatchStore merge contract in memory: only
// supplied fields are written.
type fakeStore struct {
	mu      sync.Mutex
	matches map[string]*database.MatchRow
	events  map[string][]models.SubEvent

	upserts  int
	replaces int

	failReplace bool
	failUpsert  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		matches: make(map[string]*database.MatchRow),
		events:  make(map[string][]models.SubEvent),
	}
}

func (s *fakeStore) UpsertMatch(u database.MatchUpsert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failUpsert {
		return fmt.Errorf("upsert rejected")
	}
	s.upserts++

	row, ok := s.matches[u.ID]
	if !ok {
		row = &database.MatchRow{ID: u.ID, Status: models.StatusScheduled}
		s.matches[u.ID] = row
	}

	if u.Status != nil {
		row.Status = *u.Status
	}
	if u.Clock != nil {
		v := *u.Clock
		row.Clock = &v
	} else if u.ClearClock {
		row.Clock = nil
	}
	if u.HomeScore != nil && *u.HomeScore >= 0 {
		row.HomeScore = *u.HomeScore
	}
	if u.AwayScore != nil && *u.AwayScore >= 0 {
		row.AwayScore = *u.AwayScore
	}
	if u.HomeTeamID != nil && *u.HomeTeamID != "" {
		v := *u.HomeTeamID
		row.HomeTeamID = &v
	}
	if u.AwayTeamID != nil && *u.AwayTeamID != "" {
		v := *u.AwayTeamID
		row.AwayTeamID = &v
	}
	if u.CompetitionID != nil && *u.CompetitionID != "" {
		v := *u.CompetitionID
		row.CompetitionID = &v
	}
	if u.StartTime != nil && !u.StartTime.IsZero() {
		v := *u.StartTime
		row.StartTime = &v
	}
	row.UpdatedAt = time.Now()

	return nil
}

func (s *fakeStore) ReplaceEvents(matchID string, events []models.SubEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failReplace {
		return fmt.Errorf("replace rejected")
	}
	s.replaces++

	s.events[matchID] = append([]models.SubEvent(nil), events...)
	return nil
}

func (s *fakeStore) GetMatch(id string) (*database.MatchRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.matches[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func intPtr(v int) *int { return &v }

func TestApplyStateFragmentIdempotent(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nil)

	frag := models.StateFragment{
		StatusCode: intPtr(models.CodeFirstHalf),
		HomeScore:  intPtr(1),
		AwayScore:  intPtr(0),
		Clock:      intPtr(12),
		HomeTeamID: "team-a",
	}

	if err := r.ApplyStateFragment("m1", frag); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	first, _ := store.GetMatch("m1")

	if err := r.ApplyStateFragment("m1", frag); err != nil {
		t.Fatalf("second apply failed: %v", err)
	}
	second, _ := store.GetMatch("m1")

	if first.Status != second.Status || first.HomeScore != second.HomeScore ||
		first.AwayScore != second.AwayScore {
		t.Errorf("repeated apply changed the row: %+v vs %+v", first, second)
	}
	if second.Clock == nil || *second.Clock != 12 {
		t.Errorf("expected clock 12, got %v", second.Clock)
	}
	if second.Status != models.StatusLive {
		t.Errorf("expected status live, got %s", second.Status)
	}
}

func TestApplyStateFragmentNeverRegresses(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nil)

	if err := r.ApplyStateFragment("m1", models.StateFragment{HomeTeamID: "A"}); err != nil {
		t.Fatalf("seed apply failed: %v", err)
	}

	// Absent field leaves the known value alone.
	if err := r.ApplyStateFragment("m1", models.StateFragment{StatusCode: intPtr(models.CodeFirstHalf)}); err != nil {
		t.Fatalf("partial apply failed: %v", err)
	}
	row, _ := store.GetMatch("m1")
	if row.HomeTeamID == nil || *row.HomeTeamID != "A" {
		t.Errorf("absent field erased home team id: %v", row.HomeTeamID)
	}

	// Supplied field updates it.
	if err := r.ApplyStateFragment("m1", models.StateFragment{HomeTeamID: "B"}); err != nil {
		t.Fatalf("update apply failed: %v", err)
	}
	row, _ = store.GetMatch("m1")
	if row.HomeTeamID == nil || *row.HomeTeamID != "B" {
		t.Errorf("supplied field did not update home team id: %v", row.HomeTeamID)
	}
}

func TestApplyStateFragmentRejectsNegativeScore(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nil)

	if err := r.ApplyStateFragment("m1", models.StateFragment{HomeScore: intPtr(2), AwayScore: intPtr(1)}); err != nil {
		t.Fatalf("seed apply failed: %v", err)
	}
	if err := r.ApplyStateFragment("m1", models.StateFragment{HomeScore: intPtr(-3)}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	row, _ := store.GetMatch("m1")
	if row.HomeScore != 2 || row.AwayScore != 1 {
		t.Errorf("negative score corrupted the row: %d-%d", row.HomeScore, row.AwayScore)
	}
}

func TestApplyStateFragmentRequiresMatchID(t *testing.T) {
	r := NewReconciler(newFakeStore(), nil)
	if err := r.ApplyStateFragment("", models.StateFragment{}); err == nil {
		t.Error("expected error for empty match id")
	}
}

func TestReplaceSubEventsFullReplace(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nil)

	e1 := models.SubEvent{Type: models.EventYellowCard, Minute: 10}
	e2 := models.SubEvent{Type: models.EventSubstitution, Minute: 60}
	e3 := models.SubEvent{Type: models.EventRedCard, Minute: 75}

	if err := r.ReplaceSubEvents("m1", []models.SubEvent{e1, e2}); err != nil {
		t.Fatalf("first replace failed: %v", err)
	}
	if err := r.ReplaceSubEvents("m1", []models.SubEvent{e3}); err != nil {
		t.Fatalf("second replace failed: %v", err)
	}

	got := store.events["m1"]
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 event after replace, got %d", len(got))
	}
	if got[0].Type != models.EventRedCard {
		t.Errorf("expected the replacing event to survive, got type %d", got[0].Type)
	}
}

func TestReplaceSubEventsRefreshesScoreFromLastGoal(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nil)

	events := []models.SubEvent{
		{Type: models.EventGoal, Minute: 12, HomeScore: 1, AwayScore: 0},
		{Type: models.EventYellowCard, Minute: 30, HomeScore: 1, AwayScore: 0},
		{Type: models.EventOwnGoal, Minute: 55, HomeScore: 1, AwayScore: 1},
	}
	if err := r.ReplaceSubEvents("m1", events); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	row, _ := store.GetMatch("m1")
	if row == nil {
		t.Fatal("expected match row created by score refresh")
	}
	if row.HomeScore != 1 || row.AwayScore != 1 {
		t.Errorf("expected score 1-1 from last goal event, got %d-%d", row.HomeScore, row.AwayScore)
	}
}

func TestReplaceSubEventsNoGoalLeavesScore(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nil)

	if err := r.ApplyStateFragment("m1", models.StateFragment{HomeScore: intPtr(2), AwayScore: intPtr(0)}); err != nil {
		t.Fatalf("seed apply failed: %v", err)
	}
	if err := r.ReplaceSubEvents("m1", []models.SubEvent{{Type: models.EventYellowCard, Minute: 5}}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	row, _ := store.GetMatch("m1")
	if row.HomeScore != 2 || row.AwayScore != 0 {
		t.Errorf("card-only snapshot changed the score: %d-%d", row.HomeScore, row.AwayScore)
	}
}

// End-to-end push scenario: a score unit creates the match, a later
// incident snapshot updates the score and leaves exactly one event.
func TestPushScenarioScoreThenIncidents(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nil)

	var first thesports.PushUnit
	if err := json.Unmarshal([]byte(`{"id":"M1","score":["M1",2,[0],[0],12,""]}`), &first); err != nil {
		t.Fatalf("unmarshal first unit: %v", err)
	}
	d, err := DecodeUnit(first)
	if err != nil {
		t.Fatalf("decode first unit: %v", err)
	}
	if err := r.ApplyStateFragment(d.MatchID, *d.Fragment); err != nil {
		t.Fatalf("apply first unit: %v", err)
	}

	row, _ := store.GetMatch("M1")
	if row.Status != models.StatusLive {
		t.Errorf("expected live after score unit, got %s", row.Status)
	}
	if row.Clock == nil || *row.Clock != 12 {
		t.Errorf("expected clock 12, got %v", row.Clock)
	}
	if row.HomeScore != 0 || row.AwayScore != 0 {
		t.Errorf("expected 0-0, got %d-%d", row.HomeScore, row.AwayScore)
	}

	var second thesports.PushUnit
	if err := json.Unmarshal([]byte(`{"id":"M1","incidents":[{"type":1,"time":34,"home_score":1,"away_score":0}]}`), &second); err != nil {
		t.Fatalf("unmarshal second unit: %v", err)
	}
	d2, err := DecodeUnit(second)
	if err != nil {
		t.Fatalf("decode second unit: %v", err)
	}
	if !d2.HasEvents {
		t.Fatal("expected incidents snapshot")
	}
	if err := r.ReplaceSubEvents(d2.MatchID, d2.Events); err != nil {
		t.Fatalf("replace events: %v", err)
	}

	row, _ = store.GetMatch("M1")
	if row.HomeScore != 1 || row.AwayScore != 0 {
		t.Errorf("expected 1-0 from goal incident, got %d-%d", row.HomeScore, row.AwayScore)
	}
	if len(store.events["M1"]) != 1 {
		t.Errorf("expected exactly one event row, got %d", len(store.events["M1"]))
	}
}
