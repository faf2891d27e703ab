package services

import (
	"fmt"
	"time"

	"livescore-service/database"
	"livescore-service/logger"
	"livescore-service/models"
)

// Reconciler merges partial match-state updates into canonical
// storage. Both the push and poll paths funnel through it, so every
// write is an idempotent merge keyed by the external match ID and a
// stale write from a slow path is corrected by the next write from
// either path.
type Reconciler struct {
	store       MatchStore
	enricher    *Enricher
	broadcaster Broadcaster    // optional
	publisher   EventPublisher // optional
}

func NewReconciler(store MatchStore, enricher *Enricher) *Reconciler {
	return &Reconciler{store: store, enricher: enricher}
}

// SetBroadcaster attaches the WebSocket hub for live fanout.
func (r *Reconciler) SetBroadcaster(b Broadcaster) {
	r.broadcaster = b
}

// SetPublisher attaches the downstream broker publisher.
func (r *Reconciler) SetPublisher(p EventPublisher) {
	r.publisher = p
}

// ApplyStateFragment merges one partial update into the match row.
// Only fields the fragment actually supplies are written, so an absent
// field can never erase a known value and the call is idempotent:
// applying the same fragment twice yields the same row.
func (r *Reconciler) ApplyStateFragment(matchID string, frag models.StateFragment) error {
	if matchID == "" {
		return fmt.Errorf("match id is required")
	}

	u := database.MatchUpsert{ID: matchID}

	if frag.StatusCode != nil {
		status := models.StatusFromCode(*frag.StatusCode)
		u.Status = &status
	}
	u.Clock = frag.Clock
	u.ClearClock = frag.ClearClock

	// Negative scores are invalid; drop the field rather than corrupt
	// the row.
	if frag.HomeScore != nil && *frag.HomeScore >= 0 {
		u.HomeScore = frag.HomeScore
	}
	if frag.AwayScore != nil && *frag.AwayScore >= 0 {
		u.AwayScore = frag.AwayScore
	}

	if frag.HomeTeamID != "" {
		v := frag.HomeTeamID
		u.HomeTeamID = &v
	}
	if frag.AwayTeamID != "" {
		v := frag.AwayTeamID
		u.AwayTeamID = &v
	}
	if frag.CompetitionID != "" {
		v := frag.CompetitionID
		u.CompetitionID = &v
	}
	u.StartTime = frag.StartTime

	if err := r.store.UpsertMatch(u); err != nil {
		return err
	}

	r.publishUpdate(matchID, 0)
	return nil
}

// ReplaceSubEvents swaps the match's full sub-event snapshot. The feed
// always sends the complete current list, never a delta, so the set is
// replaced wholesale. A failed replace keeps the previous snapshot
// (the delete rolls back with it); at-least-once delivery means the
// next snapshot repairs any staleness.
//
// When the snapshot contains goal events the match score is refreshed
// from the last goal's embedded score. The incident-derived score wins
// over any state-fragment score that arrived earlier simply because it
// lands as the later write; across units, last write by arrival order
// wins.
func (r *Reconciler) ReplaceSubEvents(matchID string, events []models.SubEvent) error {
	if matchID == "" {
		return fmt.Errorf("match id is required")
	}

	if err := r.store.ReplaceEvents(matchID, events); err != nil {
		return err
	}

	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if !models.IsGoalEvent(e.Type) {
			continue
		}
		if e.HomeScore < 0 || e.AwayScore < 0 {
			break
		}
		hs, as := e.HomeScore, e.AwayScore
		u := database.MatchUpsert{ID: matchID, HomeScore: &hs, AwayScore: &as}
		if err := r.store.UpsertMatch(u); err != nil {
			return fmt.Errorf("failed to refresh score from goal event: %w", err)
		}
		break
	}

	r.publishUpdate(matchID, len(events))
	return nil
}

// publishUpdate broadcasts the reconciled row to the WebSocket hub and
// the optional downstream exchange. Best effort: fanout failures are
// logged, never propagated into the ingestion path.
func (r *Reconciler) publishUpdate(matchID string, eventCount int) {
	if r.broadcaster == nil && r.publisher == nil {
		return
	}

	row, err := r.store.GetMatch(matchID)
	if err != nil || row == nil {
		if err != nil {
			logger.Errorf("[Reconciler] Failed to load match %s for fanout: %v", matchID, err)
		}
		return
	}

	update := models.MatchUpdate{
		MatchID:    row.ID,
		Status:     row.Status,
		Clock:      row.Clock,
		HomeScore:  row.HomeScore,
		AwayScore:  row.AwayScore,
		EventCount: eventCount,
		UpdatedAt:  time.Now().UnixMilli(),
	}
	if r.enricher != nil {
		if row.HomeTeamID != nil {
			update.HomeTeam = r.enricher.Enrich(models.KindTeam, *row.HomeTeamID)
		}
		if row.AwayTeamID != nil {
			update.AwayTeam = r.enricher.Enrich(models.KindTeam, *row.AwayTeamID)
		}
		if row.CompetitionID != nil {
			update.Competition = r.enricher.Enrich(models.KindCompetition, *row.CompetitionID)
		}
	}

	if r.broadcaster != nil {
		r.broadcaster.Broadcast(update)
	}
	if r.publisher != nil {
		if err := r.publisher.Publish("match.update."+matchID, update); err != nil {
			logger.Errorf("[Reconciler] Failed to publish update for %s: %v", matchID, err)
		}
	}
}
