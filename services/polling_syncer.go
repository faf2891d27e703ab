package services

import (
	"fmt"
	"time"

	"livescore-service/logger"
	"livescore-service/models"
	"livescore-service/thesports"
)

// SyncResult is the operator-facing outcome of one sync run.
type SyncResult struct {
	Synced    int    `json:"synced"`
	Errors    int    `json:"errors"`
	LastError string `json:"last_error,omitempty"`
}

// PollingSyncer is the fallback/backfill path: it fetches the diary
// for a date window from the REST source and performs the same
// merge-upsert as the push path, so it can be re-run at any time to
// recover from missed push messages or a cold start.
type PollingSyncer struct {
	api        DiaryAPI
	cache      *ReferenceCache
	reconciler *Reconciler
	allowlist  map[string]bool // empty = accept all competitions

	now func() time.Time
}

func NewPollingSyncer(api DiaryAPI, cache *ReferenceCache, reconciler *Reconciler, allowlist []string) *PollingSyncer {
	allowed := make(map[string]bool, len(allowlist))
	for _, id := range allowlist {
		allowed[id] = true
	}
	return &PollingSyncer{
		api:        api,
		cache:      cache,
		reconciler: reconciler,
		allowlist:  allowed,
		now:        time.Now,
	}
}

// SyncWindow syncs every day in the inclusive offset range relative to
// today. Errors on a single day or match are counted and logged, the
// remaining days and matches proceed.
func (p *PollingSyncer) SyncWindow(startOffsetDays, endOffsetDays int) SyncResult {
	var res SyncResult

	// Warm the reference data once per run; a miss only degrades
	// enrichment quality, never blocks the writes below.
	p.cache.EnsureLoaded(models.KindTeam)
	p.cache.EnsureLoaded(models.KindCompetition)
	p.cache.EnsureLoaded(models.KindCountry)

	for off := startOffsetDays; off <= endOffsetDays; off++ {
		day := p.now().UTC().AddDate(0, 0, off)

		matches, err := p.api.GetDiary(day)
		if err != nil {
			res.Errors++
			res.LastError = fmt.Sprintf("diary %s: %v", day.Format("2006-01-02"), err)
			logger.Errorf("[Sync] ⚠️  Diary fetch failed for %s: %v", day.Format("2006-01-02"), err)
			continue
		}

		for _, m := range matches {
			if !p.allowed(m.CompetitionID) {
				continue
			}
			if err := p.syncMatch(m); err != nil {
				res.Errors++
				res.LastError = fmt.Sprintf("match %s: %v", m.ID, err)
				logger.Errorf("[Sync] ⚠️  Failed to sync match %s: %v", m.ID, err)
				continue
			}
			res.Synced++
		}
	}

	logger.Printf("[Sync] Window [%+d, %+d] done: %d synced, %d errors",
		startOffsetDays, endOffsetDays, res.Synced, res.Errors)
	return res
}

// Run drives the two sync tickers until stop is closed: a short-cycle
// live sync of today and a longer full-window sync around today.
func (p *PollingSyncer) Run(liveInterval, dailyInterval time.Duration, stop <-chan struct{}) {
	liveTicker := time.NewTicker(liveInterval)
	dailyTicker := time.NewTicker(dailyInterval)
	defer liveTicker.Stop()
	defer dailyTicker.Stop()

	// Cold-start backfill before the first tick.
	p.SyncWindow(-1, 1)

	for {
		select {
		case <-stop:
			return
		case <-liveTicker.C:
			p.SyncWindow(0, 0)
		case <-dailyTicker.C:
			p.SyncWindow(-1, 1)
		}
	}
}

func (p *PollingSyncer) allowed(competitionID string) bool {
	if len(p.allowlist) == 0 {
		return true
	}
	return p.allowlist[competitionID]
}

func (p *PollingSyncer) syncMatch(m thesports.DiaryMatch) error {
	if m.ID == "" {
		return fmt.Errorf("diary row without match id")
	}

	code := m.StatusID
	start := time.Unix(m.MatchTime, 0).UTC()

	// A match that has not kicked off yet is always Scheduled, no
	// matter what a stale diary status code claims; otherwise a
	// mis-synced match would appear prematurely live.
	if start.After(p.now()) {
		code = models.CodeNotStarted
	}

	hs := m.CurrentHomeScore()
	as := m.CurrentAwayScore()

	frag := models.StateFragment{
		StatusCode:    &code,
		HomeScore:     &hs,
		AwayScore:     &as,
		ClearClock:    !models.ClockRunning(code),
		HomeTeamID:    m.HomeTeamID,
		AwayTeamID:    m.AwayTeamID,
		CompetitionID: m.CompetitionID,
	}
	if m.MatchTime > 0 {
		frag.StartTime = &start
	}

	return p.reconciler.ApplyStateFragment(m.ID, frag)
}
