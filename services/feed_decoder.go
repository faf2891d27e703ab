package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"livescore-service/models"
	"livescore-service/thesports"
)

// DecodedUnit is the reconciler-ready form of one push unit: an
// optional state fragment plus an optional full sub-event snapshot.
type DecodedUnit struct {
	MatchID   string
	Fragment  *models.StateFragment
	Events    []models.SubEvent
	HasEvents bool // present-but-empty snapshot still replaces
}

// DecodeUnit turns a raw push unit into a DecodedUnit. The state
// fragment is accepted in either the nested score-array form or the
// flat-field form; units carrying neither state nor incidents are
// rejected so unrecognized shapes get logged instead of silently
// probed.
func DecodeUnit(u thesports.PushUnit) (*DecodedUnit, error) {
	d := &DecodedUnit{MatchID: u.ID}

	switch {
	case len(u.Score) > 0:
		frag, matchID, err := decodeScoreArray(u.Score)
		if err != nil {
			return nil, err
		}
		if d.MatchID == "" {
			d.MatchID = matchID
		}
		d.Fragment = frag
	case u.StatusID != nil || u.HomeScore != nil || u.AwayScore != nil:
		d.Fragment = decodeFlatFields(u)
	}

	if d.Fragment != nil {
		if u.HomeTeamID != "" {
			d.Fragment.HomeTeamID = u.HomeTeamID
		}
		if u.AwayTeamID != "" {
			d.Fragment.AwayTeamID = u.AwayTeamID
		}
		if u.CompetitionID != "" {
			d.Fragment.CompetitionID = u.CompetitionID
		}
	} else if u.HomeTeamID != "" || u.AwayTeamID != "" || u.CompetitionID != "" {
		d.Fragment = &models.StateFragment{
			HomeTeamID:    u.HomeTeamID,
			AwayTeamID:    u.AwayTeamID,
			CompetitionID: u.CompetitionID,
		}
	}

	if u.Incidents != nil {
		d.HasEvents = true
		d.Events = make([]models.SubEvent, 0, len(u.Incidents))
		for _, inc := range u.Incidents {
			d.Events = append(d.Events, models.SubEvent{
				Type:          inc.Type,
				Minute:        inc.Time,
				Position:      inc.Position,
				PlayerID:      inc.PlayerID,
				PlayerName:    inc.PlayerName,
				Player2ID:     inc.Player2ID,
				Player2Name:   inc.Player2Name,
				InPlayerID:    inc.InPlayerID,
				InPlayerName:  inc.InPlayerName,
				OutPlayerID:   inc.OutPlayerID,
				OutPlayerName: inc.OutPlayerName,
				HomeScore:     inc.HomeScore,
				AwayScore:     inc.AwayScore,
			})
		}
	}

	if d.MatchID == "" {
		return nil, fmt.Errorf("unit carries no match id")
	}
	if d.Fragment == nil && !d.HasEvents {
		return nil, fmt.Errorf("unit %s carries neither state nor incidents", d.MatchID)
	}

	return d, nil
}

func decodeScoreArray(raw json.RawMessage) (*models.StateFragment, string, error) {
	sp, err := thesports.ParseScoreArray(raw)
	if err != nil {
		return nil, "", err
	}

	code := sp.StatusID
	hs := sp.CurrentHomeScore()
	as := sp.CurrentAwayScore()

	frag := &models.StateFragment{
		StatusCode: &code,
		HomeScore:  &hs,
		AwayScore:  &as,
	}
	applyClock(frag, code, sp.ClockRaw)

	return frag, sp.MatchID, nil
}

func decodeFlatFields(u thesports.PushUnit) *models.StateFragment {
	frag := &models.StateFragment{
		StatusCode: u.StatusID,
		HomeScore:  u.HomeScore,
		AwayScore:  u.AwayScore,
	}
	if u.StatusID != nil {
		applyClock(frag, *u.StatusID, u.Minute)
	}
	return frag
}

// applyClock resolves the raw clock value into an absolute match
// minute. The upstream clock restarts each period, so the per-period
// offset is added; outside running periods the clock is cleared.
func applyClock(frag *models.StateFragment, statusCode int, raw json.RawMessage) {
	if !models.ClockRunning(statusCode) {
		frag.ClearClock = true
		return
	}
	base, ok := ParseClockValue(raw)
	if !ok {
		return
	}
	minute := base + models.ClockOffset(statusCode)
	frag.Clock = &minute
}

// ParseClockValue parses a raw clock element, which arrives either as
// a plain number or as a "base+stoppage" string ("45+2" → 47).
func ParseClockValue(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	total := 0
	for _, part := range strings.Split(s, "+") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, false
		}
		total += v
	}
	return total, true
}
