package thesports

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParsePushPayload normalizes a push-feed payload into a sequence of
// units. The feed sends either a single JSON object or an array of
// objects; a malformed unit inside an array is dropped (counted in the
// second return value) without failing the rest of the batch.
func ParsePushPayload(payload []byte) ([]PushUnit, int, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, 0, fmt.Errorf("empty payload")
	}

	if trimmed[0] != '[' {
		var unit PushUnit
		if err := json.Unmarshal(trimmed, &unit); err != nil {
			return nil, 1, fmt.Errorf("failed to unmarshal payload object: %w", err)
		}
		return []PushUnit{unit}, 0, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal payload array: %w", err)
	}

	units := make([]PushUnit, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		var unit PushUnit
		if err := json.Unmarshal(r, &unit); err != nil {
			dropped++
			continue
		}
		units = append(units, unit)
	}
	return units, dropped, nil
}

// ParseScoreArray decodes the nested score array variant:
// [matchId, statusCode, homeScores[], awayScores[], clockRaw, extra].
// The clock element is kept raw because it may be a number or a
// "base+stoppage" string.
func ParseScoreArray(raw json.RawMessage) (*ScorePayload, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("score is not an array: %w", err)
	}
	if len(elems) < 5 {
		return nil, fmt.Errorf("score array has %d elements, want at least 5", len(elems))
	}

	var sp ScorePayload
	if err := json.Unmarshal(elems[0], &sp.MatchID); err != nil {
		return nil, fmt.Errorf("score[0] match id: %w", err)
	}
	if err := json.Unmarshal(elems[1], &sp.StatusID); err != nil {
		return nil, fmt.Errorf("score[1] status code: %w", err)
	}
	if err := json.Unmarshal(elems[2], &sp.HomeScores); err != nil {
		return nil, fmt.Errorf("score[2] home scores: %w", err)
	}
	if err := json.Unmarshal(elems[3], &sp.AwayScores); err != nil {
		return nil, fmt.Errorf("score[3] away scores: %w", err)
	}
	sp.ClockRaw = elems[4]

	return &sp, nil
}

// CurrentHomeScore returns the current home score from the array.
func (sp *ScorePayload) CurrentHomeScore() int {
	if len(sp.HomeScores) > 0 {
		return sp.HomeScores[0]
	}
	return 0
}

// CurrentAwayScore returns the current away score from the array.
func (sp *ScorePayload) CurrentAwayScore() int {
	if len(sp.AwayScores) > 0 {
		return sp.AwayScores[0]
	}
	return 0
}
