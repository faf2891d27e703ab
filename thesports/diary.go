package thesports

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// GetDiary retrieves the match listing for one date. The API takes the
// date in compact form (yyyyMMdd).
func (c *Client) GetDiary(date time.Time) ([]DiaryMatch, error) {
	params := url.Values{}
	params.Set("date", date.Format("20060102"))

	body, err := c.get("/v1/football/match/diary", params)
	if err != nil {
		return nil, err
	}

	var response struct {
		Code int          `json:"code"`
		Msg  string       `json:"msg"`
		Data []DiaryMatch `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return response.Data, nil
}
