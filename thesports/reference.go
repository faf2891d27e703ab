package thesports

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// GetTeams retrieves one page of the team reference list. Pages are
// 1-based; an empty slice marks the end of the list.
func (c *Client) GetTeams(page int) ([]Team, error) {
	body, err := c.get("/v1/football/team/list", pageParams(page))
	if err != nil {
		return nil, err
	}

	var response struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data []Team `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return response.Data, nil
}

// GetCompetitions retrieves one page of the competition reference list.
func (c *Client) GetCompetitions(page int) ([]Competition, error) {
	body, err := c.get("/v1/football/competition/list", pageParams(page))
	if err != nil {
		return nil, err
	}

	var response struct {
		Code int           `json:"code"`
		Msg  string        `json:"msg"`
		Data []Competition `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return response.Data, nil
}

// GetCountries retrieves one page of the country reference list.
func (c *Client) GetCountries(page int) ([]Country, error) {
	body, err := c.get("/v1/football/country/list", pageParams(page))
	if err != nil {
		return nil, err
	}

	var response struct {
		Code int       `json:"code"`
		Msg  string    `json:"msg"`
		Data []Country `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return response.Data, nil
}

func pageParams(page int) url.Values {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	return params
}
