// league-manager-system/services/report_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"league-manager-system/models"
)

// ReportClient calls the external AI text-generation service for match
// narratives. The service is a long-latency, failure-prone collaborator;
// callers must tolerate errors.
type ReportClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type generateResponse struct {
	Text string `json:"text"`
}

func NewReportClient(baseURL, token string) *ReportClient {
	return &ReportClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GenerateMatchReport posts the fixture facts and returns the narrative.
func (c *ReportClient) GenerateMatchReport(fixture *models.Fixture, home, away *models.Team) (string, error) {
	url := fmt.Sprintf("%s/v1/generate", c.BaseURL)

	type eventSummary struct {
		Type     string `json:"type"`
		Minute   int    `json:"minute"`
		PlayerID string `json:"player_id"`
		TeamName string `json:"team_name"`
	}
	events := make([]eventSummary, 0, len(fixture.Events))
	for _, ev := range fixture.Events {
		teamName := home.Name
		if ev.TeamID == away.ID {
			teamName = away.Name
		}
		events = append(events, eventSummary{Type: ev.Type, Minute: ev.Minute, PlayerID: ev.PlayerID, TeamName: teamName})
	}

	reqBody := map[string]interface{}{
		"kind":        "match_report",
		"home_team":   home.Name,
		"away_team":   away.Name,
		"home_goals":  fixture.HomeGoals,
		"away_goals":  fixture.AwayGoals,
		"round":       fixture.Round,
		"competition": fixture.Competition,
		"events":      events,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("ReportService /v1/generate returned %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("report generation failed: %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.Text == "" {
		return "", fmt.Errorf("report service returned empty text")
	}

	return out.Text, nil
}
