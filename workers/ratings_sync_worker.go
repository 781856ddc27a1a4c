package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"league-manager-system/models"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatedTeam matches the JSON shape of the sports-data provider's
// ratings feed.
type RatedTeam struct {
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Attack    int       `json:"attack"`
	Defense   int       `json:"defense"`
	Overall   int       `json:"overall"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingsSyncClient pulls refreshed team strength ratings from the
// external sports-data service — the simulation engine never talks to
// the network itself, it only reads what this worker persists.
type RatingsSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB

	titler cases.Caser
}

func NewRatingsSyncClient(db *gorm.DB) *RatingsSyncClient {
	baseURL := os.Getenv("SPORTS_DATA_URL")
	if baseURL == "" {
		log.Fatal("SPORTS_DATA_URL environment variable is required")
	}
	token := os.Getenv("LEAGUE_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("LEAGUE_SERVICE_TOKEN environment variable is required for ratings sync")
	}

	return &RatingsSyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		titler: cases.Title(language.English),
	}
}

func (c *RatingsSyncClient) GetChangedRatings(ctx context.Context, since time.Time) ([]RatedTeam, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/team-ratings", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call sports data service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sports data service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Teams []RatedTeam `json:"teams"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode sports data response: %w", err)
	}

	return response.Teams, nil
}

// upsertRatings matches feed rows to local teams by slug. Unknown teams
// are skipped — the feed covers more clubs than the league registers.
func (c *RatingsSyncClient) upsertRatings(rated []RatedTeam) int {
	applied := 0
	for _, rt := range rated {
		name := c.titler.String(strings.ToLower(strings.TrimSpace(rt.Name)))
		if name == "" {
			continue
		}
		clamp := func(v int) int {
			if v < 1 {
				return 1
			}
			if v > 99 {
				return 99
			}
			return v
		}

		res := c.DB.Model(&models.Team{}).
			Where("slug = ?", slug.Make(name)).
			Updates(map[string]interface{}{
				"attack":  clamp(rt.Attack),
				"defense": clamp(rt.Defense),
				"overall": clamp(rt.Overall),
			})
		if res.Error != nil {
			log.Printf("[RatingsSync] Failed to update %s: %v", name, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			applied++
			continue
		}

		// New club from the feed lands in the free agent pool.
		team := models.Team{
			Name:    name,
			Slug:    slug.Make(name),
			Country: rt.Country,
			Attack:  clamp(rt.Attack),
			Defense: clamp(rt.Defense),
			Overall: clamp(rt.Overall),
		}
		err := c.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&team).Error
		if err != nil {
			log.Printf("[RatingsSync] Failed to create %s: %v", name, err)
			continue
		}
		applied++
	}
	return applied
}

// PollRatings keeps team strength ratings fresh.
func PollRatings(ctx context.Context, client *RatingsSyncClient, pollInterval time.Duration) {
	log.Println("Starting team ratings polling...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Ratings polling stopped.")
			return
		case <-ticker.C:
			rated, err := client.GetChangedRatings(ctx, lastSyncTime)
			if err != nil {
				log.Printf("[RatingsSync] Fetch failed: %v", err)
				continue
			}
			if len(rated) == 0 {
				continue
			}

			applied := client.upsertRatings(rated)
			lastSyncTime = time.Now().UTC()
			log.Printf("✅ Ratings sync applied %d/%d team(s)", applied, len(rated))
		}
	}
}
