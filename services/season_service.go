package services

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"league-manager-system/engine"
	"league-manager-system/models"
	"league-manager-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// SeasonService exposes the simulation engine over HTTP: schedule
// generation, matchday runs, standings, resets and the leaderboards.
type SeasonService struct {
	DB           *gorm.DB
	Stores       *LeagueStores
	Orchestrator *engine.Orchestrator
	Reports      *ReportClient
}

func NewSeasonService(db *gorm.DB, reports *ReportClient) *SeasonService {
	stores := NewLeagueStores(db)

	seed := time.Now().UnixNano()
	if seedStr := os.Getenv("SIM_SEED"); seedStr != "" {
		parsed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			log.Fatalf("❌ SIM_SEED must be an integer, got %q", seedStr)
		}
		seed = parsed
		log.Printf("🎲 Simulation seeded deterministically (SIM_SEED=%d)", seed)
	}
	rng := rand.New(rand.NewSource(seed))

	strategy, err := engine.NewStrategy(os.Getenv("SIM_STRATEGY"), rng)
	if err != nil {
		log.Fatalf("❌ %v (set SIM_STRATEGY to %q or %q)", err, engine.StrategyPoisson, engine.StrategyMinute)
	}

	return &SeasonService{
		DB:           db,
		Stores:       stores,
		Orchestrator: engine.NewOrchestrator(stores.Engine(), stores, strategy, rng),
		Reports:      reports,
	}
}

// simError maps the engine's error kinds onto HTTP responses.
func simError(c *fiber.Ctx, err error) error {
	var vErr *engine.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(400).JSON(fiber.Map{"error": vErr.Reason})
	}
	var seqErr *engine.SequencingError
	if errors.As(err, &seqErr) {
		return c.Status(409).JSON(fiber.Map{
			"error":            seqErr.Error(),
			"round":            seqErr.Round,
			"unplayed_earlier": seqErr.Unplayed,
		})
	}
	var conflictErr *engine.StateConflictError
	if errors.As(err, &conflictErr) {
		return c.Status(409).JSON(fiber.Map{"error": conflictErr.Error()})
	}
	var depErr *engine.DependencyError
	if errors.As(err, &depErr) {
		log.Printf("❌ [SIM] store dependency failed: %v", depErr)
		return c.Status(502).JSON(fiber.Map{"error": depErr.Error()})
	}
	log.Printf("❌ [SIM] unexpected error: %v", err)
	return c.Status(500).JSON(fiber.Map{"error": "internal error"})
}

// GenerateSchedule builds the round-robin fixture list for a division's
// season and persists it.
func (s *SeasonService) GenerateSchedule(c *fiber.Ctx) error {
	divisionID := c.Params("id")
	seasonID := c.Params("season_id")

	var req struct {
		DoubleLeg   bool   `json:"double_leg"`
		Competition string `json:"competition"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
	}

	var division models.Division
	if err := s.DB.First(&division, "id = ?", divisionID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "division not found"})
	}

	var existing int64
	s.DB.Model(&models.Fixture{}).
		Where("division_id = ? AND season_id = ?", divisionID, seasonID).
		Count(&existing)
	if existing > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "schedule already exists for this division and season — reset first"})
	}

	teams, err := s.Stores.TeamsInDivision(divisionID, seasonID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	teamIDs := make([]string, len(teams))
	for i, t := range teams {
		teamIDs[i] = t.ID
	}

	fixtures, err := s.Orchestrator.GenerateSchedule(teamIDs, engine.ScheduleOptions{
		LeagueID:    division.LeagueID,
		DivisionID:  division.ID,
		SeasonID:    seasonID,
		Competition: req.Competition,
		DoubleLeg:   req.DoubleLeg,
	})
	if err != nil {
		return simError(c, err)
	}

	rounds := 0
	for _, f := range fixtures {
		if f.Round > rounds {
			rounds = f.Round
		}
	}
	log.Printf("📅 Generated %d fixtures over %d rounds for division %s (%s)", len(fixtures), rounds, division.Name, seasonID)
	return c.Status(201).JSON(fiber.Map{
		"division_id":   division.ID,
		"season_id":     seasonID,
		"fixture_count": len(fixtures),
		"rounds":        rounds,
		"fixtures":      fixtures,
	})
}

// SimulateRound runs the matchday orchestrator for one round, scoped
// to a single division via ?division_id= or to all divisions without.
func (s *SeasonService) SimulateRound(c *fiber.Ctx) error {
	seasonID := c.Params("season_id")
	round, err := strconv.Atoi(c.Params("round"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "round must be an integer"})
	}

	scope := engine.Scope{SeasonID: seasonID, DivisionID: c.Query("division_id")}
	report, err := s.Orchestrator.SimulateRound(scope, round)
	if err != nil {
		return simError(c, err)
	}

	if report.AlreadyComplete {
		log.Printf("ℹ️  Round %d already complete for season %s", round, seasonID)
	} else {
		log.Printf("⚽ Simulated round %d: %d match(es), %d failure(s)", round, report.MatchesProcessed, len(report.Failures))
	}
	return c.JSON(report)
}

// GetStandings returns the ranked table, with team names attached for
// display.
func (s *SeasonService) GetStandings(c *fiber.Ctx) error {
	scope := engine.Scope{SeasonID: c.Params("season_id"), DivisionID: c.Query("division_id")}

	rows, err := s.Orchestrator.RankedStandings(scope)
	if err != nil {
		return simError(c, err)
	}

	teamIDs := make([]string, len(rows))
	for i, row := range rows {
		teamIDs[i] = row.TeamID
	}
	names := map[string]string{}
	if len(teamIDs) > 0 {
		var teams []models.Team
		if err := s.DB.Where("id IN ?", teamIDs).Find(&teams).Error; err == nil {
			for _, t := range teams {
				names[t.ID] = t.Name
			}
		}
	}
	for i := range rows {
		rows[i].TeamName = names[rows[i].TeamID]
	}

	return c.JSON(fiber.Map{"season_id": scope.SeasonID, "standings": rows})
}

// RebuildStandings replays every played fixture in the scope from a
// zeroed table and persists the result. An admin escape hatch; with a
// healthy incremental table this is a no-op by construction.
func (s *SeasonService) RebuildStandings(c *fiber.Ctx) error {
	seasonID := c.Params("season_id")
	divisionID := c.Query("division_id")
	if divisionID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "division_id is required"})
	}
	scope := engine.Scope{SeasonID: seasonID, DivisionID: divisionID}

	teams, err := s.Stores.TeamsInDivision(divisionID, seasonID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	teamIDs := make([]string, len(teams))
	for i, t := range teams {
		teamIDs[i] = t.ID
	}

	fixtures, err := s.Stores.PlayedFixtures(scope)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	rows := engine.RebuildStandings(fixtures, teamIDs, seasonID, divisionID)
	err = s.Stores.InTx(func(es engine.Stores) error {
		for i := range rows {
			if err := es.Standings.UpsertStandingsRow(&rows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ Standings rebuild failed for %s/%s: %v", divisionID, seasonID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to rebuild standings"})
	}

	log.Printf("🔁 Rebuilt standings for division %s season %s from %d played fixture(s)", divisionID, seasonID, len(fixtures))
	return c.JSON(fiber.Map{"season_id": seasonID, "division_id": divisionID, "standings": rows})
}

// ResetSeason unschedules the division's fixtures, zeroes its standings
// rows and its players' season stats. Teams and rosters are untouched.
func (s *SeasonService) ResetSeason(c *fiber.Ctx) error {
	divisionID := c.Params("id")
	seasonID := c.Params("season_id")

	var division models.Division
	if err := s.DB.First(&division, "id = ?", divisionID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "division not found"})
	}

	scope := engine.Scope{LeagueID: division.LeagueID, DivisionID: divisionID, SeasonID: seasonID}
	if err := s.Orchestrator.ResetScope(scope); err != nil {
		return simError(c, err)
	}

	// Season reset is the one sanctioned decrease of player stats.
	err := s.DB.Model(&models.Player{}).
		Where("team_id IN (?)", s.DB.Model(&models.Team{}).Select("id").Where("division_id = ?", divisionID)).
		Updates(map[string]interface{}{
			"season_goals": 0, "season_assists": 0, "season_clean_sheets": 0,
			"season_yellow_cards": 0, "season_red_cards": 0,
		}).Error
	if err != nil {
		log.Printf("❌ Failed to zero player stats for division %s: %v", divisionID, err)
		return c.Status(500).JSON(fiber.Map{"error": "fixtures reset but player stats could not be zeroed"})
	}

	log.Printf("🧹 Reset division %s season %s", division.Name, seasonID)
	return c.JSON(fiber.Map{"message": "season reset", "division_id": divisionID, "season_id": seasonID})
}

// GetFixtures lists a season's fixtures for display, optionally scoped
// to a division or round, with events preloaded on demand.
func (s *SeasonService) GetFixtures(c *fiber.Ctx) error {
	q := s.DB.Where("season_id = ?", c.Params("season_id")).Order("round ASC, created_at ASC")
	if divisionID := c.Query("division_id"); divisionID != "" {
		q = q.Where("division_id = ?", divisionID)
	}
	if roundStr := c.Query("round"); roundStr != "" {
		round, err := strconv.Atoi(roundStr)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "round must be an integer"})
		}
		q = q.Where("round = ?", round)
	}
	if c.Query("include_events") == "true" {
		q = q.Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("minute ASC")
		})
	}

	var fixtures []models.Fixture
	if err := q.Find(&fixtures).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(fixtures)
}

// GetTopScorers reads the incrementally maintained player counters —
// no event-log scan per request.
func (s *SeasonService) GetTopScorers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var players []models.Player
	err := s.DB.Where("season_goals > 0").
		Order("season_goals DESC, season_assists DESC, name ASC").
		Limit(limit).
		Find(&players).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(fiber.Map{"season_id": c.Params("season_id"), "top_scorers": players})
}

type bestElevenEntry struct {
	PlayerID  string  `json:"player_id"`
	Name      string  `json:"name"`
	Position  string  `json:"position"`
	TeamID    string  `json:"team_id"`
	AvgRating float64 `json:"avg_rating"`
	Matches   int     `json:"matches"`
}

// GetBestEleven assembles the season's best-performing 1-4-4-2 from
// average per-match ratings.
func (s *SeasonService) GetBestEleven(c *fiber.Ctx) error {
	seasonID := c.Params("season_id")

	var entries []bestElevenEntry
	err := s.DB.Model(&models.PlayerMatchRating{}).
		Select("player_match_ratings.player_id, players.name, players.position, player_match_ratings.team_id, AVG(player_match_ratings.rating) AS avg_rating, COUNT(*) AS matches").
		Joins("JOIN players ON players.id = player_match_ratings.player_id").
		Where("player_match_ratings.season_id = ?", seasonID).
		Group("player_match_ratings.player_id, players.name, players.position, player_match_ratings.team_id").
		Order("avg_rating DESC").
		Scan(&entries).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	formation := map[string]int{
		models.PositionGoalkeeper: 1,
		models.PositionDefender:   4,
		models.PositionMidfielder: 4,
		models.PositionForward:    2,
	}
	var eleven []bestElevenEntry
	for _, entry := range entries {
		if formation[entry.Position] == 0 {
			continue
		}
		formation[entry.Position]--
		eleven = append(eleven, entry)
	}

	return c.JSON(fiber.Map{"season_id": seasonID, "formation": "1-4-4-2", "best_eleven": eleven})
}

// GetMatchReport asks the AI text service for a narrative of a played
// fixture and archives it to R2. Both collaborators are long-latency
// and failure-prone; nothing here touches simulation state.
func (s *SeasonService) GetMatchReport(c *fiber.Ctx) error {
	if s.Reports == nil {
		return c.Status(503).JSON(fiber.Map{"error": "match reports are not configured"})
	}

	var fixture models.Fixture
	err := s.DB.Preload("Events").First(&fixture, "id = ?", c.Params("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "fixture not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if !fixture.Played {
		return c.Status(409).JSON(fiber.Map{"error": "fixture has not been played yet"})
	}

	var home, away models.Team
	if err := s.DB.First(&home, "id = ?", fixture.HomeTeamID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if err := s.DB.First(&away, "id = ?", fixture.AwayTeamID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	report, err := s.Reports.GenerateMatchReport(&fixture, &home, &away)
	if err != nil {
		log.Printf("❌ Report generation failed for fixture %s: %v", fixture.ID, err)
		return c.Status(502).JSON(fiber.Map{"error": "report service unavailable"})
	}

	key := fmt.Sprintf("reports/%s/%s-vs-%s-%s.txt", fixture.SeasonID, slug.Make(home.Name), slug.Make(away.Name), fixture.ID)
	archiveURL, err := utils.UploadReportToR2(key, []byte(report))
	if err != nil {
		// The narrative is still useful without the archive copy.
		log.Printf("⚠️  Failed to archive report for fixture %s: %v", fixture.ID, err)
		archiveURL = ""
	}

	return c.JSON(fiber.Map{
		"fixture_id":  fixture.ID,
		"score":       fmt.Sprintf("%d-%d", fixture.HomeGoals, fixture.AwayGoals),
		"report":      report,
		"archive_url": archiveURL,
	})
}
