package services

import (
	"errors"
	"log"

	"league-manager-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// LeagueService handles divisions, teams and roster management.
type LeagueService struct {
	DB *gorm.DB
}

func NewLeagueService(db *gorm.DB) *LeagueService {
	return &LeagueService{DB: db}
}

func (s *LeagueService) CreateDivision(c *fiber.Ctx) error {
	var req struct {
		LeagueID string `json:"league_id"`
		SeasonID string `json:"season_id"`
		Name     string `json:"name"`
		Tier     int    `json:"tier"`
		AutoSim  bool   `json:"auto_sim"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.LeagueID == "" || req.SeasonID == "" || req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "league_id, season_id and name are required"})
	}

	division := models.Division{
		LeagueID: req.LeagueID,
		SeasonID: req.SeasonID,
		Name:     req.Name,
		Slug:     slug.Make(req.Name + "-" + req.SeasonID),
		Tier:     req.Tier,
		AutoSim:  req.AutoSim,
	}
	if division.Tier == 0 {
		division.Tier = 1
	}

	if err := s.DB.Create(&division).Error; err != nil {
		log.Printf("DB Error creating division: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create division"})
	}
	return c.Status(201).JSON(division)
}

func (s *LeagueService) GetDivisions(c *fiber.Ctx) error {
	var divisions []models.Division
	q := s.DB.Order("tier ASC, name ASC")
	if seasonID := c.Query("season_id"); seasonID != "" {
		q = q.Where("season_id = ?", seasonID)
	}
	if err := q.Find(&divisions).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	for i := range divisions {
		s.DB.Model(&models.Team{}).Where("division_id = ?", divisions[i].ID).Count(&divisions[i].TeamCount)
	}
	return c.JSON(divisions)
}

func (s *LeagueService) CreateTeam(c *fiber.Ctx) error {
	var req struct {
		Name       string  `json:"name"`
		Country    string  `json:"country"`
		CrestURL   string  `json:"crest_url"`
		DivisionID *string `json:"division_id"`
		Attack     int     `json:"attack"`
		Defense    int     `json:"defense"`
		Overall    int     `json:"overall"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}
	for _, rating := range []int{req.Attack, req.Defense, req.Overall} {
		if rating < 0 || rating > 99 {
			return c.Status(400).JSON(fiber.Map{"error": "ratings must be between 0 and 99"})
		}
	}

	if req.DivisionID != nil {
		var division models.Division
		if err := s.DB.First(&division, "id = ?", *req.DivisionID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "division_id not found"})
		}
	}

	team := models.Team{
		Name:       req.Name,
		Slug:       slug.Make(req.Name),
		Country:    req.Country,
		CrestURL:   req.CrestURL,
		DivisionID: req.DivisionID,
	}
	if req.Attack > 0 {
		team.Attack = req.Attack
	}
	if req.Defense > 0 {
		team.Defense = req.Defense
	}
	if req.Overall > 0 {
		team.Overall = req.Overall
	}

	if err := s.DB.Create(&team).Error; err != nil {
		log.Printf("DB Error creating team: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create team"})
	}
	return c.Status(201).JSON(team)
}

func (s *LeagueService) GetTeams(c *fiber.Ctx) error {
	q := s.DB.Order("name ASC")
	if divisionID := c.Query("division_id"); divisionID != "" {
		q = q.Where("division_id = ?", divisionID)
	}
	// Free agents are teams without a division, usable as cup fillers.
	if c.Query("free_agents") == "true" {
		q = q.Where("division_id IS NULL")
	}

	var teams []models.Team
	if err := q.Find(&teams).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(teams)
}

func (s *LeagueService) GetTeamByID(c *fiber.Ctx) error {
	var team models.Team
	err := s.DB.Preload("Players", func(db *gorm.DB) *gorm.DB {
		return db.Order("squad_order ASC, name ASC")
	}).First(&team, "id = ?", c.Params("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "team not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(team)
}

// AssignTeamToDivision moves a team between divisions, or into the free
// agent pool when division_id is null. A team is in at most one
// division at a time, which a single nullable column enforces by
// construction.
func (s *LeagueService) AssignTeamToDivision(c *fiber.Ctx) error {
	var req struct {
		DivisionID *string `json:"division_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	var team models.Team
	if err := s.DB.First(&team, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "team not found"})
	}

	if req.DivisionID != nil {
		var division models.Division
		if err := s.DB.First(&division, "id = ?", *req.DivisionID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "division_id not found"})
		}
	}

	if err := s.DB.Model(&team).Update("division_id", req.DivisionID).Error; err != nil {
		log.Printf("DB Error assigning team %s: %v", team.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to assign team"})
	}
	return c.JSON(fiber.Map{"message": "team division updated", "team_id": team.ID})
}

func (s *LeagueService) CreatePlayer(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Nationality string `json:"nationality"`
		Position    string `json:"position"`
		Rating      int    `json:"rating"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}
	switch req.Position {
	case models.PositionGoalkeeper, models.PositionDefender, models.PositionMidfielder, models.PositionForward:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "position must be one of GK, DEF, MID, FWD"})
	}

	player := models.Player{
		Name:        req.Name,
		Nationality: req.Nationality,
		Position:    req.Position,
		Rating:      req.Rating,
	}
	if err := s.DB.Create(&player).Error; err != nil {
		log.Printf("DB Error creating player: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create player"})
	}
	return c.Status(201).JSON(player)
}

// SignPlayer adds an unattached player to a team's roster. A player on
// any other active roster is rejected here — roster-edit time is the
// enforcement point for the one-team-per-player invariant.
func (s *LeagueService) SignPlayer(c *fiber.Ctx) error {
	teamID := c.Params("id")
	playerID := c.Params("player_id")

	var team models.Team
	if err := s.DB.First(&team, "id = ?", teamID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "team not found"})
	}

	var player models.Player
	if err := s.DB.First(&player, "id = ?", playerID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "player not found"})
	}
	if player.TeamID != nil {
		if *player.TeamID == teamID {
			return c.Status(409).JSON(fiber.Map{"error": "player is already on this roster"})
		}
		return c.Status(409).JSON(fiber.Map{"error": "player is on another team's active roster"})
	}

	var squadSize int64
	s.DB.Model(&models.Player{}).Where("team_id = ?", teamID).Count(&squadSize)

	updates := map[string]interface{}{
		"team_id":     teamID,
		"squad_order": squadSize + 1,
	}
	if err := s.DB.Model(&player).Updates(updates).Error; err != nil {
		log.Printf("DB Error signing player %s: %v", playerID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to sign player"})
	}

	log.Printf("✅ Signed %s to %s (squad slot %d)", player.Name, team.Name, squadSize+1)
	return c.JSON(fiber.Map{"message": "player signed", "team_id": teamID, "player_id": playerID, "squad_order": squadSize + 1})
}

func (s *LeagueService) ReleasePlayer(c *fiber.Ctx) error {
	teamID := c.Params("id")
	playerID := c.Params("player_id")

	var player models.Player
	if err := s.DB.First(&player, "id = ?", playerID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "player not found"})
	}
	if player.TeamID == nil || *player.TeamID != teamID {
		return c.Status(409).JSON(fiber.Map{"error": "player is not on this team's roster"})
	}

	updates := map[string]interface{}{
		"team_id":     nil,
		"squad_order": 0,
	}
	if err := s.DB.Model(&player).Updates(updates).Error; err != nil {
		log.Printf("DB Error releasing player %s: %v", playerID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to release player"})
	}
	return c.JSON(fiber.Map{"message": "player released", "player_id": playerID})
}

func (s *LeagueService) GetRoster(c *fiber.Ctx) error {
	teamID := c.Params("id")

	var team models.Team
	if err := s.DB.First(&team, "id = ?", teamID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "team not found"})
	}

	var players []models.Player
	err := s.DB.Where("team_id = ?", teamID).
		Order("squad_order ASC, name ASC").
		Find(&players).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	return c.JSON(fiber.Map{
		"team_id": teamID,
		"players": players,
		"lineup_size": func() int {
			if len(players) < 11 {
				return len(players)
			}
			return 11
		}(),
	})
}

// GetFreeAgentPlayers lists players not attached to any roster.
func (s *LeagueService) GetFreeAgentPlayers(c *fiber.Ctx) error {
	var players []models.Player
	if err := s.DB.Where("team_id IS NULL").Order("rating DESC, name ASC").Find(&players).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(players)
}
