package services

import (
	"errors"
	"fmt"

	"league-manager-system/engine"
	"league-manager-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeagueStores implements the engine's store contracts on GORM. One
// struct backs all of them so a transaction can rebind the whole bundle
// against the tx handle.
type LeagueStores struct {
	DB *gorm.DB
}

func NewLeagueStores(db *gorm.DB) *LeagueStores {
	return &LeagueStores{DB: db}
}

// Engine bundles the stores for the orchestrator.
func (s *LeagueStores) Engine() engine.Stores {
	return engine.Stores{Teams: s, Fixtures: s, Events: s, Standings: s, Ratings: s}
}

// InTx rebinds the stores to one database transaction so a fixture's
// events, ratings, played flag and standings rows commit or roll back
// together.
func (s *LeagueStores) InTx(fn func(es engine.Stores) error) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return fn(NewLeagueStores(tx).Engine())
	})
}

// scopedFixtures applies the scope filter; empty DivisionID means all
// divisions in the season.
func (s *LeagueStores) scopedFixtures(scope engine.Scope) *gorm.DB {
	q := s.DB.Model(&models.Fixture{}).Where("season_id = ?", scope.SeasonID)
	if scope.DivisionID != "" {
		q = q.Where("division_id = ?", scope.DivisionID)
	}
	return q
}

// --- TeamStore ---

func (s *LeagueStores) Team(teamID string) (*models.Team, error) {
	var team models.Team
	if err := s.DB.First(&team, "id = ?", teamID).Error; err != nil {
		return nil, fmt.Errorf("team %s: %w", teamID, err)
	}
	return &team, nil
}

func (s *LeagueStores) TeamsInDivision(divisionID, seasonID string) ([]models.Team, error) {
	var teams []models.Team
	err := s.DB.Where("division_id = ?", divisionID).Order("name ASC").Find(&teams).Error
	return teams, err
}

func (s *LeagueStores) Roster(teamID string) ([]models.Player, error) {
	var players []models.Player
	err := s.DB.Where("team_id = ?", teamID).
		Order("squad_order ASC, name ASC").
		Find(&players).Error
	return players, err
}

// --- FixtureStore ---

func (s *LeagueStores) InsertFixtures(fixtures []models.Fixture) error {
	if len(fixtures) == 0 {
		return nil
	}
	return s.DB.Create(&fixtures).Error
}

func (s *LeagueStores) UnplayedFixtures(scope engine.Scope, round int) ([]models.Fixture, error) {
	var fixtures []models.Fixture
	err := s.scopedFixtures(scope).
		Where("round = ? AND played = false", round).
		Order("created_at ASC").
		Find(&fixtures).Error
	return fixtures, err
}

func (s *LeagueStores) CountUnplayedBefore(scope engine.Scope, round int) (int, error) {
	var count int64
	err := s.scopedFixtures(scope).
		Where("round < ? AND played = false", round).
		Count(&count).Error
	return int(count), err
}

func (s *LeagueStores) FirstUnplayedRound(scope engine.Scope) (int, error) {
	var round int
	err := s.scopedFixtures(scope).
		Where("played = false").
		Select("COALESCE(MIN(round), 0)").
		Scan(&round).Error
	return round, err
}

func (s *LeagueStores) PlayedFixtures(scope engine.Scope) ([]models.Fixture, error) {
	var fixtures []models.Fixture
	err := s.scopedFixtures(scope).
		Where("played = true").
		Order("round ASC, created_at ASC").
		Find(&fixtures).Error
	return fixtures, err
}

// MarkPlayed flips the one-way played flag. The played = false guard
// means a concurrent or repeated run can never overwrite a result.
func (s *LeagueStores) MarkPlayed(fixtureID string, homeGoals, awayGoals int) error {
	res := s.DB.Model(&models.Fixture{}).
		Where("id = ? AND played = false", fixtureID).
		Updates(map[string]interface{}{
			"played":     true,
			"home_goals": homeGoals,
			"away_goals": awayGoals,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("fixture %s missing or already played", fixtureID)
	}
	return nil
}

func (s *LeagueStores) DeleteFixtures(scope engine.Scope) error {
	var fixtureIDs []string
	if err := s.scopedFixtures(scope).Pluck("id", &fixtureIDs).Error; err != nil {
		return err
	}
	if len(fixtureIDs) == 0 {
		return nil
	}
	if err := s.DB.Where("fixture_id IN ?", fixtureIDs).Delete(&models.MatchEvent{}).Error; err != nil {
		return err
	}
	if err := s.DB.Where("fixture_id IN ?", fixtureIDs).Delete(&models.PlayerMatchRating{}).Error; err != nil {
		return err
	}
	return s.DB.Where("id IN ?", fixtureIDs).Delete(&models.Fixture{}).Error
}

// --- EventStore ---

// AppendEvents persists the events and keeps the players' cumulative
// season counters in step, so leaderboards never rescan the event log.
func (s *LeagueStores) AppendEvents(events []models.MatchEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := s.DB.Create(&events).Error; err != nil {
		return err
	}

	counters := map[string]string{
		models.EventGoal:       "season_goals",
		models.EventAssist:     "season_assists",
		models.EventYellowCard: "season_yellow_cards",
		models.EventRedCard:    "season_red_cards",
	}
	for _, ev := range events {
		column, ok := counters[ev.Type]
		if !ok {
			continue
		}
		err := s.DB.Model(&models.Player{}).
			Where("id = ?", ev.PlayerID).
			UpdateColumn(column, gorm.Expr(column+" + 1")).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// --- RatingStore ---

func (s *LeagueStores) AppendRatings(ratings []models.PlayerMatchRating) error {
	if len(ratings) == 0 {
		return nil
	}
	if err := s.DB.Create(&ratings).Error; err != nil {
		return err
	}

	// Clean sheets only count for the back line.
	for _, r := range ratings {
		if !r.CleanSheet {
			continue
		}
		err := s.DB.Model(&models.Player{}).
			Where("id = ? AND position IN ('GK', 'DEF')", r.PlayerID).
			UpdateColumn("season_clean_sheets", gorm.Expr("season_clean_sheets + 1")).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// --- StandingsStore ---

func (s *LeagueStores) StandingsRow(teamID, seasonID string) (*models.StandingsRow, error) {
	var row models.StandingsRow
	err := s.DB.Where("team_id = ? AND season_id = ?", teamID, seasonID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *LeagueStores) UpsertStandingsRow(row *models.StandingsRow) error {
	// Rows loaded through StandingsRow carry their primary key and
	// update in place; the conflict clause only arbitrates two fixtures
	// creating a team's first row at the same time.
	if row.ID != "" {
		return s.DB.Model(&models.StandingsRow{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"played": row.Played, "wins": row.Wins, "draws": row.Draws,
				"losses": row.Losses, "goals_for": row.GoalsFor,
				"goals_against": row.GoalsAgainst, "points": row.Points,
			}).Error
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "team_id"}, {Name: "season_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"division_id", "played", "wins", "draws", "losses",
			"goals_for", "goals_against", "points", "updated_at",
		}),
	}).Create(row).Error
}

func (s *LeagueStores) StandingsForScope(scope engine.Scope) ([]models.StandingsRow, error) {
	q := s.DB.Where("season_id = ?", scope.SeasonID)
	if scope.DivisionID != "" {
		q = q.Where("division_id = ?", scope.DivisionID)
	}
	var rows []models.StandingsRow
	err := q.Find(&rows).Error
	return rows, err
}

func (s *LeagueStores) ResetStandings(scope engine.Scope) error {
	q := s.DB.Model(&models.StandingsRow{}).Where("season_id = ?", scope.SeasonID)
	if scope.DivisionID != "" {
		q = q.Where("division_id = ?", scope.DivisionID)
	}
	return q.Updates(map[string]interface{}{
		"played": 0, "wins": 0, "draws": 0, "losses": 0,
		"goals_for": 0, "goals_against": 0, "points": 0,
	}).Error
}
