package models

// StandingsRow is a team's cumulative season record. Derived entity:
// points = 3*wins + draws and played = wins + draws + losses at all
// times. Zeroed (never deleted) on season/division reset so the team
// stays visible in the table.
type StandingsRow struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	TeamID     string `gorm:"index:idx_standings_team_season,unique;not null" json:"team_id"`
	SeasonID   string `gorm:"index:idx_standings_team_season,unique;not null" json:"season_id"`
	DivisionID string `gorm:"index" json:"division_id"`

	Played       int `gorm:"default:0" json:"played"`
	Wins         int `gorm:"default:0" json:"wins"`
	Draws        int `gorm:"default:0" json:"draws"`
	Losses       int `gorm:"default:0" json:"losses"`
	GoalsFor     int `gorm:"default:0" json:"goals_for"`
	GoalsAgainst int `gorm:"default:0" json:"goals_against"`
	Points       int `gorm:"default:0" json:"points"`

	// Denormalized for table rendering
	TeamName string `json:"team_name,omitempty" gorm:"-"`

	Timestamps
}

// GoalDifference is the first tiebreaker after points.
func (r *StandingsRow) GoalDifference() int {
	return r.GoalsFor - r.GoalsAgainst
}

// PlayerMatchRating records one player's performance score for one
// completed fixture. Written alongside the fixture result and used by
// the leaderboard and best-eleven queries.
type PlayerMatchRating struct {
	ID         string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	FixtureID  string  `gorm:"index;not null" json:"fixture_id"`
	PlayerID   string  `gorm:"index;not null" json:"player_id"`
	TeamID     string  `gorm:"index;not null" json:"team_id"`
	SeasonID   string  `gorm:"index;not null" json:"season_id"`
	Rating     float64 `gorm:"not null" json:"rating"`
	CleanSheet bool    `gorm:"default:false" json:"clean_sheet"`

	Timestamps
}
