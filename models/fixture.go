package models

// Competition tags
const (
	CompetitionLeague = "league"
	CompetitionCup    = "cup"
)

// Fixture is a scheduled pairing of two teams in one round. The played
// flag makes a one-way false→true transition — the only way back is the
// administrative reset, which removes the fixture entirely. Goal counts
// are meaningful only once played is true, and played is the sole gate
// for whether a fixture contributes to standings.
type Fixture struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	LeagueID    string `gorm:"index;not null" json:"league_id"`
	DivisionID  string `gorm:"index;not null" json:"division_id"`
	SeasonID    string `gorm:"index;not null" json:"season_id"`
	Round       int    `gorm:"index;not null" json:"round"`
	Competition string `gorm:"type:varchar(16);default:'league'" json:"competition"`

	HomeTeamID string `gorm:"index;not null" json:"home_team_id"`
	AwayTeamID string `gorm:"index;not null" json:"away_team_id"`

	Played    bool `gorm:"default:false;index" json:"played"`
	HomeGoals int  `gorm:"default:0" json:"home_goals"`
	AwayGoals int  `gorm:"default:0" json:"away_goals"`

	// Relationships
	Events []MatchEvent `json:"events,omitempty" gorm:"foreignKey:FixtureID"`

	Timestamps
}
