package models

// Player positions
const (
	PositionGoalkeeper = "GK"
	PositionDefender   = "DEF"
	PositionMidfielder = "MID"
	PositionForward    = "FWD"
)

// Player belongs to at most one team's active roster across the whole
// league (enforced when rosters are edited, not by the simulator).
// SquadOrder orders the roster; the first 11 form the active lineup.
type Player struct {
	ID          string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name        string  `gorm:"not null;index" json:"name"`
	Nationality string  `json:"nationality,omitempty"`
	Position    string  `gorm:"type:varchar(8);check:position IN ('GK','DEF','MID','FWD')" json:"position"`
	Rating      int     `gorm:"default:50" json:"rating"`
	TeamID      *string `gorm:"index" json:"team_id,omitempty"` // nil = unattached
	SquadOrder  int     `gorm:"default:0" json:"squad_order"`

	// Cumulative season stats — monotonically non-decreasing except on
	// explicit season reset.
	SeasonGoals       int `gorm:"default:0" json:"season_goals"`
	SeasonAssists     int `gorm:"default:0" json:"season_assists"`
	SeasonCleanSheets int `gorm:"default:0" json:"season_clean_sheets"`
	SeasonYellowCards int `gorm:"default:0" json:"season_yellow_cards"`
	SeasonRedCards    int `gorm:"default:0" json:"season_red_cards"`

	Timestamps
}
