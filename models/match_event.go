package models

// Match event types
const (
	EventGoal       = "GOAL"
	EventAssist     = "ASSIST"
	EventYellowCard = "YELLOW_CARD"
	EventRedCard    = "RED_CARD"
)

// MatchEvent is one timestamped in-match incident. Events are
// append-only per fixture once simulated; the orchestrator refuses to
// simulate an already-played fixture so a fixture never double-appends.
type MatchEvent struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	FixtureID string `gorm:"index;not null" json:"fixture_id"`
	TeamID    string `gorm:"index;not null" json:"team_id"`
	PlayerID  string `gorm:"index;not null" json:"player_id"`
	Type      string `gorm:"type:varchar(16);check:type IN ('GOAL','ASSIST','YELLOW_CARD','RED_CARD')" json:"type"`
	Minute    int    `gorm:"check:minute BETWEEN 1 AND 90" json:"minute"`

	Timestamps
}
