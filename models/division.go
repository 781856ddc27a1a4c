package models

import (
	"time"

	"gorm.io/gorm"
)

// Division groups teams into one competitive tier for a season.
// A team belongs to at most one division at a time; teams with a NULL
// division are free agents usable as cup/tournament fillers.
type Division struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	LeagueID string `gorm:"index;not null" json:"league_id"`
	SeasonID string `gorm:"index;not null" json:"season_id"`
	Name     string `gorm:"not null" json:"name"`
	Slug     string `gorm:"uniqueIndex" json:"slug"`
	Tier     int    `gorm:"default:1" json:"tier"`

	// When true the matchday scheduler simulates this division's next
	// round automatically.
	AutoSim bool `gorm:"default:false" json:"auto_sim"`

	// Relationships
	Teams []Team `json:"teams,omitempty" gorm:"foreignKey:DivisionID"`

	// Calculated fields (not stored in DB)
	TeamCount int64 `json:"team_count,omitempty" gorm:"-"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
