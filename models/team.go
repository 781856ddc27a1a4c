package models

// Team is a club registered with the league. Strength ratings are
// integers on a 1-99 scale and drive match simulation; they are kept
// fresh by the ratings sync worker.
type Team struct {
	ID         string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name       string  `gorm:"not null;index" json:"name"`
	Slug       string  `gorm:"uniqueIndex" json:"slug"`
	Country    string  `json:"country,omitempty"`
	CrestURL   string  `json:"crest_url,omitempty"`
	DivisionID *string `gorm:"index" json:"division_id,omitempty"` // nil = free agent team

	Attack  int `gorm:"default:50" json:"attack"`
	Defense int `gorm:"default:50" json:"defense"`
	Overall int `gorm:"default:50" json:"overall"`

	// Relationships
	Players []Player `json:"players,omitempty" gorm:"foreignKey:TeamID"`

	Timestamps
}
