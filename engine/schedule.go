package engine

import (
	"github.com/google/uuid"

	"league-manager-system/models"
)

// byeSlot pads an odd team list so the circle method pairs cleanly.
// Pairings against the bye produce no fixture (one team idle per round).
const byeSlot = ""

// ScheduleOptions scope the generated fixtures.
type ScheduleOptions struct {
	LeagueID    string
	DivisionID  string
	SeasonID    string
	Competition string // defaults to league
	DoubleLeg   bool   // home-and-away second leg with inverted venues
}

// GenerateSchedule produces a round-robin fixture list for the given
// team IDs using the circle method: fix the first slot, pair slot i
// with slot L-1-i, then rotate everything except slot 0 by popping the
// last element and reinserting it at index 1. Every unordered pair of
// distinct teams meets exactly once per leg and no team appears twice
// in the same round.
func GenerateSchedule(teamIDs []string, opts ScheduleOptions) ([]models.Fixture, error) {
	if len(teamIDs) < 2 {
		return nil, &ValidationError{Reason: "at least two teams are required to generate a schedule"}
	}
	if opts.SeasonID == "" {
		return nil, &ValidationError{Reason: "season id is required"}
	}
	seen := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		if id == "" {
			return nil, &ValidationError{Reason: "team id must not be empty"}
		}
		if seen[id] {
			return nil, &ValidationError{Reason: "duplicate team id: " + id}
		}
		seen[id] = true
	}

	competition := opts.Competition
	if competition == "" {
		competition = models.CompetitionLeague
	}

	slots := make([]string, len(teamIDs))
	copy(slots, teamIDs)
	if len(slots)%2 != 0 {
		slots = append(slots, byeSlot)
	}
	size := len(slots)
	rounds := size - 1

	var fixtures []models.Fixture
	for round := 1; round <= rounds; round++ {
		for i := 0; i < size/2; i++ {
			home, away := slots[i], slots[size-1-i]
			if home == byeSlot || away == byeSlot {
				continue
			}
			fixtures = append(fixtures, models.Fixture{
				ID:          uuid.NewString(),
				LeagueID:    opts.LeagueID,
				DivisionID:  opts.DivisionID,
				SeasonID:    opts.SeasonID,
				Round:       round,
				Competition: competition,
				HomeTeamID:  home,
				AwayTeamID:  away,
			})
		}

		// Rotate all slots except index 0.
		last := slots[size-1]
		copy(slots[2:], slots[1:size-1])
		slots[1] = last
	}

	if opts.DoubleLeg {
		firstLeg := len(fixtures)
		for i := 0; i < firstLeg; i++ {
			f := fixtures[i]
			fixtures = append(fixtures, models.Fixture{
				ID:          uuid.NewString(),
				LeagueID:    f.LeagueID,
				DivisionID:  f.DivisionID,
				SeasonID:    f.SeasonID,
				Round:       f.Round + rounds,
				Competition: f.Competition,
				HomeTeamID:  f.AwayTeamID,
				AwayTeamID:  f.HomeTeamID,
			})
		}
	}

	return fixtures, nil
}
