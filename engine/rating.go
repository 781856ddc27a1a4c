package engine

import (
	"math"
	"math/rand"

	"league-manager-system/models"
)

// MatchPerformance is one player's tallied contribution to a completed
// fixture, used to score their performance for leaderboards.
type MatchPerformance struct {
	Goals      int
	Assists    int
	Yellows    int
	Reds       int
	CleanSheet bool // the player's side conceded zero goals
}

// MatchRating scores a player's match on the usual 1-10 pundit scale:
// start at 6.0, add 1.5 per goal and 1.0 per assist, credit goalkeepers
// and defenders 1.0 for a clean sheet, deduct 0.5 per yellow and 2.0
// per red, jitter by a uniform draw in [-0.5, +0.5], clamp to
// [1.0, 10.0] and round to two decimals.
func MatchRating(position string, perf MatchPerformance, rng *rand.Rand) float64 {
	rating := 6.0
	rating += 1.5 * float64(perf.Goals)
	rating += 1.0 * float64(perf.Assists)
	if perf.CleanSheet && (position == models.PositionGoalkeeper || position == models.PositionDefender) {
		rating += 1.0
	}
	rating -= 0.5 * float64(perf.Yellows)
	rating -= 2.0 * float64(perf.Reds)
	rating += rng.Float64() - 0.5

	if rating < 1.0 {
		rating = 1.0
	}
	if rating > 10.0 {
		rating = 10.0
	}
	return math.Round(rating*100) / 100
}

// TallyPerformances folds a fixture's event list into per-player
// performances for one side's lineup. Players with no events still get
// an entry so clean sheets and base ratings apply to the whole lineup.
func TallyPerformances(lineup []models.Player, events []models.MatchEvent, teamID string, cleanSheet bool) map[string]MatchPerformance {
	perfs := make(map[string]MatchPerformance, len(lineup))
	for _, p := range lineup {
		perfs[p.ID] = MatchPerformance{CleanSheet: cleanSheet}
	}
	for _, ev := range events {
		if ev.TeamID != teamID {
			continue
		}
		perf, ok := perfs[ev.PlayerID]
		if !ok {
			continue
		}
		switch ev.Type {
		case models.EventGoal:
			perf.Goals++
		case models.EventAssist:
			perf.Assists++
		case models.EventYellowCard:
			perf.Yellows++
		case models.EventRedCard:
			perf.Reds++
		}
		perfs[ev.PlayerID] = perf
	}
	return perfs
}
