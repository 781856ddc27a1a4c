package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-manager-system/models"
)

func TestApplyResultOutcomes(t *testing.T) {
	home := &models.StandingsRow{TeamID: "H"}
	away := &models.StandingsRow{TeamID: "A"}

	ApplyResult(home, away, 2, 1)
	assert.Equal(t, 1, home.Wins)
	assert.Equal(t, 3, home.Points)
	assert.Equal(t, 1, away.Losses)
	assert.Equal(t, 0, away.Points)

	ApplyResult(home, away, 1, 1)
	assert.Equal(t, 1, home.Draws)
	assert.Equal(t, 4, home.Points)
	assert.Equal(t, 1, away.Points)

	ApplyResult(home, away, 0, 3)
	assert.Equal(t, 1, away.Wins)
	assert.Equal(t, 4, away.Points)
	assert.Equal(t, 1, home.Losses)

	assert.Equal(t, 3, home.GoalsFor)
	assert.Equal(t, 5, home.GoalsAgainst)
	assert.Equal(t, 5, away.GoalsFor)
	assert.Equal(t, 3, away.GoalsAgainst)
}

// Points and played identities must hold for any sequence of results.
func TestApplyResultIdentities(t *testing.T) {
	rng := rand.New(rand.NewSource(30))
	home := &models.StandingsRow{TeamID: "H"}
	away := &models.StandingsRow{TeamID: "A"}

	for i := 0; i < 500; i++ {
		ApplyResult(home, away, rng.Intn(5), rng.Intn(5))
		for _, row := range []*models.StandingsRow{home, away} {
			assert.Equal(t, 3*row.Wins+row.Draws, row.Points)
			assert.Equal(t, row.Wins+row.Draws+row.Losses, row.Played)
		}
	}
}

func TestRankStandingsTiebreaks(t *testing.T) {
	rows := []models.StandingsRow{
		{TeamID: "c", Points: 10, GoalsFor: 10, GoalsAgainst: 8},
		{TeamID: "a", Points: 12, GoalsFor: 9, GoalsAgainst: 5},
		{TeamID: "b", Points: 12, GoalsFor: 12, GoalsAgainst: 8},
		{TeamID: "d", Points: 10, GoalsFor: 12, GoalsAgainst: 10},
		{TeamID: "e", Points: 10, GoalsFor: 12, GoalsAgainst: 10},
	}
	RankStandings(rows)

	// b and a tie on points and goal difference; b wins on goals for.
	assert.Equal(t, "b", rows[0].TeamID)
	assert.Equal(t, "a", rows[1].TeamID)
	// d and e fully tied; team id keeps the order reproducible.
	assert.Equal(t, "d", rows[2].TeamID)
	assert.Equal(t, "e", rows[3].TeamID)
	assert.Equal(t, "c", rows[4].TeamID)
}

// Incremental aggregation and a full replay over the fixture list must
// agree — the core correctness property of the aggregator.
func TestRebuildMatchesIncremental(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	teamIDs := []string{"t1", "t2", "t3", "t4", "t5", "t6"}

	fixtures, err := GenerateSchedule(teamIDs, ScheduleOptions{SeasonID: "2026", DivisionID: "d1", DoubleLeg: true})
	require.NoError(t, err)

	incremental := map[string]*models.StandingsRow{}
	for _, id := range teamIDs {
		incremental[id] = &models.StandingsRow{TeamID: id, SeasonID: "2026", DivisionID: "d1"}
	}

	for i := range fixtures {
		fixtures[i].Played = true
		fixtures[i].HomeGoals = rng.Intn(5)
		fixtures[i].AwayGoals = rng.Intn(4)
		ApplyResult(incremental[fixtures[i].HomeTeamID], incremental[fixtures[i].AwayTeamID], fixtures[i].HomeGoals, fixtures[i].AwayGoals)
	}

	rebuilt := RebuildStandings(fixtures, teamIDs, "2026", "d1")
	require.Len(t, rebuilt, len(teamIDs))
	for _, row := range rebuilt {
		inc := incremental[row.TeamID]
		assert.Equal(t, inc.Played, row.Played, row.TeamID)
		assert.Equal(t, inc.Wins, row.Wins, row.TeamID)
		assert.Equal(t, inc.Draws, row.Draws, row.TeamID)
		assert.Equal(t, inc.Losses, row.Losses, row.TeamID)
		assert.Equal(t, inc.GoalsFor, row.GoalsFor, row.TeamID)
		assert.Equal(t, inc.GoalsAgainst, row.GoalsAgainst, row.TeamID)
		assert.Equal(t, inc.Points, row.Points, row.TeamID)
	}
}

func TestRebuildIgnoresUnplayedFixtures(t *testing.T) {
	fixtures := []models.Fixture{
		{HomeTeamID: "t1", AwayTeamID: "t2", Played: true, HomeGoals: 2, AwayGoals: 0},
		{HomeTeamID: "t1", AwayTeamID: "t2", Played: false, HomeGoals: 9, AwayGoals: 9},
	}
	rows := RebuildStandings(fixtures, []string{"t1", "t2"}, "2026", "d1")
	require.Len(t, rows, 2)
	assert.Equal(t, "t1", rows[0].TeamID)
	assert.Equal(t, 1, rows[0].Played)
	assert.Equal(t, 3, rows[0].Points)
	assert.Equal(t, 1, rows[1].Played)
}
