package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-manager-system/models"
)

func scheduleOpts() ScheduleOptions {
	return ScheduleOptions{
		LeagueID:   "league-1",
		DivisionID: "div-1",
		SeasonID:   "2026",
	}
}

func TestGenerateScheduleFourTeams(t *testing.T) {
	fixtures, err := GenerateSchedule([]string{"A", "B", "C", "D"}, scheduleOpts())
	require.NoError(t, err)

	// 3 rounds, 2 matches per round, 6 fixtures total
	assert.Len(t, fixtures, 6)

	perRound := map[int]int{}
	pairs := map[string]int{}
	for _, f := range fixtures {
		perRound[f.Round]++
		a, b := f.HomeTeamID, f.AwayTeamID
		require.NotEqual(t, a, b, "a team must never play itself")
		if a > b {
			a, b = b, a
		}
		pairs[a+"-"+b]++
	}

	assert.Len(t, perRound, 3)
	for round, count := range perRound {
		assert.Equal(t, 2, count, "round %d", round)
	}
	assert.Len(t, pairs, 6)
	for pair, count := range pairs {
		assert.Equal(t, 1, count, "pair %s must meet exactly once", pair)
	}
}

func TestGenerateScheduleNoTeamTwicePerRound(t *testing.T) {
	for n := 2; n <= 12; n++ {
		teams := make([]string, n)
		for i := range teams {
			teams[i] = fmt.Sprintf("team-%d", i)
		}
		fixtures, err := GenerateSchedule(teams, scheduleOpts())
		require.NoError(t, err, "n=%d", n)

		// n*(n-1)/2 fixtures per leg
		assert.Len(t, fixtures, n*(n-1)/2, "n=%d", n)

		seen := map[int]map[string]bool{}
		maxRound := 0
		for _, f := range fixtures {
			if seen[f.Round] == nil {
				seen[f.Round] = map[string]bool{}
			}
			require.False(t, seen[f.Round][f.HomeTeamID], "n=%d: %s twice in round %d", n, f.HomeTeamID, f.Round)
			require.False(t, seen[f.Round][f.AwayTeamID], "n=%d: %s twice in round %d", n, f.AwayTeamID, f.Round)
			seen[f.Round][f.HomeTeamID] = true
			seen[f.Round][f.AwayTeamID] = true
			if f.Round > maxRound {
				maxRound = f.Round
			}
		}

		// N-1 rounds for even N, N rounds with one idle team for odd N
		if n%2 == 0 {
			assert.Equal(t, n-1, maxRound, "n=%d", n)
		} else {
			assert.Equal(t, n, maxRound, "n=%d", n)
			for round, teamsInRound := range seen {
				assert.Len(t, teamsInRound, n-1, "n=%d round %d should idle one team", n, round)
			}
		}
	}
}

func TestGenerateScheduleDoubleLeg(t *testing.T) {
	opts := scheduleOpts()
	opts.DoubleLeg = true
	fixtures, err := GenerateSchedule([]string{"A", "B", "C", "D"}, opts)
	require.NoError(t, err)
	require.Len(t, fixtures, 12)

	// Second leg inverts home/away for each first-leg pairing.
	type venue struct{ home, away string }
	legOne := map[venue]bool{}
	for _, f := range fixtures[:6] {
		legOne[venue{f.HomeTeamID, f.AwayTeamID}] = true
	}
	for _, f := range fixtures[6:] {
		assert.True(t, legOne[venue{f.AwayTeamID, f.HomeTeamID}], "%s vs %s should mirror a first-leg fixture", f.HomeTeamID, f.AwayTeamID)
		assert.Greater(t, f.Round, 3)
		assert.LessOrEqual(t, f.Round, 6)
	}
}

func TestGenerateScheduleValidation(t *testing.T) {
	var vErr *ValidationError

	_, err := GenerateSchedule(nil, scheduleOpts())
	require.ErrorAs(t, err, &vErr)

	_, err = GenerateSchedule([]string{"A"}, scheduleOpts())
	require.ErrorAs(t, err, &vErr)

	_, err = GenerateSchedule([]string{"A", "A"}, scheduleOpts())
	require.ErrorAs(t, err, &vErr)

	_, err = GenerateSchedule([]string{"A", "B"}, ScheduleOptions{})
	require.ErrorAs(t, err, &vErr, "missing season id")
}

func TestGenerateScheduleDefaultsCompetition(t *testing.T) {
	fixtures, err := GenerateSchedule([]string{"A", "B"}, scheduleOpts())
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, models.CompetitionLeague, fixtures[0].Competition)
	assert.False(t, fixtures[0].Played)
}
