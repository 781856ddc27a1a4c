package engine

import (
	"sort"

	"league-manager-system/models"
)

// ApplyResult folds one completed fixture into both sides' standings
// rows: played +1 each, win/draw/loss counters, goals for/against, and
// points (3 for a win, 1 each for a draw). Must be applied exactly once
// per fixture — the caller gates on the fixture's played flag.
func ApplyResult(home, away *models.StandingsRow, homeGoals, awayGoals int) {
	home.Played++
	away.Played++
	home.GoalsFor += homeGoals
	home.GoalsAgainst += awayGoals
	away.GoalsFor += awayGoals
	away.GoalsAgainst += homeGoals

	switch {
	case homeGoals > awayGoals:
		home.Wins++
		home.Points += 3
		away.Losses++
	case homeGoals < awayGoals:
		away.Wins++
		away.Points += 3
		home.Losses++
	default:
		home.Draws++
		home.Points++
		away.Draws++
		away.Points++
	}
}

// RankStandings orders rows for display: points desc, goal difference
// desc, goals for desc, then team ID so fully tied rows keep a stable,
// reproducible order.
func RankStandings(rows []models.StandingsRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamID < b.TeamID
	})
}

// RebuildStandings replays every played fixture from a zeroed table.
// The result must match incrementally maintained rows exactly; the
// admin rebuild endpoint and the equivalence tests both ride on this.
func RebuildStandings(fixtures []models.Fixture, teamIDs []string, seasonID, divisionID string) []models.StandingsRow {
	index := make(map[string]*models.StandingsRow, len(teamIDs))
	rows := make([]models.StandingsRow, len(teamIDs))
	for i, id := range teamIDs {
		rows[i] = models.StandingsRow{TeamID: id, SeasonID: seasonID, DivisionID: divisionID}
		index[id] = &rows[i]
	}

	for _, f := range fixtures {
		if !f.Played {
			continue
		}
		home, ok := index[f.HomeTeamID]
		if !ok {
			continue
		}
		away, ok := index[f.AwayTeamID]
		if !ok {
			continue
		}
		ApplyResult(home, away, f.HomeGoals, f.AwayGoals)
	}

	RankStandings(rows)
	return rows
}
