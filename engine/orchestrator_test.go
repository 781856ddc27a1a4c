package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-manager-system/models"
)

// memStores is an in-memory implementation of the store contracts for
// orchestrator tests. InTx snapshots mutable state and restores it when
// fn fails, mirroring the rollback the real stores get from Postgres.
type memStores struct {
	teams     map[string]*models.Team
	rosters   map[string][]models.Player
	fixtures  []*models.Fixture
	events    []models.MatchEvent
	ratings   []models.PlayerMatchRating
	standings map[string]*models.StandingsRow // teamID|seasonID

	leakPlayedFixtures bool // make UnplayedFixtures return played rows, as a stale read would
	markPlayedFailures int  // fail MarkPlayed after this many successes (0 = never)
	markPlayedCalls    int
}

func newMemStores() *memStores {
	return &memStores{
		teams:     map[string]*models.Team{},
		rosters:   map[string][]models.Player{},
		standings: map[string]*models.StandingsRow{},
	}
}

func (m *memStores) addTeam(id string, squad int) {
	m.teams[id] = &models.Team{ID: id, Name: "Team " + id, Attack: 70, Defense: 65, Overall: 68}
	for i := 0; i < squad; i++ {
		pos := models.PositionForward
		if i == 0 {
			pos = models.PositionGoalkeeper
		}
		m.rosters[id] = append(m.rosters[id], models.Player{ID: fmt.Sprintf("%s-p%d", id, i), Position: pos})
	}
}

func (m *memStores) Team(teamID string) (*models.Team, error) {
	t, ok := m.teams[teamID]
	if !ok {
		return nil, errors.New("team not found: " + teamID)
	}
	return t, nil
}

func (m *memStores) TeamsInDivision(divisionID, seasonID string) ([]models.Team, error) {
	var out []models.Team
	for _, t := range m.teams {
		out = append(out, *t)
	}
	return out, nil
}

func (m *memStores) Roster(teamID string) ([]models.Player, error) {
	return m.rosters[teamID], nil
}

func (m *memStores) inScope(f *models.Fixture, scope Scope) bool {
	if f.SeasonID != scope.SeasonID {
		return false
	}
	return scope.DivisionID == "" || f.DivisionID == scope.DivisionID
}

func (m *memStores) InsertFixtures(fixtures []models.Fixture) error {
	for i := range fixtures {
		f := fixtures[i]
		if f.ID == "" {
			f.ID = fmt.Sprintf("fx-%d", len(m.fixtures)+1)
		}
		m.fixtures = append(m.fixtures, &f)
	}
	return nil
}

func (m *memStores) UnplayedFixtures(scope Scope, round int) ([]models.Fixture, error) {
	var out []models.Fixture
	for _, f := range m.fixtures {
		if m.inScope(f, scope) && f.Round == round && (!f.Played || m.leakPlayedFixtures) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *memStores) CountUnplayedBefore(scope Scope, round int) (int, error) {
	n := 0
	for _, f := range m.fixtures {
		if m.inScope(f, scope) && f.Round < round && !f.Played {
			n++
		}
	}
	return n, nil
}

func (m *memStores) FirstUnplayedRound(scope Scope) (int, error) {
	first := 0
	for _, f := range m.fixtures {
		if m.inScope(f, scope) && !f.Played && (first == 0 || f.Round < first) {
			first = f.Round
		}
	}
	return first, nil
}

func (m *memStores) PlayedFixtures(scope Scope) ([]models.Fixture, error) {
	var out []models.Fixture
	for _, f := range m.fixtures {
		if m.inScope(f, scope) && f.Played {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *memStores) MarkPlayed(fixtureID string, homeGoals, awayGoals int) error {
	if m.markPlayedFailures > 0 {
		m.markPlayedCalls++
		if m.markPlayedCalls > m.markPlayedFailures {
			return errors.New("write timeout")
		}
	}
	for _, f := range m.fixtures {
		if f.ID == fixtureID {
			f.Played = true
			f.HomeGoals = homeGoals
			f.AwayGoals = awayGoals
			return nil
		}
	}
	return errors.New("fixture not found: " + fixtureID)
}

func (m *memStores) DeleteFixtures(scope Scope) error {
	var kept []*models.Fixture
	for _, f := range m.fixtures {
		if !m.inScope(f, scope) {
			kept = append(kept, f)
		}
	}
	m.fixtures = kept
	return nil
}

func (m *memStores) AppendEvents(events []models.MatchEvent) error {
	m.events = append(m.events, events...)
	return nil
}

func (m *memStores) AppendRatings(ratings []models.PlayerMatchRating) error {
	m.ratings = append(m.ratings, ratings...)
	return nil
}

func (m *memStores) StandingsRow(teamID, seasonID string) (*models.StandingsRow, error) {
	row, ok := m.standings[teamID+"|"+seasonID]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (m *memStores) UpsertStandingsRow(row *models.StandingsRow) error {
	cp := *row
	m.standings[row.TeamID+"|"+row.SeasonID] = &cp
	return nil
}

func (m *memStores) StandingsForScope(scope Scope) ([]models.StandingsRow, error) {
	var out []models.StandingsRow
	for _, row := range m.standings {
		if row.SeasonID != scope.SeasonID {
			continue
		}
		if scope.DivisionID != "" && row.DivisionID != scope.DivisionID {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (m *memStores) ResetStandings(scope Scope) error {
	for _, row := range m.standings {
		if row.SeasonID != scope.SeasonID {
			continue
		}
		if scope.DivisionID != "" && row.DivisionID != scope.DivisionID {
			continue
		}
		*row = models.StandingsRow{TeamID: row.TeamID, SeasonID: row.SeasonID, DivisionID: row.DivisionID}
	}
	return nil
}

func (m *memStores) stores() Stores {
	return Stores{Teams: m, Fixtures: m, Events: m, Standings: m, Ratings: m}
}

func (m *memStores) InTx(fn func(s Stores) error) error {
	// snapshot
	events := append([]models.MatchEvent(nil), m.events...)
	ratings := append([]models.PlayerMatchRating(nil), m.ratings...)
	fixtures := make([]*models.Fixture, len(m.fixtures))
	for i, f := range m.fixtures {
		cp := *f
		fixtures[i] = &cp
	}
	standings := map[string]*models.StandingsRow{}
	for k, v := range m.standings {
		cp := *v
		standings[k] = &cp
	}

	if err := fn(m.stores()); err != nil {
		m.events = events
		m.ratings = ratings
		m.fixtures = fixtures
		m.standings = standings
		return err
	}
	return nil
}

func testOrchestrator(m *memStores, strategy OutcomeStrategy) *Orchestrator {
	return NewOrchestrator(m.stores(), m, strategy, rand.New(rand.NewSource(99)))
}

func seededLeague(t *testing.T, m *memStores) Scope {
	t.Helper()
	scope := Scope{DivisionID: "d1", SeasonID: "2026"}
	teamIDs := []string{"t1", "t2", "t3", "t4"}
	for _, id := range teamIDs {
		m.addTeam(id, 13)
	}
	fixtures, err := GenerateSchedule(teamIDs, ScheduleOptions{DivisionID: "d1", SeasonID: "2026"})
	require.NoError(t, err)
	require.NoError(t, m.InsertFixtures(fixtures))
	return scope
}

func TestSimulateRoundHappyPath(t *testing.T) {
	m := newMemStores()
	scope := seededLeague(t, m)
	o := testOrchestrator(m, &PoissonStrategy{Rng: rand.New(rand.NewSource(40))})

	report, err := o.SimulateRound(scope, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, report.MatchesProcessed)
	assert.False(t, report.AlreadyComplete)
	assert.Empty(t, report.Failures)

	played, err := m.PlayedFixtures(scope)
	require.NoError(t, err)
	assert.Len(t, played, 2)

	rows, err := o.RankedStandings(scope)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, row := range rows {
		assert.Equal(t, 1, row.Played)
		assert.Equal(t, 3*row.Wins+row.Draws, row.Points)
	}

	// every lineup player of both fixtures got a match rating
	assert.Len(t, m.ratings, 4*11)
	for _, r := range m.ratings {
		assert.GreaterOrEqual(t, r.Rating, 1.0)
		assert.LessOrEqual(t, r.Rating, 10.0)
	}
}

func TestSimulateRoundSequencingGuard(t *testing.T) {
	m := newMemStores()
	scope := seededLeague(t, m)
	o := testOrchestrator(m, &PoissonStrategy{Rng: rand.New(rand.NewSource(41))})

	_, err := o.SimulateRound(scope, 2)
	var seqErr *SequencingError
	require.ErrorAs(t, err, &seqErr)
	assert.Equal(t, 2, seqErr.Round)
	assert.Equal(t, 2, seqErr.Unplayed)

	// nothing was touched
	assert.Empty(t, m.standings)
	played, _ := m.PlayedFixtures(scope)
	assert.Empty(t, played)
}

func TestSimulateRoundAlreadyComplete(t *testing.T) {
	m := newMemStores()
	scope := seededLeague(t, m)
	o := testOrchestrator(m, &PoissonStrategy{Rng: rand.New(rand.NewSource(42))})

	_, err := o.SimulateRound(scope, 1)
	require.NoError(t, err)

	report, err := o.SimulateRound(scope, 1)
	require.NoError(t, err)
	assert.True(t, report.AlreadyComplete)
	assert.Zero(t, report.MatchesProcessed)
}

func TestSimulateRoundSkipsPlayedFixtures(t *testing.T) {
	m := newMemStores()
	scope := seededLeague(t, m)
	o := testOrchestrator(m, &MinuteStrategy{Rng: rand.New(rand.NewSource(43))})

	_, err := o.SimulateRound(scope, 1)
	require.NoError(t, err)

	eventsBefore := len(m.events)
	standingsBefore := map[string]models.StandingsRow{}
	for k, v := range m.standings {
		standingsBefore[k] = *v
	}

	// A stale read hands the orchestrator already-played fixtures; they
	// must be skipped with a warning, never reapplied.
	m.leakPlayedFixtures = true
	report, err := o.SimulateRound(scope, 1)
	require.NoError(t, err)
	assert.Zero(t, report.MatchesProcessed)
	assert.Len(t, report.SkippedPlayed, 2)

	assert.Len(t, m.events, eventsBefore, "no duplicate events")
	for k, v := range m.standings {
		assert.Equal(t, standingsBefore[k], *v, "standings unchanged for %s", k)
	}
}

func TestSimulateRoundPartialCompletion(t *testing.T) {
	m := newMemStores()
	scope := seededLeague(t, m)
	m.markPlayedFailures = 1 // second MarkPlayed fails
	o := testOrchestrator(m, &PoissonStrategy{Rng: rand.New(rand.NewSource(44))})

	report, err := o.SimulateRound(scope, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.MatchesProcessed)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0].Error, "mark played")

	// the committed fixture stays valid, the failed one rolled back whole
	played, _ := m.PlayedFixtures(scope)
	assert.Len(t, played, 1)
	assert.Len(t, m.standings, 2)
	assert.Len(t, m.ratings, 2*11)
}

func TestSimulateNextRoundWalksSchedule(t *testing.T) {
	m := newMemStores()
	scope := seededLeague(t, m)
	o := testOrchestrator(m, &PoissonStrategy{Rng: rand.New(rand.NewSource(45))})

	for want := 1; want <= 3; want++ {
		report, err := o.SimulateNextRound(scope)
		require.NoError(t, err)
		assert.Equal(t, want, report.Round)
		assert.Equal(t, 2, report.MatchesProcessed)
	}

	report, err := o.SimulateNextRound(scope)
	require.NoError(t, err)
	assert.True(t, report.AlreadyComplete)
}

func TestResetScopeZeroesStandingsKeepsTeams(t *testing.T) {
	m := newMemStores()
	scope := seededLeague(t, m)
	o := testOrchestrator(m, &PoissonStrategy{Rng: rand.New(rand.NewSource(46))})

	_, err := o.SimulateRound(scope, 1)
	require.NoError(t, err)

	require.NoError(t, o.ResetScope(scope))

	assert.Empty(t, m.fixtures, "fixtures removed for the scope")
	assert.Len(t, m.standings, 4, "rows zeroed, not deleted")
	for _, row := range m.standings {
		assert.Zero(t, row.Played)
		assert.Zero(t, row.Points)
		assert.Zero(t, row.GoalsFor)
	}
	assert.Len(t, m.teams, 4, "teams and rosters untouched")
	assert.Len(t, m.rosters, 4)
}

func TestSimulateRoundValidation(t *testing.T) {
	m := newMemStores()
	o := testOrchestrator(m, &PoissonStrategy{Rng: rand.New(rand.NewSource(47))})

	var vErr *ValidationError
	_, err := o.SimulateRound(Scope{}, 1)
	require.ErrorAs(t, err, &vErr)

	_, err = o.SimulateRound(Scope{SeasonID: "2026"}, 0)
	require.ErrorAs(t, err, &vErr)
}
