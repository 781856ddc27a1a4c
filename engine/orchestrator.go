package engine

import (
	"fmt"
	"math/rand"
	"sync"

	"league-manager-system/models"
)

// Scope selects the fixtures and standings one operation works on.
// An empty DivisionID means "all divisions" for that season.
type Scope struct {
	LeagueID   string
	DivisionID string
	SeasonID   string
}

// TeamStore is the read side of the team/roster storage. Read-only from
// the engine's perspective.
type TeamStore interface {
	Team(teamID string) (*models.Team, error)
	TeamsInDivision(divisionID, seasonID string) ([]models.Team, error)
	Roster(teamID string) ([]models.Player, error)
}

// FixtureStore persists the schedule and match results.
type FixtureStore interface {
	InsertFixtures(fixtures []models.Fixture) error
	UnplayedFixtures(scope Scope, round int) ([]models.Fixture, error)
	CountUnplayedBefore(scope Scope, round int) (int, error)
	FirstUnplayedRound(scope Scope) (int, error) // 0 when the schedule is fully played or empty
	PlayedFixtures(scope Scope) ([]models.Fixture, error)
	MarkPlayed(fixtureID string, homeGoals, awayGoals int) error
	DeleteFixtures(scope Scope) error
}

// EventStore appends simulated match events.
type EventStore interface {
	AppendEvents(events []models.MatchEvent) error
}

// StandingsStore persists the cumulative table.
type StandingsStore interface {
	StandingsRow(teamID, seasonID string) (*models.StandingsRow, error) // nil, nil when absent
	UpsertStandingsRow(row *models.StandingsRow) error
	StandingsForScope(scope Scope) ([]models.StandingsRow, error)
	ResetStandings(scope Scope) error
}

// RatingStore appends per-match player ratings for leaderboards.
type RatingStore interface {
	AppendRatings(ratings []models.PlayerMatchRating) error
}

// Stores bundles the narrow persistence contracts the orchestrator
// drives. One struct so a transaction can rebind all of them at once.
type Stores struct {
	Teams     TeamStore
	Fixtures  FixtureStore
	Events    EventStore
	Standings StandingsStore
	Ratings   RatingStore
}

// TxRunner executes fn against transaction-bound stores. If fn returns
// an error nothing it wrote survives, which is what keeps a fixture's
// events, played flag, ratings and standings updates one atomic unit.
type TxRunner interface {
	InTx(fn func(s Stores) error) error
}

// FixtureFailure identifies one fixture the orchestrator could not
// commit and why. Fixtures committed before the failure stay valid.
type FixtureFailure struct {
	FixtureID string `json:"fixture_id"`
	Error     string `json:"error"`
}

// RoundReport summarises one simulateRound invocation.
type RoundReport struct {
	Round            int              `json:"round"`
	MatchesProcessed int              `json:"matches_processed"`
	AlreadyComplete  bool             `json:"already_complete"`
	SkippedPlayed    []string         `json:"skipped_played,omitempty"` // already-played fixtures surfaced as warnings
	Failures         []FixtureFailure `json:"failures,omitempty"`
}

// Orchestrator coordinates schedule generation, match simulation and
// standings aggregation for matchday runs. Rounds are processed
// strictly sequentially; the mutex keeps overlapping invocations from
// interleaving partial standings updates for the same team.
type Orchestrator struct {
	stores   Stores
	tx       TxRunner
	strategy OutcomeStrategy
	rng      *rand.Rand

	mu sync.Mutex
}

func NewOrchestrator(stores Stores, tx TxRunner, strategy OutcomeStrategy, rng *rand.Rand) *Orchestrator {
	return &Orchestrator{stores: stores, tx: tx, strategy: strategy, rng: rng}
}

// GenerateSchedule builds the round-robin fixture list for the scoped
// division and persists it.
func (o *Orchestrator) GenerateSchedule(teamIDs []string, opts ScheduleOptions) ([]models.Fixture, error) {
	fixtures, err := GenerateSchedule(teamIDs, opts)
	if err != nil {
		return nil, err
	}
	if err := o.stores.Fixtures.InsertFixtures(fixtures); err != nil {
		return nil, &DependencyError{Op: "insert fixtures", Err: err}
	}
	return fixtures, nil
}

// SimulateRound locates the scope's unplayed fixtures for the target
// round and plays each one. It refuses to run while an earlier round
// still has unplayed fixtures. A round with nothing left to play is a
// success with AlreadyComplete set, not an error.
func (o *Orchestrator) SimulateRound(scope Scope, round int) (*RoundReport, error) {
	if scope.SeasonID == "" {
		return nil, &ValidationError{Reason: "season id is required"}
	}
	if round < 1 {
		return nil, &ValidationError{Reason: fmt.Sprintf("round must be positive, got %d", round)}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	pending, err := o.stores.Fixtures.CountUnplayedBefore(scope, round)
	if err != nil {
		return nil, &DependencyError{Op: "count earlier unplayed fixtures", Err: err}
	}
	if pending > 0 {
		return nil, &SequencingError{Round: round, Unplayed: pending}
	}

	fixtures, err := o.stores.Fixtures.UnplayedFixtures(scope, round)
	if err != nil {
		return nil, &DependencyError{Op: "load unplayed fixtures", Err: err}
	}

	report := &RoundReport{Round: round}
	if len(fixtures) == 0 {
		report.AlreadyComplete = true
		return report, nil
	}

	// Team sheets are stable for the duration of a round; load each
	// team once.
	sheets := make(map[string]TeamSheet)

	for _, fixture := range fixtures {
		if fixture.Played {
			report.SkippedPlayed = append(report.SkippedPlayed, fixture.ID)
			continue
		}

		home, err := o.teamSheet(sheets, fixture.HomeTeamID)
		if err == nil {
			var away TeamSheet
			away, err = o.teamSheet(sheets, fixture.AwayTeamID)
			if err == nil {
				err = o.playFixture(fixture, home, away)
			}
		}
		if err != nil {
			report.Failures = append(report.Failures, FixtureFailure{FixtureID: fixture.ID, Error: err.Error()})
			continue
		}
		report.MatchesProcessed++
	}

	return report, nil
}

// SimulateNextRound finds the lowest round with unplayed fixtures in
// the scope and simulates it. Used by the auto-matchday scheduler.
func (o *Orchestrator) SimulateNextRound(scope Scope) (*RoundReport, error) {
	round, err := o.stores.Fixtures.FirstUnplayedRound(scope)
	if err != nil {
		return nil, &DependencyError{Op: "find next unplayed round", Err: err}
	}
	if round == 0 {
		return &RoundReport{AlreadyComplete: true}, nil
	}
	return o.SimulateRound(scope, round)
}

// RankedStandings returns the scope's table in display order.
func (o *Orchestrator) RankedStandings(scope Scope) ([]models.StandingsRow, error) {
	if scope.SeasonID == "" {
		return nil, &ValidationError{Reason: "season id is required"}
	}
	rows, err := o.stores.Standings.StandingsForScope(scope)
	if err != nil {
		return nil, &DependencyError{Op: "load standings", Err: err}
	}
	RankStandings(rows)
	return rows, nil
}

// ResetScope unschedules every fixture in the scope and zeroes (not
// deletes) every standings row for its teams. The only operation that
// moves played fixtures backward or decreases standings counters.
func (o *Orchestrator) ResetScope(scope Scope) error {
	if scope.SeasonID == "" {
		return &ValidationError{Reason: "season id is required"}
	}
	return o.tx.InTx(func(s Stores) error {
		if err := s.Fixtures.DeleteFixtures(scope); err != nil {
			return &DependencyError{Op: "delete fixtures", Err: err}
		}
		if err := s.Standings.ResetStandings(scope); err != nil {
			return &DependencyError{Op: "reset standings", Err: err}
		}
		return nil
	})
}

func (o *Orchestrator) teamSheet(cache map[string]TeamSheet, teamID string) (TeamSheet, error) {
	if sheet, ok := cache[teamID]; ok {
		return sheet, nil
	}

	team, err := o.stores.Teams.Team(teamID)
	if err != nil {
		return TeamSheet{}, &DependencyError{Op: "load team " + teamID, Err: err}
	}
	roster, err := o.stores.Teams.Roster(teamID)
	if err != nil {
		return TeamSheet{}, &DependencyError{Op: "load roster for " + teamID, Err: err}
	}

	lineup := roster
	if len(lineup) > 11 {
		lineup = lineup[:11]
	}
	sheet := TeamSheet{
		TeamID:  team.ID,
		Attack:  team.Attack,
		Defense: team.Defense,
		Overall: team.Overall,
		Lineup:  lineup,
	}
	cache[teamID] = sheet
	return sheet, nil
}

// playFixture simulates one fixture and commits its result (events,
// ratings, played flag and both standings updates) in one transaction.
func (o *Orchestrator) playFixture(fixture models.Fixture, home, away TeamSheet) error {
	result := o.strategy.Play(home, away)

	events := result.Events
	for i := range events {
		events[i].FixtureID = fixture.ID
	}

	ratings := o.rateLineups(fixture, home, away, result)

	err := o.tx.InTx(func(s Stores) error {
		if len(events) > 0 {
			if err := s.Events.AppendEvents(events); err != nil {
				return &DependencyError{Op: "append events", Err: err}
			}
		}
		if len(ratings) > 0 {
			if err := s.Ratings.AppendRatings(ratings); err != nil {
				return &DependencyError{Op: "append ratings", Err: err}
			}
		}
		if err := s.Fixtures.MarkPlayed(fixture.ID, result.HomeGoals, result.AwayGoals); err != nil {
			return &DependencyError{Op: "mark played", Err: err}
		}
		return o.applyStandings(s, fixture, result)
	})
	return err
}

func (o *Orchestrator) applyStandings(s Stores, fixture models.Fixture, result Result) error {
	homeRow, err := o.standingsRow(s, fixture.HomeTeamID, fixture)
	if err != nil {
		return err
	}
	awayRow, err := o.standingsRow(s, fixture.AwayTeamID, fixture)
	if err != nil {
		return err
	}

	ApplyResult(homeRow, awayRow, result.HomeGoals, result.AwayGoals)

	if err := s.Standings.UpsertStandingsRow(homeRow); err != nil {
		return &DependencyError{Op: "upsert home standings", Err: err}
	}
	if err := s.Standings.UpsertStandingsRow(awayRow); err != nil {
		return &DependencyError{Op: "upsert away standings", Err: err}
	}
	return nil
}

// standingsRow loads a team's row, creating a zeroed one on first
// appearance in the season.
func (o *Orchestrator) standingsRow(s Stores, teamID string, fixture models.Fixture) (*models.StandingsRow, error) {
	row, err := s.Standings.StandingsRow(teamID, fixture.SeasonID)
	if err != nil {
		return nil, &DependencyError{Op: "load standings row for " + teamID, Err: err}
	}
	if row == nil {
		row = &models.StandingsRow{
			TeamID:     teamID,
			SeasonID:   fixture.SeasonID,
			DivisionID: fixture.DivisionID,
		}
	}
	return row, nil
}

func (o *Orchestrator) rateLineups(fixture models.Fixture, home, away TeamSheet, result Result) []models.PlayerMatchRating {
	var ratings []models.PlayerMatchRating
	ratings = append(ratings, o.rateSide(fixture, home, result.Events, result.AwayGoals == 0)...)
	ratings = append(ratings, o.rateSide(fixture, away, result.Events, result.HomeGoals == 0)...)
	return ratings
}

func (o *Orchestrator) rateSide(fixture models.Fixture, side TeamSheet, events []models.MatchEvent, cleanSheet bool) []models.PlayerMatchRating {
	perfs := TallyPerformances(side.Lineup, events, side.TeamID, cleanSheet)
	ratings := make([]models.PlayerMatchRating, 0, len(side.Lineup))
	for _, p := range side.Lineup {
		ratings = append(ratings, models.PlayerMatchRating{
			FixtureID:  fixture.ID,
			PlayerID:   p.ID,
			TeamID:     side.TeamID,
			SeasonID:   fixture.SeasonID,
			Rating:     MatchRating(p.Position, perfs[p.ID], o.rng),
			CleanSheet: cleanSheet,
		})
	}
	return ratings
}
