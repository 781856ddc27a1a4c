package engine

import (
	"math/rand"

	"league-manager-system/models"
)

// TeamSheet is everything the simulator needs to know about one side:
// strength ratings plus the ordered roster. Lineup holds the active
// players (first 11 of the roster); the aggregate strategy ignores it.
type TeamSheet struct {
	TeamID  string
	Attack  int
	Defense int
	Overall int
	Lineup  []models.Player
}

// Result is a simulated final score plus the in-match events that
// produced it. FixtureID on the events is filled in by the caller.
type Result struct {
	HomeGoals int
	AwayGoals int
	Events    []models.MatchEvent
}

// OutcomeStrategy turns two team sheets into a match result. The two
// implementations are interchangeable; which one runs is configuration,
// and the orchestrator never cares which it got.
type OutcomeStrategy interface {
	Play(home, away TeamSheet) Result
}

// Strategy names accepted by NewStrategy.
const (
	StrategyPoisson = "poisson"
	StrategyMinute  = "minute"
)

// NewStrategy builds the configured outcome strategy around the given
// random source.
func NewStrategy(name string, rng *rand.Rand) (OutcomeStrategy, error) {
	switch name {
	case StrategyPoisson, "":
		return &PoissonStrategy{Rng: rng}, nil
	case StrategyMinute:
		return &MinuteStrategy{Rng: rng}, nil
	default:
		return nil, &ValidationError{Reason: "unknown outcome strategy: " + name}
	}
}

// PoissonStrategy derives each side's expected-goal rate from its
// attack/overall ratings discounted by the opposing defense, then draws
// the actual goal count from a Poisson distribution. Produces a final
// score only, no timestamped events.
type PoissonStrategy struct {
	Rng *rand.Rand

	// HomeAdvantage is added to the home side's rate. Zero value keeps
	// the default.
	HomeAdvantage float64
}

func (s *PoissonStrategy) Play(home, away TeamSheet) Result {
	bonus := s.HomeAdvantage
	if bonus == 0 {
		bonus = 0.15
	}

	lambdaHome := expectedGoals(home.Attack, home.Overall, away.Defense) + bonus
	lambdaAway := expectedGoals(away.Attack, away.Overall, home.Defense)

	return Result{
		HomeGoals: PoissonSample(s.Rng, lambdaHome),
		AwayGoals: PoissonSample(s.Rng, lambdaAway),
	}
}

// expectedGoals is the linear rating model: attack-weighted strength
// discounted by the opposing defense. Can go negative for weak sides;
// PoissonSample clamps to MinLambda.
func expectedGoals(attack, overall, oppDefense int) float64 {
	return (0.6*float64(attack) + 0.4*float64(overall) - 0.62*float64(oppDefense)) / 22.0
}

// Per-minute event probabilities for the minute-by-minute strategy.
const (
	minuteGoalProb   = 0.007
	minuteYellowProb = 0.0015
	minuteRedProb    = 0.0002
	assistProb       = 0.65
)

// MinuteStrategy simulates 90 discrete minutes. Each minute, each side
// rolls against fixed per-minute probabilities for a goal and for
// cards; scorers and offenders are drawn uniformly from the active
// lineup. A side with no available players contributes no events but
// the match still completes with whatever score accrued.
type MinuteStrategy struct {
	Rng *rand.Rand
}

func (s *MinuteStrategy) Play(home, away TeamSheet) Result {
	var res Result
	for minute := 1; minute <= 90; minute++ {
		s.simulateMinute(&res, home, minute, true)
		s.simulateMinute(&res, away, minute, false)
	}
	return res
}

func (s *MinuteStrategy) simulateMinute(res *Result, side TeamSheet, minute int, isHome bool) {
	if len(side.Lineup) == 0 {
		return
	}

	if s.Rng.Float64() < minuteGoalProb {
		scorer := side.Lineup[s.Rng.Intn(len(side.Lineup))]
		res.Events = append(res.Events, models.MatchEvent{
			TeamID:   side.TeamID,
			PlayerID: scorer.ID,
			Type:     models.EventGoal,
			Minute:   minute,
		})
		if isHome {
			res.HomeGoals++
		} else {
			res.AwayGoals++
		}

		// Most goals are assisted by a teammate other than the scorer.
		if len(side.Lineup) > 1 && s.Rng.Float64() < assistProb {
			assister := scorer
			for assister.ID == scorer.ID {
				assister = side.Lineup[s.Rng.Intn(len(side.Lineup))]
			}
			res.Events = append(res.Events, models.MatchEvent{
				TeamID:   side.TeamID,
				PlayerID: assister.ID,
				Type:     models.EventAssist,
				Minute:   minute,
			})
		}
	}

	if s.Rng.Float64() < minuteYellowProb {
		offender := side.Lineup[s.Rng.Intn(len(side.Lineup))]
		res.Events = append(res.Events, models.MatchEvent{
			TeamID:   side.TeamID,
			PlayerID: offender.ID,
			Type:     models.EventYellowCard,
			Minute:   minute,
		})
	}

	if s.Rng.Float64() < minuteRedProb {
		offender := side.Lineup[s.Rng.Intn(len(side.Lineup))]
		res.Events = append(res.Events, models.MatchEvent{
			TeamID:   side.TeamID,
			PlayerID: offender.ID,
			Type:     models.EventRedCard,
			Minute:   minute,
		})
	}
}
