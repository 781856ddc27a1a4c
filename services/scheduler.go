// services/scheduler.go
package services

import (
	"log"
	"time"

	"league-manager-system/engine"
	"league-manager-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartMatchdayScheduler simulates the next round for every auto-sim
// division on an interval. Rounds advance one at a time, so a division
// never jumps ahead of its own unplayed fixtures.
func (s *SeasonService) StartMatchdayScheduler(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			var divisions []models.Division
			err := s.DB.Where("auto_sim = true").Find(&divisions).Error
			if err != nil {
				log.Printf("[Matchday] DB error: %v", err)
				return
			}

			for _, d := range divisions {
				scope := engine.Scope{LeagueID: d.LeagueID, DivisionID: d.ID, SeasonID: d.SeasonID}
				report, err := s.Orchestrator.SimulateNextRound(scope)
				if err != nil {
					log.Printf("[Matchday] Failed to simulate %s: %v", d.Name, err)
					continue
				}
				if report.AlreadyComplete {
					continue
				}
				log.Printf("✅ Auto-simulated round %d for %s (%d matches, %d failures)",
					report.Round, d.Name, report.MatchesProcessed, len(report.Failures))
			}
		}),
	)
}
