package handlers

import (
	"league-manager-system/middleware"
	"league-manager-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeagueRoutes(app *fiber.App, leagueService *services.LeagueService, seasonService *services.SeasonService) {
	// 🔓 Public read-only routes
	app.Get("/divisions", leagueService.GetDivisions)
	app.Get("/teams", leagueService.GetTeams)
	app.Get("/teams/:id", leagueService.GetTeamByID)
	app.Get("/teams/:id/roster", leagueService.GetRoster)
	app.Get("/players/free-agents", leagueService.GetFreeAgentPlayers)
	app.Get("/seasons/:season_id/fixtures", seasonService.GetFixtures)
	app.Get("/seasons/:season_id/standings", seasonService.GetStandings)
	app.Get("/seasons/:season_id/topscorers", seasonService.GetTopScorers)
	app.Get("/seasons/:season_id/best-eleven", seasonService.GetBestEleven)
	app.Get("/fixtures/:id/report", seasonService.GetMatchReport)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	// League structure (Admin/Manager only)
	secured.Post("/divisions", leagueService.CreateDivision)
	secured.Post("/teams", leagueService.CreateTeam)
	secured.Patch("/teams/:id/division", leagueService.AssignTeamToDivision)

	// Roster management
	secured.Post("/players", leagueService.CreatePlayer)
	secured.Post("/teams/:id/players/:player_id", leagueService.SignPlayer)
	secured.Delete("/teams/:id/players/:player_id", leagueService.ReleasePlayer)

	// Season operations
	secured.Post("/divisions/:id/seasons/:season_id/schedule", seasonService.GenerateSchedule)
	secured.Post("/seasons/:season_id/rounds/:round/simulate", seasonService.SimulateRound)
	secured.Post("/divisions/:id/seasons/:season_id/reset", seasonService.ResetSeason)

	// 🔒 Admin-only routes
	admin := secured.Group("/admin")
	admin.Post("/seasons/:season_id/standings/rebuild", seasonService.RebuildStandings)
}
