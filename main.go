package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"league-manager-system/handlers"
	"league-manager-system/middleware"
	"league-manager-system/models"
	"league-manager-system/services"
	"league-manager-system/utils"
	"league-manager-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Division{},
		&models.Team{},
		&models.Player{},
		&models.Fixture{},
		&models.MatchEvent{},
		&models.StandingsRow{},
		&models.PlayerMatchRating{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	leagueService := services.NewLeagueService(db)

	// --- CONFIGURE AI report service (optional) ---
	var reportClient *services.ReportClient
	aiServiceURL := os.Getenv("AI_SERVICE_URL")
	if aiServiceURL == "" {
		log.Println("⚠️  AI_SERVICE_URL not set — match reports disabled")
	} else {
		reportClient = services.NewReportClient(aiServiceURL, os.Getenv("AI_SERVICE_TOKEN"))
	}
	// --- END CONFIG ---

	seasonService := services.NewSeasonService(db, reportClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Team strength ratings from the sports-data provider
	if os.Getenv("SPORTS_DATA_URL") != "" {
		ratingsClient := workers.NewRatingsSyncClient(db)
		go workers.PollRatings(ctx, ratingsClient, 10*time.Minute)
		log.Println("✅ Ratings sync polling running (every 10m)")
	} else {
		log.Println("⚠️  SPORTS_DATA_URL not set — ratings sync disabled")
	}

	seasonService.StartMatchdayScheduler(15 * time.Minute)

	handlers.SetupLeagueRoutes(app, leagueService, seasonService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Matchday scheduler running (every 15m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
