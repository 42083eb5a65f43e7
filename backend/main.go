package main

import (
	"log"
	"studytrack/backend/config"
	"studytrack/backend/middleware"
	"studytrack/backend/progress"
	"studytrack/backend/routes"
	"studytrack/backend/scheduler"
	"studytrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	if err := utils.AutoMigrate(db); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Progress event bus and cached aggregator
	bus := progress.NewBus()
	agg := progress.NewAggregator(bus)
	bus.Subscribe(progress.EventProgressUpdated, func(e progress.Event) {
		logger.Printf("progress updated for user %d: overall %d%%", e.UserID, e.Snapshot.Overall)
	})

	// Nightly rollup
	sched := scheduler.New(db, agg, logger)
	if err := sched.Start(cfg.RollupAt); err != nil {
		log.Fatalf("Error starting scheduler: %v", err)
	}
	defer sched.Stop()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, agg)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
