package main

import (
	"log"

	"asikh-oms/config"
	"asikh-oms/controllers/idgen"
	"asikh-oms/database"
	"asikh-oms/routes"

	"github.com/gofiber/fiber/v2"
)

func main() {
	config.LoadConfig()
	idgen.Init()

	db, err := database.Open()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	database.RunSeeders(db)

	app := fiber.New(fiber.Config{
		AppName:   "Asikh OMS",
		BodyLimit: 10 * 1024 * 1024,
	})

	config.SetupCORS(app)

	app.Static(config.StorageURL, config.StorageDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.SetupAuthRoutes(app, db)
	routes.SetupUserRoutes(app, db)
	routes.SetupFarmRoutes(app, db)
	routes.SetupPackhouseRoutes(app, db)
	routes.SetupVarietyRoutes(app, db)
	routes.SetupQRCodeRoutes(app, db)
	routes.SetupBatchRoutes(app, db)
	routes.SetupCrateRoutes(app, db)
	routes.SetupReportRoutes(app, db)

	log.Printf("Server running on port %s", config.APP_PORT)
	if err := app.Listen(":" + config.APP_PORT); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
