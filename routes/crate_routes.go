package routes

import (
	"asikh-oms/config"
	"asikh-oms/controllers"
	"asikh-oms/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupCrateRoutes(app *fiber.App, db *gorm.DB) {
	crateController := controllers.NewCrateController(db)

	crates := app.Group(config.MAIN_ROUTES+"/crates", middleware.AuthMiddleware)

	crates.Post("/", middleware.RequireRole("admin", "manager", "supervisor", "harvester"), crateController.CreateCrate)
	crates.Get("/", crateController.ListCrates)
	crates.Get("/unassigned", crateController.ListUnassignedCrates)
	crates.Get("/qr/:qr_code", crateController.GetCrateByQR)
	crates.Get("/:id", crateController.GetCrateByID)
	crates.Put("/:id", middleware.RequireRole("admin", "manager", "supervisor"), crateController.UpdateCrate)
	crates.Post("/batch-assign", middleware.RequireRole("admin", "manager", "supervisor", "harvester"), crateController.AssignToBatch)
}
