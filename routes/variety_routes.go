package routes

import (
	"asikh-oms/config"
	"asikh-oms/controllers"
	"asikh-oms/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupVarietyRoutes(app *fiber.App, db *gorm.DB) {
	varietyController := controllers.NewVarietyController(db)

	varieties := app.Group(config.MAIN_ROUTES+"/varieties", middleware.AuthMiddleware)

	varieties.Post("/", middleware.RequireRole("admin", "manager"), varietyController.CreateVariety)
	varieties.Get("/", varietyController.ListVarieties)
	varieties.Get("/:id", varietyController.GetVarietyByID)
	varieties.Put("/:id", middleware.RequireRole("admin", "manager"), varietyController.UpdateVariety)
	varieties.Delete("/:id", middleware.RequireRole("admin"), varietyController.DeleteVariety)
}
