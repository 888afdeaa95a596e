package routes

import (
	"asikh-oms/config"
	"asikh-oms/controllers"
	"asikh-oms/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupFarmRoutes(app *fiber.App, db *gorm.DB) {
	farmController := controllers.NewFarmController(db)

	farms := app.Group(config.MAIN_ROUTES+"/farms", middleware.AuthMiddleware)

	farms.Post("/", middleware.RequireRole("admin", "manager"), farmController.CreateFarm)
	farms.Get("/", farmController.ListFarms)
	farms.Get("/:id", farmController.GetFarmByID)
	farms.Put("/:id", middleware.RequireRole("admin", "manager"), farmController.UpdateFarm)
	farms.Delete("/:id", middleware.RequireRole("admin"), farmController.DeleteFarm)
	farms.Get("/:id/stats", farmController.GetFarmStats)
}
