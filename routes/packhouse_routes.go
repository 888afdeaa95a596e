package routes

import (
	"asikh-oms/config"
	"asikh-oms/controllers"
	"asikh-oms/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupPackhouseRoutes(app *fiber.App, db *gorm.DB) {
	packhouseController := controllers.NewPackhouseController(db)

	packhouses := app.Group(config.MAIN_ROUTES+"/packhouses", middleware.AuthMiddleware)

	packhouses.Post("/", middleware.RequireRole("admin", "manager"), packhouseController.CreatePackhouse)
	packhouses.Get("/", packhouseController.ListPackhouses)
	packhouses.Get("/:id", packhouseController.GetPackhouseByID)
	packhouses.Put("/:id", middleware.RequireRole("admin", "manager"), packhouseController.UpdatePackhouse)
	packhouses.Delete("/:id", middleware.RequireRole("admin"), packhouseController.DeletePackhouse)
}
