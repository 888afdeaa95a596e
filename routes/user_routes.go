package routes

import (
	"asikh-oms/config"
	"asikh-oms/controllers"
	"asikh-oms/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupUserRoutes(app *fiber.App, db *gorm.DB) {
	userController := controllers.NewUserController(db)

	users := app.Group(config.MAIN_ROUTES+"/users", middleware.AuthMiddleware)

	users.Get("/me", userController.Me)
	users.Post("/change-password", userController.ChangePassword)
	users.Get("/roles", userController.ListRoles)

	users.Post("/", middleware.RequireRole("admin"), userController.CreateUser)
	users.Get("/", middleware.RequireRole("admin", "manager"), userController.ListUsers)
	users.Get("/:id", middleware.RequireRole("admin", "manager"), userController.GetUserByID)
	users.Put("/:id", middleware.RequireRole("admin"), userController.UpdateUser)
	users.Post("/:id/activate", middleware.RequireRole("admin"), userController.ActivateUser)
	users.Post("/:id/deactivate", middleware.RequireRole("admin"), userController.DeactivateUser)
	users.Post("/:id/reset-password", middleware.RequireRole("admin"), userController.ResetPassword)
}
