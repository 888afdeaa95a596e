package routes

import (
	"asikh-oms/config"
	"asikh-oms/controllers"
	"asikh-oms/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authController := controllers.NewAuthController(db)

	auth := app.Group(config.MAIN_ROUTES + "/auth")

	auth.Post("/login", authController.Login)
	auth.Post("/pin-login", authController.PinLogin)
	auth.Post("/refresh", authController.Refresh)
	auth.Post("/logout", authController.Logout)
	auth.Post("/password-reset/request", authController.RequestPasswordReset)
	auth.Post("/password-reset/verify", authController.VerifyPasswordReset)

	auth.Post("/set-pin", middleware.AuthMiddleware, authController.SetPin)
}
