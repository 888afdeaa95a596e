package routes

import (
	"asikh-oms/config"
	"asikh-oms/controllers"
	"asikh-oms/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupQRCodeRoutes(app *fiber.App, db *gorm.DB) {
	qrController := controllers.NewQRCodeController(db)

	qrCodes := app.Group(config.MAIN_ROUTES+"/qr-codes", middleware.AuthMiddleware)

	qrCodes.Post("/", middleware.RequireRole("admin", "manager", "supervisor"), qrController.CreateQRCode)
	qrCodes.Post("/bulk", middleware.RequireRole("admin", "manager"), qrController.CreateQRCodeBatch)
	qrCodes.Post("/labels", middleware.RequireRole("admin", "manager"), qrController.DownloadQRCodeLabels)
	qrCodes.Get("/", qrController.ListQRCodes)
	qrCodes.Get("/value/:value", qrController.GetQRCodeByValue)
	qrCodes.Get("/:id", qrController.GetQRCodeByID)
	qrCodes.Get("/:id/image", qrController.GetQRCodeImage)
	qrCodes.Put("/:id/status", middleware.RequireRole("admin", "manager"), qrController.UpdateQRCodeStatus)
}
