package routes

import (
	"asikh-oms/config"
	"asikh-oms/controllers"
	"asikh-oms/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupReportRoutes(app *fiber.App, db *gorm.DB) {
	dashboardController := controllers.NewDashboardController(db)
	exportController := controllers.NewExportController(db)

	reports := app.Group(config.MAIN_ROUTES, middleware.AuthMiddleware)

	reports.Get("/dashboard/summary", dashboardController.GetSummary)
	reports.Get("/exports/batches", middleware.RequireRole("admin", "manager"), exportController.ExportBatches)
	reports.Get("/exports/crates", middleware.RequireRole("admin", "manager"), exportController.ExportCrates)
}
