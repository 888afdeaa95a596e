package routes

import (
	"asikh-oms/config"
	"asikh-oms/controllers"
	"asikh-oms/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupBatchRoutes(app *fiber.App, db *gorm.DB) {
	batchController := controllers.NewBatchController(db)

	batches := app.Group(config.MAIN_ROUTES+"/batches", middleware.AuthMiddleware)

	batches.Post("/", middleware.RequireRole("admin", "manager", "supervisor"), batchController.CreateBatch)
	batches.Get("/", batchController.ListBatches)
	batches.Get("/code/:code", batchController.GetBatchByCode)
	batches.Get("/:id", batchController.GetBatchByID)
	batches.Put("/:id", middleware.RequireRole("admin", "manager", "supervisor"), batchController.UpdateBatch)

	batches.Post("/:id/depart", middleware.RequireRole("admin", "manager", "supervisor"), batchController.DepartBatch)
	batches.Post("/:id/arrive", middleware.RequireRole("admin", "manager", "supervisor", "packhouse"), batchController.ArriveBatch)
	batches.Post("/:id/deliver", middleware.RequireRole("admin", "manager", "packhouse"), batchController.DeliverBatch)
	batches.Post("/:id/close", middleware.RequireRole("admin", "packhouse"), batchController.CloseBatch)
	batches.Post("/:id/cancel", middleware.RequireRole("admin", "manager"), batchController.CancelBatch)

	batches.Put("/:id/status", middleware.RequireRole("admin", "manager", "supervisor", "packhouse"), batchController.UpdateBatchStatus)

	batches.Post("/:id/add-crate", middleware.RequireRole("admin", "manager", "supervisor", "harvester"), batchController.AddCrate)
	batches.Post("/:id/add-minimal-crate", middleware.RequireRole("admin", "manager", "supervisor", "harvester"), batchController.AddMinimalCrate)
	batches.Get("/:id/crates", batchController.ListBatchCrates)

	batches.Get("/:id/stats", batchController.GetBatchStats)
	batches.Get("/:id/status", batchController.GetBatchStatus)
	batches.Get("/:id/weight-details", batchController.GetWeightDetails)
	batches.Post("/:id/reconcile", middleware.RequireRole("admin", "manager", "packhouse"), batchController.ReconcileCrate)
	batches.Get("/:id/reconciliation-stats", batchController.GetReconciliationStats)
}
