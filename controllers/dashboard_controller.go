package controllers

import (
	"time"

	"asikh-oms/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

// GetSummary feeds the landing screen: today's harvest activity plus the
// batch pipeline broken down by status.
func (c *DashboardController) GetSummary(ctx *fiber.Ctx) error {
	today := time.Now().Truncate(24 * time.Hour)

	var cratesToday, cratesTotal int64
	c.DB.Model(&models.Crate{}).Where("created_at >= ?", today).Count(&cratesToday)
	c.DB.Model(&models.Crate{}).Count(&cratesTotal)

	var weightToday float64
	c.DB.Model(&models.Crate{}).Where("created_at >= ?", today).
		Select("COALESCE(SUM(weight), 0)").Scan(&weightToday)

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var batchesByStatus []statusCount
	c.DB.Model(&models.Batch{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&batchesByStatus)

	statusMap := make(map[string]int64, len(batchesByStatus))
	for _, sc := range batchesByStatus {
		statusMap[sc.Status] = sc.Count
	}

	var pendingReconciliation int64
	c.DB.Model(&models.Batch{}).
		Where("status = ?", models.BatchStatusArrived).
		Count(&pendingReconciliation)

	var farms, packhouses, varieties int64
	c.DB.Model(&models.Farm{}).Count(&farms)
	c.DB.Model(&models.Packhouse{}).Count(&packhouses)
	c.DB.Model(&models.Variety{}).Count(&varieties)

	return ctx.JSON(fiber.Map{
		"crates_today":            cratesToday,
		"crates_total":            cratesTotal,
		"weight_today":            weightToday,
		"batches_by_status":       statusMap,
		"pending_reconciliation":  pendingReconciliation,
		"farms":                   farms,
		"packhouses":              packhouses,
		"varieties":               varieties,
	})
}
