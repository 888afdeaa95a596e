package controllers

import (
	"bytes"
	"fmt"
	"time"

	"asikh-oms/controllers/idgen"
	"asikh-oms/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ExportController struct {
	DB *gorm.DB
}

func NewExportController(db *gorm.DB) *ExportController {
	return &ExportController{DB: db}
}

func sendXLSX(ctx *fiber.Ctx, f *excelize.File, prefix string) error {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	filename := fmt.Sprintf("%s_%d.xlsx", prefix, idgen.GenerateID())
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", "attachment; filename="+filename)
	return ctx.Send(buf.Bytes())
}

func fmtTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// ExportBatches writes the filtered batch list to a spreadsheet.
func (c *ExportController) ExportBatches(ctx *fiber.Ctx) error {
	query := c.DB.Model(&models.Batch{})
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var batches []models.Batch
	if err := query.Order("created_at DESC").Find(&batches).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	f := excelize.NewFile()
	sheet := "Batches"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Batch Code", "Status", "Transport Mode", "Vehicle", "Driver", "Departure", "Arrival", "Total Crates", "Total Weight", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, b := range batches {
		values := []interface{}{
			b.BatchCode, b.Status, b.TransportMode, b.VehicleNumber, b.DriverName,
			fmtTime(b.DepartureTime), fmtTime(b.ArrivalTime), b.TotalCrates, b.TotalWeight, b.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return sendXLSX(ctx, f, "batches")
}

// ExportCrates writes the filtered crate list to a spreadsheet, with variety
// names resolved.
func (c *ExportController) ExportCrates(ctx *fiber.Ctx) error {
	query := c.DB.Model(&models.Crate{})
	if batch := ctx.QueryInt("batch_id", 0); batch > 0 {
		query = query.Where("batch_id = ?", batch)
	}
	if variety := ctx.QueryInt("variety_id", 0); variety > 0 {
		query = query.Where("variety_id = ?", variety)
	}

	var crates []models.Crate
	if err := query.Order("harvest_date DESC").Find(&crates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	varietyNames := make(map[uint]string)
	var varieties []models.Variety
	if err := c.DB.Find(&varieties).Error; err == nil {
		for _, v := range varieties {
			varietyNames[v.ID] = v.Name
		}
	}

	f := excelize.NewFile()
	sheet := "Crates"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"QR Code", "Harvest Date", "Variety", "Weight", "Quality Grade", "Batch ID", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, cr := range crates {
		batchID := ""
		if cr.BatchID != nil {
			batchID = fmt.Sprintf("%d", *cr.BatchID)
		}
		values := []interface{}{
			cr.QRCode, cr.HarvestDate.Format("2006-01-02 15:04"), varietyNames[cr.VarietyID],
			cr.Weight, cr.QualityGrade, batchID, cr.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return sendXLSX(ctx, f, "crates")
}
